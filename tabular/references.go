// Copyright 2019 - 2025 The Samply Community
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tabular

import (
	"fmt"
	"regexp"
	"strings"
)

// Reference is a column or measure reference found in a formula. Table is
// empty for unqualified references like [Sales Amount].
type Reference struct {
	Table string
	Name  string
}

func (r Reference) String() string {
	if r.Table == "" {
		return "[" + r.Name + "]"
	}
	return TableRef(r.Table) + "[" + r.Name + "]"
}

var referencePattern = regexp.MustCompile(`(?:'((?:[^']|'')+)'|([A-Za-z_][A-Za-z0-9_]*))?\[((?:[^\]]|\]\])+)\]`)

// References returns all column and measure references of a formula in order
// of appearance. Text inside string literals is not excluded.
func References(formula string) []Reference {
	matches := referencePattern.FindAllStringSubmatch(formula, -1)
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		table := m[2]
		if m[1] != "" {
			table = strings.ReplaceAll(m[1], "''", "'")
		}
		refs = append(refs, Reference{
			Table: table,
			Name:  strings.ReplaceAll(m[3], "]]", "]"),
		})
	}
	return refs
}

// checkReferences verifies that every reference in expression resolves.
// Unqualified references resolve to measures of the model or columns of the
// table the expression belongs to.
func (m *ModelDefinition) checkReferences(t *TableDefinition, expression string) error {
	for _, ref := range References(expression) {
		if ref.Table == "" {
			if m.measureOwner(ref.Name) == nil && t.column(ref.Name) == nil {
				return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
			}
			continue
		}
		table := m.table(ref.Table)
		if table == nil {
			return fmt.Errorf("%w: %s: %w", ErrUnknownReference, ref, ErrTableNotFound)
		}
		if table.column(ref.Name) == nil && table.measure(ref.Name) == nil {
			return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
		}
	}
	return nil
}
