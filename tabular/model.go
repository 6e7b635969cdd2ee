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

// Package tabular contains the host side of measure generation: the model a
// measure is added to and a file backed implementation of it working on
// model definitions (.bim) and VertiPaq Analyzer archives (.vpax).
package tabular

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrEmptyName        = errors.New("empty measure name")
	ErrEmptyExpression  = errors.New("empty expression")
	ErrUnknownReference = errors.New("unknown reference")
)

// A Model gives access to the tables of a semantic model by name.
type Model interface {
	Table(name string) (Table, error)
}

// A Table accepts new measures. The returned measure is owned by the model;
// callers may set its remaining properties.
type Table interface {
	AddMeasure(name string, expression string) (*Measure, error)
}

// Measure is a named calculation of a table.
type Measure struct {
	Name          string     `json:"name"`
	Expression    Expression `json:"expression"`
	FormatString  string     `json:"formatString,omitempty"`
	Description   string     `json:"description,omitempty"`
	DisplayFolder string     `json:"displayFolder,omitempty"`
	IsHidden      bool       `json:"isHidden,omitempty"`
	LineageTag    string     `json:"lineageTag,omitempty"`

	extra properties
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableRef returns a reference to the table with name usable in a formula.
// Names which are no plain identifiers get quoted. Already quoted references
// are returned as they are.
func TableRef(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		return name
	}
	if name == "" || identifier.MatchString(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
