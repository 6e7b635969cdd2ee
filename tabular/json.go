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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Expression is a formula or query text. Model definitions store longer
// expressions as an array of lines; an Expression read that way is written
// back the same way.
type Expression struct {
	text  string
	lines bool
}

// NewExpression returns an Expression written as a single string.
func NewExpression(text string) Expression {
	return Expression{text: text}
}

func (e Expression) String() string {
	return e.text
}

func (e Expression) IsZero() bool {
	return e.text == ""
}

func (e *Expression) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*e = Expression{text: s}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return fmt.Errorf("expression is neither a string nor an array of strings: %w", err)
	}
	*e = Expression{text: strings.Join(lines, "\n"), lines: true}
	return nil
}

func (e Expression) MarshalJSON() ([]byte, error) {
	if e.lines {
		return marshal(strings.Split(e.text, "\n"))
	}
	return marshal(e.text)
}

// marshal is json.Marshal without HTML escaping, so DAX operators like && and
// < stay readable in model files.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// properties holds the JSON properties of an object which are not mapped to a
// struct field, so that they survive a read-write cycle.
type properties map[string]json.RawMessage

func splitProperties(b []byte, known ...string) (properties, error) {
	var p properties
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(p, k)
	}
	if len(p) == 0 {
		return nil, nil
	}
	return p, nil
}

func mergeProperties(b []byte, extra properties) ([]byte, error) {
	if len(extra) == 0 {
		return b, nil
	}
	var p properties
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := p[k]; !ok {
			p[k] = v
		}
	}
	return marshal(p)
}

var measureProperties = []string{"name", "expression", "formatString", "description", "displayFolder", "isHidden", "lineageTag"}

func (m *Measure) UnmarshalJSON(b []byte) error {
	type plain Measure
	if err := json.Unmarshal(b, (*plain)(m)); err != nil {
		return err
	}
	extra, err := splitProperties(b, measureProperties...)
	if err != nil {
		return err
	}
	m.extra = extra
	return nil
}

func (m Measure) MarshalJSON() ([]byte, error) {
	type plain Measure
	b, err := marshal(plain(m))
	if err != nil {
		return nil, err
	}
	return mergeProperties(b, m.extra)
}

var columnProperties = []string{"name", "dataType", "sourceColumn", "expression"}

func (c *Column) UnmarshalJSON(b []byte) error {
	type plain Column
	if err := json.Unmarshal(b, (*plain)(c)); err != nil {
		return err
	}
	extra, err := splitProperties(b, columnProperties...)
	if err != nil {
		return err
	}
	c.extra = extra
	return nil
}

func (c Column) MarshalJSON() ([]byte, error) {
	type plain Column
	b, err := marshal(plain(c))
	if err != nil {
		return nil, err
	}
	return mergeProperties(b, c.extra)
}

var partitionSourceProperties = []string{"type", "expression", "query"}

func (s *PartitionSource) UnmarshalJSON(b []byte) error {
	type plain PartitionSource
	if err := json.Unmarshal(b, (*plain)(s)); err != nil {
		return err
	}
	extra, err := splitProperties(b, partitionSourceProperties...)
	if err != nil {
		return err
	}
	s.extra = extra
	return nil
}

func (s PartitionSource) MarshalJSON() ([]byte, error) {
	type plain PartitionSource
	b, err := marshal(plain(s))
	if err != nil {
		return nil, err
	}
	return mergeProperties(b, s.extra)
}

var partitionProperties = []string{"name", "mode", "source"}

func (p *Partition) UnmarshalJSON(b []byte) error {
	type plain Partition
	if err := json.Unmarshal(b, (*plain)(p)); err != nil {
		return err
	}
	extra, err := splitProperties(b, partitionProperties...)
	if err != nil {
		return err
	}
	p.extra = extra
	return nil
}

func (p Partition) MarshalJSON() ([]byte, error) {
	type plain Partition
	b, err := marshal(plain(p))
	if err != nil {
		return nil, err
	}
	return mergeProperties(b, p.extra)
}

var tableProperties = []string{"name", "lineageTag", "columns", "measures", "partitions"}

func (t *TableDefinition) UnmarshalJSON(b []byte) error {
	type plain TableDefinition
	if err := json.Unmarshal(b, (*plain)(t)); err != nil {
		return err
	}
	extra, err := splitProperties(b, tableProperties...)
	if err != nil {
		return err
	}
	t.extra = extra
	return nil
}

func (t TableDefinition) MarshalJSON() ([]byte, error) {
	type plain TableDefinition
	b, err := marshal(plain(t))
	if err != nil {
		return nil, err
	}
	return mergeProperties(b, t.extra)
}

var modelProperties = []string{"culture", "tables"}

func (m *ModelDefinition) UnmarshalJSON(b []byte) error {
	type plain ModelDefinition
	if err := json.Unmarshal(b, (*plain)(m)); err != nil {
		return err
	}
	extra, err := splitProperties(b, modelProperties...)
	if err != nil {
		return err
	}
	m.extra = extra
	return nil
}

func (m ModelDefinition) MarshalJSON() ([]byte, error) {
	type plain ModelDefinition
	b, err := marshal(plain(m))
	if err != nil {
		return nil, err
	}
	return mergeProperties(b, m.extra)
}

var databaseProperties = []string{"name", "compatibilityLevel", "model"}

func (db *Database) UnmarshalJSON(b []byte) error {
	type plain Database
	if err := json.Unmarshal(b, (*plain)(db)); err != nil {
		return err
	}
	extra, err := splitProperties(b, databaseProperties...)
	if err != nil {
		return err
	}
	db.extra = extra
	return nil
}

func (db Database) MarshalJSON() ([]byte, error) {
	type plain Database
	b, err := marshal(plain(db))
	if err != nil {
		return nil, err
	}
	return mergeProperties(b, db.extra)
}
