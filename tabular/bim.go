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
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Database is the root object of a model definition file.
type Database struct {
	Name               string          `json:"name,omitempty"`
	CompatibilityLevel int             `json:"compatibilityLevel,omitempty"`
	Model              ModelDefinition `json:"model"`

	extra properties
}

// ModelDefinition implements Model on top of a model definition. With
// StrictReferences set, AddMeasure rejects formulas referencing tables,
// columns or measures the model does not contain.
type ModelDefinition struct {
	Culture string             `json:"culture,omitempty"`
	Tables  []*TableDefinition `json:"tables"`

	StrictReferences bool `json:"-"`

	extra properties
}

// TableDefinition implements Table.
type TableDefinition struct {
	Name       string       `json:"name"`
	LineageTag string       `json:"lineageTag,omitempty"`
	Columns    []*Column    `json:"columns,omitempty"`
	Measures   []*Measure   `json:"measures,omitempty"`
	Partitions []*Partition `json:"partitions,omitempty"`

	model *ModelDefinition
	extra properties
}

type Column struct {
	Name         string     `json:"name"`
	DataType     string     `json:"dataType,omitempty"`
	SourceColumn string     `json:"sourceColumn,omitempty"`
	Expression   Expression `json:"expression,omitzero"`

	extra properties
}

type Partition struct {
	Name   string          `json:"name"`
	Mode   string          `json:"mode,omitempty"`
	Source PartitionSource `json:"source"`

	extra properties
}

type PartitionSource struct {
	Type       string     `json:"type,omitempty"`
	Expression Expression `json:"expression,omitzero"`
	Query      Expression `json:"query,omitzero"`

	extra properties
}

var utf8Bom = []byte{0xEF, 0xBB, 0xBF}

// ParseBim parses the content of a model definition file.
func ParseBim(b []byte) (*Database, error) {
	db := &Database{}
	if err := json.Unmarshal(bytes.TrimPrefix(b, utf8Bom), db); err != nil {
		return nil, fmt.Errorf("error while parsing the model definition: %w", err)
	}
	db.Model.link()
	return db, nil
}

// ReadBim reads a model definition file.
func ReadBim(filename string) (*Database, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseBim(b)
}

// ReadVpax reads the model definition contained in a VertiPaq Analyzer
// archive.
func ReadVpax(filename string) (*Database, error) {
	r, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("error while opening archive %s: %w", filename, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.EqualFold(path.Base(f.Name), "model.bim") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return ParseBim(b)
	}
	return nil, fmt.Errorf("archive %s contains no model.bim", filename)
}

// IsReadOnly returns true for files Open can read but WriteBim can't replace.
func IsReadOnly(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".vpax")
}

// Open reads a .bim or .vpax file depending on its extension.
func Open(filename string) (*Database, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bim", ".json":
		return ReadBim(filename)
	case ".vpax":
		return ReadVpax(filename)
	default:
		return nil, fmt.Errorf("unsupported model file %s: expected a .bim or .vpax file", filename)
	}
}

// EncodeBim writes db as indented JSON to w.
func EncodeBim(w io.Writer, db *Database) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(db)
}

// WriteBim replaces the file at filename with db. The content is written to a
// temporary file first, so a failed write leaves the original file untouched.
func WriteBim(filename string, db *Database) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if info, err := os.Stat(filename); err == nil {
		if err := tmp.Chmod(info.Mode().Perm()); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := EncodeBim(tmp, db); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

func (m *ModelDefinition) link() {
	for _, t := range m.Tables {
		t.model = m
	}
}

// Table returns the table with name. Names are compared case-insensitive.
func (m *ModelDefinition) Table(name string) (Table, error) {
	t := m.table(name)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// TableDefinition returns the table with name or nil.
func (m *ModelDefinition) TableDefinition(name string) *TableDefinition {
	return m.table(name)
}

func (m *ModelDefinition) table(name string) *TableDefinition {
	for _, t := range m.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// measureOwner returns the table holding a measure with name or nil.
func (m *ModelDefinition) measureOwner(name string) *TableDefinition {
	for _, t := range m.Tables {
		if t.measure(name) != nil {
			return t
		}
	}
	return nil
}

// AddMeasure appends a new measure to the table. Measure names are unique
// within the whole model and must not be used by a column of the table.
func (t *TableDefinition) AddMeasure(name string, expression string) (*Measure, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("%w: measure %s", ErrEmptyExpression, name)
	}
	if t.column(name) != nil {
		return nil, fmt.Errorf("%w: table %s already has a column named %s", ErrDuplicateName, t.Name, name)
	}
	owner := t
	if t.model != nil {
		owner = t.model.measureOwner(name)
	} else if t.measure(name) == nil {
		owner = nil
	}
	if owner != nil {
		return nil, fmt.Errorf("%w: measure %s already exists in table %s", ErrDuplicateName, name, owner.Name)
	}
	if t.model != nil && t.model.StrictReferences {
		if err := t.model.checkReferences(t, expression); err != nil {
			return nil, fmt.Errorf("measure %s: %w", name, err)
		}
	}

	lineageTag, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	measure := &Measure{
		Name:       name,
		Expression: NewExpression(expression),
		LineageTag: lineageTag.String(),
	}
	t.Measures = append(t.Measures, measure)
	return measure, nil
}

func (t *TableDefinition) column(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (t *TableDefinition) measure(name string) *Measure {
	for _, m := range t.Measures {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}
