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
	"regexp"
	"slices"
	"strings"
)

// SourceTable is a database table read by the SQL query of a partition.
type SourceTable struct {
	Table     string
	Partition string
	Source    string
}

var (
	quotedString   = regexp.MustCompile(`"((?:[^"]|"")*)"`)
	sqlStatement   = regexp.MustCompile(`(?i)^\s*(SELECT|WITH|--)`)
	sqlTableSource = regexp.MustCompile(`(?i)(?:FROM|JOIN|INNER\s+JOIN|LEFT\s+JOIN|RIGHT\s+JOIN|FULL\s+JOIN)\s+((?:[A-Z0-9_]+\.){1,2}[A-Z0-9_]+)`)
	mEscapes       = strings.NewReplacer(`""`, ``, `#(lf)`, "\n", `#(cr)`, "\r", `#(tab)`, "\t")
)

// SQLStatements returns the string literals of an M expression which look
// like SQL queries.
func SQLStatements(expression string) []string {
	var statements []string
	for _, m := range quotedString.FindAllStringSubmatch(expression, -1) {
		s := mEscapes.Replace(m[1])
		if sqlStatement.MatchString(s) {
			statements = append(statements, s)
		}
	}
	return statements
}

// SQLSourceTables returns the sorted, distinct schema qualified tables a SQL
// statement selects from or joins.
func SQLSourceTables(statement string) []string {
	var tables []string
	for _, m := range sqlTableSource.FindAllStringSubmatch(statement, -1) {
		tables = append(tables, m[1])
	}
	slices.Sort(tables)
	return slices.Compact(tables)
}

// SourceTables lists the database tables the M partitions of the model read.
func (m *ModelDefinition) SourceTables() []SourceTable {
	var result []SourceTable
	for _, t := range m.Tables {
		for _, p := range t.Partitions {
			if !strings.EqualFold(p.Source.Type, "m") {
				continue
			}
			var sources []string
			for _, statement := range SQLStatements(p.Source.Expression.String()) {
				sources = append(sources, SQLSourceTables(statement)...)
			}
			slices.Sort(sources)
			for _, source := range slices.Compact(sources) {
				name := p.Name
				if name == "" {
					name = "unknown"
				}
				result = append(result, SourceTable{Table: t.Name, Partition: name, Source: source})
			}
		}
	}
	return result
}
