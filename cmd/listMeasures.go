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

package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samply/tabularctl/tabular"
	"github.com/spf13/cobra"
)

var listTable string

func listMeasures(w io.Writer, model *tabular.ModelDefinition, tableName string) int {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Name", "Format String", "Expression"})

	var count int
	for _, td := range model.Tables {
		if tableName != "" && td != model.TableDefinition(tableName) {
			continue
		}
		for _, m := range td.Measures {
			t.AppendRow(table.Row{td.Name, m.Name, m.FormatString, m.Expression.String()})
			count++
		}
	}
	t.AppendFooter(table.Row{"", "Total", count})
	t.Render()
	return count
}

var listMeasuresCmd = &cobra.Command{
	Use:   "list-measures <model-file>",
	Short: "Lists the measures of a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := tabular.Open(args[0])
		if err != nil {
			return err
		}
		if listTable != "" {
			if _, err := db.Model.Table(listTable); err != nil {
				return err
			}
		}

		listMeasures(cmd.OutOrStdout(), &db.Model, listTable)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listMeasuresCmd)

	listMeasuresCmd.Flags().StringVarP(&listTable, "table", "t", "", "only list measures of this table")
}
