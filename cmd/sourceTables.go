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
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samply/tabularctl/log"
	"github.com/samply/tabularctl/tabular"
	"github.com/spf13/cobra"
)

var sourceTablesFormat string

type fileSourceTable struct {
	file string
	tabular.SourceTable
}

func collectSourceTables(logger log.Logger, filenames []string) ([]fileSourceTable, error) {
	var result []fileSourceTable
	for _, filename := range filenames {
		db, err := tabular.Open(filename)
		if err != nil {
			return nil, err
		}
		sources := db.Model.SourceTables()
		logger.WithField("file", filename).Debugf("found %d source tables", len(sources))
		for _, source := range sources {
			result = append(result, fileSourceTable{file: filepath.Base(filename), SourceTable: source})
		}
	}
	return result, nil
}

func renderSourceTables(w io.Writer, sources []fileSourceTable, format string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Table", "Partition", "Source Table"})
	for _, s := range sources {
		t.AppendRow(table.Row{s.file, s.Table, s.Partition, s.Source})
	}

	switch format {
	case "table":
		t.SetStyle(table.StyleLight)
		t.Render()
	case "csv":
		t.RenderCSV()
	default:
		return fmt.Errorf("unknown format %q, please use one of table or csv", format)
	}
	return nil
}

var sourceTablesCmd = &cobra.Command{
	Use:   "source-tables <model-file>...",
	Short: "Lists the database tables the partitions of models read from",
	Long: `Scans the Power Query (M) partitions of .bim and .vpax files for SQL
queries and lists the schema qualified tables they select from or join.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := collectSourceTables(log.GetLogger(cmd.Context()), args)
		if err != nil {
			return err
		}
		return renderSourceTables(cmd.OutOrStdout(), sources, sourceTablesFormat)
	},
}

func init() {
	rootCmd.AddCommand(sourceTablesCmd)

	sourceTablesCmd.Flags().StringVarP(&sourceTablesFormat, "format", "f", "table", "output format (table or csv)")
}
