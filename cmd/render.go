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
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samply/tabularctl/data"
	"github.com/samply/tabularctl/generator"
	"github.com/samply/tabularctl/tabular"
	"github.com/spf13/cobra"
)

var renderFormat string

func renderDefinitions(w io.Writer, defs []generator.Definition, format string) error {
	switch format {
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Formula", "Format String", "Description"})
		for _, def := range defs {
			t.AppendRow(table.Row{def.Name, def.Formula, def.FormatString, def.Description})
		}
		t.Render()
		return nil
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(defs)
	case "yaml":
		out, err := yaml.Marshal(defs)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown format %q, please use one of table, json or yaml", format)
	}
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Prints the measures generate would add without touching a model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := templateSet(settings.Templates)
		if err != nil {
			return err
		}

		g := generator.New(*set, data.Parameters{
			VariableSuffix: settings.Suffix,
			SourceTableRef: tabular.TableRef(settings.Source),
		}, nil)
		defs, err := g.Definitions()
		if err != nil {
			return err
		}
		return renderDefinitions(cmd.OutOrStdout(), defs, renderFormat)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("suffix", "s", "", "suffix appended to every measure name")
	renderCmd.Flags().String("source", "", "table the formulas aggregate over")
	renderCmd.Flags().String("templates", "", "YAML file with formula templates (default are the built-in templates)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "table", "output format (table, json or yaml)")
}
