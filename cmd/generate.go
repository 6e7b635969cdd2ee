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

	"github.com/samply/tabularctl/data"
	"github.com/samply/tabularctl/generator"
	"github.com/samply/tabularctl/log"
	"github.com/samply/tabularctl/tabular"
	"github.com/samply/tabularctl/util"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var outputFile string
var dryRun bool

func runGenerator(g *generator.Generator, model tabular.Model, targets []generator.Target, progressOut io.Writer) (*util.RunStats, error) {
	if progressOut == nil {
		return g.Run(model, targets, nil)
	}

	progress := mpb.New(mpb.WithOutput(progressOut))
	bar := progress.AddBar(int64(len(targets)),
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name("generate", decor.WC{W: 9, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WC{W: 8}),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	stats, err := g.Run(model, targets, func(string) { bar.Increment() })
	if err != nil {
		bar.Abort(false)
	}
	progress.Wait()
	return stats, err
}

func writeModel(db *tabular.Database, modelFile string, outputFile string) error {
	if outputFile == "" {
		return tabular.WriteBim(modelFile, db)
	}

	file, err := util.CreateOutputFile(outputFile)
	if err != nil {
		return err
	}
	if err := tabular.EncodeBim(file, db); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

var generateCmd = &cobra.Command{
	Use:   "generate <model-file>",
	Short: "Adds measures generated from formula templates to tables of a model",
	Long: `Expands every formula template with the given suffix and source table
and adds the resulting measures to each target table of the model.

Measures are named "<label>_<suffix>". Measure names are unique in a model,
so each additional target table needs its own suffix, given as
--table TABLE=SUFFIX. The placeholder {table} in formulas is
replaced by the source table, quoted for DAX if necessary, and {suffix} by the
suffix. Every measure gets the format string of the template set and the
description "This measure is <name>".

The model is written back in place unless --output is given. Nothing is
written if any measure is rejected. Models in .vpax files can't be written in
place.

Example:

	tabularctl generate model.bim --table BrandSummary --suffix TS --source "Tire Summary"
	tabularctl generate model.bim --table BrandSummary=BS --table RegionSummary=RS --source "Tire Summary"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelFile := args[0]
		if len(settings.Tables) == 0 {
			return fmt.Errorf("no target table given, please use --table")
		}
		if tabular.IsReadOnly(modelFile) && outputFile == "" && !dryRun {
			return fmt.Errorf("can't write %s in place, please use --output", modelFile)
		}

		set, err := templateSet(settings.Templates)
		if err != nil {
			return err
		}
		db, err := tabular.Open(modelFile)
		if err != nil {
			return err
		}
		db.Model.StrictReferences = settings.Strict

		logger := log.GetLogger(cmd.Context())
		params := data.Parameters{
			VariableSuffix: settings.Suffix,
			SourceTableRef: tabular.TableRef(settings.Source),
		}
		logger.WithField("model", modelFile).Debugf("generating %d templates with suffix %q from %s",
			len(set.Templates), params.VariableSuffix, params.SourceTableRef)

		var progressOut io.Writer
		if !settings.NoProgress {
			progressOut = cmd.ErrOrStderr()
		}
		stats, err := runGenerator(generator.New(*set, params, logger), &db.Model, generator.ParseTargets(settings.Tables), progressOut)
		fmt.Fprint(cmd.OutOrStdout(), stats.String())
		if err != nil {
			return fmt.Errorf("generation failed, model not written: %w", err)
		}

		if dryRun {
			logger.Info("dry run, model not written")
			return nil
		}
		if err := writeModel(db, modelFile, outputFile); err != nil {
			return err
		}
		if outputFile != "" {
			logger.Infof("model written to %s", outputFile)
		} else {
			logger.Infof("model written to %s", modelFile)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringSliceP("table", "t", nil, "table to add the measures to, as TABLE or TABLE=SUFFIX (repeatable)")
	generateCmd.Flags().StringP("suffix", "s", "", "suffix appended to every measure name")
	generateCmd.Flags().String("source", "", "table the formulas aggregate over")
	generateCmd.Flags().String("templates", "", "YAML file with formula templates (default are the built-in templates)")
	generateCmd.Flags().Bool("strict", false, "reject formulas referencing unknown tables, columns or measures")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the model to this file instead of in place")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "don't write the model")
}
