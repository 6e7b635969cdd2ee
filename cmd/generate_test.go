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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samply/tabularctl/data"
	"github.com/samply/tabularctl/generator"
	"github.com/samply/tabularctl/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateArgs(modelFile string, extra ...string) []string {
	return append([]string{"generate", modelFile, "--no-progress",
		"--table", "BrandSummary", "--suffix", "TS", "--source", "Tire Summary"}, extra...)
}

func TestGenerateCmd(t *testing.T) {
	t.Run("InPlace", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)

		out, err := execute(t, generateArgs(modelFile)...)
		require.NoError(t, err)
		assert.Contains(t, out, "Measures\t[total]\t\t\t12\n")

		db, err := tabular.ReadBim(modelFile)
		require.NoError(t, err)
		measures := db.Model.Tables[0].Measures
		require.Len(t, measures, 13)
		assert.Equal(t, "CM Margin Per Tire_TS", measures[1].Name)
		assert.Equal(t, "DIVIDE(SUM('Tire Summary'[CM_Margin]), SUM('Tire Summary'[CM_Billed_Sales]), 0)", measures[1].Expression.String())
		for _, m := range measures[1:] {
			assert.Equal(t, "0.00", m.FormatString)
			assert.Equal(t, "This measure is "+m.Name, m.Description)
		}
	})

	t.Run("Output", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)
		outputFile := filepath.Join(t.TempDir(), "out.bim")

		_, err := execute(t, generateArgs(modelFile, "--output", outputFile)...)
		require.NoError(t, err)

		original, err := os.ReadFile(modelFile)
		require.NoError(t, err)
		assert.Equal(t, testBim, string(original))

		db, err := tabular.ReadBim(outputFile)
		require.NoError(t, err)
		assert.Len(t, db.Model.Tables[0].Measures, 13)
	})

	t.Run("OutputExists", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)
		outputFile := writeFile(t, "out.bim", "")

		_, err := execute(t, generateArgs(modelFile, "--output", outputFile)...)
		assert.ErrorContains(t, err, "does already exist")
	})

	t.Run("DryRun", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)

		_, err := execute(t, generateArgs(modelFile, "--dry-run")...)
		require.NoError(t, err)

		content, err := os.ReadFile(modelFile)
		require.NoError(t, err)
		assert.Equal(t, testBim, string(content))
	})

	t.Run("SecondSuffix", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)
		_, err := execute(t, generateArgs(modelFile)...)
		require.NoError(t, err)

		_, err = execute(t, "generate", modelFile, "--no-progress", "-t", "BrandSummary", "-s", "PY", "--source", "Tire Summary")
		require.NoError(t, err)

		db, err := tabular.ReadBim(modelFile)
		require.NoError(t, err)
		assert.Len(t, db.Model.Tables[0].Measures, 25)
	})

	t.Run("SameSuffixWritesNothing", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)
		_, err := execute(t, generateArgs(modelFile)...)
		require.NoError(t, err)
		before, err := os.ReadFile(modelFile)
		require.NoError(t, err)

		out, err := execute(t, generateArgs(modelFile)...)
		assert.True(t, errors.Is(err, tabular.ErrDuplicateName))
		assert.Contains(t, out, "Model Error:")

		after, err := os.ReadFile(modelFile)
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	})

	t.Run("Strict", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)

		_, err := execute(t, generateArgs(modelFile, "--strict")...)
		assert.True(t, errors.Is(err, tabular.ErrUnknownReference))
	})

	t.Run("StrictWithTemplates", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)
		templates := writeFile(t, "templates.yaml", `
formatString: "#,0.00"
templates:
  - label: Margin
    formula: SUM({table}[CM_Margin])
  - label: Margin Per Brand
    formula: DIVIDE([Margin_{suffix}], [Brand Count])
`)

		_, err := execute(t, generateArgs(modelFile, "--strict", "--templates", templates)...)
		require.NoError(t, err)

		db, err := tabular.ReadBim(modelFile)
		require.NoError(t, err)
		measures := db.Model.Tables[0].Measures
		require.Len(t, measures, 3)
		assert.Equal(t, "DIVIDE([Margin_TS], [Brand Count])", measures[2].Expression.String())
		assert.Equal(t, "#,0.00", measures[2].FormatString)
	})

	t.Run("UnknownTable", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)

		_, err := execute(t, "generate", modelFile, "--no-progress", "--table", "Unknown", "--suffix", "TS", "--source", "Tire Summary")
		assert.True(t, errors.Is(err, tabular.ErrTableNotFound))
	})

	t.Run("NoTable", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)

		_, err := execute(t, "generate", modelFile, "--suffix", "TS", "--source", "Tire Summary")
		assert.ErrorContains(t, err, "no target table given")
	})

	t.Run("NoSuffix", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)

		_, err := execute(t, "generate", modelFile, "--no-progress", "--table", "BrandSummary", "--source", "Tire Summary")
		assert.True(t, errors.Is(err, generator.ErrEmptySuffix))
	})

	t.Run("VpaxInPlace", func(t *testing.T) {
		_, err := execute(t, generateArgs(writeFile(t, "model.vpax", ""))...)
		assert.ErrorContains(t, err, "can't write")
	})

	t.Run("SuffixPerTable", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)

		out, err := execute(t, generateArgs(modelFile, "--table", "Tire Summary=TIRE")...)
		require.NoError(t, err)
		assert.Contains(t, out, "Measures\t[total]\t\t\t24\n")

		db, err := tabular.ReadBim(modelFile)
		require.NoError(t, err)
		assert.Len(t, db.Model.Tables[0].Measures, 13)
		require.Len(t, db.Model.Tables[1].Measures, 12)
		assert.Equal(t, "CM Margin Per Tire_TIRE", db.Model.Tables[1].Measures[0].Name)
	})

	t.Run("SameSuffixForTwoTables", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)

		_, err := execute(t, generateArgs(modelFile, "--table", "Tire Summary")...)
		assert.True(t, errors.Is(err, generator.ErrDuplicateSuffix))

		content, err := os.ReadFile(modelFile)
		require.NoError(t, err)
		assert.Equal(t, testBim, string(content))
	})

	t.Run("ConfigFile", func(t *testing.T) {
		modelFile := writeFile(t, "model.bim", testBim)
		cfg := writeFile(t, "tabularctl.yaml", `
suffix: TS
source: Tire Summary
tables:
  - BrandSummary
no_progress: true
`)

		_, err := execute(t, "generate", modelFile, "--config", cfg)
		require.NoError(t, err)

		db, err := tabular.ReadBim(modelFile)
		require.NoError(t, err)
		assert.Len(t, db.Model.Tables[0].Measures, 13)
	})
}

func TestRunGenerator_Progress(t *testing.T) {
	db, err := tabular.ParseBim([]byte(testBim))
	require.NoError(t, err)
	g := generator.New(data.DefaultTemplateSet(), data.Parameters{VariableSuffix: "TS", SourceTableRef: "'Tire Summary'"}, nil)

	var progress bytes.Buffer
	stats, err := runGenerator(g, &db.Model, []generator.Target{{Table: "BrandSummary"}, {Table: "Unknown", Suffix: "UN"}}, &progress)

	assert.True(t, errors.Is(err, tabular.ErrTableNotFound))
	assert.Equal(t, []int{12, 0}, stats.MeasuresPerTable)
}
