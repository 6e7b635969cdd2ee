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

// Package generator expands measure templates into measure definitions and
// adds them to the tables of a model.
package generator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samply/tabularctl/data"
	"github.com/samply/tabularctl/log"
	"github.com/samply/tabularctl/tabular"
	"github.com/samply/tabularctl/util"
)

var (
	ErrEmptySuffix         = errors.New("empty variable suffix")
	ErrEmptySource         = errors.New("empty source table reference")
	ErrEmptyLabel          = errors.New("empty label")
	ErrDuplicateLabel      = errors.New("duplicate label")
	ErrLeftoverPlaceholder = errors.New("leftover placeholder")
	ErrDuplicateSuffix     = errors.New("duplicate suffix")
)

// Definition is a fully expanded measure, ready to be added to a table.
type Definition struct {
	Name         string `json:"name" yaml:"name"`
	Formula      string `json:"formula" yaml:"formula"`
	FormatString string `json:"formatString" yaml:"formatString"`
	Description  string `json:"description" yaml:"description"`
}

// Expand substitutes params into every template. The resulting names are
// `label + "_" + suffix` and unique as long as the labels are.
func Expand(templates []data.MeasureTemplate, params data.Parameters) ([]Definition, error) {
	if params.VariableSuffix == "" {
		return nil, ErrEmptySuffix
	}

	replacer := strings.NewReplacer(
		data.TablePlaceholder, params.SourceTableRef,
		data.SuffixPlaceholder, params.VariableSuffix,
	)
	labels := make(map[string]int, len(templates))
	defs := make([]Definition, 0, len(templates))
	for i, template := range templates {
		if strings.TrimSpace(template.Label) == "" {
			return nil, fmt.Errorf("template[%d]: %w", i, ErrEmptyLabel)
		}
		if j, ok := labels[template.Label]; ok {
			return nil, fmt.Errorf("template[%d]: %w %q, already used by template[%d]", i, ErrDuplicateLabel, template.Label, j)
		}
		labels[template.Label] = i

		if params.SourceTableRef == "" && strings.Contains(template.Formula, data.TablePlaceholder) {
			return nil, fmt.Errorf("template[%d]: %w", i, ErrEmptySource)
		}

		name := template.Label + "_" + params.VariableSuffix
		formula := replacer.Replace(template.Formula)

		for _, placeholder := range []string{data.TablePlaceholder, data.SuffixPlaceholder} {
			if strings.Contains(formula, placeholder) {
				return nil, fmt.Errorf("template[%d]: %w %s in formula of %s", i, ErrLeftoverPlaceholder, placeholder, name)
			}
		}

		defs = append(defs, Definition{
			Name:         name,
			Formula:      formula,
			FormatString: data.DefaultFormatString,
			Description:  "This measure is " + name,
		})
	}
	return defs, nil
}

// ApplyError is returned by Apply if the model rejects a table lookup or a
// measure. Measure is empty if the table lookup failed.
type ApplyError struct {
	Table   string
	Measure string
	Err     error
}

func (e *ApplyError) Error() string {
	if e.Measure == "" {
		return fmt.Sprintf("error while looking up table %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("error while adding measure %s to table %s: %v", e.Measure, e.Table, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Apply adds defs in order to the table with name targetTable and sets format
// string and description of every new measure. It stops at the first error;
// measures added before stay in the model and are returned.
func Apply(model tabular.Model, targetTable string, defs []Definition) ([]*tabular.Measure, error) {
	table, err := model.Table(targetTable)
	if err != nil {
		return nil, &ApplyError{Table: targetTable, Err: err}
	}

	measures := make([]*tabular.Measure, 0, len(defs))
	for _, def := range defs {
		measure, err := table.AddMeasure(def.Name, def.Formula)
		if err != nil {
			return measures, &ApplyError{Table: targetTable, Measure: def.Name, Err: err}
		}
		measure.FormatString = def.FormatString
		measure.Description = def.Description
		measures = append(measures, measure)
	}
	return measures, nil
}

// Target is a table to add measures to. A non-empty Suffix replaces the
// variable suffix of the generator for this table.
type Target struct {
	Table  string
	Suffix string
}

// ParseTarget parses "Table" or "Table=Suffix". The suffix is taken after the
// last "=".
func ParseTarget(s string) Target {
	if i := strings.LastIndex(s, "="); i >= 0 {
		return Target{Table: strings.TrimSpace(s[:i]), Suffix: strings.TrimSpace(s[i+1:])}
	}
	return Target{Table: strings.TrimSpace(s)}
}

// ParseTargets parses every element of s with ParseTarget.
func ParseTargets(s []string) []Target {
	targets := make([]Target, 0, len(s))
	for _, v := range s {
		targets = append(targets, ParseTarget(v))
	}
	return targets
}

// Generator applies one template set with fixed parameters to any number of
// tables.
type Generator struct {
	set    data.TemplateSet
	params data.Parameters
	logger log.Logger
}

func New(set data.TemplateSet, params data.Parameters, logger log.Logger) *Generator {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Generator{set: set, params: params, logger: logger}
}

// Definitions expands the template set of the generator.
func (g *Generator) Definitions() ([]Definition, error) {
	return g.definitions(g.params.VariableSuffix)
}

func (g *Generator) definitions(suffix string) ([]Definition, error) {
	params := g.params
	params.VariableSuffix = suffix
	defs, err := Expand(g.set.Templates, params)
	if err != nil {
		return nil, err
	}
	if g.set.FormatString != "" {
		for i := range defs {
			defs[i].FormatString = g.set.FormatString
		}
	}
	return defs, nil
}

func (g *Generator) suffix(target Target) string {
	if target.Suffix != "" {
		return target.Suffix
	}
	return g.params.VariableSuffix
}

// Run applies the definitions to every target. Measure names are unique in a
// model, so every target needs its own suffix. All definitions are expanded
// before the model is touched. The run stops at the first error. afterTable is
// called after each successfully processed table and may be nil.
func (g *Generator) Run(model tabular.Model, targets []Target, afterTable func(table string)) (*util.RunStats, error) {
	stats := &util.RunStats{}
	start := time.Now()
	defer func() { stats.TotalDuration = time.Since(start) }()

	suffixes := make(map[string]string, len(targets))
	defsPerTarget := make([][]Definition, 0, len(targets))
	for _, target := range targets {
		suffix := g.suffix(target)
		if table, ok := suffixes[strings.ToLower(suffix)]; ok {
			return stats, fmt.Errorf("%w %q for tables %s and %s", ErrDuplicateSuffix, suffix, table, target.Table)
		}
		suffixes[strings.ToLower(suffix)] = target.Table

		defs, err := g.definitions(suffix)
		if err != nil {
			return stats, fmt.Errorf("table %s: %w", target.Table, err)
		}
		defsPerTarget = append(defsPerTarget, defs)
	}

	for i, target := range targets {
		defs := defsPerTarget[i]
		logger := g.logger.WithField("table", target.Table).WithField("suffix", g.suffix(target))
		logger.Debugf("adding %d measures", len(defs))

		tableStart := time.Now()
		measures, err := Apply(model, target.Table, defs)
		stats.Tables = append(stats.Tables, target.Table)
		stats.MeasuresPerTable = append(stats.MeasuresPerTable, len(measures))
		stats.ApplyDurations = append(stats.ApplyDurations, time.Since(tableStart).Seconds())
		if err != nil {
			var applyErr *ApplyError
			if errors.As(err, &applyErr) {
				stats.Error = &util.ErrorReport{Table: applyErr.Table, Measure: applyErr.Measure, Err: applyErr.Err}
			}
			logger.WithError(err).Error("generation aborted")
			return stats, err
		}
		for _, m := range measures {
			logger.WithField("measure", m.Name).Debug("measure added")
		}
		logger.Infof("added %d measures", len(measures))
		if afterTable != nil {
			afterTable(target.Table)
		}
	}
	return stats, nil
}
