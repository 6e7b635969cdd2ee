package data

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Placeholders recognized in formula patterns.
const (
	TablePlaceholder  = "{table}"
	SuffixPlaceholder = "{suffix}"
)

// DefaultFormatString is applied to every generated measure unless a template
// set overrides it.
const DefaultFormatString = "0.00"

type MeasureTemplate struct {
	Label   string `yaml:"label"`
	Formula string `yaml:"formula"`
}

// TemplateSet is the content of a template file.
type TemplateSet struct {
	FormatString string            `yaml:"formatString"`
	Templates    []MeasureTemplate `yaml:"templates"`
}

type Parameters struct {
	VariableSuffix string
	SourceTableRef string
}

// DefaultTemplates returns the built-in per tire margin and PAR measures.
func DefaultTemplates() []MeasureTemplate {
	return []MeasureTemplate{
		{Label: "CM Margin Per Tire", Formula: "DIVIDE(SUM({table}[CM_Margin]), SUM({table}[CM_Billed_Sales]), 0)"},
		{Label: "CM SOP CM Per Tire", Formula: "DIVIDE(SUM({table}[CM_SOP_CM_AMT]), SUM({table}[CM_SOP_UNITS]), 0)"},
		{Label: "CM AOP CM Per Tire", Formula: "DIVIDE(SUM({table}[CM_AOP_CM_AMT]), SUM({table}[CM_AOP_UNITS]), 0)"},
		{Label: "CMPY Margin Per Tire", Formula: "DIVIDE(SUM({table}[CMPY_Margin]), SUM({table}[CMPY_Billed_Sales]), 0)"},
		{Label: "PM Margin Per Tire", Formula: "DIVIDE(SUM({table}[PM_Margin]), SUM({table}[PM_Billed_SALES]), 0)"},
		{Label: "PM AOP CM Per Tire", Formula: "DIVIDE(SUM({table}[PM_AOP_CM_AMT]), SUM({table}[PM_AOP_UNITS]), 0)"},
		{Label: "PY Margin Per Tire", Formula: "DIVIDE(SUM({table}[PY_Collectible_Margin]), SUM({table}[PY_Billed_Sales]), 0)"},
		{Label: "SOP CM Per Tire", Formula: "DIVIDE(SUM({table}[SOP_CM_AMT]), SUM({table}[SOP_UNITS]), 0)"},
		{Label: "AOP CM Per Tire", Formula: "DIVIDE(SUM({table}[AOP_CM_AMT]), SUM({table}[AOP_UNITS]), 0)"},
		{Label: "YTD Margin Per Tire", Formula: "DIVIDE(SUM({table}[YTD_Margin]), SUM({table}[YTD_Billed_Sales]), 0)"},
		{Label: "MTD Unit PAR", Formula: "DIVIDE(SUM({table}[CM_BILLED_SALES]), SUM({table}[CM_SOP_UNITS]), 0)"},
		{Label: "Ship + Shippable Par", Formula: "DIVIDE(SUM({table}[SHIPPED___SHIPPABLE]), SUM({table}[CM_SOP_UNITS]), 0)"},
	}
}

// DefaultTemplateSet wraps DefaultTemplates with the default format string.
func DefaultTemplateSet() TemplateSet {
	return TemplateSet{
		FormatString: DefaultFormatString,
		Templates:    DefaultTemplates(),
	}
}

// ReadTemplateFile reads a template set in YAML form. A missing format string
// falls back to DefaultFormatString.
func ReadTemplateFile(filename string) (*TemplateSet, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	set := TemplateSet{}
	if err := yaml.Unmarshal(file, &set); err != nil {
		return nil, fmt.Errorf("error while parsing template file %s: %w", filename, err)
	}
	if len(set.Templates) == 0 {
		return nil, fmt.Errorf("template file %s contains no templates", filename)
	}
	if set.FormatString == "" {
		set.FormatString = DefaultFormatString
	}
	return &set, nil
}
