package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplates(t *testing.T) {
	templates := DefaultTemplates()

	assert.Len(t, templates, 12)
	labels := make(map[string]bool)
	for _, template := range templates {
		assert.False(t, labels[template.Label], "duplicate label %s", template.Label)
		labels[template.Label] = true
		assert.True(t, strings.Contains(template.Formula, TablePlaceholder))
	}
}

func writeTemplateFile(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0644))
	return filename
}

func TestReadTemplateFile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		set, err := ReadTemplateFile(writeTemplateFile(t, `
formatString: "#,0"
templates:
  - label: Units
    formula: SUM({table}[UNITS])
  - label: Margin Per Unit
    formula: DIVIDE(SUM({table}[MARGIN]), [Units_{suffix}], 0)
`))
		require.NoError(t, err)

		assert.Equal(t, "#,0", set.FormatString)
		assert.Equal(t, []MeasureTemplate{
			{Label: "Units", Formula: "SUM({table}[UNITS])"},
			{Label: "Margin Per Unit", Formula: "DIVIDE(SUM({table}[MARGIN]), [Units_{suffix}], 0)"},
		}, set.Templates)
	})

	t.Run("DefaultFormatString", func(t *testing.T) {
		set, err := ReadTemplateFile(writeTemplateFile(t, `
templates:
  - label: Units
    formula: SUM({table}[UNITS])
`))
		require.NoError(t, err)

		assert.Equal(t, DefaultFormatString, set.FormatString)
	})

	t.Run("NoTemplates", func(t *testing.T) {
		_, err := ReadTemplateFile(writeTemplateFile(t, "formatString: \"0\"\n"))
		assert.ErrorContains(t, err, "contains no templates")
	})

	t.Run("InvalidYaml", func(t *testing.T) {
		_, err := ReadTemplateFile(writeTemplateFile(t, "templates: [\n"))
		assert.ErrorContains(t, err, "error while parsing template file")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := ReadTemplateFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
