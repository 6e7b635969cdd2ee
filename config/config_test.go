package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0644))
	return filename
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("suffix", "", "")
	flags.String("source", "", "")
	flags.StringSlice("table", nil, "")
	flags.String("log-level", "info", "")
	flags.Bool("no-progress", false, "")
	return flags
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load("", nil)
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.LogLevel)
		assert.False(t, cfg.Strict)
		assert.Empty(t, cfg.Tables)
	})

	t.Run("File", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
suffix: TS
source: "'Tire Summary'"
tables:
  - BrandSummary
  - RegionSummary
strict: true
`), nil)
		require.NoError(t, err)

		assert.Equal(t, "TS", cfg.Suffix)
		assert.Equal(t, "'Tire Summary'", cfg.Source)
		assert.Equal(t, []string{"BrandSummary", "RegionSummary"}, cfg.Tables)
		assert.True(t, cfg.Strict)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		assert.ErrorContains(t, err, "error reading config file")
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		t.Setenv("TABULARCTL_SUFFIX", "PY")
		t.Setenv("TABULARCTL_TABLES", "A, B")
		cfg, err := Load(writeConfig(t, "suffix: TS\n"), nil)
		require.NoError(t, err)

		assert.Equal(t, "PY", cfg.Suffix)
		assert.Equal(t, []string{"A", "B"}, cfg.Tables)
	})

	t.Run("ChangedFlagsOverrideEnv", func(t *testing.T) {
		t.Setenv("TABULARCTL_SUFFIX", "PY")
		t.Setenv("TABULARCTL_LOG_LEVEL", "warn")
		flags := newFlags()
		require.NoError(t, flags.Parse([]string{"--suffix", "CM", "--table", "X", "--table", "Y", "--no-progress"}))

		cfg, err := Load("", flags)
		require.NoError(t, err)

		assert.Equal(t, "CM", cfg.Suffix)
		assert.Equal(t, []string{"X", "Y"}, cfg.Tables)
		assert.True(t, cfg.NoProgress)
		assert.Equal(t, "warn", cfg.LogLevel)
	})
}
