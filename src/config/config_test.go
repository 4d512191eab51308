package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmledit/src/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[suggest]
max = 5

[vars]
file = "vars.json"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Suggest.Max)
	assert.Equal(t, 2, cfg.Suggest.Depth)
	assert.Equal(t, ".xmledit_workspace", cfg.Workspace.StateFile)
	assert.Equal(t, "vars.json", cfg.Vars.File)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadReportsSyntaxErrors(t *testing.T) {
	path := writeConfig(t, "[log\nlevel = ")
	cfg, err := config.Load(path)
	var parseErr *config.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, path, parseErr.Path)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"[log]\nlevel = \"loud\"\n",
		"[log]\nformat = \"xml\"\n",
		"[workspace]\nstate_file = \"\"\n",
		"[suggest]\ndepth = -1\n",
	}
	for _, content := range cases {
		_, err := config.Load(writeConfig(t, content))
		assert.ErrorIs(t, err, config.ErrInvalid, "config %q", content)
	}
}
