package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "rsync", cfg.Sync.Command)
	assert.False(t, cfg.Sync.Enabled)
	assert.True(t, cfg.IsBlocked("2024-2025"))
	assert.False(t, cfg.IsBlocked("2025-2026"))
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, "Reparto Docente FTA", cfg.Report.Title)
	assert.Equal(t, filepath.Join(".", "repdoc.db"), cfg.DBPath)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	original := DefaultConfig()
	original.OutputDir = "web"
	original.Courses.Blocked = []string{"2023-2024"}
	original.WarningCollaborators = 12.5
	original.Sync.Enabled = true
	original.Sync.Target = "host:public_html/repdoc"
	require.NoError(t, original.Save(path))

	loaded, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "web", loaded.OutputDir)
	assert.Equal(t, []string{"2023-2024"}, loaded.Courses.Blocked)
	assert.Equal(t, 12.5, loaded.WarningCollaborators)
	assert.True(t, loaded.Sync.Enabled)
	assert.Equal(t, "host:public_html/repdoc", loaded.Sync.Target)
	assert.Equal(t, filepath.Join("web", "repdoc.db"), loaded.DBPath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("output_dir: fromfile\nlog:\n  level: warn\n"), 0644))

	t.Setenv("REPDOC_OUTPUT_DIR", "fromenv")
	t.Setenv("REPDOC_LOG__LEVEL", "debug")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ChangedFlagsWin(t *testing.T) {
	t.Setenv("REPDOC_OUTPUT_DIR", "fromenv")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("output", ".", "")
	fs.Bool("web", false, "")
	fs.Float64("warning-collaborators", 0, "")
	fs.String("theme", "repdoc", "")
	require.NoError(t, fs.Parse([]string{"--output", "fromflag", "--web", "--warning-collaborators", "9"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "fromflag", cfg.OutputDir)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 9.0, cfg.WarningCollaborators)
	assert.Equal(t, "repdoc", cfg.UI.Theme, "unchanged flags keep the configured value")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"negative warning", func(c *Config) { c.WarningCollaborators = -1 }, "warning_collaborators"},
		{"sync without target", func(c *Config) { c.Sync.Enabled = true; c.Sync.Target = "" }, "sync.target"},
		{"empty addr", func(c *Config) { c.Serve.Addr = "" }, "serve.addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileListReplacesDefaultList(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("courses:\n  blocked:\n    - 2019-2020\n"), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2019-2020"}, cfg.Courses.Blocked)
}
