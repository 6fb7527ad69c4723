// Package config loads repdoc settings from defaults, an optional YAML file,
// REPDOC_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"
)

const envPrefix = "REPDOC_"

// FlagKeys maps command-line flag names to configuration keys. Only flags
// the user actually set override the file and environment.
var FlagKeys = map[string]string{
	"output":                "output_dir",
	"db":                    "db_path",
	"warning-collaborators": "warning_collaborators",
	"web":                   "sync.enabled",
	"theme":                 "ui.theme",
	"addr":                  "serve.addr",
}

// Load reads the YAML file at path (if it exists), overlays REPDOC_*
// environment variables and then any changed flags in fs. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(defaultsProvider{}, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// REPDOC_OUTPUT_DIR -> output_dir, REPDOC_LOG__LEVEL -> log.level.
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if fs != nil {
		if err := loadFlags(k, fs); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.OutputDir, "repdoc.db")
	}
	return cfg, nil
}

// defaultsProvider feeds DefaultConfig into koanf as YAML so that later
// layers replace list values instead of merging into them.
type defaultsProvider struct{}

func (defaultsProvider) ReadBytes() ([]byte, error) {
	return yamlv3.Marshal(DefaultConfig())
}

func (defaultsProvider) Read() (map[string]any, error) {
	return nil, errors.New("defaults provider does not support Read")
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func loadFlags(k *koanf.Koanf, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := FlagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		var val any = f.Value.String()
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			val = sv.GetSlice()
		}
		if setErr := k.Set(key, val); setErr != nil {
			err = fmt.Errorf("applying flag --%s: %w", f.Name, setErr)
		}
	})
	return err
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	if c.WarningCollaborators < 0 {
		return fmt.Errorf("warning_collaborators must be non-negative")
	}
	if c.Sync.Enabled {
		if c.Sync.Command == "" {
			return fmt.Errorf("sync.command is required when sync is enabled")
		}
		if c.Sync.Target == "" {
			return fmt.Errorf("sync.target is required when sync is enabled")
		}
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr is required")
	}
	return nil
}

// IsBlocked reports whether course is closed to changes.
func (c *Config) IsBlocked(course string) bool {
	return slices.Contains(c.Courses.Blocked, course)
}
