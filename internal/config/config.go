// Package config loads the blockkit YAML configuration shared by the CLI
// commands and the preview server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AuthorTokenEnv overrides the configured author token when set.
const AuthorTokenEnv = "BLOCKKIT_AUTHOR_TOKEN"

const (
	DefaultListen     = "127.0.0.1:8088"
	DefaultModulesDir = "modules"
)

// Config is the root configuration document.
type Config struct {
	ModulesDir string `yaml:"modules_dir"`
	// Database is an optional sqlite path. When set, modules are read from
	// the database instead of ModulesDir.
	Database        string    `yaml:"database"`
	Listen          string    `yaml:"listen"`
	Log             LogConfig `yaml:"log"`
	AuthorToken     string    `yaml:"author_token"`
	CompactOverride *bool     `yaml:"compact_override"` // nil = per module
	Metrics         *bool     `yaml:"metrics"`
	// TemplatesDir optionally overrides the bundled placeholder and page
	// templates, file by file.
	TemplatesDir string `yaml:"templates_dir"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// MetricsEnabled reports whether the /metrics endpoint and render counters
// are enabled. Unset means enabled.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path and applies defaults. An empty path
// yields the defaults; a missing file is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if token := os.Getenv(AuthorTokenEnv); token != "" {
		cfg.AuthorToken = token
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used as given.
func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log.format %q must be text or json", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("config: log.level %q is not a known level", c.Log.Level))
	}
	return errors.Join(errs...)
}

func applyDefaults(cfg *Config) {
	if cfg.ModulesDir == "" && cfg.Database == "" {
		cfg.ModulesDir = DefaultModulesDir
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
