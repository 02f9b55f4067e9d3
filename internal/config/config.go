// Package config loads formflow settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvBackendURL = "FORMFLOW_BACKEND_URL"
	EnvListenAddr = "FORMFLOW_LISTEN_ADDR"
	EnvLogLevel   = "FORMFLOW_LOG_LEVEL"
	EnvLogFormat  = "FORMFLOW_LOG_FORMAT"
	EnvDevDB      = "FORMFLOW_DEV_DB"
	EnvDevAddr    = "FORMFLOW_DEV_ADDR"
	EnvTheme      = "FORMFLOW_THEME"
)

// Config is the resolved runtime configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Web     WebConfig     `yaml:"web"`
	Dev     DevConfig     `yaml:"dev"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig points the client at the form backend.
type BackendConfig struct {
	URL string `yaml:"url"`
}

// WebConfig controls the browser UI.
type WebConfig struct {
	Addr    string `yaml:"addr"`
	Theme   string `yaml:"theme"`
	Variant string `yaml:"variant"`
}

// DevConfig controls the reference development backend.
type DevConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{URL: "http://127.0.0.1:8000"},
		Web:     WebConfig{Addr: ":8080", Theme: "default"},
		Dev:     DevConfig{Addr: ":8000", Database: "formflow-dev.db"},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// Load resolves configuration: defaults, then the YAML file at path (when
// non-empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode merges YAML data into cfg. Keys absent from data keep their value.
func Decode(data []byte, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: target is nil")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	set := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	set(EnvBackendURL, &c.Backend.URL)
	set(EnvListenAddr, &c.Web.Addr)
	set(EnvTheme, &c.Web.Theme)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvLogFormat, &c.Log.Format)
	set(EnvDevDB, &c.Dev.Database)
	set(EnvDevAddr, &c.Dev.Addr)
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	var errs []error
	parsed, err := url.Parse(c.Backend.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("config: backend.url %q must be an absolute URL", c.Backend.URL))
	}
	if strings.TrimSpace(c.Web.Addr) == "" {
		errs = append(errs, errors.New("config: web.addr is required"))
	}
	if strings.TrimSpace(c.Dev.Addr) == "" {
		errs = append(errs, errors.New("config: dev.addr is required"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("config: log.format %q must be json or console", c.Log.Format))
	}
	return errors.Join(errs...)
}
