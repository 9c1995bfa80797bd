package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// AppName names the plugin in annotations, paths and logs.
const AppName = "ttdl-lunar-calendar"

// Environment overrides.
const (
	EnvLogLevel = "TTDL_LUNAR_CALENDAR_LOG_LEVEL"
	EnvLogFile  = "TTDL_LUNAR_CALENDAR_LOG_FILE"
	EnvDebug    = "TTDL_LUNAR_CALENDAR_DEBUG"
)

// Config holds the plugin configuration.
// Conversion itself is driven by the record's directive tag only.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/ttdl-lunar-calendar/config.yaml,
// falling back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName, "config.yaml")
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv(EnvLogFile); file != "" {
		c.Logging.File = file
	}
	if debug := os.Getenv(EnvDebug); debug != "" {
		if enabled, err := strconv.ParseBool(debug); err == nil {
			c.Logging.DebugMode = enabled
		}
	}
}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// ValidFormats lists the accepted log formats.
var ValidFormats = []string{"json", "text"}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if !contains(ValidLevels, c.Logging.Level) {
		err = multierr.Append(err, fmt.Errorf("invalid log level: %q (valid: %v)", c.Logging.Level, ValidLevels))
	}
	if !contains(ValidFormats, c.Logging.Format) {
		err = multierr.Append(err, fmt.Errorf("invalid log format: %q (valid: %v)", c.Logging.Format, ValidFormats))
	}
	return err
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
