// Package config loads the planner configuration from defaults, an optional
// YAML file, a .env file and PLANNER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Planner modes.
const (
	ModeBasic    = "basic"
	ModeExtended = "extended"
)

// Log levels accepted by log.level.
const (
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PLANNER"

// Config represents the full planner configuration.
type Config struct {
	HTTP            HTTPConfig     `yaml:"http" mapstructure:"http"`
	Storage         StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Planner         PlannerConfig  `yaml:"planner" mapstructure:"planner"`
	Reminder        ReminderConfig `yaml:"reminder" mapstructure:"reminder"`
	Log             LogConfig      `yaml:"log" mapstructure:"log"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Port        int    `yaml:"port" mapstructure:"port"`
	CORSOrigins string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// StorageConfig selects the task repository.
type StorageConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
	Debug  bool   `yaml:"debug" mapstructure:"debug"`
}

// PlannerConfig configures the conversational responder.
type PlannerConfig struct {
	Mode    string        `yaml:"mode" mapstructure:"mode"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Model   string        `yaml:"model" mapstructure:"model"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ReminderConfig configures the reminder scanner.
type ReminderConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// LogConfig configures application logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it. A .env file in the working directory is loaded first when
// present. Environment variables override the file, and the file overrides
// the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// GENAI_API_KEY is the variable name existing deployments already set.
	if err := v.BindEnv("planner.api_key", EnvPrefix+"_PLANNER_API_KEY", "GENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Planner.Mode = strings.ToLower(strings.TrimSpace(cfg.Planner.Mode))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverMemory, DriverSQLite, c.Storage.Driver)
	}

	switch c.Planner.Mode {
	case ModeBasic:
	case ModeExtended:
		if c.Planner.APIKey == "" {
			return errors.New("planner.api_key (or GENAI_API_KEY) is required in extended mode")
		}
	default:
		return fmt.Errorf("planner.mode must be %q or %q, got %q", ModeBasic, ModeExtended, c.Planner.Mode)
	}
	if c.Planner.Timeout <= 0 || c.Planner.Timeout > MaxPlannerTimeout {
		return fmt.Errorf("planner.timeout must be in (0, %s], got %s", MaxPlannerTimeout, c.Planner.Timeout)
	}

	if c.Reminder.Interval <= 0 {
		return fmt.Errorf("reminder.interval must be positive, got %s", c.Reminder.Interval)
	}

	switch c.Log.Level {
	case LogLevelInfo, LogLevelError:
	default:
		return fmt.Errorf("log.level must be %q or %q, got %q", LogLevelInfo, LogLevelError, c.Log.Level)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Planner.APIKey != "" {
		out.Planner.APIKey = "********"
	}
	return &out
}
