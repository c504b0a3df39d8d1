package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values.
const (
	DefaultPort            = 5000
	DefaultCORSOrigins     = "*"
	DefaultSQLiteDSN       = "file::memory:"
	DefaultModel           = "gemini-2.0-flash"
	DefaultBaseURL         = "https://generativelanguage.googleapis.com"
	DefaultPlannerTimeout  = 20 * time.Second
	DefaultReminderPeriod  = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// MaxPlannerTimeout caps planner.timeout below mono's 30s request-reply
// timeout so a slow generator turns into an error reply before the respond
// call itself times out.
const MaxPlannerTimeout = 25 * time.Second

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:        DefaultPort,
			CORSOrigins: DefaultCORSOrigins,
		},
		Storage: StorageConfig{
			Driver: DriverMemory,
			DSN:    DefaultSQLiteDSN,
		},
		Planner: PlannerConfig{
			Mode:    ModeBasic,
			Model:   DefaultModel,
			BaseURL: DefaultBaseURL,
			Timeout: DefaultPlannerTimeout,
		},
		Reminder: ReminderConfig{
			Interval: DefaultReminderPeriod,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.cors_origins", d.HTTP.CORSOrigins)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.debug", d.Storage.Debug)
	v.SetDefault("planner.mode", d.Planner.Mode)
	v.SetDefault("planner.api_key", d.Planner.APIKey)
	v.SetDefault("planner.model", d.Planner.Model)
	v.SetDefault("planner.base_url", d.Planner.BaseURL)
	v.SetDefault("planner.timeout", d.Planner.Timeout)
	v.SetDefault("reminder.interval", d.Reminder.Interval)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("shutdown_timeout", d.ShutdownTimeout)
}
