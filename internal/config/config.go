package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete cook configuration
type Config struct {
	Command   CommandConfig   `mapstructure:"command"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

// CommandConfig controls how raw command strings are recognized
type CommandConfig struct {
	// Prefix is the token every command must start with (default: "/cook")
	Prefix string `mapstructure:"prefix"`
}

// SchedulerConfig controls the dispatch loop
type SchedulerConfig struct {
	// MaxConcurrentAgents caps how many work items run in one round (default: 3)
	MaxConcurrentAgents int `mapstructure:"max_concurrent_agents"`
	// AgentTimeout bounds a single attempt of a work item (default: 5m, 0 = disabled)
	AgentTimeout time.Duration `mapstructure:"agent_timeout"`
	// RetryAttempts is the number of extra attempts after a failed one (default: 2)
	RetryAttempts int `mapstructure:"retry_attempts"`
	// RetryBackoff is multiplied by the attempt number before each retry (default: 1s)
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	// EnableParallelExecution forces one item per round when false (default: true)
	EnableParallelExecution bool `mapstructure:"enable_parallel_execution"`
	// ProgressReporting gates per-round progress log lines (default: true)
	ProgressReporting bool `mapstructure:"progress_reporting"`
}

// SessionsConfig controls the in-memory session store
type SessionsConfig struct {
	// TTL is how long a finished session is kept (default: 1h, 0 = forever)
	TTL time.Duration `mapstructure:"ttl"`
	// MaxSessions caps the number of stored sessions (default: 100, 0 = unlimited)
	MaxSessions int `mapstructure:"max_sessions"`
}

// TemplatesConfig controls where execution templates come from
type TemplatesConfig struct {
	// Dir is a directory of *.yaml templates layered over the built-ins
	Dir string `mapstructure:"dir"`
	// Watch reloads Dir when its files change
	Watch bool `mapstructure:"watch"`
}

// ReportConfig controls report rendering
type ReportConfig struct {
	// LogTail is how many trailing session log lines a report includes (default: 10)
	LogTail int `mapstructure:"log_tail"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where cook.log is written; empty means stderr
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// AuditConfig controls the SQLite audit trail
type AuditConfig struct {
	// Enabled records session lifecycle events (default: false)
	Enabled bool `mapstructure:"enabled"`
	// DBPath is the SQLite database file (default: <config dir>/audit.db)
	DBPath string `mapstructure:"db_path"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Command: CommandConfig{
			Prefix: "/cook",
		},
		Scheduler: SchedulerConfig{
			MaxConcurrentAgents:     3,
			AgentTimeout:            5 * time.Minute,
			RetryAttempts:           2,
			RetryBackoff:            time.Second,
			EnableParallelExecution: true,
			ProgressReporting:       true,
		},
		Sessions: SessionsConfig{
			TTL:         time.Hour,
			MaxSessions: 100,
		},
		Templates: TemplatesConfig{
			Dir:   "",
			Watch: false,
		},
		Report: ReportConfig{
			LogTail: 10,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Audit: AuditConfig{
			Enabled: false,
			DBPath:  filepath.Join(ConfigDir(), "audit.db"),
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("command.prefix", defaults.Command.Prefix)

	// Scheduler defaults
	viper.SetDefault("scheduler.max_concurrent_agents", defaults.Scheduler.MaxConcurrentAgents)
	viper.SetDefault("scheduler.agent_timeout", defaults.Scheduler.AgentTimeout)
	viper.SetDefault("scheduler.retry_attempts", defaults.Scheduler.RetryAttempts)
	viper.SetDefault("scheduler.retry_backoff", defaults.Scheduler.RetryBackoff)
	viper.SetDefault("scheduler.enable_parallel_execution", defaults.Scheduler.EnableParallelExecution)
	viper.SetDefault("scheduler.progress_reporting", defaults.Scheduler.ProgressReporting)

	// Session store defaults
	viper.SetDefault("sessions.ttl", defaults.Sessions.TTL)
	viper.SetDefault("sessions.max_sessions", defaults.Sessions.MaxSessions)

	viper.SetDefault("templates.dir", defaults.Templates.Dir)
	viper.SetDefault("templates.watch", defaults.Templates.Watch)

	viper.SetDefault("report.log_tail", defaults.Report.LogTail)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("audit.enabled", defaults.Audit.Enabled)
	viper.SetDefault("audit.db_path", defaults.Audit.DBPath)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cook")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cook"
	}
	return filepath.Join(home, ".config", "cook")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
