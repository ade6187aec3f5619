package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default config should be valid, got errors: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty prefix", func(c *Config) { c.Command.Prefix = "" }, "command.prefix"},
		{"prefix with space", func(c *Config) { c.Command.Prefix = "/co ok" }, "command.prefix"},
		{"zero concurrency", func(c *Config) { c.Scheduler.MaxConcurrentAgents = 0 }, "scheduler.max_concurrent_agents"},
		{"negative timeout", func(c *Config) { c.Scheduler.AgentTimeout = -time.Second }, "scheduler.agent_timeout"},
		{"negative retries", func(c *Config) { c.Scheduler.RetryAttempts = -1 }, "scheduler.retry_attempts"},
		{"too many retries", func(c *Config) { c.Scheduler.RetryAttempts = 11 }, "scheduler.retry_attempts"},
		{"negative backoff", func(c *Config) { c.Scheduler.RetryBackoff = -time.Millisecond }, "scheduler.retry_backoff"},
		{"negative ttl", func(c *Config) { c.Sessions.TTL = -time.Minute }, "sessions.ttl"},
		{"negative max sessions", func(c *Config) { c.Sessions.MaxSessions = -1 }, "sessions.max_sessions"},
		{"zero log tail", func(c *Config) { c.Report.LogTail = 0 }, "report.log_tail"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"huge log size", func(c *Config) { c.Logging.MaxSizeMB = 5000 }, "logging.max_size_mb"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -2 }, "logging.max_backups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("Validate() field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestConfig_Validate_ZeroValuesAllowed(t *testing.T) {
	cfg := Default()
	cfg.Scheduler.AgentTimeout = 0
	cfg.Scheduler.RetryAttempts = 0
	cfg.Sessions.TTL = 0
	cfg.Sessions.MaxSessions = 0
	cfg.Logging.Level = "DEBUG"

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("zero values should be valid, got: %v", errs)
	}
}
