package config

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scheduler.max_concurrent_agents")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// maxRetryAttempts bounds scheduler.retry_attempts
const maxRetryAttempts = 10

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateCommand()...)
	errors = append(errors, c.validateScheduler()...)
	errors = append(errors, c.validateSessions()...)
	errors = append(errors, c.validateReport()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateCommand() []ValidationError {
	var errors []ValidationError

	if c.Command.Prefix == "" {
		errors = append(errors, ValidationError{
			Field:   "command.prefix",
			Value:   c.Command.Prefix,
			Message: "must not be empty",
		})
	} else if strings.ContainsFunc(c.Command.Prefix, unicode.IsSpace) {
		errors = append(errors, ValidationError{
			Field:   "command.prefix",
			Value:   c.Command.Prefix,
			Message: "must not contain whitespace",
		})
	}

	return errors
}

func (c *Config) validateScheduler() []ValidationError {
	var errors []ValidationError
	s := c.Scheduler

	if s.MaxConcurrentAgents < 1 {
		errors = append(errors, ValidationError{
			Field:   "scheduler.max_concurrent_agents",
			Value:   s.MaxConcurrentAgents,
			Message: "must be at least 1",
		})
	}

	if s.AgentTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "scheduler.agent_timeout",
			Value:   s.AgentTimeout,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	if s.RetryAttempts < 0 || s.RetryAttempts > maxRetryAttempts {
		errors = append(errors, ValidationError{
			Field:   "scheduler.retry_attempts",
			Value:   s.RetryAttempts,
			Message: fmt.Sprintf("must be between 0 and %d", maxRetryAttempts),
		})
	}

	if s.RetryBackoff < 0 {
		errors = append(errors, ValidationError{
			Field:   "scheduler.retry_backoff",
			Value:   s.RetryBackoff,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateSessions() []ValidationError {
	var errors []ValidationError

	if c.Sessions.TTL < 0 {
		errors = append(errors, ValidationError{
			Field:   "sessions.ttl",
			Value:   c.Sessions.TTL,
			Message: "must be non-negative (0 keeps sessions forever)",
		})
	}

	if c.Sessions.MaxSessions < 0 {
		errors = append(errors, ValidationError{
			Field:   "sessions.max_sessions",
			Value:   c.Sessions.MaxSessions,
			Message: "must be non-negative (0 means unlimited)",
		})
	}

	return errors
}

func (c *Config) validateReport() []ValidationError {
	if c.Report.LogTail < 1 {
		return []ValidationError{{
			Field:   "report.log_tail",
			Value:   c.Report.LogTail,
			Message: "must be at least 1",
		}}
	}
	return nil
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
