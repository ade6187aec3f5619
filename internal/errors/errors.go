// Package errors provides centralized error definitions and error handling utilities
// for the cook engine. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors map onto the stages of a /cook invocation:
//   - ParseError: the command string could not be parsed
//   - PlanError: a parsed command could not be turned into work items
//   - ItemError: a single work item failed (recorded, never fatal to a session)
//   - DeadlockError: pending items remain but none can become ready
//   - SessionError: errors related to session lifecycle and lookup
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//
// # Usage
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrMissingTaskDescription) { ... }
//
//	var parseErr *errors.ParseError
//	if errors.As(err, &parseErr) {
//	    fmt.Println(parseErr.Suggestions)
//	}
//
//	if errors.IsRetryable(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Parse-related sentinel errors, one per ParseErrorKind.
var (
	// ErrNotACommand indicates the input does not start with the command prefix.
	ErrNotACommand = New("not a command")
	// ErrMissingRequestType indicates no request type token was found.
	ErrMissingRequestType = New("missing request type")
	// ErrMissingTaskDescription indicates no task description tokens remained.
	ErrMissingTaskDescription = New("missing task description")
	// ErrUnknownOption indicates an unrecognized --flag.
	ErrUnknownOption = New("unknown option")
	// ErrUnknownShortOption indicates an unrecognized -x flag.
	ErrUnknownShortOption = New("unknown short option")
	// ErrInvalidOptionValue indicates a flag value outside its valid set.
	ErrInvalidOptionValue = New("invalid option value")
)

// Plan-related sentinel errors
var (
	// ErrEmptyTemplate indicates a resolved template declares no steps.
	ErrEmptyTemplate = New("template has no steps")
	// ErrNoAgents indicates the options requested zero agents.
	ErrNoAgents = New("no agents requested")
	// ErrTemplateNotFound indicates an explicitly named template does not exist.
	ErrTemplateNotFound = New("template not found")
)

// Scheduling sentinel errors
var (
	// ErrDeadlock indicates pending work items remain but none can become ready.
	ErrDeadlock = New("no work item can make progress")
	// ErrItemFailed indicates a work item exhausted its attempts.
	ErrItemFailed = New("work item failed")
	// ErrTaskPanicked indicates the external task panicked during execution.
	ErrTaskPanicked = New("task panicked")
)

// Session-related sentinel errors
var (
	// ErrSessionNotFound indicates that a session could not be found.
	ErrSessionNotFound = New("session not found")
	// ErrSessionNotRunning indicates that a session is not currently running.
	ErrSessionNotRunning = New("session is not running")
	// ErrSessionAlreadyStarted indicates a session was handed to the scheduler twice.
	ErrSessionAlreadyStarted = New("session already started")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// CookError is the base interface for all errors defined by this package.
type CookError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Parse Errors
// -----------------------------------------------------------------------------

// ParseErrorKind classifies why a command string was rejected.
type ParseErrorKind string

const (
	KindNotACommand            ParseErrorKind = "NotACommand"
	KindMissingRequestType     ParseErrorKind = "MissingRequestType"
	KindMissingTaskDescription ParseErrorKind = "MissingTaskDescription"
	KindUnknownOption          ParseErrorKind = "UnknownOption"
	KindUnknownShortOption     ParseErrorKind = "UnknownShortOption"
	KindInvalidOptionValue     ParseErrorKind = "InvalidOptionValue"
)

// sentinel returns the sentinel error matching the kind.
func (k ParseErrorKind) sentinel() error {
	switch k {
	case KindNotACommand:
		return ErrNotACommand
	case KindMissingRequestType:
		return ErrMissingRequestType
	case KindMissingTaskDescription:
		return ErrMissingTaskDescription
	case KindUnknownOption:
		return ErrUnknownOption
	case KindUnknownShortOption:
		return ErrUnknownShortOption
	case KindInvalidOptionValue:
		return ErrInvalidOptionValue
	default:
		return ErrInvalidInput
	}
}

// ParseError reports a command string that could not be parsed. It is always
// recoverable at the caller and never retried.
//
// Example:
//
//	err := errors.NewParseError(errors.KindInvalidOptionValue, "invalid team").
//	    WithToken("--team").WithValue("huge").WithValid("full", "mini", "custom")
//	fmt.Println(err) // parse error [InvalidOptionValue, token=--team]: invalid team "huge" (valid: full, mini, custom)
type ParseError struct {
	baseError
	Kind        ParseErrorKind
	Token       string
	Value       string
	Valid       []string
	Suggestions []string
}

// NewParseError creates a new ParseError of the given kind.
func NewParseError(kind ParseErrorKind, message string) *ParseError {
	return &ParseError{
		baseError: baseError{
			message:    message,
			cause:      kind.sentinel(),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		Kind: kind,
	}
}

// WithToken records the offending token.
func (e *ParseError) WithToken(token string) *ParseError {
	e.Token = token
	return e
}

// WithValue records the rejected value.
func (e *ParseError) WithValue(value string) *ParseError {
	e.Value = value
	return e
}

// WithValid records the set of accepted values.
func (e *ParseError) WithValid(valid ...string) *ParseError {
	e.Valid = valid
	return e
}

// WithSuggestions records "did you mean" candidates.
func (e *ParseError) WithSuggestions(suggestions ...string) *ParseError {
	e.Suggestions = suggestions
	return e
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	parts := []string{string(e.Kind)}
	if e.Token != "" {
		parts = append(parts, fmt.Sprintf("token=%s", e.Token))
	}

	msg := e.message
	if e.Value != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Value)
	}
	if len(e.Valid) > 0 {
		msg = fmt.Sprintf("%s (valid: %s)", msg, strings.Join(e.Valid, ", "))
	}
	if len(e.Suggestions) > 0 {
		msg = fmt.Sprintf("%s; did you mean: %s", msg, strings.Join(e.Suggestions, ", "))
	}

	return fmt.Sprintf("parse error [%s]: %s", strings.Join(parts, ", "), msg)
}

// Is checks if this error matches the target.
func (e *ParseError) Is(target error) bool {
	if _, ok := target.(*ParseError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Plan Errors
// -----------------------------------------------------------------------------

// PlanError represents a command that validated but could not be expanded into
// work items. Nothing is scheduled when a PlanError is returned.
//
// Example:
//
//	err := errors.NewPlanError("cannot build plan", errors.ErrTemplateNotFound).WithTemplate("api-design")
type PlanError struct {
	baseError
	RequestType string
	Template    string
}

// NewPlanError creates a new PlanError.
func NewPlanError(message string, cause error) *PlanError {
	return &PlanError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithRequestType adds the request type to the error context.
func (e *PlanError) WithRequestType(requestType string) *PlanError {
	e.RequestType = requestType
	return e
}

// WithTemplate adds the template name to the error context.
func (e *PlanError) WithTemplate(name string) *PlanError {
	e.Template = name
	return e
}

// Error returns the formatted error message.
func (e *PlanError) Error() string {
	var parts []string
	if e.RequestType != "" {
		parts = append(parts, fmt.Sprintf("type=%s", e.RequestType))
	}
	if e.Template != "" {
		parts = append(parts, fmt.Sprintf("template=%s", e.Template))
	}

	prefix := "plan error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("plan error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *PlanError) Is(target error) bool {
	if _, ok := target.(*PlanError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Item and Deadlock Errors
// -----------------------------------------------------------------------------

// ItemError represents the failure of a single work item. It is recorded on
// the item and counted in the final tally; it never aborts the session.
type ItemError struct {
	baseError
	Agent    string
	Stage    int
	Attempts int
}

// NewItemError creates a new ItemError. Task errors are opaque, so item
// failures are retryable unless the cause is a cancellation or a panic.
func NewItemError(message string, cause error) *ItemError {
	return &ItemError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  !errors.Is(cause, ErrCanceled) && !errors.Is(cause, ErrTaskPanicked),
			userFacing: true,
		},
		Stage: -1,
	}
}

// WithAgent adds the agent name to the error context.
func (e *ItemError) WithAgent(agent string) *ItemError {
	e.Agent = agent
	return e
}

// WithStage adds the stage index to the error context.
func (e *ItemError) WithStage(stage int) *ItemError {
	e.Stage = stage
	return e
}

// WithAttempts records how many attempts were made.
func (e *ItemError) WithAttempts(n int) *ItemError {
	e.Attempts = n
	return e
}

// Error returns the formatted error message.
func (e *ItemError) Error() string {
	var parts []string
	if e.Agent != "" {
		parts = append(parts, fmt.Sprintf("agent=%s", e.Agent))
	}
	if e.Stage >= 0 {
		parts = append(parts, fmt.Sprintf("stage=%d", e.Stage))
	}
	if e.Attempts > 0 {
		parts = append(parts, fmt.Sprintf("attempts=%d", e.Attempts))
	}

	prefix := "item error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("item error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ItemError) Is(target error) bool {
	if _, ok := target.(*ItemError); ok {
		return true
	}
	if errors.Is(target, ErrItemFailed) {
		return true
	}
	return e.baseError.Is(target)
}

// DeadlockError is raised by the scheduler when pending items remain but none
// of them can become ready. It is fatal to the session.
//
// Example:
//
//	err := errors.NewDeadlockError("sess-1", []string{"api-designer"})
//	fmt.Println(err) // deadlock [session=sess-1]: no work item can make progress (stuck: api-designer)
type DeadlockError struct {
	baseError
	SessionID   string
	StuckAgents []string
}

// NewDeadlockError creates a new DeadlockError naming the stuck agents.
func NewDeadlockError(sessionID string, stuck []string) *DeadlockError {
	return &DeadlockError{
		baseError: baseError{
			message:    ErrDeadlock.Error(),
			cause:      ErrDeadlock,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: true,
		},
		SessionID:   sessionID,
		StuckAgents: stuck,
	}
}

// Error returns the formatted error message.
func (e *DeadlockError) Error() string {
	prefix := "deadlock"
	if e.SessionID != "" {
		prefix = fmt.Sprintf("deadlock [session=%s]", e.SessionID)
	}
	return fmt.Sprintf("%s: %s (stuck: %s)", prefix, e.message, strings.Join(e.StuckAgents, ", "))
}

// Is checks if this error matches the target.
func (e *DeadlockError) Is(target error) bool {
	if _, ok := target.(*DeadlockError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Session Errors
// -----------------------------------------------------------------------------

// SessionError represents errors related to session management.
//
// Example:
//
//	err := errors.NewSessionError("cannot cancel", errors.ErrSessionNotRunning).WithSessionID("abc123")
//	fmt.Println(err) // "session error [session=abc123]: cannot cancel: session is not running"
type SessionError struct {
	baseError
	SessionID string
}

// NewSessionError creates a new SessionError.
func NewSessionError(message string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithSessionID adds a session ID to the error context.
func (e *SessionError) WithSessionID(id string) *SessionError {
	e.SessionID = id
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	prefix := "session error"
	if e.SessionID != "" {
		prefix = fmt.Sprintf("session error [session=%s]", e.SessionID)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SessionError) Is(target error) bool {
	if _, ok := target.(*SessionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("session", "abc123")
//	fmt.Println(err) // "session 'abc123' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("template step has no agent").WithField("sequential[0].agent")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("agent api-designer", 30*time.Second)
//	fmt.Println(err) // "timeout error: agent api-designer (timeout: 30s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing CookError with IsRetryable() returning true
//   - Errors wrapping ErrTimeout
//
// Cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if Is(err, ErrCanceled) {
		return false
	}

	var cookErr CookError
	if As(err, &cookErr) {
		return cookErr.IsRetryable()
	}

	return Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var cookErr CookError
	if As(err, &cookErr) {
		return cookErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement CookError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var cookErr CookError
	if As(err, &cookErr) {
		return cookErr.Severity()
	}

	return SeverityError
}

// IsParseError reports whether err is (or wraps) a ParseError and returns it.
func IsParseError(err error) (*ParseError, bool) {
	var parseErr *ParseError
	if As(err, &parseErr) {
		return parseErr, true
	}
	return nil, false
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this returns nil for a nil error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
