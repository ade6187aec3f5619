package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// ParseError Tests
// -----------------------------------------------------------------------------

func TestParseError_IsSentinel(t *testing.T) {
	tests := []struct {
		kind     ParseErrorKind
		sentinel error
	}{
		{KindNotACommand, ErrNotACommand},
		{KindMissingRequestType, ErrMissingRequestType},
		{KindMissingTaskDescription, ErrMissingTaskDescription},
		{KindUnknownOption, ErrUnknownOption},
		{KindUnknownShortOption, ErrUnknownShortOption},
		{KindInvalidOptionValue, ErrInvalidOptionValue},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := NewParseError(tt.kind, "boom")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", err, tt.sentinel)
			}
			wrapped := fmt.Errorf("outer: %w", err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped error lost sentinel %v", tt.sentinel)
			}
			if err.IsRetryable() {
				t.Error("parse errors must never be retryable")
			}
		})
	}
}

func TestParseError_Error(t *testing.T) {
	err := NewParseError(KindInvalidOptionValue, "invalid team").
		WithToken("--team").
		WithValue("huge").
		WithValid("full", "mini", "custom")

	want := `parse error [InvalidOptionValue, token=--team]: invalid team "huge" (valid: full, mini, custom)`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = NewParseError(KindUnknownOption, "unknown option").WithToken("--paralel").WithSuggestions("parallel")
	if !strings.Contains(err.Error(), "did you mean: parallel") {
		t.Errorf("Error() = %q, want suggestion text", err.Error())
	}
}

func TestIsParseError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewParseError(KindNotACommand, "x"))
	pe, ok := IsParseError(err)
	if !ok || pe.Kind != KindNotACommand {
		t.Errorf("IsParseError() = %v, %v; want NotACommand, true", pe, ok)
	}
	if _, ok := IsParseError(New("plain")); ok {
		t.Error("IsParseError(plain) = true, want false")
	}
}

// -----------------------------------------------------------------------------
// Plan / Item / Deadlock Tests
// -----------------------------------------------------------------------------

func TestPlanError_Error(t *testing.T) {
	err := NewPlanError("cannot build plan", ErrTemplateNotFound).WithTemplate("api-design")
	want := "plan error [template=api-design]: cannot build plan: template not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Error("PlanError should match its cause")
	}
}

func TestItemError(t *testing.T) {
	err := NewItemError("execution failed", New("exit 1")).WithAgent("api-designer").WithStage(2).WithAttempts(3)

	want := "item error [agent=api-designer, stage=2, attempts=3]: execution failed: exit 1"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrItemFailed) {
		t.Error("ItemError should match ErrItemFailed")
	}
	if !err.IsRetryable() {
		t.Error("ItemError should be retryable by default")
	}

	canceled := NewItemError("execution failed", ErrCanceled)
	if canceled.IsRetryable() {
		t.Error("canceled ItemError should not be retryable")
	}
}

func TestDeadlockError(t *testing.T) {
	err := NewDeadlockError("sess-1", []string{"api-designer", "data-modeler"})

	want := "deadlock [session=sess-1]: no work item can make progress (stuck: api-designer, data-modeler)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrDeadlock) {
		t.Error("DeadlockError should match ErrDeadlock")
	}
	if GetSeverity(err) != SeverityCritical {
		t.Errorf("GetSeverity() = %v, want critical", GetSeverity(err))
	}
}

func TestSessionError_Error(t *testing.T) {
	err := NewSessionError("cannot cancel", ErrSessionNotRunning).WithSessionID("abc123")
	want := "session error [session=abc123]: cannot cancel: session is not running"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var target *SessionError
	if !errors.As(fmt.Errorf("x: %w", err), &target) {
		t.Error("errors.As should find SessionError")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("session", "abc123")
	if got := err.Error(); got != "session 'abc123' not found" {
		t.Errorf("Error() = %q", got)
	}
	err = err.WithCause(ErrSessionNotFound)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Error("NotFoundError should match its cause")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("step has no agent").WithField("sequential[0].agent").WithValue("")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if !strings.Contains(err.Error(), "field=sequential[0].agent") {
		t.Errorf("Error() = %q, want field context", err.Error())
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("agent api-designer", 30*time.Second)
	want := "timeout error: agent api-designer (timeout: 30s)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", New("x"), false},
		{"timeout sentinel", ErrTimeout, true},
		{"timeout error", NewTimeoutError("op", time.Second), true},
		{"item error", NewItemError("failed", New("x")), true},
		{"item error from panic", NewItemError("failed", Wrap(ErrTaskPanicked, "boom")), false},
		{"item error from timeout", NewItemError("failed", NewTimeoutError("op", time.Second)), true},
		{"parse error", NewParseError(KindNotACommand, "x"), false},
		{"canceled", Wrap(ErrCanceled, "stop"), false},
		{"deadlock", NewDeadlockError("s", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if IsUserFacing(New("internal")) {
		t.Error("plain errors are not user facing")
	}
	if !IsUserFacing(NewParseError(KindMissingRequestType, "x")) {
		t.Error("parse errors are user facing")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	err := Wrapf(ErrNoAgents, "session %s", "s1")
	if err.Error() != "session s1: no agents requested" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
	if !errors.Is(err, ErrNoAgents) {
		t.Error("Wrapf should preserve the chain")
	}
}
