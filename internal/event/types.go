package event

import (
	"time"

	"github.com/Iron-Ham/cook/internal/session"
)

// Event type identifiers, "category.action".
const (
	TypeSessionStarted    = "session.started"
	TypeSessionProgress   = "session.progress"
	TypeSessionFinished   = "session.finished"
	TypeTemplatesReloaded = "templates.reloaded"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Session Lifecycle Events
// -----------------------------------------------------------------------------

// SessionStartedEvent is emitted once a session has been handed to the scheduler.
type SessionStartedEvent struct {
	baseEvent
	SessionID   string
	Input       string // Raw command text
	RequestType string
	Template    string // Empty when the default role set was used
	Items       int
}

// NewSessionStartedEvent creates a SessionStartedEvent.
func NewSessionStartedEvent(sessionID, input, requestType, template string, items int) SessionStartedEvent {
	return SessionStartedEvent{
		baseEvent:   newBaseEvent(TypeSessionStarted),
		SessionID:   sessionID,
		Input:       input,
		RequestType: requestType,
		Template:    template,
		Items:       items,
	}
}

// SessionProgressEvent carries one scheduler progress update.
type SessionProgressEvent struct {
	baseEvent
	SessionID       string
	ProgressPercent int
	CurrentAgent    string
	Message         string
	Status          string
}

// NewSessionProgressEvent creates a SessionProgressEvent from a scheduler update.
func NewSessionProgressEvent(sessionID string, u session.Update) SessionProgressEvent {
	ts := u.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return SessionProgressEvent{
		baseEvent:       baseEvent{eventType: TypeSessionProgress, timestamp: ts},
		SessionID:       sessionID,
		ProgressPercent: u.ProgressPercent,
		CurrentAgent:    u.CurrentAgent,
		Message:         u.Message,
		Status:          string(u.Status),
	}
}

// SessionFinishedEvent is emitted when a session reaches a terminal status.
type SessionFinishedEvent struct {
	baseEvent
	SessionID string
	Status    string
	Completed int
	Failed    int
	Duration  time.Duration
	Err       string // Session-level error, e.g. a deadlock
}

// NewSessionFinishedEvent creates a SessionFinishedEvent from a final snapshot.
func NewSessionFinishedEvent(snap session.Snapshot) SessionFinishedEvent {
	counts := snap.Counts()
	e := SessionFinishedEvent{
		baseEvent: newBaseEvent(TypeSessionFinished),
		SessionID: snap.ID,
		Status:    string(snap.Status),
		Completed: counts.Completed,
		Failed:    counts.Failed,
		Duration:  snap.Duration(),
	}
	if snap.Err != nil {
		e.Err = snap.Err.Error()
	}
	return e
}

// -----------------------------------------------------------------------------
// Template Events
// -----------------------------------------------------------------------------

// TemplatesReloadedEvent is emitted after a template directory is re-read.
type TemplatesReloadedEvent struct {
	baseEvent
	Dir   string
	Names []string
	Err   error // Non-nil if the reload failed and the previous set was kept
}

// NewTemplatesReloadedEvent creates a TemplatesReloadedEvent.
func NewTemplatesReloadedEvent(dir string, names []string, err error) TemplatesReloadedEvent {
	return TemplatesReloadedEvent{
		baseEvent: newBaseEvent(TypeTemplatesReloaded),
		Dir:       dir,
		Names:     names,
		Err:       err,
	}
}
