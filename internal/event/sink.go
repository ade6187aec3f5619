package event

import "github.com/Iron-Ham/cook/internal/session"

// BusSink forwards scheduler progress updates onto a Bus as
// SessionProgressEvents.
type BusSink struct {
	bus *Bus
}

// NewBusSink returns a progress sink publishing to bus.
func NewBusSink(bus *Bus) *BusSink {
	return &BusSink{bus: bus}
}

// OnUpdate implements the scheduler's progress sink contract.
func (s *BusSink) OnUpdate(sessionID string, u session.Update) {
	s.bus.Publish(NewSessionProgressEvent(sessionID, u))
}
