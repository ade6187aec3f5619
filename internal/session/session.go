// Package session holds the live execution record of one command and an
// in-memory registry of them.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/Iron-Ham/cook/internal/command"
	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/plan"
)

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ItemStatus is the lifecycle state of a single work item.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemRunning   ItemStatus = "running"
	ItemCompleted ItemStatus = "completed"
	ItemFailed    ItemStatus = "failed"
)

// IsTerminal reports whether the item has finished.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemCompleted || s == ItemFailed
}

// Item is a WorkItem plus its execution state. Result and Err are
// mutually exclusive and set once, on the terminal transition.
type Item struct {
	plan.WorkItem
	Status    ItemStatus
	StartedAt time.Time
	EndedAt   time.Time
	Result    string
	Err       error
	Attempts  int
}

// LogEntry is one timestamped line of the session log.
type LogEntry struct {
	Time    time.Time
	Message string
}

// String formats the entry as "15:04:05 message".
func (e LogEntry) String() string {
	return e.Time.Format("15:04:05") + " " + e.Message
}

// Update is one progress notification pushed to progress sinks.
type Update struct {
	ProgressPercent int
	CurrentAgent    string // Agents dispatched in the current round, comma separated
	Message         string
	Status          Status
	Timestamp       time.Time
}

// Session is the execution record for one Command. While running it is
// mutated only by the scheduler; everyone else reads it through Snapshot.
type Session struct {
	mu sync.RWMutex

	id       string
	cmd      command.Command
	template string
	items    []Item
	status   Status
	progress int
	started  time.Time
	ended    time.Time
	log      []LogEntry
	err      error

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a pending Session for cmd executing p.
func New(cmd command.Command, p plan.Plan) *Session {
	items := make([]Item, len(p.Items))
	for i, wi := range p.Items {
		items[i] = Item{WorkItem: wi, Status: ItemPending}
	}
	return &Session{
		id:       cmd.ID,
		cmd:      cmd,
		template: p.Template,
		items:    items,
		status:   StatusPending,
		done:     make(chan struct{}),
	}
}

// ID returns the session id, which equals the command id.
func (s *Session) ID() string { return s.id }

// Command returns the command this session runs.
func (s *Session) Command() command.Command { return s.cmd }

// Done is closed exactly once, after the scheduler has stopped working on
// the session and its status is terminal.
func (s *Session) Done() <-chan struct{} { return s.done }

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Progress returns the current progress percentage.
func (s *Session) Progress() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Len returns the number of work items.
func (s *Session) Len() int {
	return len(s.items)
}

// Cancel marks a running session cancelled and reports whether it did.
// Cancellation is cooperative: it stops further dispatch rounds but items
// already running are allowed to finish and record their result.
func (s *Session) Cancel(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning {
		return false
	}
	s.status = StatusCancelled
	s.appendLocked(now, "cancel requested; no further rounds will be dispatched")
	return true
}

// -----------------------------------------------------------------------------
// Scheduler-side mutators
// -----------------------------------------------------------------------------

// Begin moves a pending session to running.
func (s *Session) Begin(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPending {
		return errors.NewSessionError("cannot start session", errors.ErrSessionAlreadyStarted).
			WithSessionID(s.id)
	}
	s.status = StatusRunning
	s.started = now
	s.appendLocked(now, fmt.Sprintf("session started with %d work items", len(s.items)))
	return nil
}

// StartItem marks item i running. It is a no-op unless the item is pending.
func (s *Session) StartItem(i int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items[i].Status != ItemPending {
		return
	}
	s.items[i].Status = ItemRunning
	s.items[i].StartedAt = now
}

// FinishItem records the terminal state of item i. A nil err means success.
// It is a no-op unless the item is running.
func (s *Session) FinishItem(i int, result string, err error, attempts int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := &s.items[i]
	if it.Status != ItemRunning {
		return
	}
	it.EndedAt = now
	it.Attempts = attempts
	if err != nil {
		it.Status = ItemFailed
		it.Err = err
		s.appendLocked(now, fmt.Sprintf("%s failed: %v", it.Agent, err))
		return
	}
	it.Status = ItemCompleted
	it.Result = result
}

// SetProgress raises the progress percentage. Values below the current
// one, and any change outside the running state, are ignored.
func (s *Session) SetProgress(pct int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning || pct <= s.progress {
		return
	}
	s.progress = min(pct, 100)
}

// Logf appends a formatted line to the session log.
func (s *Session) Logf(now time.Time, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(now, fmt.Sprintf(format, args...))
}

func (s *Session) appendLocked(now time.Time, msg string) {
	s.log = append(s.log, LogEntry{Time: now, Message: msg})
}

// Finish moves the session to a terminal status and stamps its end time.
// A session already cancelled keeps its status but gets its end time here,
// once the last round has drained. Completing sets progress to 100.
func (s *Session) Finish(status Status, err error, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.IsTerminal() {
		if s.status == StatusCancelled && s.ended.IsZero() {
			s.ended = now
			s.appendLocked(now, "session cancelled")
		}
		return
	}
	s.status = status
	s.ended = now
	s.err = err
	if status == StatusCompleted {
		s.progress = 100
	}
	s.appendLocked(now, fmt.Sprintf("session %s", status))
}

// Close closes the Done channel. It is safe to call more than once.
func (s *Session) Close() {
	s.doneOnce.Do(func() { close(s.done) })
}

// drained reports whether Done has been closed.
func (s *Session) drained() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Snapshots
// -----------------------------------------------------------------------------

// Snapshot is an immutable copy of a Session at one point in time.
type Snapshot struct {
	ID        string
	Command   command.Command
	Template  string
	Status    Status
	Progress  int
	StartedAt time.Time
	EndedAt   time.Time
	Items     []Item
	Log       []LogEntry
	Err       error
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	log := make([]LogEntry, len(s.log))
	copy(log, s.log)

	return Snapshot{
		ID:        s.id,
		Command:   s.cmd,
		Template:  s.template,
		Status:    s.status,
		Progress:  s.progress,
		StartedAt: s.started,
		EndedAt:   s.ended,
		Items:     items,
		Log:       log,
		Err:       s.err,
	}
}

// Counts tallies items by status.
type Counts struct {
	Total     int
	Pending   int
	Running   int
	Completed int
	Failed    int
}

// Finished returns the number of items in a terminal state.
func (c Counts) Finished() int {
	return c.Completed + c.Failed
}

// Counts tallies the snapshot's items by status.
func (s Snapshot) Counts() Counts {
	c := Counts{Total: len(s.Items)}
	for _, it := range s.Items {
		switch it.Status {
		case ItemPending:
			c.Pending++
		case ItemRunning:
			c.Running++
		case ItemCompleted:
			c.Completed++
		case ItemFailed:
			c.Failed++
		}
	}
	return c
}

// Duration returns the wall-clock time between start and end, or until
// now for a session that has not ended.
func (s Snapshot) Duration() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.EndedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// LogTail returns the last n log entries.
func (s Snapshot) LogTail(n int) []LogEntry {
	if n <= 0 || n >= len(s.Log) {
		return s.Log
	}
	return s.Log[len(s.Log)-n:]
}
