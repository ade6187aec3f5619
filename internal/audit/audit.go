// Package audit keeps a SQLite history of session lifecycle events.
//
// The recorder subscribes to the event bus and appends one row per
// session start, progress update and finish. Rows are never updated; the
// table is history, not a job queue.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Iron-Ham/cook/internal/event"
	"github.com/Iron-Ham/cook/internal/logging"
)

// Kind identifies what a Record describes.
type Kind string

const (
	KindStarted  Kind = "started"
	KindProgress Kind = "progress"
	KindFinished Kind = "finished"
)

// Record is one row of the audit trail.
type Record struct {
	ID        string
	SessionID string
	Kind      Kind
	Status    string
	Progress  int
	Detail    string
	At        time.Time
}

// Recorder writes Records to a SQLite database.
type Recorder struct {
	db     *sql.DB
	logger *logging.Logger

	mu    sync.Mutex
	bus   *event.Bus
	subID string
}

// Open opens (creating if needed) the database at dbPath and migrates it.
func Open(dbPath string, logger *logging.Logger) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	r := &Recorder{db: db, logger: logging.OrNop(logger)}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}
	return r, nil
}

func (r *Recorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_events (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT,
		progress INTEGER NOT NULL DEFAULT 0,
		detail TEXT,
		at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_session_events_session_id ON session_events(session_id);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Attach subscribes the recorder to every event on bus. Attaching again
// moves the subscription.
func (r *Recorder) Attach(bus *event.Bus) {
	r.Detach()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bus = bus
	r.subID = bus.SubscribeAll(r.handle)
}

// Detach removes the bus subscription, if any.
func (r *Recorder) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bus != nil {
		r.bus.Unsubscribe(r.subID)
		r.bus, r.subID = nil, ""
	}
}

// Close detaches and closes the database.
func (r *Recorder) Close() error {
	r.Detach()
	return r.db.Close()
}

func (r *Recorder) handle(e event.Event) {
	rec, ok := recordFor(e)
	if !ok {
		return
	}
	if _, err := r.Record(context.Background(), rec); err != nil {
		r.logger.Warn("failed to write audit record",
			"session_id", rec.SessionID,
			"kind", string(rec.Kind),
			"error", err.Error())
	}
}

// recordFor maps a bus event to a Record. Events unrelated to sessions
// are skipped.
func recordFor(e event.Event) (Record, bool) {
	switch ev := e.(type) {
	case event.SessionStartedEvent:
		detail := fmt.Sprintf("%s (%d items)", ev.Input, ev.Items)
		if ev.Template != "" {
			detail += ", template " + ev.Template
		}
		return Record{SessionID: ev.SessionID, Kind: KindStarted, Status: "running", Detail: detail, At: ev.Timestamp()}, true
	case event.SessionProgressEvent:
		detail := ev.Message
		if ev.CurrentAgent != "" {
			detail += " [" + ev.CurrentAgent + "]"
		}
		return Record{
			SessionID: ev.SessionID,
			Kind:      KindProgress,
			Status:    ev.Status,
			Progress:  ev.ProgressPercent,
			Detail:    detail,
			At:        ev.Timestamp(),
		}, true
	case event.SessionFinishedEvent:
		detail := fmt.Sprintf("%d completed, %d failed in %s", ev.Completed, ev.Failed, ev.Duration.Round(time.Millisecond))
		if ev.Err != "" {
			detail += ": " + ev.Err
		}
		progress := 0
		if ev.Status == "completed" {
			progress = 100
		}
		return Record{SessionID: ev.SessionID, Kind: KindFinished, Status: ev.Status, Progress: progress, Detail: detail, At: ev.Timestamp()}, true
	}
	return Record{}, false
}

// Record appends rec, filling in its ID and time when unset.
func (r *Recorder) Record(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	rec.At = rec.At.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_events (id, session_id, kind, status, progress, detail, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, string(rec.Kind), rec.Status, rec.Progress, rec.Detail, rec.At,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert audit record: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(ctx,
		`SELECT id, session_id, kind, status, progress, detail, at FROM session_events ORDER BY rowid DESC LIMIT ?`,
		limit)
}

// ForSession returns every record of one session, oldest first.
func (r *Recorder) ForSession(ctx context.Context, sessionID string) ([]Record, error) {
	return r.query(ctx,
		`SELECT id, session_id, kind, status, progress, detail, at FROM session_events WHERE session_id = ? ORDER BY rowid ASC`,
		sessionID)
}

func (r *Recorder) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var kind string
		var status, detail sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SessionID, &kind, &status, &rec.Progress, &detail, &rec.At); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Kind = Kind(kind)
		rec.Status = status.String
		rec.Detail = detail.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
