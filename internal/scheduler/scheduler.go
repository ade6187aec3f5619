// Package scheduler runs a session's work items in bounded, stage-ordered
// rounds.
//
// Each round dispatches up to the concurrency limit of ready items and
// waits for all of them before readiness is computed again. An item is
// ready when it is pending and every item of its predecessor stage has
// finished. If items remain pending but none is ready the session fails
// with a DeadlockError instead of spinning.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/cook/internal/config"
	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/logging"
	"github.com/Iron-Ham/cook/internal/plan"
	"github.com/Iron-Ham/cook/internal/session"
)

// Task performs the work of one agent. Implementations should honor ctx,
// which carries the per-attempt timeout; the scheduler stops waiting when
// it expires even if Execute does not return.
type Task interface {
	Execute(ctx context.Context, item plan.WorkItem) (string, error)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context, item plan.WorkItem) (string, error)

// Execute calls f.
func (f TaskFunc) Execute(ctx context.Context, item plan.WorkItem) (string, error) {
	return f(ctx, item)
}

// ProgressSink receives progress updates. Delivery is at-least-once and
// happens on the scheduler goroutine.
type ProgressSink interface {
	OnUpdate(sessionID string, u session.Update)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(sessionID string, u session.Update)

// OnUpdate calls f.
func (f SinkFunc) OnUpdate(sessionID string, u session.Update) {
	f(sessionID, u)
}

// Scheduler drives sessions to completion. One Scheduler may run many
// sessions concurrently; the concurrency limit applies per session.
type Scheduler struct {
	task   Task
	cfg    config.SchedulerConfig
	logger *logging.Logger
	sinks  []ProgressSink
	now    func() time.Time

	active atomic.Int64
	peak   atomic.Int64
}

// New creates a Scheduler executing items with task.
func New(task Task, cfg config.SchedulerConfig, logger *logging.Logger, sinks ...ProgressSink) *Scheduler {
	return &Scheduler{
		task:   task,
		cfg:    cfg,
		logger: logging.OrNop(logger),
		sinks:  sinks,
		now:    time.Now,
	}
}

// Limit returns the effective number of items dispatched per round.
func (s *Scheduler) Limit() int {
	if !s.cfg.EnableParallelExecution {
		return 1
	}
	return max(s.cfg.MaxConcurrentAgents, 1)
}

// ActiveItems returns the number of items executing right now, across all
// sessions.
func (s *Scheduler) ActiveItems() int {
	return int(s.active.Load())
}

// PeakConcurrency returns the highest ActiveItems value observed.
func (s *Scheduler) PeakConcurrency() int {
	return int(s.peak.Load())
}

// Run executes sess synchronously. It returns a DeadlockError if the plan
// cannot make progress, or an error if sess was already started. Item
// failures are recorded on the session and never returned.
//
// Cancelling ctx has the same effect as cancelling the session: the
// current round drains and no further rounds are dispatched.
func (s *Scheduler) Run(ctx context.Context, sess *session.Session) error {
	if err := sess.Begin(s.now()); err != nil {
		return err
	}
	return s.loop(ctx, sess)
}

// Start begins executing sess in the background. Use sess.Done() to wait
// for it.
func (s *Scheduler) Start(ctx context.Context, sess *session.Session) error {
	if err := sess.Begin(s.now()); err != nil {
		return err
	}
	go func() {
		_ = s.loop(ctx, sess)
	}()
	return nil
}

func (s *Scheduler) loop(ctx context.Context, sess *session.Session) error {
	defer sess.Close()

	log := s.logger.WithSession(sess.ID())
	total := sess.Len()
	limit := s.Limit()

	log.Info("session started", "items", total, "max_concurrent", limit)
	s.emit(sess, session.Update{
		Message: fmt.Sprintf("session started with %d work items", total),
		Status:  session.StatusRunning,
	})

	for round := 1; ; round++ {
		if ctx.Err() != nil && sess.Cancel(s.now()) {
			log.Info("context done, session cancelled", "reason", ctx.Err().Error())
		}
		if sess.Status() == session.StatusCancelled {
			return s.finish(sess, log, session.StatusCancelled, nil)
		}

		snap := sess.Snapshot()
		if snap.Counts().Finished() == total {
			return s.finish(sess, log, session.StatusCompleted, nil)
		}

		ready := readyItems(snap.Items)
		if len(ready) == 0 {
			stuck := pendingAgents(snap.Items)
			derr := errors.NewDeadlockError(sess.ID(), stuck)
			sess.Logf(s.now(), "deadlock: no work item can make progress (stuck: %s)", strings.Join(stuck, ", "))
			log.Error("deadlock detected", "stuck", strings.Join(stuck, ","))
			return s.finish(sess, log, session.StatusFailed, derr)
		}

		batch := ready[:min(len(ready), limit)]
		s.runRound(ctx, sess, log, round, snap.Items, batch)

		finished := sess.Snapshot().Counts().Finished()
		sess.SetProgress(progressPercent(finished, total))
		if s.cfg.ProgressReporting {
			sess.Logf(s.now(), "round %d complete: %d/%d items finished", round, finished, total)
			log.Info("round complete", "round", round, "finished", finished, "total", total)
		}
		s.emit(sess, session.Update{
			ProgressPercent: sess.Progress(),
			Message:         fmt.Sprintf("round %d complete: %d/%d items finished", round, finished, total),
			Status:          sess.Status(),
		})
	}
}

func (s *Scheduler) runRound(ctx context.Context, sess *session.Session, log *logging.Logger, round int, items []session.Item, batch []int) {
	agents := make([]string, len(batch))
	for i, idx := range batch {
		agents[i] = items[idx].Agent
	}
	current := strings.Join(agents, ", ")

	if s.cfg.ProgressReporting {
		sess.Logf(s.now(), "round %d: dispatching %s", round, current)
		log.Info("dispatching round", "round", round, "agents", current)
	}
	s.emit(sess, session.Update{
		ProgressPercent: sess.Progress(),
		CurrentAgent:    current,
		Message:         fmt.Sprintf("round %d: dispatching %d item(s)", round, len(batch)),
		Status:          sess.Status(),
	})

	p := pool.New().WithMaxGoroutines(len(batch))
	for _, idx := range batch {
		item := items[idx].WorkItem
		p.Go(func() {
			s.execute(ctx, sess, log, idx, item)
		})
	}
	p.Wait()
}

func (s *Scheduler) finish(sess *session.Session, log *logging.Logger, status session.Status, err error) error {
	sess.Finish(status, err, s.now())

	snap := sess.Snapshot()
	counts := snap.Counts()
	log.Info("session finished",
		"status", string(snap.Status),
		"completed", counts.Completed,
		"failed", counts.Failed,
		"pending", counts.Pending,
		"duration", snap.Duration().String())
	s.emit(sess, session.Update{
		ProgressPercent: snap.Progress,
		Message:         fmt.Sprintf("session %s: %d completed, %d failed", snap.Status, counts.Completed, counts.Failed),
		Status:          snap.Status,
	})
	return err
}

func (s *Scheduler) emit(sess *session.Session, u session.Update) {
	if u.Timestamp.IsZero() {
		u.Timestamp = s.now()
	}
	for _, sink := range s.sinks {
		s.safeNotify(sink, sess.ID(), u)
	}
}

func (s *Scheduler) safeNotify(sink ProgressSink, id string, u session.Update) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("progress sink panicked", "session_id", id, "panic", fmt.Sprint(r))
		}
	}()
	sink.OnUpdate(id, u)
}

// progressPercent rounds finished/total to a percentage, capped at 99 so
// that only a completed session reports 100.
func progressPercent(finished, total int) int {
	if total == 0 {
		return 0
	}
	pct := (200*finished + total) / (2 * total)
	return min(pct, 99)
}
