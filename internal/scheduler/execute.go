package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/logging"
	"github.com/Iron-Ham/cook/internal/plan"
	"github.com/Iron-Ham/cook/internal/session"
)

// execute runs one item through its attempts and records the outcome on
// sess. It never panics and never returns an error: failures become item
// state.
func (s *Scheduler) execute(ctx context.Context, sess *session.Session, log *logging.Logger, idx int, item plan.WorkItem) {
	ilog := log.WithAgent(item.Agent).WithStage(item.Stage.Index)

	s.enter()
	defer s.leave()
	sess.StartItem(idx, s.now())

	maxAttempts := 1 + max(s.cfg.RetryAttempts, 0)
	var (
		result   string
		itemErr  *errors.ItemError
		attempts int
	)
	for attempts < maxAttempts {
		attempts++
		res, err := s.attempt(ctx, item)
		if err == nil {
			result, itemErr = res, nil
			break
		}
		itemErr = errors.NewItemError("execution failed", err).
			WithAgent(item.Agent).
			WithStage(item.Stage.Index).
			WithAttempts(attempts)
		ilog.Warn("attempt failed", "attempt", attempts, "error", err.Error())

		if attempts >= maxAttempts || !errors.IsRetryable(itemErr) || sess.Status() != session.StatusRunning {
			break
		}
		backoff := s.cfg.RetryBackoff * time.Duration(attempts)
		ilog.Info("retrying work item", "next_attempt", attempts+1, "backoff", backoff.String())
		if !sleepCtx(ctx, backoff) {
			break
		}
	}

	if itemErr != nil {
		ilog.Error("work item failed", "attempts", attempts, "error", itemErr.Error())
		sess.FinishItem(idx, "", itemErr, attempts, s.now())
		return
	}
	ilog.Debug("work item completed", "attempts", attempts)
	sess.FinishItem(idx, result, nil, attempts, s.now())
}

// attempt runs the task once under the configured timeout. Cancellation of
// ctx does not reach the task: in-flight work is allowed to finish.
func (s *Scheduler) attempt(ctx context.Context, item plan.WorkItem) (string, error) {
	actx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if s.cfg.AgentTimeout > 0 {
		actx, cancel = context.WithTimeout(actx, s.cfg.AgentTimeout)
	}
	defer cancel()

	type outcome struct {
		result string
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("%w: %v", errors.ErrTaskPanicked, r)}
			}
		}()
		res, err := s.task.Execute(actx, item)
		ch <- outcome{result: res, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
			return "", errors.NewTimeoutError("agent "+item.Agent, s.cfg.AgentTimeout).WithCause(o.err)
		}
		return o.result, o.err
	case <-actx.Done():
		return "", errors.NewTimeoutError("agent "+item.Agent, s.cfg.AgentTimeout).WithCause(actx.Err())
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Scheduler) enter() {
	n := s.active.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (s *Scheduler) leave() {
	s.active.Add(-1)
}
