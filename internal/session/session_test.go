package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/cook/internal/command"
	"github.com/Iron-Ham/cook/internal/errors"
	"github.com/Iron-Ham/cook/internal/plan"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newSession(id string, agents ...string) *Session {
	items := make([]plan.WorkItem, len(agents))
	for i, a := range agents {
		items[i] = plan.WorkItem{Agent: a, Stage: plan.Stage{After: plan.NoStage}}
	}
	cmd := command.Command{ID: id, RequestType: command.RequestTesting, TaskDescription: "x"}
	return New(cmd, plan.Plan{Items: items})
}

func TestSession_Lifecycle(t *testing.T) {
	s := newSession("s1", "a", "b")
	assert.Equal(t, StatusPending, s.Status())

	require.NoError(t, s.Begin(t0))
	assert.Equal(t, StatusRunning, s.Status())

	err := s.Begin(t0)
	assert.True(t, errors.Is(err, errors.ErrSessionAlreadyStarted), "second Begin should fail, got %v", err)

	s.StartItem(0, t0)
	s.StartItem(1, t0)
	s.FinishItem(0, "ok", nil, 1, t0.Add(time.Second))
	s.FinishItem(1, "", errors.New("boom"), 3, t0.Add(2*time.Second))

	s.SetProgress(50)
	s.SetProgress(20)
	assert.Equal(t, 50, s.Progress(), "progress must not decrease")

	s.Finish(StatusCompleted, nil, t0.Add(3*time.Second))
	select {
	case <-s.Done():
		t.Fatal("Done should stay open until Close")
	default:
	}
	s.Close()
	s.Close()
	select {
	case <-s.Done():
	default:
		t.Fatal("Done should be closed after Close")
	}

	snap := s.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, 3*time.Second, snap.Duration())
	assert.Equal(t, Counts{Total: 2, Completed: 1, Failed: 1}, snap.Counts())
	assert.Equal(t, "ok", snap.Items[0].Result)
	assert.Nil(t, snap.Items[0].Err)
	assert.Empty(t, snap.Items[1].Result)
	assert.EqualError(t, snap.Items[1].Err, "boom")
	assert.Equal(t, 3, snap.Items[1].Attempts)
}

func TestSession_ItemTransitionsOnlyOnce(t *testing.T) {
	s := newSession("s1", "a")
	require.NoError(t, s.Begin(t0))

	s.FinishItem(0, "early", nil, 1, t0)
	assert.Equal(t, ItemPending, s.Snapshot().Items[0].Status, "pending item cannot finish")

	s.StartItem(0, t0)
	s.FinishItem(0, "first", nil, 1, t0)
	s.FinishItem(0, "", errors.New("late"), 2, t0)
	s.StartItem(0, t0)

	it := s.Snapshot().Items[0]
	assert.Equal(t, ItemCompleted, it.Status)
	assert.Equal(t, "first", it.Result)
	assert.Nil(t, it.Err)
}

func TestSession_Cancel(t *testing.T) {
	s := newSession("s1", "a", "b")
	assert.False(t, s.Cancel(t0), "pending session cannot be cancelled")

	require.NoError(t, s.Begin(t0))
	s.SetProgress(40)
	s.StartItem(0, t0)

	assert.True(t, s.Cancel(t0.Add(time.Second)))
	assert.False(t, s.Cancel(t0.Add(time.Second)), "second cancel reports false")
	assert.Equal(t, StatusCancelled, s.Status())

	// In-flight work still records its outcome, progress stays frozen.
	s.FinishItem(0, "done", nil, 1, t0.Add(2*time.Second))
	s.SetProgress(90)
	s.Finish(StatusCompleted, nil, t0.Add(3*time.Second))

	snap := s.Snapshot()
	assert.Equal(t, StatusCancelled, snap.Status)
	assert.Equal(t, 40, snap.Progress)
	assert.Equal(t, ItemCompleted, snap.Items[0].Status)
	assert.Equal(t, ItemPending, snap.Items[1].Status)
	assert.Equal(t, t0.Add(3*time.Second), snap.EndedAt, "end time is stamped when the drain finishes")
	assert.Equal(t, 3*time.Second, snap.Duration())
	assert.False(t, snap.Items[0].EndedAt.After(snap.EndedAt))

	s.Finish(StatusCancelled, nil, t0.Add(time.Minute))
	assert.Equal(t, t0.Add(3*time.Second), s.Snapshot().EndedAt, "end time is set once")
}

func TestSession_SnapshotIsIsolated(t *testing.T) {
	s := newSession("s1", "a")
	require.NoError(t, s.Begin(t0))
	snap := s.Snapshot()

	s.StartItem(0, t0)
	s.Logf(t0, "later line")

	assert.Equal(t, ItemPending, snap.Items[0].Status)
	assert.Len(t, snap.Log, 1)
	assert.Len(t, s.Snapshot().Log, 2)
}

func TestSnapshot_LogTail(t *testing.T) {
	s := newSession("s1", "a")
	for i := 0; i < 5; i++ {
		s.Logf(t0, "line %d", i)
	}
	snap := s.Snapshot()

	tail := snap.LogTail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, "line 3", tail[0].Message)
	assert.Equal(t, "line 4", tail[1].Message)
	assert.Len(t, snap.LogTail(0), 5)
	assert.Len(t, snap.LogTail(50), 5)
	assert.Equal(t, "09:00:00 line 4", tail[1].String())
}
