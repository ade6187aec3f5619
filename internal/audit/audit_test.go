package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/cook/internal/event"
	"github.com/Iron-Ham/cook/internal/session"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "nested", "audit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "audit.db")
	r, err := Open(path, nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// Reopening runs the idempotent migration again.
	r2, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, r2.Close())
}

func TestRecordAndRecent(t *testing.T) {
	r := newTestRecorder(t)
	ctx := context.Background()

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	first, err := r.Record(ctx, Record{SessionID: "s1", Kind: KindStarted, Status: "running", At: at})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = r.Record(ctx, Record{SessionID: "s1", Kind: KindFinished, Status: "completed", Progress: 100, Detail: "done"})
	require.NoError(t, err)
	_, err = r.Record(ctx, Record{SessionID: "s2", Kind: KindStarted})
	require.NoError(t, err)

	recent, err := r.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "s2", recent[0].SessionID, "newest first")
	assert.Equal(t, KindFinished, recent[1].Kind)
	assert.Equal(t, 100, recent[1].Progress)
	assert.Equal(t, "done", recent[1].Detail)

	history, err := r.ForSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.True(t, history[0].At.Equal(at))
}

func TestAttach_RecordsBusEvents(t *testing.T) {
	r := newTestRecorder(t)
	bus := event.NewBus(nil)
	r.Attach(bus)

	bus.Publish(event.NewSessionStartedEvent("s1", `/cook testing "x"`, "testing", "", 5))
	bus.Publish(event.NewSessionProgressEvent("s1", session.Update{
		ProgressPercent: 60, CurrentAgent: "unit-tester", Message: "round 1", Status: session.StatusRunning,
	}))
	bus.Publish(event.NewTemplatesReloadedEvent("/tmp", nil, nil))
	bus.Publish(event.SessionFinishedEvent{SessionID: "s1", Status: "completed", Completed: 5, Duration: time.Second})

	history, err := r.ForSession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 3, "template events are not recorded")

	assert.Equal(t, KindStarted, history[0].Kind)
	assert.Contains(t, history[0].Detail, "(5 items)")
	assert.Equal(t, KindProgress, history[1].Kind)
	assert.Equal(t, 60, history[1].Progress)
	assert.Contains(t, history[1].Detail, "[unit-tester]")
	assert.Equal(t, KindFinished, history[2].Kind)
	assert.Equal(t, 100, history[2].Progress)
	assert.Equal(t, "5 completed, 0 failed in 1s", history[2].Detail)

	r.Detach()
	assert.Equal(t, 0, bus.SubscriptionCount())
	bus.Publish(event.NewSessionStartedEvent("s1", "", "testing", "", 1))
	history, err = r.ForSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestAttach_Twice(t *testing.T) {
	r := newTestRecorder(t)
	a, b := event.NewBus(nil), event.NewBus(nil)
	r.Attach(a)
	r.Attach(b)
	assert.Equal(t, 0, a.SubscriptionCount())
	assert.Equal(t, 1, b.SubscriptionCount())
}
