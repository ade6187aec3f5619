package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finished(t *testing.T, id string, endedAt time.Time) *Session {
	t.Helper()
	s := newSession(id, "a")
	require.NoError(t, s.Begin(endedAt.Add(-time.Second)))
	s.Finish(StatusCompleted, nil, endedAt)
	s.Close()
	return s
}

func running(t *testing.T, id string) *Session {
	t.Helper()
	s := newSession(id, "a")
	require.NoError(t, s.Begin(t0))
	return s
}

func TestStore_PutGetList(t *testing.T) {
	st := NewStore(0, 0, nil)
	st.Put(running(t, "b"))
	st.Put(running(t, "a"))
	st.Put(running(t, "c"))

	s, ok := st.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", s.ID())

	_, ok = st.Get("missing")
	assert.False(t, ok)

	var ids []string
	for _, s := range st.List() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids, "List keeps insertion order")
}

func TestStore_Cancel(t *testing.T) {
	st := NewStore(0, 0, nil)
	st.Put(running(t, "run"))
	st.Put(finished(t, "done", t0))
	st.Put(newSession("pending", "a"))

	assert.True(t, st.Cancel("run"))
	assert.False(t, st.Cancel("run"), "already cancelled")
	assert.False(t, st.Cancel("done"))
	assert.False(t, st.Cancel("pending"))
	assert.False(t, st.Cancel("missing"))
}

func TestStore_Delete(t *testing.T) {
	st := NewStore(0, 0, nil)
	st.Put(running(t, "a"))

	assert.True(t, st.Delete("a"))
	assert.False(t, st.Delete("a"))
	assert.Equal(t, 0, st.Len())
	assert.Empty(t, st.List())
}

func TestStore_TTLPrune(t *testing.T) {
	st := NewStore(time.Hour, 0, nil)
	now := t0.Add(3 * time.Hour)
	st.now = func() time.Time { return now }

	st.Put(finished(t, "old", t0))
	st.Put(finished(t, "fresh", now.Add(-time.Minute)))
	st.Put(running(t, "live"))

	_, ok := st.Get("old")
	assert.False(t, ok, "expired finished session should be pruned on Put")
	assert.Equal(t, 2, st.Len())

	now = now.Add(2 * time.Hour)
	ids := []string{}
	for _, s := range st.List() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"live"}, ids, "running sessions never expire")
	assert.Equal(t, 0, st.Prune(now))
}

func TestStore_CapacityEviction(t *testing.T) {
	st := NewStore(0, 2, nil)

	st.Put(running(t, "r1"))
	st.Put(finished(t, "f1", t0))
	st.Put(running(t, "r2"))

	_, ok := st.Get("f1")
	assert.False(t, ok, "oldest finished session is evicted first")
	assert.Equal(t, 2, st.Len())

	st.Put(running(t, "r3"))
	assert.Equal(t, 3, st.Len(), "running sessions are never evicted, even over capacity")
}

func TestStore_CancelledSessionKeptUntilDrained(t *testing.T) {
	st := NewStore(time.Minute, 1, nil)
	now := t0
	st.now = func() time.Time { return now }

	draining := running(t, "draining")
	draining.StartItem(0, now)
	st.Put(draining)
	require.True(t, st.Cancel("draining"))
	assert.Equal(t, StatusCancelled, draining.Status())

	st.Put(running(t, "next"))
	now = now.Add(time.Hour)
	st.Prune(now)

	_, ok := st.Get("draining")
	assert.True(t, ok, "a cancelled session with running items is neither evicted nor pruned")
	assert.Equal(t, 2, st.Len())

	draining.FinishItem(0, "ok", nil, 1, now)
	draining.Finish(StatusCancelled, nil, now)
	draining.Close()

	st.Put(running(t, "third"))
	_, ok = st.Get("draining")
	assert.False(t, ok, "once drained the cancelled session is evictable")
}
