package session

import (
	"sync"
	"time"

	"github.com/Iron-Ham/cook/internal/logging"
)

// Store is an in-memory registry of sessions keyed by id.
//
// Finished sessions older than the TTL are pruned on every Put and List.
// When more than MaxSessions are held, the oldest finished sessions are
// evicted first. A session counts as finished only once its Done channel is
// closed: a cancelled session whose last round is still draining stays, so
// the cap can be exceeded while many sessions run at once.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	order    []string // insertion order

	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	logger      *logging.Logger
}

// NewStore creates a Store. A zero ttl keeps finished sessions forever and
// a zero maxSessions means no cap.
func NewStore(ttl time.Duration, maxSessions int, logger *logging.Logger) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
		logger:      logging.OrNop(logger),
	}
}

// Put registers s, replacing any session with the same id.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.sessions[s.ID()]; !exists {
		st.order = append(st.order, s.ID())
	}
	st.sessions[s.ID()] = s

	st.pruneLocked(st.now())
	st.evictLocked()
}

// Get returns the session with the given id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// List returns all sessions in the order they were added.
func (st *Store) List() []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.pruneLocked(st.now())
	out := make([]*Session, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, st.sessions[id])
	}
	return out
}

// Len returns the number of stored sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Cancel cancels the session with the given id. It returns true only if
// the session exists and was running. See Session.Cancel for semantics.
func (st *Store) Cancel(id string) bool {
	s, ok := st.Get(id)
	if !ok {
		return false
	}
	return s.Cancel(st.now())
}

// Delete removes a session regardless of its status.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.removeLocked(id)
}

// Prune removes finished sessions that ended more than the TTL before now
// and returns how many were removed.
func (st *Store) Prune(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.pruneLocked(now)
}

func (st *Store) pruneLocked(now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}
	var expired []string
	for _, id := range st.order {
		s := st.sessions[id]
		if !s.drained() {
			continue
		}
		if ended := s.Snapshot().EndedAt; !ended.IsZero() && now.Sub(ended) > st.ttl {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		st.removeLocked(id)
	}
	if len(expired) > 0 {
		st.logger.Debug("pruned expired sessions", "count", len(expired))
	}
	return len(expired)
}

func (st *Store) evictLocked() {
	if st.maxSessions <= 0 {
		return
	}
	for len(st.sessions) > st.maxSessions {
		victim := ""
		for _, id := range st.order {
			if st.sessions[id].drained() {
				victim = id
				break
			}
		}
		if victim == "" {
			st.logger.Warn("session store over capacity with no finished sessions to evict",
				"sessions", len(st.sessions),
				"max_sessions", st.maxSessions)
			return
		}
		st.removeLocked(victim)
		st.logger.Debug("evicted session", "session_id", victim)
	}
}

func (st *Store) removeLocked(id string) bool {
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	for i, oid := range st.order {
		if oid == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	return true
}
