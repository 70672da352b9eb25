package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"sheetviz/internal/workspace"
)

// sessions maps a browser cookie to its workspace. Idle entries expire
// after ttl; at most max entries are kept, evicting the least recently
// seen one first.
type sessions struct {
	mu        sync.Mutex
	ttl       time.Duration
	max       int
	now       func() time.Time
	items     map[string]*session
	lastSweep time.Time
}

type session struct {
	ws   *workspace.Workspace
	seen time.Time
}

func newSessions(ttl time.Duration, limit int) *sessions {
	return &sessions{ttl: ttl, max: limit, now: time.Now, items: map[string]*session{}}
}

// lookup returns the live workspace for id without creating one.
func (s *sessions) lookup(id string) (*workspace.Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(id, s.now())
	if sess == nil {
		return nil, false
	}
	return sess.ws, true
}

// get returns the workspace for id, creating a fresh session (and id) when
// id is unknown or expired.
func (s *sessions) get(id string) (*workspace.Workspace, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if sess := s.live(id, now); sess != nil {
		return sess.ws, id
	}

	s.sweep(now)
	if s.max > 0 && len(s.items) >= s.max {
		s.evictOldest()
	}
	id = uuid.NewString()
	sess := &session{ws: workspace.New(), seen: now}
	s.items[id] = sess
	return sess.ws, id
}

// live returns the unexpired session for id and marks it seen.
func (s *sessions) live(id string, now time.Time) *session {
	sess, ok := s.items[id]
	if !ok || id == "" {
		return nil
	}
	if now.Sub(sess.seen) > s.ttl {
		delete(s.items, id)
		return nil
	}
	sess.seen = now
	return sess
}

// sweep drops expired sessions, at most once per sweepInterval.
func (s *sessions) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.sweepInterval() {
		return
	}
	s.lastSweep = now
	for id, sess := range s.items {
		if now.Sub(sess.seen) > s.ttl {
			delete(s.items, id)
		}
	}
}

func (s *sessions) sweepInterval() time.Duration {
	return min(s.ttl, time.Minute)
}

func (s *sessions) evictOldest() {
	var oldest string
	var seen time.Time
	for id, sess := range s.items {
		if oldest == "" || sess.seen.Before(seen) {
			oldest, seen = id, sess.seen
		}
	}
	delete(s.items, oldest)
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
