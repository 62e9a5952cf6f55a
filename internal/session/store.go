package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps one Session per browser for the web front end. Sessions live
// only in memory and are dropped after a period of inactivity.
type Store struct {
	newSession func() *Session
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*storeEntry
}

type storeEntry struct {
	session  *Session
	lastUsed time.Time
}

// NewStore creates a store that builds sessions with newSession.
func NewStore(newSession func() *Session, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		newSession: newSession,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*storeEntry),
	}
}

// Get returns the session for id, creating a fresh one under a new id when
// id is unknown or malformed. The returned id is the one to hand back to
// the client.
func (s *Store) Get(id string) (*Session, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if e, ok := s.sessions[id]; ok {
			e.lastUsed = s.now()
			return e.session, id
		}
	}

	id = uuid.NewString()
	sess := s.newSession()
	s.sessions[id] = &storeEntry{session: sess, lastUsed: s.now()}
	s.logger.Debug("session created", "session_id", id)
	return sess, id
}

// Lookup returns the session for id without creating one. Read-only
// requests use it so that cookie-less clients do not fill the store.
func (s *Store) Lookup(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = s.now()
	return e.session, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than maxIdle. Sessions with a
// resolution in flight are kept.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) && !e.session.Loading() {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(maxIdle); n > 0 {
				s.logger.Info("swept idle sessions", "removed", n, "remaining", s.Len())
			}
		}
	}
}
