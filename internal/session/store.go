package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store keeps live sessions keyed by id. Sessions are never shared between
// keys; an idle session is discarded after ttl.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	prompt   string
	ttl      time.Duration
}

func NewStore(systemPrompt string, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		prompt:   systemPrompt,
		ttl:      ttl,
	}
}

// Create starts a new session under a fresh id.
func (st *Store) Create() *Session {
	return st.GetOrCreate(uuid.NewString())
}

// Get returns the session for id, if it is still alive. A session handed
// out is marked active so the reaper leaves it for another ttl.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.touch()
	}
	return s, ok
}

// GetOrCreate returns the session for id, creating it if needed.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		s.touch()
		return s
	}
	s := New(id, st.prompt)
	st.sessions[id] = s
	zap.S().Debugw("session_created", "session", id)
	return s
}

// Delete ends a session; its turns are discarded.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; ok {
		delete(st.sessions, id)
		zap.S().Debugw("session_deleted", "session", id)
	}
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Reap removes sessions idle for longer than ttl. Sessions processing a
// message are kept. Returns the number of sessions removed.
func (st *Store) Reap(now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	reaped := 0
	for id, s := range st.sessions {
		if now.Sub(s.LastActive()) > st.ttl && !s.busy() {
			delete(st.sessions, id)
			reaped++
		}
	}
	return reaped
}

// StartReaper runs Reap every interval until ctx is done.
func (st *Store) StartReaper(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := st.Reap(now); n > 0 {
					zap.S().Infow("Reaped idle sessions", "count", n, "remaining", st.Len())
				}
			}
		}
	}()
}
