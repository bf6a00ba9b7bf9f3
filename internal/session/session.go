package session

import (
	"context"
	"sync"
	"time"

	"pkdindustries/codi/internal/core"
)

// Session owns the turn sequence of one client. Turns are append-only.
type Session struct {
	ID string

	mu      sync.RWMutex
	turns   []core.Turn
	created time.Time
	last    time.Time
	request *core.RequestLock
}

// New creates a session, seeded with the system prompt when one is given.
func New(id, systemPrompt string) *Session {
	now := time.Now()
	s := &Session{
		ID:      id,
		created: now,
		last:    now,
		request: core.NewRequestLock(),
	}
	if systemPrompt != "" {
		s.turns = append(s.turns, core.Turn{Role: core.RoleSystem, Content: systemPrompt})
	}
	return s
}

// Append commits turns to the sequence in a single step.
func (s *Session) Append(turns ...core.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turns...)
	s.last = time.Now()
}

// Turns returns a copy of the full context window.
func (s *Session) Turns() []core.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]core.Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Transcript returns the turns a chat surface displays: user messages and
// assistant replies, in order.
func (s *Session) Transcript() []core.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Turn
	for _, t := range s.turns {
		if t.Role == core.RoleUser || t.IsReply() {
			out = append(out, t)
		}
	}
	return out
}

// touch marks the session as in use.
func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = time.Now()
}

// LastActive is the time the session was last looked up or appended to.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Acquire serializes message processing: one user message at a time.
func (s *Session) Acquire(ctx context.Context) bool {
	return s.request.LockWithContext(ctx)
}

func (s *Session) Release() {
	s.request.Unlock()
}

func (s *Session) busy() bool {
	if !s.request.TryLock() {
		return true
	}
	s.request.Unlock()
	return false
}
