package session

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is an in-memory session store.
// Sessions do not survive a process restart; use it for development and
// tests, or single-instance deployments where that is acceptable.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Get retrieves a session by its token.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrExpired
	}

	out := *sess
	out.Values = maps.Clone(sess.Values)
	return &out, nil
}

// Save persists the session, creating or replacing it. The store keeps a
// snapshot, so later mutations of the caller's session are not visible until
// the next Save. This mirrors how serializing backends behave.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	snapshot := *s
	snapshot.Values = maps.Clone(s.Values)
	snapshot.dirty = false
	snapshot.isNew = false

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = &snapshot
	return nil
}

// Delete removes a session by its token.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
