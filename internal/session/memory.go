package session

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/cinemate/internal/metrics"
	"go.uber.org/zap"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Entries expire after ttl of
// inactivity; a janitor goroutine removes them.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewMemoryStore creates an in-memory store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

func (m *MemoryStore) expiry() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

// Get returns a copy of the stored session
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return nil, ErrNotFound
	}
	return e.session.Clone(), nil
}

// Create stores a copy of s unless a live session with the same ID exists
func (m *MemoryStore) Create(_ context.Context, s *Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[s.ID]; ok && !m.expired(e) {
		return false, nil
	}
	m.sessions[s.ID] = memoryEntry{session: s.Clone(), expiresAt: m.expiry()}
	return true, nil
}

// Save stores a copy of s and refreshes its expiry
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry{session: s.Clone(), expiresAt: m.expiry()}
	return nil
}

// Delete removes the session; deleting an unknown session is not an error
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Ping always succeeds
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close drops every session
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartJanitor removes expired sessions every interval until ctx is cancelled.
func (m *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				m.logger.Debug("session_janitor_swept", zap.Int("expired", n))
			}
			metrics.ActiveSessions.Set(float64(m.Len()))
		}
	}
}

// sweep deletes expired sessions and returns how many were removed
func (m *MemoryStore) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
