package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager runs the session lifecycle on top of a Store and serializes
// read-modify-write cycles per session.
type Manager struct {
	store  Store
	locks  *keyedMutex
	now    func() time.Time
	logger *zap.Logger
}

// NewManager creates a manager over store
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		locks:  newKeyedMutex(),
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the wall clock; used by tests
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Now returns the manager's current time
func (m *Manager) Now() time.Time {
	return m.now()
}

// Store returns the underlying store
func (m *Manager) Store() Store {
	return m.store
}

// Ensure returns the session with id, initializing it with empty collections
// on first access. Further calls return the existing session untouched.
func (m *Manager) Ensure(ctx context.Context, id, domain string) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh := New(id, domain, m.now().UTC())
	created, err := m.store.Create(ctx, fresh)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost a race with a concurrent first access
		return m.store.Get(ctx, id)
	}
	m.logger.Debug("session_initialized", zap.String("session_id", id), zap.String("domain", domain))
	return fresh, nil
}

// Start allocates a new session ID and initializes the session
func (m *Manager) Start(ctx context.Context, domain string) (*Session, error) {
	return m.Ensure(ctx, uuid.NewString(), domain)
}

// Get returns the session or ErrNotFound
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Update loads the session, applies fn and saves the result while holding the
// session's lock. When fn returns an error nothing is saved.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return s, nil
}

// End tears the session down
func (m *Manager) End(ctx context.Context, id string) error {
	unlock := m.locks.Lock(id)
	defer unlock()

	if _, err := m.store.Get(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Debug("session_ended", zap.String("session_id", id))
	return nil
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds or waits for it
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock locks key and returns the matching unlock function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
