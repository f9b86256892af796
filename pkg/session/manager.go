package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns session access, ensuring reads and mutations of one session are
// mutually exclusive. It uses Reference Counting to garbage collect unused locks.
//
// No component other than the Manager writes to the store.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	now    func() time.Time
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used to stamp sessions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager on top of the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Load returns the session for key. An absent session is returned as a fresh
// idle session, never as an error.
func (m *Manager) Load(ctx context.Context, key string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		session, err = m.load(ctx, key)
		return err
	})
	return session, err
}

func (m *Manager) load(ctx context.Context, key string) (*domain.Session, error) {
	session, err := m.store.Load(ctx, key)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	return domain.NewSession(key, m.now()), nil
}

// Transact loads the session for key, hands it to fn and persists whatever fn
// returns: idle sessions are removed from the store, all others are saved.
// The whole read-modify-write runs under the session lock.
func (m *Manager) Transact(ctx context.Context, key string, fn func(context.Context, *domain.Session) (*domain.Session, error)) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		current, err := m.load(ctx, key)
		if err != nil {
			return err
		}

		next, err := fn(ctx, current)
		if err != nil {
			return err
		}

		if next.IsIdle() {
			if current.IsIdle() {
				return nil
			}
			m.logger.Debug("session cleared", "session_key", key)
			if err := m.store.Delete(ctx, key); err != nil {
				return fmt.Errorf("failed to clear session %s: %w", key, err)
			}
			return nil
		}

		next.Key = key
		next.UpdatedAt = m.now()
		if err := m.store.Save(ctx, key, next); err != nil {
			return fmt.Errorf("failed to save session %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}
