package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/varia"
	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/pkg/adapters/memory"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/ports"
)

// ErrEmptySessionID is returned by Get when no session id is given.
var ErrEmptySessionID = errors.New("session id is required")

// Session is one isolated engine plus the stream of side-effects it requested.
type Session struct {
	ID      string
	Engine  *varia.Engine
	Actions ports.ActionSubscriber
	Created time.Time
}

// Factory builds the session for id.
type Factory func(ctx context.Context, id string) (*Session, error)

// NewFactory returns a Factory whose engines publish side-effects to a per-session in-memory
// bus (exposed as Session.Actions) and, when extra is non-nil, to the dispatcher it builds for the session.
func NewFactory(extra func(sessionID string) ports.ActionDispatcher, opts ...varia.Option) Factory {
	return func(_ context.Context, id string) (*Session, error) {
		bus := memory.NewBus()
		dispatchers := ports.Dispatchers{bus}
		if extra != nil {
			dispatchers = append(dispatchers, extra(id))
		}

		engineOpts := append([]varia.Option{}, opts...)
		engineOpts = append(engineOpts, varia.WithName(id), varia.WithDispatcher(dispatchers))
		return &Session{
			ID:      id,
			Engine:  varia.New(engineOpts...),
			Actions: bus,
			Created: time.Now(),
		}, nil
	}
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the live sessions.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu       sync.Mutex
	locks    map[string]*lockEntry
	sessions map[string]*Session

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

// NewManager creates a new Session Manager.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Session),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()
	return fn(ctx)
}

// Get returns the session, creating it on first access.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	if s, ok := m.Lookup(sessionID); ok {
		return s, nil
	}

	var s *Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if existing, ok := m.Lookup(sessionID); ok {
			s = existing
			return nil
		}
		created, err := m.factory(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to create session %q: %w", sessionID, err)
		}
		m.mu.Lock()
		m.sessions[sessionID] = created
		m.mu.Unlock()
		m.logger.Info("session created", "session_id", sessionID)
		s = created
		return nil
	})
	return s, err
}

// Lookup returns an existing session without creating it.
func (m *Manager) Lookup(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// Close tears the session down. It returns domain.ErrSessionNotFound for unknown ids.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		s, ok := m.sessions[sessionID]
		delete(m.sessions, sessionID)
		m.mu.Unlock()

		if !ok {
			return domain.ErrSessionNotFound
		}
		m.logger.Info("session closed", "session_id", sessionID)
		return s.Engine.Close()
	})
}

// List returns the ids of live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloseAll closes every live session, joining their errors.
func (m *Manager) CloseAll(ctx context.Context) error {
	var errs []error
	for _, id := range m.List() {
		if err := m.Close(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
