package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/ports"
)

// DefaultLockTTL is how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// TranslatorFunc returns the translator for a language code.
type TranslatorFunc func(lang string) ports.Translator

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager hosts the live sessions of one process. Every session owns its answer store;
// the manager only serialises access per session ID, persists records and rebuilds
// sessions that live in the store but not in memory (another replica, a restart).
// Unused locks are garbage collected by reference counting.
type Manager struct {
	store     ports.SessionStore
	translate TranslatorFunc

	mu    sync.Mutex            // Global lock for the maps
	locks map[string]*lockEntry // Active per-session locks
	live  map[string]*Session

	locker      ports.DistributedLocker // Optional distributed locker
	lockTTL     time.Duration
	sessionOpts []Option
	overrides   []Option // replaced by Reconfigure
	newID       func() string
	logger      *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) ManagerOption {
	return func(m *Manager) { m.locker = locker }
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.lockTTL = ttl }
}

// WithSessionOptions applies opts to every session the manager creates or restores.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.sessionOpts = append(m.sessionOpts, opts...) }
}

// WithIDGenerator replaces the UUID session ID generator.
func WithIDGenerator(fn func() string) ManagerOption {
	return func(m *Manager) { m.newID = fn }
}

// WithManagerLogger configures a logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a session manager backed by store.
func NewManager(store ports.SessionStore, translate TranslatorFunc, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:     store,
		translate: translate,
		locks:     make(map[string]*lockEntry),
		live:      make(map[string]*Session),
		lockTTL:   DefaultLockTTL,
		newID:     uuid.NewString,
		logger:    logging.NewNop(),
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

// Create opens a new session in the given language.
func (m *Manager) Create(ctx context.Context, lang string) (*Session, error) {
	id := m.newID()
	var s *Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		s = New(id, m.translate(lang), m.options()...)
		s.Open(ctx)

		m.mu.Lock()
		m.live[id] = s
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("Session created", "session_id", id, "lang", lang)
	return s, nil
}

// Get returns a live session, restoring it from the store when needed.
// Returns domain.ErrSessionNotFound for unknown IDs.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.lookup(ctx, sessionID)
		return err
	})
	return s, err
}

// Do runs fn on a session while holding its lock.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *Session) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.lookup(ctx, sessionID)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// Delete closes the session and removes it from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		s, ok := m.live[sessionID]
		delete(m.live, sessionID)
		m.mu.Unlock()

		if ok {
			s.Close(ctx)
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Live returns the number of sessions held in memory.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Shutdown stops every pacing timer and forgets the live sessions. Records stay in the
// store; a later Get restores them and reschedules pending reveals.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	live := m.live
	m.live = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range live {
		s.halt()
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// lookup must be called while holding the session lock.
func (m *Manager) lookup(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.live[sessionID]
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	rec, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	s = Restore(rec, m.translate(rec.Language), m.options()...)
	m.mu.Lock()
	m.live[sessionID] = s
	m.mu.Unlock()
	m.logger.Debug("Session restored", "session_id", sessionID, "step", rec.Step)
	return s, nil
}

// Reconfigure replaces the options applied after the construction-time ones. Only
// sessions created or restored afterwards see them.
func (m *Manager) Reconfigure(opts ...Option) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides = slices.Clone(opts)
}

func (m *Manager) options() []Option {
	m.mu.Lock()
	defer m.mu.Unlock()
	opts := append(slices.Clone(m.sessionOpts), m.overrides...)
	return append(opts, WithStore(m.store))
}
