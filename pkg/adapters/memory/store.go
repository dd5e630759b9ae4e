package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/helpcar/quotechat/pkg/domain"
)

type entry struct {
	record    *domain.SessionRecord
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Store implements ports.SessionStore in process memory. Records idle for longer than
// the TTL are dropped the next time they are read or listed.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Store)

// WithTTL expires a record ttl after its last save. Zero keeps records until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithNow replaces the wall clock used for expiry.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save keeps a deep copy of the record and restarts its TTL.
func (s *Store) Save(ctx context.Context, sessionID string, record *domain.SessionRecord) error {
	e := entry{record: record.Clone()}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[sessionID] = e
	return nil
}

// Load returns a copy so callers cannot mutate the stored record.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if ok && e.expired(s.now()) {
		delete(s.entries, sessionID)
		ok = false
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return e.record.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// List returns the live session IDs in lexical order, sweeping expired ones.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ids := make([]string, 0, len(s.entries))
	for id, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Len reports how many records are held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
