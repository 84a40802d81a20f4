// Package store keeps one inventory snapshot per session. Snapshots are
// immutable; every write publishes a new one, so a reader that captured a
// snapshot always sees a dataset and rate that belong together.
package store

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/inventory/schema"
	"inventory-workers/internal/models"
)

// DefaultSession is used when a caller does not name a session.
const DefaultSession = "default"

// DefaultRate is the BS/USD rate applied until a privileged caller sets one.
const DefaultRate = 54.50

type Snapshot struct {
	Session  string
	Dataset  *models.InventoryDataset
	Rate     float64
	Domain   schema.Domain
	Version  uint64
	LoadedAt time.Time
	RateAt   time.Time
}

// IsLoaded reports whether a dataset has been ingested into this snapshot.
func (s *Snapshot) IsLoaded() bool {
	return s != nil && s.Dataset != nil
}

type Store struct {
	mu             sync.RWMutex
	sessions       map[string]*Snapshot
	defaultRate    float64
	defaultSession string
	now            func() time.Time
}

type Option func(*Store)

// WithDefaultSession names the session used when a caller leaves it empty.
func WithDefaultSession(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.defaultSession = name
		}
	}
}

func New(defaultRate float64, opts ...Option) *Store {
	if defaultRate <= 0 || math.IsNaN(defaultRate) || math.IsInf(defaultRate, 0) {
		defaultRate = DefaultRate
	}
	s := &Store{
		sessions:       make(map[string]*Snapshot),
		defaultRate:    defaultRate,
		defaultSession: DefaultSession,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) sessionKey(session string) string {
	if session == "" {
		return s.defaultSession
	}
	return session
}

// Snapshot returns the current snapshot. A session that was never written
// yields an empty snapshot carrying the default rate.
func (s *Store) Snapshot(session string) *Snapshot {
	key := s.sessionKey(session)
	s.mu.RLock()
	snap, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return snap
	}
	return &Snapshot{Session: key, Rate: s.defaultRate}
}

func (s *Store) IsLoaded(session string) bool {
	return s.Snapshot(session).IsLoaded()
}

// Load replaces the session's dataset wholesale. The rate is kept.
func (s *Store) Load(session string, ds *models.InventoryDataset, domain schema.Domain) *Snapshot {
	key := s.sessionKey(session)
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current(key)
	next.Dataset = ds
	next.Domain = domain
	next.LoadedAt = s.now()
	next.Version++
	s.sessions[key] = next
	return next
}

// SetRate publishes a new rate. Non-positive, NaN and infinite values are rejected.
func (s *Store) SetRate(session string, rate float64) (*Snapshot, error) {
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}
	key := s.sessionKey(session)
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current(key)
	next.Rate = rate
	next.RateAt = s.now()
	next.Version++
	s.sessions[key] = next
	return next, nil
}

// Drop forgets a session.
func (s *Store) Drop(session string) {
	s.mu.Lock()
	delete(s.sessions, s.sessionKey(session))
	s.mu.Unlock()
}

// Sessions lists known session keys, sorted.
func (s *Store) Sessions() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.sessions))
	for k := range s.sessions {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// current returns a copy of the stored snapshot; caller holds the write lock.
func (s *Store) current(key string) *Snapshot {
	if snap, ok := s.sessions[key]; ok {
		cp := *snap
		return &cp
	}
	return &Snapshot{Session: key, Rate: s.defaultRate}
}

// ValidateRate checks that rate is a finite positive number.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return errors.NewValidationError(fmt.Sprintf("exchange rate must be a positive number, got %v", rate))
	}
	return nil
}
