// Package hierarchy holds the in-memory Property -> Unit -> SubUnit tree.
//
// Every mutation commits to local memory synchronously and returns; the
// matching remote write runs afterwards as a fire-and-forget task. Local state
// is what callers read. The remote store is a best-effort mirror: failed
// writes are recorded in LastError and never rolled back or retried.
//
// Entities start Pending with a temporary ID. A Unit or SubUnit is only
// created remotely when its parent is already Synced; when the remote create
// succeeds the temporary ID is replaced in place with the backend ID.
// Children added under a still-Pending parent stay local-only until the next
// full hydration.
package hierarchy

import (
	"context"
	"sort"
	"sync"
	"time"

	"rental-manager/internal/idgen"
	"rental-manager/internal/logging"
	"rental-manager/internal/models"

	"github.com/sirupsen/logrus"
)

const maxErrorHistory = 50

// Store is the hierarchy store. The zero value is not usable; call New.
type Store struct {
	gw      Gateway
	ids     idgen.Generator
	log     *logrus.Entry
	now     func() time.Time
	metrics MetricsRecorder
	baseCtx context.Context
	timeout time.Duration

	mu         sync.RWMutex
	properties []models.Property
	selected   map[string]struct{}
	inflight   int
	synced     bool
	lastError  string
	errs       []string
	// creating holds temporary ids whose remote create is in flight;
	// true once the node was deleted locally
	creating map[string]bool

	tasks sync.WaitGroup
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator replaces the temporary ID generator
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// WithLogger sets the logger entry
func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Store) { s.metrics = m }
}

// WithContext sets the context fire-and-forget remote tasks run under
func WithContext(ctx context.Context) Option {
	return func(s *Store) { s.baseCtx = ctx }
}

// WithRemoteTimeout bounds every remote call. Zero means no bound.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithProperties seeds the store, e.g. with demo data
func WithProperties(props []models.Property) Option {
	return func(s *Store) {
		s.properties = make([]models.Property, len(props))
		for i := range props {
			s.properties[i] = props[i].Clone()
		}
	}
}

// New creates a store. gw may be nil, in which case the store is local-only.
func New(gw Gateway, opts ...Option) *Store {
	s := &Store{
		gw:         gw,
		ids:        idgen.Random{},
		log:        logging.Discard(),
		now:        time.Now,
		metrics:    noopMetrics{},
		baseCtx:    context.Background(),
		properties: []models.Property{},
		selected:   make(map[string]struct{}),
		creating:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status is a point-in-time view of the store's flags
type Status struct {
	Loading    bool   `json:"loading"`
	InFlight   int    `json:"in_flight"`
	Synced     bool   `json:"synced"`
	LastError  string `json:"last_error,omitempty"`
	Properties int    `json:"properties"`
	Selected   int    `json:"selected"`
}

// Status returns the current flags
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Loading:    s.inflight > 0,
		InFlight:   s.inflight,
		Synced:     s.synced,
		LastError:  s.lastError,
		Properties: len(s.properties),
		Selected:   len(s.selected),
	}
}

// IsLoading reports whether any remote call is in flight
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// IsSynced reports whether the last hydration or push succeeded and no remote write failed since
func (s *Store) IsSynced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synced
}

// LastError returns the most recent remote failure, or ""
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Errors returns recent remote failures, oldest first
func (s *Store) Errors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.errs))
	copy(out, s.errs)
	return out
}

// Wait blocks until every remote task started so far has finished
func (s *Store) Wait() {
	s.tasks.Wait()
}

// Properties returns a deep copy of every property, in order
func (s *Store) Properties() []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Property, len(s.properties))
	for i := range s.properties {
		out[i] = s.properties[i].Clone()
	}
	return out
}

// GetPropertyByID looks a property up locally. No remote call is made.
func (s *Store) GetPropertyByID(id string) (models.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.propertyIndex(id)
	if idx < 0 {
		return models.Property{}, false
	}
	return s.properties[idx].Clone(), true
}

// GetUnit looks a unit up locally
func (s *Store) GetUnit(propertyID, unitID string) (models.Unit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.unitLocked(propertyID, unitID)
	if u == nil {
		return models.Unit{}, false
	}
	return u.Clone(), true
}

// propertyIndex must be called with mu held
func (s *Store) propertyIndex(id string) int {
	for i := range s.properties {
		if s.properties[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) propertyLocked(id string) *models.Property {
	idx := s.propertyIndex(id)
	if idx < 0 {
		return nil
	}
	return &s.properties[idx]
}

func unitIndex(p *models.Property, id string) int {
	for i := range p.Units {
		if p.Units[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) unitLocked(propertyID, unitID string) *models.Unit {
	p := s.propertyLocked(propertyID)
	if p == nil {
		return nil
	}
	idx := unitIndex(p, unitID)
	if idx < 0 {
		return nil
	}
	return &p.Units[idx]
}

func subUnitIndex(u *models.Unit, id string) int {
	for i := range u.SubUnits {
		if u.SubUnits[i].ID == id {
			return i
		}
	}
	return -1
}

// containsIDLocked reports whether any node in the tree has the given ID
func (s *Store) containsIDLocked(id string) bool {
	for i := range s.properties {
		p := &s.properties[i]
		if p.ID == id {
			return true
		}
		for j := range p.Units {
			u := &p.Units[j]
			if u.ID == id {
				return true
			}
			if subUnitIndex(u, id) >= 0 {
				return true
			}
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
