package engine

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is one row of the points audit trail.
type LedgerEntry struct {
	ID     uuid.UUID
	KidID  uuid.UUID
	Amount float64 // positive for earned, negative for spent
	Reason string
	Actor  string
	At     time.Time
}

// BadgeAward records a badge being earned; badges are never revoked.
type BadgeAward struct {
	KidID   uuid.UUID
	BadgeID string
	At      time.Time
}

// Mutation lists everything a single transaction touched. Store.Commit
// persists it atomically.
type Mutation struct {
	Kids         []*Kid
	Records      []*ChoreRecord
	Chores       []*ChoreDefinition
	Ledger       []*LedgerEntry
	RewardClaims []*RewardClaim
	Badges       []*BadgeAward
}

// Store is the opaque durable-write seam. The engine calls Commit after each
// in-memory transition and does not define the storage format.
type Store interface {
	Commit(ctx context.Context, m *Mutation) error
}

// Service ties the registry, state machine, bus and cache together for one
// household. All mutating entry points live on it.
type Service struct {
	reg   *Registry
	store Store
	bus   *Bus
	cache *CacheManager
	log   *slog.Logger
	loc   *time.Location
	nowFn func() time.Time

	mu         sync.Mutex
	choreLocks map[uuid.UUID]*sync.Mutex
	kidLocks   map[uuid.UUID]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the time source. Every period computation goes through
// it.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.nowFn = fn }
}

// WithLocation sets the household timezone used for midnight boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithRetention sets how many periods the cache keeps per window.
func WithRetention(r Retention) Option {
	return func(s *Service) { s.cache.retention = r }
}

func NewService(reg *Registry, store Store, opts ...Option) *Service {
	s := &Service{
		reg:        reg,
		store:      store,
		bus:        NewBus(),
		log:        slog.Default(),
		loc:        time.Local,
		nowFn:      time.Now,
		choreLocks: map[uuid.UUID]*sync.Mutex{},
		kidLocks:   map[uuid.UUID]*sync.Mutex{},
	}
	s.cache = newCacheManager(reg, s.log)
	for _, opt := range opts {
		opt(s)
	}
	s.cache.log = s.log
	s.cache.nowFn = func() time.Time { return s.nowFn() }
	s.cache.lockKid = s.lockKid
	// The cache manager is the sole subscriber that touches buckets; other
	// consumers hang off SubscribeEvents and read snapshots only.
	s.bus.Subscribe(s.cache.handleEvent)
	s.cache.RebuildAll()
	return s
}

func (s *Service) Registry() *Registry  { return s.reg }
func (s *Service) Cache() *CacheManager { return s.cache }

// SubscribeEvents registers a downstream consumer (notifications,
// achievements UI). It runs after the cache manager for every event.
func (s *Service) SubscribeEvents(fn func(Event)) { s.bus.Subscribe(fn) }

func (s *Service) now() time.Time { return s.nowFn() }

func (s *Service) choreMutex(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.choreLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.choreLocks[id] = l
	}
	return l
}

func (s *Service) kidMutex(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.kidLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.kidLocks[id] = l
	}
	return l
}

// lockChore serializes every transaction that touches the chore's records:
// the chore lock guards the records (including siblings of a shared chore)
// and the definition's due date, the assigned kids' locks guard balances,
// badges and kid-global buckets through the event publish. Transactions on
// chores with disjoint assignees proceed concurrently.
//
// Lock order is fixed everywhere: the chore lock first, then kid locks in id
// order. A goroutine never holds two chore locks.
func (s *Service) lockChore(def *ChoreDefinition) func() {
	cl := s.choreMutex(def.ID)
	cl.Lock()

	kids := make([]uuid.UUID, 0, len(def.AssignedKids))
	seen := map[uuid.UUID]bool{}
	for _, id := range def.AssignedKids {
		if !seen[id] {
			seen[id] = true
			kids = append(kids, id)
		}
	}
	sort.Slice(kids, func(i, j int) bool { return bytes.Compare(kids[i][:], kids[j][:]) < 0 })

	locks := make([]*sync.Mutex, 0, len(kids))
	for _, id := range kids {
		l := s.kidMutex(id)
		l.Lock()
		locks = append(locks, l)
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
		cl.Unlock()
	}
}

// lockKid serializes kid-only transactions (ledger, rewards, penalties) and
// snapshot rebuilds against chore transactions involving the same kid.
func (s *Service) lockKid(kidID uuid.UUID) func() {
	l := s.kidMutex(kidID)
	l.Lock()
	return l.Unlock
}

// commit persists the mutation. A failure is logged and surfaced but the
// in-memory transition is kept: rolling back a half-applied multi-step
// transition would corrupt bucket aggregates, so the next successful write
// reconciles instead.
func (s *Service) commit(ctx context.Context, op string, m *Mutation) error {
	if err := s.store.Commit(ctx, m); err != nil {
		s.log.Error("commit failed", "op", op, "err", err)
		return PersistenceError{Op: op, Err: err}
	}
	return nil
}
