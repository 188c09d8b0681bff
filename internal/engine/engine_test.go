package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memStore counts commits and can be told to fail, so tests can assert both
// the persistence contract and the keep-memory-on-failure behavior without a
// database.
type memStore struct {
	mu      sync.Mutex
	commits int
	fail    error
}

func (m *memStore) Commit(ctx context.Context, mut *Mutation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.commits++
	return nil
}

type fixture struct {
	svc   *Service
	store *memStore
	now   time.Time
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

// Monday morning, UTC.
var testEpoch = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: &memStore{}, now: testEpoch}
	f.svc = NewService(NewRegistry(), f.store,
		WithClock(func() time.Time { return f.now }),
		WithLocation(time.UTC),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return f
}

func (f *fixture) addKid(name string, multiplier float64) *Kid {
	k := &Kid{ID: uuid.New(), Name: name, Multiplier: multiplier}
	f.svc.Registry().AddKid(k)
	return k
}

func (f *fixture) addChore(def *ChoreDefinition) *ChoreDefinition {
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	if def.Criteria == "" {
		def.Criteria = CriteriaIndependent
	}
	if def.OverdueMode == "" {
		def.OverdueMode = OverdueAtDueDate
	}
	if def.PendingAction == "" {
		def.PendingAction = PendingClear
	}
	if def.Interval == "" {
		def.Interval = IntervalNone
	}
	f.svc.Registry().AddChore(def)
	return def
}

func mustClaim(t *testing.T, f *fixture, kid *Kid, def *ChoreDefinition) *ChoreRecord {
	t.Helper()
	rec, err := f.svc.Claim(context.Background(), kid.ID, def.ID, "kid")
	if err != nil {
		t.Fatalf("Claim(%s, %s): %v", kid.Name, def.Name, err)
	}
	return rec
}

func mustApprove(t *testing.T, f *fixture, kid *Kid, def *ChoreDefinition) *ChoreRecord {
	t.Helper()
	rec, err := f.svc.Approve(context.Background(), kid.ID, def.ID, "parent")
	if err != nil {
		t.Fatalf("Approve(%s, %s): %v", kid.Name, def.Name, err)
	}
	return rec
}

func wantInvalid(t *testing.T, err error, op string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected InvalidTransitionError for %s, got nil", op)
	}
	var ite InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError for %s, got %T: %v", op, err, err)
	}
}
