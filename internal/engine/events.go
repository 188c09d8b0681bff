package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a past-tense fact emitted after a successful transition. Each
// kind carries a typed payload; the bus is scoped to one household instance,
// so households never cross-talk.
type Event interface {
	Kind() string
}

type ChoreClaimed struct {
	KidID   uuid.UUID
	ChoreID uuid.UUID
	Actor   string
	At      time.Time
}

func (ChoreClaimed) Kind() string { return "chore_claimed" }

type ChoreApproved struct {
	KidID   uuid.UUID
	ChoreID uuid.UUID
	Actor   string
	Points  float64
	At      time.Time
	// EffectiveAt keys the period buckets. It usually equals At but a
	// backdated approval may bucket against the claim date instead.
	EffectiveAt time.Time
}

func (ChoreApproved) Kind() string { return "chore_approved" }

type ChoreDisapproved struct {
	KidID   uuid.UUID
	ChoreID uuid.UUID
	Actor   string
	At      time.Time
	// PointsRevoked is nonzero when the disapproval undoes an approval that
	// already deposited points.
	PointsRevoked float64
}

func (ChoreDisapproved) Kind() string { return "chore_disapproved" }

type ChoreOverdue struct {
	KidID   uuid.UUID
	ChoreID uuid.UUID
	At      time.Time
}

func (ChoreOverdue) Kind() string { return "chore_overdue" }

type ChoreStatusReset struct {
	ChoreID uuid.UUID
	KidIDs  []uuid.UUID
	Actor   string
	Reason  string
	At      time.Time
}

func (ChoreStatusReset) Kind() string { return "chore_status_reset" }

type PointsEarned struct {
	KidID  uuid.UUID
	Actor  string
	Amount float64 // positive
	Reason string
	At     time.Time
}

func (PointsEarned) Kind() string { return "points_earned" }

type PointsSpent struct {
	KidID  uuid.UUID
	Actor  string
	Amount float64 // negative
	Reason string
	At     time.Time
}

func (PointsSpent) Kind() string { return "points_spent" }

type RewardRedeemed struct {
	KidID    uuid.UUID
	RewardID uuid.UUID
	ClaimID  uuid.UUID
	Actor    string
	At       time.Time
}

func (RewardRedeemed) Kind() string { return "reward_redeemed" }

type RewardApproved struct {
	KidID    uuid.UUID
	RewardID uuid.UUID
	ClaimID  uuid.UUID
	Actor    string
	Cost     float64
	At       time.Time
}

func (RewardApproved) Kind() string { return "reward_approved" }

type PenaltyApplied struct {
	KidID     uuid.UUID
	PenaltyID uuid.UUID
	Actor     string
	Points    float64 // negative
	At        time.Time
}

func (PenaltyApplied) Kind() string { return "penalty_applied" }

type BadgeEarned struct {
	KidID   uuid.UUID
	BadgeID string
	At      time.Time
}

func (BadgeEarned) Kind() string { return "badge_earned" }

// Bus delivers events synchronously, in subscription order. Synchronous
// dispatch is what makes the transaction ordering hold: the cache update has
// finished before the emitting call returns.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
