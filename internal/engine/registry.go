package engine

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kid is one child in the household.
type Kid struct {
	ID         uuid.UUID
	Name       string
	Multiplier float64 // applied to chore points at approval time
	Balance    float64

	// Buckets is the kid-global rollup set, aggregated across all chores.
	// It survives deletion of any individual chore. Genesis happens when the
	// kid is registered.
	Buckets BucketSet

	Badges map[string]time.Time // badge id → earned at
}

// ChoreDefinition is the immutable-per-version description of a chore.
type ChoreDefinition struct {
	ID           uuid.UUID
	Name         string
	Description  string
	AssignedKids []uuid.UUID

	Criteria      CompletionCriteria
	ResetMode     ResetMode
	OverdueMode   OverdueMode
	PendingAction PendingClaimAction

	Interval Interval
	DueDate  *time.Time
	Points   float64
}

// Assigned reports whether the kid is on the chore's assignment list.
func (d *ChoreDefinition) Assigned(kidID uuid.UUID) bool {
	for _, id := range d.AssignedKids {
		if id == kidID {
			return true
		}
	}
	return false
}

// ChoreRecord is the runtime state of one (kid, chore) pair, created lazily
// on first interaction.
//
// LastApproved is an audit trail: once set it is never cleared and only moves
// forward. Stale approvals are invalidated solely by advancing PeriodStart.
type ChoreRecord struct {
	KidID   uuid.UUID
	ChoreID uuid.UUID

	State         ChoreState
	LastClaimed   *time.Time
	LastApproved  *time.Time
	PeriodStart   time.Time // start of the window "already approved" is judged in
	PendingClaims int

	// Buckets is the chore-item scoped set for this pair. Genesis happens
	// when the record is created; it lives as long as the record does.
	Buckets BucketSet
}

// Reward is something a kid can spend points on.
type Reward struct {
	ID          uuid.UUID
	Name        string
	Description string
	Cost        float64
}

// RewardClaim tracks one redemption through its approval.
type RewardClaim struct {
	ID         uuid.UUID
	RewardID   uuid.UUID
	KidID      uuid.UUID
	Status     string // "pending", "approved", "disapproved"
	ClaimedAt  time.Time
	ResolvedAt *time.Time
}

// Penalty is a named negative point adjustment a parent can apply.
type Penalty struct {
	ID     uuid.UUID
	Name   string
	Points float64 // positive magnitude; applied as a negative delta
}

type recordKey struct {
	kid   uuid.UUID
	chore uuid.UUID
}

// Registry owns every definition and runtime record for one household. It is
// the genesis side of the bucket ownership contract: bucket sets are created
// here and only here.
//
// The internal mutex guards the maps only: lookups and lazy record creation
// are safe from any goroutine. Mutating the returned entities is the
// Service's job, under its chore/kid locks.
type Registry struct {
	mu      sync.RWMutex
	kids    map[uuid.UUID]*Kid
	chores  map[uuid.UUID]*ChoreDefinition
	records map[recordKey]*ChoreRecord

	rewards      map[uuid.UUID]*Reward
	rewardClaims map[uuid.UUID]*RewardClaim
	penalties    map[uuid.UUID]*Penalty
}

func NewRegistry() *Registry {
	return &Registry{
		kids:         map[uuid.UUID]*Kid{},
		chores:       map[uuid.UUID]*ChoreDefinition{},
		records:      map[recordKey]*ChoreRecord{},
		rewards:      map[uuid.UUID]*Reward{},
		rewardClaims: map[uuid.UUID]*RewardClaim{},
		penalties:    map[uuid.UUID]*Penalty{},
	}
}

// AddKid registers a kid, running genesis for the kid-global bucket set if
// the kid arrives without one (fresh vs. loaded from storage).
func (r *Registry) AddKid(k *Kid) {
	if k.Buckets == nil {
		k.Buckets = NewBucketSet()
	}
	if k.Badges == nil {
		k.Badges = map[string]time.Time{}
	}
	if k.Multiplier == 0 {
		k.Multiplier = 1
	}
	r.mu.Lock()
	r.kids[k.ID] = k
	r.mu.Unlock()
}

func (r *Registry) AddChore(d *ChoreDefinition) {
	r.mu.Lock()
	r.chores[d.ID] = d
	r.mu.Unlock()
}

func (r *Registry) AddReward(w *Reward) {
	r.mu.Lock()
	r.rewards[w.ID] = w
	r.mu.Unlock()
}

func (r *Registry) AddPenalty(p *Penalty) {
	r.mu.Lock()
	r.penalties[p.ID] = p
	r.mu.Unlock()
}

// AddRecord registers a record loaded from storage.
func (r *Registry) AddRecord(rec *ChoreRecord) {
	if rec.Buckets == nil {
		rec.Buckets = NewBucketSet()
	}
	r.mu.Lock()
	r.records[recordKey{rec.KidID, rec.ChoreID}] = rec
	r.mu.Unlock()
}

func (r *Registry) AddRewardClaim(c *RewardClaim) {
	r.mu.Lock()
	r.rewardClaims[c.ID] = c
	r.mu.Unlock()
}

func (r *Registry) Kid(id uuid.UUID) (*Kid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kids[id]
	if !ok {
		return nil, UnknownEntityError{Kind: "kid", ID: id.String()}
	}
	return k, nil
}

func (r *Registry) Chore(id uuid.UUID) (*ChoreDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.chores[id]
	if !ok {
		return nil, UnknownEntityError{Kind: "chore", ID: id.String()}
	}
	return d, nil
}

func (r *Registry) Reward(id uuid.UUID) (*Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.rewards[id]
	if !ok {
		return nil, UnknownEntityError{Kind: "reward", ID: id.String()}
	}
	return w, nil
}

func (r *Registry) Penalty(id uuid.UUID) (*Penalty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.penalties[id]
	if !ok {
		return nil, UnknownEntityError{Kind: "penalty", ID: id.String()}
	}
	return p, nil
}

func (r *Registry) RewardClaim(id uuid.UUID) (*RewardClaim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rewardClaims[id]
	if !ok {
		return nil, UnknownEntityError{Kind: "reward claim", ID: id.String()}
	}
	return c, nil
}

// Record returns the runtime record for (kid, chore), creating it on first
// touch. Both ids must already resolve; creation is genesis for the record's
// item-scoped bucket set.
func (r *Registry) Record(kidID, choreID uuid.UUID) (*ChoreRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kids[kidID]; !ok {
		return nil, UnknownEntityError{Kind: "kid", ID: kidID.String()}
	}
	d, ok := r.chores[choreID]
	if !ok {
		return nil, UnknownEntityError{Kind: "chore", ID: choreID.String()}
	}
	if !d.Assigned(kidID) {
		return nil, InvalidTransitionError{Op: "record", Kid: kidID.String(), Chore: d.Name, Reason: "kid is not assigned to this chore"}
	}
	key := recordKey{kidID, choreID}
	rec, ok := r.records[key]
	if !ok {
		rec = &ChoreRecord{
			KidID:   kidID,
			ChoreID: choreID,
			State:   StatePending,
			Buckets: NewBucketSet(),
		}
		r.records[key] = rec
	}
	return rec, nil
}

// RecordIfExists returns the record without creating one.
func (r *Registry) RecordIfExists(kidID, choreID uuid.UUID) (*ChoreRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[recordKey{kidID, choreID}]
	return rec, ok
}

// AssignedRecords returns one record per assigned kid, creating missing ones.
func (r *Registry) AssignedRecords(choreID uuid.UUID) ([]*ChoreRecord, error) {
	d, err := r.Chore(choreID)
	if err != nil {
		return nil, err
	}
	out := make([]*ChoreRecord, 0, len(d.AssignedKids))
	for _, kidID := range d.AssignedKids {
		rec, err := r.Record(kidID, choreID)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Kids returns all kids sorted by name.
func (r *Registry) Kids() []*Kid {
	r.mu.RLock()
	out := make([]*Kid, 0, len(r.kids))
	for _, k := range r.kids {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Chores returns all chore definitions sorted by name.
func (r *Registry) Chores() []*ChoreDefinition {
	r.mu.RLock()
	out := make([]*ChoreDefinition, 0, len(r.chores))
	for _, d := range r.chores {
		out = append(out, d)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Rewards returns all rewards sorted by name.
func (r *Registry) Rewards() []*Reward {
	r.mu.RLock()
	out := make([]*Reward, 0, len(r.rewards))
	for _, w := range r.rewards {
		out = append(out, w)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Penalties returns all penalties sorted by name.
func (r *Registry) Penalties() []*Penalty {
	r.mu.RLock()
	out := make([]*Penalty, 0, len(r.penalties))
	for _, p := range r.penalties {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PendingRewardClaims returns unresolved claims, oldest first.
func (r *Registry) PendingRewardClaims() []*RewardClaim {
	r.mu.RLock()
	var out []*RewardClaim
	for _, c := range r.rewardClaims {
		if c.Status == "pending" {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimedAt.Before(out[j].ClaimedAt) })
	return out
}

// KidRecords returns every record belonging to the kid.
func (r *Registry) KidRecords(kidID uuid.UUID) []*ChoreRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*ChoreRecord
	for key, rec := range r.records {
		if key.kid == kidID {
			out = append(out, rec)
		}
	}
	return out
}

// KidByName resolves a kid by case-insensitive name, for the CLI surface.
func (r *Registry) KidByName(name string) (*Kid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range r.kids {
		if strings.EqualFold(k.Name, name) {
			return k, nil
		}
	}
	return nil, UnknownEntityError{Kind: "kid", ID: name}
}

// ChoreByName resolves a chore by case-insensitive name.
func (r *Registry) ChoreByName(name string) (*ChoreDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.chores {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return nil, UnknownEntityError{Kind: "chore", ID: name}
}

// RewardByName resolves a reward by case-insensitive name.
func (r *Registry) RewardByName(name string) (*Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.rewards {
		if strings.EqualFold(w.Name, name) {
			return w, nil
		}
	}
	return nil, UnknownEntityError{Kind: "reward", ID: name}
}

// PenaltyByName resolves a penalty by case-insensitive name.
func (r *Registry) PenaltyByName(name string) (*Penalty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.penalties {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, UnknownEntityError{Kind: "penalty", ID: name}
}

// DeleteChore removes the definition and cascades its records. Kid-global
// buckets are left untouched: deleting a chore does not rewrite history.
func (r *Registry) DeleteChore(choreID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chores, choreID)
	for key := range r.records {
		if key.chore == choreID {
			delete(r.records, key)
		}
	}
}

// DeleteKid removes the kid and cascades their records.
func (r *Registry) DeleteKid(kidID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.kids, kidID)
	for key := range r.records {
		if key.kid == kidID {
			delete(r.records, key)
		}
	}
}
