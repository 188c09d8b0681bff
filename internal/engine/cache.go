package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChoreStatus is the read-optimized view of one (kid, chore) pair.
type ChoreStatus struct {
	ChoreID     uuid.UUID
	ChoreName   string
	State       ChoreState
	CanClaim    bool
	CanApprove  bool
	DueDate     *time.Time
	DaysOverdue int
	Points      float64
	Streak      int
}

// Rollup is one period window of a kid's aggregate numbers.
type Rollup struct {
	Claimed      int
	Approved     int
	Disapproved  int
	Overdue      int
	PointsEarned float64
	PointsSpent  float64
	PointsNet    float64
}

// Snapshot is the derived, never-persisted read model for one kid. It is
// always reproducible by replaying the period buckets.
type Snapshot struct {
	KidID       uuid.UUID
	KidName     string
	GeneratedAt time.Time
	Balance     float64
	Streak      int
	Badges      []string
	Chores      []ChoreStatus
	Rollups     map[PeriodType]Rollup
}

// CacheManager is the sole listener on the event bus and the only component
// allowed to publish the refresh signal for these event types. It performs
// the tenant bucket writes, then rebuilds the affected kid's snapshot
// synchronously, so a reader notified of fresh data never sees a stale one.
type CacheManager struct {
	reg       *Registry
	log       *slog.Logger
	nowFn     func() time.Time
	retention Retention

	// lockKid is borrowed from the Service. Rebuilds triggered inside an
	// event publish run under the publisher's already-held kid lock; rebuilds
	// outside one (batch flush, RebuildAll) must take it themselves.
	lockKid func(kidID uuid.UUID) func()

	mu    sync.RWMutex
	snaps map[uuid.UUID]*Snapshot

	// Batch mode coalesces snapshot rebuilds during system-initiated sweeps.
	// User-initiated transactions never batch. Guarded by mu.
	batching bool
	dirty    map[uuid.UUID]bool

	onRefresh []func(kidID uuid.UUID)
}

func newCacheManager(reg *Registry, log *slog.Logger) *CacheManager {
	return &CacheManager{
		reg:   reg,
		log:   log,
		nowFn: time.Now,
		snaps: map[uuid.UUID]*Snapshot{},
		dirty: map[uuid.UUID]bool{},
	}
}

// OnRefresh registers a callback fired after a snapshot is rebuilt. This is
// the "data changed, refresh dependents" signal; domain components must not
// publish their own for these events.
func (c *CacheManager) OnRefresh(fn func(kidID uuid.UUID)) {
	c.onRefresh = append(c.onRefresh, fn)
}

// Snapshot returns the current read model for a kid.
func (c *CacheManager) Snapshot(kidID uuid.UUID) (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snaps[kidID]
	return snap, ok
}

// Snapshots returns every kid's snapshot, sorted by kid name.
func (c *CacheManager) Snapshots() []*Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Snapshot, 0, len(c.snaps))
	for _, k := range c.reg.Kids() {
		if snap, ok := c.snaps[k.ID]; ok {
			out = append(out, snap)
		}
	}
	return out
}

// BeginBatch suspends per-event snapshot rebuilds; bucket writes still apply
// immediately. EndBatch rebuilds every kid touched in between.
func (c *CacheManager) BeginBatch() {
	c.mu.Lock()
	c.batching = true
	c.mu.Unlock()
}

func (c *CacheManager) EndBatch() {
	c.mu.Lock()
	c.batching = false
	touched := make([]uuid.UUID, 0, len(c.dirty))
	for kidID := range c.dirty {
		touched = append(touched, kidID)
		delete(c.dirty, kidID)
	}
	c.mu.Unlock()
	for _, kidID := range touched {
		c.rebuildLocked(kidID)
	}
}

// rebuildLocked rebuilds under the kid's lock, for callers that do not
// already hold it.
func (c *CacheManager) rebuildLocked(kidID uuid.UUID) {
	if c.lockKid != nil {
		defer c.lockKid(kidID)()
	}
	c.rebuild(kidID)
}

// handleEvent is the bus subscription. Update, account, flush, strictly in
// that order: buckets first, snapshot second, refresh signal last.
func (c *CacheManager) handleEvent(e Event) {
	switch ev := e.(type) {
	case ChoreClaimed:
		c.recordChore(ev.KidID, ev.ChoreID, Increments{Claimed: 1}, ev.At)
	case ChoreApproved:
		inc := Increments{Approved: 1, PointsEarned: ev.Points}
		c.bumpStreaks(ev.KidID, ev.ChoreID, ev.EffectiveAt)
		c.recordChore(ev.KidID, ev.ChoreID, inc, ev.EffectiveAt)
	case ChoreDisapproved:
		inc := Increments{Disapproved: 1, PointsSpent: -ev.PointsRevoked}
		c.recordChore(ev.KidID, ev.ChoreID, inc, ev.At)
	case ChoreOverdue:
		c.recordChore(ev.KidID, ev.ChoreID, Increments{Overdue: 1}, ev.At)
	case ChoreStatusReset:
		for _, kidID := range ev.KidIDs {
			c.markDirty(kidID)
		}
		return
	case PointsEarned:
		c.recordKid(ev.KidID, Increments{PointsEarned: ev.Amount}, ev.At)
	case PointsSpent:
		c.recordKid(ev.KidID, Increments{PointsSpent: ev.Amount}, ev.At)
	case RewardApproved:
		// The points movement arrives as its own PointsSpent event.
		c.markDirty(ev.KidID)
		return
	case RewardRedeemed:
		c.markDirty(ev.KidID)
		return
	case PenaltyApplied:
		c.recordKid(ev.KidID, Increments{PointsSpent: ev.Points}, ev.At)
	case BadgeEarned:
		c.markDirty(ev.KidID)
		return
	}
}

// recordChore writes into both the item-scoped and the kid-global bucket
// sets, then refreshes the kid's snapshot.
func (c *CacheManager) recordChore(kidID, choreID uuid.UUID, inc Increments, ref time.Time) {
	if rec, ok := c.reg.RecordIfExists(kidID, choreID); ok {
		c.tenantWrite(rec.Buckets, "chore record", kidID.String(), inc, ref)
	} else {
		c.log.Warn("bucket write skipped, record missing", "kid", kidID, "chore", choreID)
	}
	c.recordKid(kidID, inc, ref)
}

// recordKid writes into the kid-global set only.
func (c *CacheManager) recordKid(kidID uuid.UUID, inc Increments, ref time.Time) {
	kid, err := c.reg.Kid(kidID)
	if err != nil {
		c.log.Warn("bucket write skipped, kid missing", "kid", kidID)
		return
	}
	c.tenantWrite(kid.Buckets, "kid", kid.Name, inc, ref)
	if c.retention != nil {
		Prune(kid.Buckets, c.retention, ref)
	}
	c.markDirty(kidID)
}

func (c *CacheManager) tenantWrite(set BucketSet, scope, owner string, inc Increments, ref time.Time) {
	if err := Record(set, inc, ref, true); err != nil {
		var missing MissingBucketError
		if errors.As(err, &missing) {
			// Intentional after a data reset: log and skip, never resurrect.
			c.log.Warn("bucket set missing, write skipped", "scope", scope, "owner", owner)
			return
		}
		c.log.Error("bucket write failed", "scope", scope, "owner", owner, "err", err)
	}
}

// bumpStreaks maintains the daily approval streaks on the lifetime entries
// before the approval itself is recorded. A day without an approval breaks
// the streak.
func (c *CacheManager) bumpStreaks(kidID, choreID uuid.UUID, ref time.Time) {
	if rec, ok := c.reg.RecordIfExists(kidID, choreID); ok {
		bumpStreak(rec.Buckets, ref)
	}
	if kid, err := c.reg.Kid(kidID); err == nil {
		bumpStreak(kid.Buckets, ref)
	}
}

func bumpStreak(set BucketSet, ref time.Time) {
	all := set.ensureAllTime()
	if all == nil {
		return
	}
	today := set.Entry(PeriodDaily, PeriodKey(PeriodDaily, ref))
	if today != nil && today.Approved > 0 {
		return // already counted today
	}
	yesterday := set.Entry(PeriodDaily, PeriodKey(PeriodDaily, ref.AddDate(0, 0, -1)))
	if yesterday != nil && yesterday.Approved > 0 {
		all.Streak++
	} else {
		all.Streak = 1
	}
}

func (c *CacheManager) markDirty(kidID uuid.UUID) {
	c.mu.Lock()
	if c.batching {
		c.dirty[kidID] = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.rebuild(kidID)
}

// RebuildAll regenerates every kid's snapshot, used at startup and after
// bulk loads.
func (c *CacheManager) RebuildAll() {
	for _, k := range c.reg.Kids() {
		c.rebuildLocked(k.ID)
	}
}

func (c *CacheManager) rebuild(kidID uuid.UUID) {
	kid, err := c.reg.Kid(kidID)
	if err != nil {
		return
	}
	now := c.nowFn()

	snap := &Snapshot{
		KidID:       kid.ID,
		KidName:     kid.Name,
		GeneratedAt: now,
		Balance:     kid.Balance,
		Rollups:     map[PeriodType]Rollup{},
	}
	if all := kid.Buckets.AllTime(); all != nil {
		snap.Streak = all.Streak
	}
	for badge := range kid.Badges {
		snap.Badges = append(snap.Badges, badge)
	}

	for _, pt := range PeriodTypes {
		entry := kid.Buckets.Entry(pt, PeriodKey(pt, now))
		if entry == nil {
			continue
		}
		snap.Rollups[pt] = Rollup{
			Claimed:      entry.Claimed,
			Approved:     entry.Approved,
			Disapproved:  entry.Disapproved,
			Overdue:      entry.Overdue,
			PointsEarned: entry.PointsEarned,
			PointsSpent:  entry.PointsSpent,
			PointsNet:    entry.Net(),
		}
	}

	for _, def := range c.reg.Chores() {
		if !def.Assigned(kid.ID) {
			continue
		}
		status := ChoreStatus{
			ChoreID:   def.ID,
			ChoreName: def.Name,
			State:     StatePending,
			DueDate:   def.DueDate,
			Points:    def.Points,
		}
		if rec, ok := c.reg.RecordIfExists(kid.ID, def.ID); ok {
			status.State = rec.State
			status.CanClaim = CanClaim(rec, def.ResetMode)
			status.CanApprove = CanApprove(rec, def.ResetMode)
			if all := rec.Buckets.AllTime(); all != nil {
				status.Streak = all.Streak
			}
			if rec.State == StateOverdue && def.DueDate != nil {
				status.DaysOverdue = int(now.Sub(*def.DueDate).Hours() / 24)
				if status.DaysOverdue < 0 {
					status.DaysOverdue = 0
				}
			}
		} else {
			status.CanClaim = true
		}
		snap.Chores = append(snap.Chores, status)
	}

	c.mu.Lock()
	c.snaps[kid.ID] = snap
	c.mu.Unlock()

	for _, fn := range c.onRefresh {
		fn(kid.ID)
	}
}
