package engine

import (
	"fmt"
	"time"
)

// PeriodType identifies one rolling aggregation window.
type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
	PeriodAllTime PeriodType = "all_time"
)

// AllTimeKey is the single period key used inside the all_time window.
const AllTimeKey = "all"

// PeriodTypes lists every window, all_time last.
var PeriodTypes = []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly, PeriodAllTime}

// BucketEntry is one aggregate cell: lifecycle counts, point deltas and the
// streak length as of the last write. A net value is never stored; it is
// derived on read as earned + spent (spent is negative).
type BucketEntry struct {
	Claimed     int
	Approved    int
	Disapproved int
	Overdue     int

	PointsEarned float64
	PointsSpent  float64

	Streak int
}

// Net returns the derived point total for the entry.
func (e *BucketEntry) Net() float64 { return e.PointsEarned + e.PointsSpent }

// BucketSet holds the aggregate entries for one owner (a chore record or a
// kid's global rollup), keyed period type → period key.
//
// Ownership contract: the owning manager creates the set with NewBucketSet
// (genesis). Record and Prune are tenant operations; they write into existing
// sets only and never create or resurrect one.
type BucketSet map[PeriodType]map[string]*BucketEntry

// NewBucketSet is the genesis step: it creates the top-level containers for
// every period type, including the permanent all_time window.
func NewBucketSet() BucketSet {
	set := make(BucketSet, len(PeriodTypes))
	for _, pt := range PeriodTypes {
		set[pt] = make(map[string]*BucketEntry)
	}
	return set
}

// PeriodKey derives the bucket key for a period type from a reference time.
// Keys are zero-padded so lexicographic order matches chronological order
// within one period type.
func PeriodKey(pt PeriodType, ref time.Time) string {
	switch pt {
	case PeriodDaily:
		return ref.Format("2006-01-02")
	case PeriodWeekly:
		year, week := ref.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonthly:
		return ref.Format("2006-01")
	case PeriodYearly:
		return ref.Format("2006")
	default:
		return AllTimeKey
	}
}

// Increments is the per-event delta applied by Record. Counts are
// non-negative; point deltas are floats and may be negative (spending).
type Increments struct {
	Claimed     int
	Disapproved int
	Approved    int
	Overdue     int

	PointsEarned float64
	PointsSpent  float64
}

// Record applies inc to every period bucket derived from ref. It is a tenant
// write: a nil set means genesis never ran (or a reset tore the set down) and
// yields MissingBucketError instead of recreating anything. Nested entries
// within an existing set are created on demand.
func Record(set BucketSet, inc Increments, ref time.Time, includeAllTime bool) error {
	if set == nil {
		return MissingBucketError{}
	}
	for _, pt := range PeriodTypes {
		if pt == PeriodAllTime && !includeAllTime {
			continue
		}
		keys, ok := set[pt]
		if !ok {
			return MissingBucketError{Scope: string(pt)}
		}
		key := PeriodKey(pt, ref)
		entry := keys[key]
		if entry == nil {
			entry = &BucketEntry{}
			keys[key] = entry
		}
		entry.Claimed += inc.Claimed
		entry.Approved += inc.Approved
		entry.Disapproved += inc.Disapproved
		entry.Overdue += inc.Overdue
		entry.PointsEarned += inc.PointsEarned
		entry.PointsSpent += inc.PointsSpent
	}
	return nil
}

// Entry returns the bucket entry for (pt, key), or nil if absent.
func (set BucketSet) Entry(pt PeriodType, key string) *BucketEntry {
	if set == nil {
		return nil
	}
	return set[pt][key]
}

// AllTime returns the permanent lifetime entry, creating nothing.
func (set BucketSet) AllTime() *BucketEntry {
	return set.Entry(PeriodAllTime, AllTimeKey)
}

// ensureAllTime returns the lifetime entry, creating the cell (not the set)
// when absent. Used by owners that track streak state on the lifetime entry.
func (set BucketSet) ensureAllTime() *BucketEntry {
	keys, ok := set[PeriodAllTime]
	if !ok {
		return nil
	}
	entry := keys[AllTimeKey]
	if entry == nil {
		entry = &BucketEntry{}
		keys[AllTimeKey] = entry
	}
	return entry
}

// Retention is the number of periods to keep per window. Zero means keep
// everything. The all_time window is never pruned.
type Retention map[PeriodType]int

// Prune drops period keys older than the retention horizon, computed
// backwards from now. It never touches the all_time entry.
func Prune(set BucketSet, retention Retention, now time.Time) {
	if set == nil {
		return
	}
	for pt, keep := range retention {
		if pt == PeriodAllTime || keep <= 0 {
			continue
		}
		keys, ok := set[pt]
		if !ok {
			continue
		}
		oldest := PeriodKey(pt, retreat(pt, now, keep-1))
		for key := range keys {
			if key < oldest {
				delete(keys, key)
			}
		}
	}
}

func retreat(pt PeriodType, ref time.Time, n int) time.Time {
	switch pt {
	case PeriodDaily:
		return ref.AddDate(0, 0, -n)
	case PeriodWeekly:
		return ref.AddDate(0, 0, -7*n)
	case PeriodMonthly:
		return ref.AddDate(0, -n, 0)
	case PeriodYearly:
		return ref.AddDate(-n, 0, 0)
	default:
		return ref
	}
}
