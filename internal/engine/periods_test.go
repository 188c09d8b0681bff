package engine

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodKeys(t *testing.T) {
	ref := time.Date(2025, time.January, 5, 13, 45, 0, 0, time.UTC) // Sunday
	cases := []struct {
		pt   PeriodType
		want string
	}{
		{PeriodDaily, "2025-01-05"},
		{PeriodWeekly, "2025-W01"}, // ISO week 1 of 2025
		{PeriodMonthly, "2025-01"},
		{PeriodYearly, "2025"},
		{PeriodAllTime, AllTimeKey},
	}
	for _, c := range cases {
		if got := PeriodKey(c.pt, ref); got != c.want {
			t.Errorf("PeriodKey(%s)=%q, want %q", c.pt, got, c.want)
		}
	}

	// Lexicographic order must match chronological order within a window.
	a := PeriodKey(PeriodWeekly, time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC))
	b := PeriodKey(PeriodWeekly, time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC))
	if !(a < b) {
		t.Fatalf("weekly keys out of order: %q vs %q", a, b)
	}
}

func TestRecordWritesEveryWindow(t *testing.T) {
	set := NewBucketSet()
	ref := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	err := Record(set, Increments{Approved: 1, PointsEarned: 5}, ref, true)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	for _, pt := range PeriodTypes {
		entry := set.Entry(pt, PeriodKey(pt, ref))
		if entry == nil {
			t.Fatalf("no %s entry", pt)
		}
		if entry.Approved != 1 || entry.PointsEarned != 5 {
			t.Fatalf("%s entry=%+v", pt, entry)
		}
	}

	// Spending is negative; Net derives.
	if err := Record(set, Increments{PointsSpent: -2}, ref, true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := set.AllTime().Net(); got != 3 {
		t.Fatalf("Net=%v, want 3", got)
	}
}

func TestRecordIntoMissingSetFails(t *testing.T) {
	var missing MissingBucketError
	if err := Record(nil, Increments{Claimed: 1}, time.Now(), true); !errors.As(err, &missing) {
		t.Fatalf("nil set: got %v, want MissingBucketError", err)
	}

	// A torn-down window inside an otherwise live set also refuses writes.
	set := NewBucketSet()
	delete(set, PeriodWeekly)
	if err := Record(set, Increments{Claimed: 1}, time.Now(), true); !errors.As(err, &missing) {
		t.Fatalf("missing window: got %v, want MissingBucketError", err)
	}
}

func TestPruneKeepsRetentionAndAllTime(t *testing.T) {
	set := NewBucketSet()
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	for d := 0; d < 10; d++ {
		if err := Record(set, Increments{Approved: 1}, now.AddDate(0, 0, -d), true); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if got := len(set[PeriodDaily]); got != 10 {
		t.Fatalf("daily entries=%d, want 10", got)
	}

	Prune(set, Retention{PeriodDaily: 3, PeriodAllTime: 1}, now)

	if got := len(set[PeriodDaily]); got != 3 {
		t.Fatalf("daily entries after prune=%d, want 3", got)
	}
	if set.Entry(PeriodDaily, PeriodKey(PeriodDaily, now)) == nil {
		t.Fatal("today pruned")
	}
	if set.Entry(PeriodDaily, PeriodKey(PeriodDaily, now.AddDate(0, 0, -3))) != nil {
		t.Fatal("entry beyond retention survived")
	}
	if all := set.AllTime(); all == nil || all.Approved != 10 {
		t.Fatalf("all_time pruned or wrong: %+v", all)
	}

	// Zero retention means keep everything.
	before := len(set[PeriodMonthly])
	Prune(set, Retention{PeriodMonthly: 0}, now)
	if got := len(set[PeriodMonthly]); got != before {
		t.Fatalf("zero retention pruned: %d -> %d", before, got)
	}
}
