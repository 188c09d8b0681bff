package engine

import "time"

// Approval-reset decision logic. Pure: callers pass the record and clock;
// nothing here mutates state or reads the wall clock.

// ApprovedInCurrentPeriod reports whether the record holds an approval that
// still counts. This single comparison is the only gate against repeat
// approvals: LastApproved is never cleared, only PeriodStart moves forward.
// The comparison is strict: an approval stamped exactly at the period start
// belongs to the period that ended there (boundary auto-approvals, and
// revocations that advance PeriodStart to the approval instant).
func ApprovedInCurrentPeriod(rec *ChoreRecord) bool {
	return rec.LastApproved != nil && rec.LastApproved.After(rec.PeriodStart)
}

// CanClaim reports whether a new claim is allowed right now.
//
// A pending claim blocks a second simultaneous claim in every mode. The
// *_once modes additionally block while an approval falls inside the current
// period. A record locked out by a sibling (shared-first) cannot claim.
func CanClaim(rec *ChoreRecord, mode ResetMode) bool {
	if rec.PendingClaims > 0 {
		return false
	}
	if rec.State == StateCompletedByOther {
		return false
	}
	if mode.OncePerPeriod() && ApprovedInCurrentPeriod(rec) {
		return false
	}
	return true
}

// CanApprove reports whether an approval is allowed right now. It mirrors
// CanClaim but is evaluated against the presence of a claim to approve.
func CanApprove(rec *ChoreRecord, mode ResetMode) bool {
	if rec.PendingClaims == 0 {
		return false
	}
	if mode.OncePerPeriod() && ApprovedInCurrentPeriod(rec) {
		return false
	}
	return true
}

// NextResetBoundary computes when the record's approval gate next clears.
// For the midnight modes that is the next local midnight; for the due-date
// modes the next occurrence of the recurrence. UponCompletion resets
// immediately, reported as ok=false.
func NextResetBoundary(rec *ChoreRecord, def *ChoreDefinition, now time.Time, loc *time.Location) (time.Time, bool) {
	switch def.ResetMode {
	case ResetAtMidnightOnce, ResetAtMidnightMulti:
		return NextMidnight(now, loc), true
	case ResetAtDueDateOnce, ResetAtDueDateMulti:
		if def.DueDate == nil {
			return NextMidnight(now, loc), true
		}
		if def.DueDate.After(now) {
			return *def.DueDate, true
		}
		if next, ok := NextDueDate(*def.DueDate, def.Interval, now); ok {
			return next, true
		}
		return NextMidnight(now, loc), true
	default: // ResetUponCompletion
		return time.Time{}, false
	}
}

// PeriodStartFor returns the start of the approval period containing now:
// midnight for the midnight modes, the most recent due occurrence for the
// due-date modes, and now itself for upon-completion.
func PeriodStartFor(def *ChoreDefinition, now time.Time, loc *time.Location) time.Time {
	switch def.ResetMode {
	case ResetAtMidnightOnce, ResetAtMidnightMulti:
		return StartOfDay(now, loc)
	case ResetAtDueDateOnce, ResetAtDueDateMulti:
		if def.DueDate != nil && !def.DueDate.After(now) {
			return *def.DueDate
		}
		return StartOfDay(now, loc)
	default:
		return now
	}
}
