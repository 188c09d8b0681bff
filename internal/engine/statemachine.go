package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Claim puts a kid's record into the claimed state. For shared-first chores
// the claim does not lock siblings; only the first approval does.
func (s *Service) Claim(ctx context.Context, kidID, choreID uuid.UUID, actor string) (*ChoreRecord, error) {
	def, err := s.reg.Chore(choreID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockChore(def)
	defer unlock()

	kid, err := s.reg.Kid(kidID)
	if err != nil {
		return nil, err
	}
	rec, err := s.reg.Record(kidID, choreID)
	if err != nil {
		return nil, err
	}

	if !CanClaim(rec, def.ResetMode) {
		return nil, InvalidTransitionError{Op: "claim", Kid: kid.Name, Chore: def.Name, Reason: claimBlockReason(rec, def)}
	}

	now := s.now()
	if rec.PeriodStart.IsZero() {
		// First activity anchors the record to the current period, so the
		// boundary sweep never mistakes genesis for a crossed boundary.
		rec.PeriodStart = PeriodStartFor(def, now, s.loc)
	}
	rec.LastClaimed = &now
	rec.PendingClaims++
	rec.State = StateClaimed

	commitErr := s.commit(ctx, "claim", &Mutation{Records: []*ChoreRecord{rec}})
	s.bus.Publish(ChoreClaimed{KidID: kidID, ChoreID: choreID, Actor: actor, At: now})
	return rec, commitErr
}

func claimBlockReason(rec *ChoreRecord, def *ChoreDefinition) string {
	switch {
	case rec.State == StateCompletedByOther:
		return "already completed by a sibling"
	case rec.PendingClaims > 0:
		return "a claim is already waiting for approval"
	case def.ResetMode.OncePerPeriod() && ApprovedInCurrentPeriod(rec):
		return "already approved this period"
	default:
		return "claim not allowed"
	}
}

// Approve grants the pending claim, deposits points and advances the due
// date. The record stays approved until the scheduled reset boundary; only
// upon-completion chores bounce straight back to pending. Re-running the
// pending reset for the other modes would silently clear the approval gate
// and permit unlimited same-day re-claims.
func (s *Service) Approve(ctx context.Context, kidID, choreID uuid.UUID, actor string) (*ChoreRecord, error) {
	now := s.now()
	return s.approveAt(ctx, kidID, choreID, actor, now, now)
}

// ApproveEffective approves with an explicit effective date used for period
// bucket keying, so a delayed approval can bucket against the claim date.
func (s *Service) ApproveEffective(ctx context.Context, kidID, choreID uuid.UUID, actor string, effective time.Time) (*ChoreRecord, error) {
	return s.approveAt(ctx, kidID, choreID, actor, s.now(), effective)
}

func (s *Service) approveAt(ctx context.Context, kidID, choreID uuid.UUID, actor string, now, effective time.Time) (*ChoreRecord, error) {
	def, err := s.reg.Chore(choreID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockChore(def)
	defer unlock()

	kid, err := s.reg.Kid(kidID)
	if err != nil {
		return nil, err
	}
	rec, err := s.reg.Record(kidID, choreID)
	if err != nil {
		return nil, err
	}

	if !CanApprove(rec, def.ResetMode) {
		reason := "no pending claim to approve"
		if def.ResetMode.OncePerPeriod() && ApprovedInCurrentPeriod(rec) {
			reason = "already approved this period"
		}
		return nil, InvalidTransitionError{Op: "approve", Kid: kid.Name, Chore: def.Name, Reason: reason}
	}

	approvedAt := now
	rec.LastApproved = &approvedAt
	if rec.PeriodStart.IsZero() {
		rec.PeriodStart = PeriodStartFor(def, now, s.loc)
	}
	rec.PendingClaims = 0
	rec.State = StateApproved

	points := def.Points * kid.Multiplier
	kid.Balance += points
	entry := &LedgerEntry{
		ID:     uuid.New(),
		KidID:  kid.ID,
		Amount: points,
		Reason: "chore approved: " + def.Name,
		Actor:  actor,
		At:     now,
	}

	mut := &Mutation{
		Kids:    []*Kid{kid},
		Records: []*ChoreRecord{rec},
		Ledger:  []*LedgerEntry{entry},
	}

	// Completion signal per criteria decides sibling handling and whether
	// the definition's due date advances.
	complete := false
	switch def.Criteria {
	case CriteriaSharedFirst:
		// First approval wins: lock every sibling out for this period.
		for _, kidOther := range def.AssignedKids {
			if kidOther == kidID {
				continue
			}
			other, err := s.reg.Record(kidOther, choreID)
			if err != nil {
				continue
			}
			if other.State != StateApproved {
				other.State = StateCompletedByOther
				other.PendingClaims = 0
				if other.PeriodStart.IsZero() {
					other.PeriodStart = PeriodStartFor(def, now, s.loc)
				}
				mut.Records = append(mut.Records, other)
			}
		}
		complete = true
	case CriteriaSharedAll:
		complete = true
		for _, kidOther := range def.AssignedKids {
			other, ok := s.reg.RecordIfExists(kidOther, choreID)
			if !ok || other.State != StateApproved {
				complete = false
				break
			}
		}
	default: // independent
		complete = true
	}

	if complete && advanceDue(def, now) {
		mut.Chores = append(mut.Chores, def)
	}

	// The conditional that matters: only upon-completion chores reset to
	// pending here. Everything else waits for the boundary sweep.
	if def.ResetMode == ResetUponCompletion {
		rec.State = StatePending
		rec.PeriodStart = now
	}

	commitErr := s.commit(ctx, "approve", mut)
	s.bus.Publish(ChoreApproved{
		KidID:       kidID,
		ChoreID:     choreID,
		Actor:       actor,
		Points:      points,
		At:          now,
		EffectiveAt: effective,
	})
	s.awardBadges(ctx, kid, now)
	return rec, commitErr
}

// Disapprove rejects a pending claim, or revokes an approval that was
// granted in error. A revoked approval withdraws the deposited points and
// advances PeriodStart so the stale approval stops gating; LastApproved is
// never cleared. For shared-first chores a disapproval undoes the lock on
// every assigned kid.
func (s *Service) Disapprove(ctx context.Context, kidID, choreID uuid.UUID, actor string) (*ChoreRecord, error) {
	def, err := s.reg.Chore(choreID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockChore(def)
	defer unlock()

	kid, err := s.reg.Kid(kidID)
	if err != nil {
		return nil, err
	}
	rec, err := s.reg.Record(kidID, choreID)
	if err != nil {
		return nil, err
	}

	if rec.PendingClaims == 0 && rec.State != StateApproved {
		return nil, InvalidTransitionError{Op: "disapprove", Kid: kid.Name, Chore: def.Name, Reason: "nothing to disapprove"}
	}

	now := s.now()
	var revoked float64
	if rec.State == StateApproved {
		revoked = def.Points * kid.Multiplier
		kid.Balance -= revoked
		rec.PeriodStart = now // invalidates the approval without deleting it
	}
	rec.PendingClaims = 0
	rec.State = StatePending

	mut := &Mutation{Kids: []*Kid{kid}, Records: []*ChoreRecord{rec}}
	if revoked != 0 {
		mut.Ledger = append(mut.Ledger, &LedgerEntry{
			ID:     uuid.New(),
			KidID:  kid.ID,
			Amount: -revoked,
			Reason: "chore disapproved: " + def.Name,
			Actor:  actor,
			At:     now,
		})
	}

	if def.Criteria == CriteriaSharedFirst {
		// Undo the first-wins lock for everyone.
		for _, kidOther := range def.AssignedKids {
			if kidOther == kidID {
				continue
			}
			other, ok := s.reg.RecordIfExists(kidOther, choreID)
			if !ok {
				continue
			}
			if other.State == StateCompletedByOther {
				other.State = StatePending
				mut.Records = append(mut.Records, other)
			}
		}
	}

	commitErr := s.commit(ctx, "disapprove", mut)
	s.bus.Publish(ChoreDisapproved{KidID: kidID, ChoreID: choreID, Actor: actor, At: now, PointsRevoked: revoked})
	return rec, commitErr
}

// UndoClaim lets a kid retract their own unapproved claim.
func (s *Service) UndoClaim(ctx context.Context, kidID, choreID uuid.UUID, actor string) (*ChoreRecord, error) {
	def, err := s.reg.Chore(choreID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockChore(def)
	defer unlock()

	kid, err := s.reg.Kid(kidID)
	if err != nil {
		return nil, err
	}
	rec, err := s.reg.Record(kidID, choreID)
	if err != nil {
		return nil, err
	}
	if rec.State != StateClaimed || rec.PendingClaims == 0 {
		return nil, InvalidTransitionError{Op: "undo", Kid: kid.Name, Chore: def.Name, Reason: "no claim to undo"}
	}

	now := s.now()
	rec.PendingClaims = 0
	rec.State = StatePending

	commitErr := s.commit(ctx, "undo", &Mutation{Records: []*ChoreRecord{rec}})
	s.bus.Publish(ChoreStatusReset{
		ChoreID: choreID,
		KidIDs:  []uuid.UUID{kidID},
		Actor:   actor,
		Reason:  "claim undone",
		At:      now,
	})
	return rec, commitErr
}

// SkipDueDate advances a chore to its next occurrence without requiring
// completion, clearing any overdue marks. The next-due computation is pure;
// the state reset here is the explicit, caller-visible side effect.
func (s *Service) SkipDueDate(ctx context.Context, choreID uuid.UUID, actor string) error {
	def, err := s.reg.Chore(choreID)
	if err != nil {
		return err
	}
	unlock := s.lockChore(def)
	defer unlock()
	now := s.now()

	mut := &Mutation{}
	if advanceDue(def, now) {
		mut.Chores = append(mut.Chores, def)
	}

	var touched []uuid.UUID
	records, err := s.reg.AssignedRecords(choreID)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.State == StateOverdue {
			rec.State = StatePending
			mut.Records = append(mut.Records, rec)
			touched = append(touched, rec.KidID)
		}
	}

	commitErr := s.commit(ctx, "skip", mut)
	s.bus.Publish(ChoreStatusReset{ChoreID: choreID, KidIDs: touched, Actor: actor, Reason: "due date skipped", At: now})
	return commitErr
}

// MarkOverdueIfDue scans assigned kids whose current period is not approved
// and whose due date has passed. Idempotent: an already-overdue record is
// left alone. Returns the kids newly marked.
func (s *Service) MarkOverdueIfDue(ctx context.Context, choreID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	def, err := s.reg.Chore(choreID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockChore(def)
	defer unlock()

	if def.DueDate == nil || now.Before(*def.DueDate) {
		return nil, nil
	}

	if def.OverdueMode == OverdueNever {
		// Silently reschedule, no marking.
		if next, ok := NextDueDate(*def.DueDate, def.Interval, now); ok {
			d := next
			def.DueDate = &d
			return nil, s.commit(ctx, "reschedule", &Mutation{Chores: []*ChoreDefinition{def}})
		}
		return nil, nil
	}

	records, err := s.reg.AssignedRecords(choreID)
	if err != nil {
		return nil, err
	}
	mut := &Mutation{}
	var marked []uuid.UUID
	for _, rec := range records {
		if rec.State != StatePending {
			continue
		}
		if ApprovedInCurrentPeriod(rec) {
			continue
		}
		rec.State = StateOverdue
		mut.Records = append(mut.Records, rec)
		marked = append(marked, rec.KidID)
	}
	if len(marked) == 0 {
		return nil, nil
	}

	commitErr := s.commit(ctx, "overdue", mut)
	for _, kidID := range marked {
		s.bus.Publish(ChoreOverdue{KidID: kidID, ChoreID: choreID, At: now})
	}
	return marked, commitErr
}

// ResetAtBoundary advances the approval period for every assigned kid whose
// boundary has passed, snapping approved (and, depending on the overdue
// mode, overdue) records back to pending and resolving leftover claims per
// the configured pending-claim action. Calling it again with no intervening
// activity is a no-op.
func (s *Service) ResetAtBoundary(ctx context.Context, choreID uuid.UUID, now time.Time) error {
	def, err := s.reg.Chore(choreID)
	if err != nil {
		return err
	}
	if def.ResetMode == ResetUponCompletion {
		return nil // resets happen inline at approval
	}
	unlock := s.lockChore(def)
	defer unlock()

	records, err := s.reg.AssignedRecords(choreID)
	if err != nil {
		return err
	}

	mut := &Mutation{}
	var touched []uuid.UUID
	var synthesized []Event
	clearedOverdue := false
	for _, rec := range records {
		if rec.PeriodStart.IsZero() {
			// A record with no activity yet has nothing to reset. Anchor it
			// to the current period; treating genesis as a crossed boundary
			// would clear an overdue mark in the same sweep that set it.
			rec.PeriodStart = PeriodStartFor(def, now, s.loc)
			mut.Records = append(mut.Records, rec)
			continue
		}
		boundary := boundaryFor(def, rec.PeriodStart, now, s.loc)
		if boundary.After(now) || !boundary.After(rec.PeriodStart) {
			continue
		}

		if rec.PendingClaims > 0 {
			switch def.PendingAction {
			case PendingHold:
				// Leave the claim waiting; only advance the period.
				rec.PeriodStart = boundary
				mut.Records = append(mut.Records, rec)
				touched = append(touched, rec.KidID)
				continue
			case PendingAutoApprove:
				if ev, ok := s.synthesizeApproval(rec, def, boundary, mut); ok {
					synthesized = append(synthesized, ev)
				}
			default: // clear
				rec.PendingClaims = 0
			}
		}

		rec.PeriodStart = boundary
		switch rec.State {
		case StateApproved, StateClaimed, StateCompletedByOther:
			rec.State = StatePending
		case StateOverdue:
			// at_due_date keeps the mark until completion; then_reset
			// clears it at the boundary without requiring one.
			if def.OverdueMode == OverdueAtDueDateThenReset {
				rec.State = StatePending
				clearedOverdue = true
			}
		}
		mut.Records = append(mut.Records, rec)
		touched = append(touched, rec.KidID)
	}

	if len(mut.Records) == 0 {
		return nil
	}

	// A cleared overdue mark without completion moves the chore on to its
	// next occurrence, otherwise it would go straight back to overdue.
	if clearedOverdue && def.DueDate != nil {
		if next, ok := NextDueDate(*def.DueDate, def.Interval, now); ok {
			d := next
			def.DueDate = &d
			mut.Chores = append(mut.Chores, def)
		}
	}

	commitErr := s.commit(ctx, "reset", mut)
	for _, ev := range synthesized {
		s.bus.Publish(ev)
	}
	if len(touched) > 0 {
		s.bus.Publish(ChoreStatusReset{ChoreID: choreID, KidIDs: touched, Reason: "period boundary", At: now})
	}
	return commitErr
}

// boundaryFor computes the most recent boundary at or before now that is
// after periodStart, so repeated sweeps converge on the same period start.
func boundaryFor(def *ChoreDefinition, periodStart, now time.Time, loc *time.Location) time.Time {
	switch def.ResetMode {
	case ResetAtMidnightOnce, ResetAtMidnightMulti:
		return StartOfDay(now, loc)
	case ResetAtDueDateOnce, ResetAtDueDateMulti:
		if def.DueDate == nil {
			return StartOfDay(now, loc)
		}
		if !def.DueDate.After(now) {
			return *def.DueDate
		}
		// The due date already advanced past now; the boundary is the
		// previous occurrence.
		prev := previousOccurrence(*def.DueDate, def.Interval, now)
		return prev
	default:
		return now
	}
}

// advanceDue moves the definition to its next occurrence. Completing or
// skipping ahead of schedule still advances a full interval; otherwise the
// chore would sit on a passed due date after the next boundary reset.
func advanceDue(def *ChoreDefinition, now time.Time) bool {
	if def.DueDate == nil {
		return false
	}
	after := now
	if def.DueDate.After(after) {
		after = *def.DueDate
	}
	next, ok := NextDueDate(*def.DueDate, def.Interval, after)
	if !ok {
		return false
	}
	d := next
	def.DueDate = &d
	return true
}

func previousOccurrence(due time.Time, interval Interval, before time.Time) time.Time {
	prev := due
	for i := 0; i < 10_000 && prev.After(before); i++ {
		switch interval {
		case IntervalDaily:
			prev = prev.AddDate(0, 0, -1)
		case IntervalWeekly:
			prev = prev.AddDate(0, 0, -7)
		case IntervalMonthly:
			prev = prev.AddDate(0, -1, 0)
		default:
			return due
		}
	}
	return prev
}

// synthesizeApproval applies the auto-approve pending action: award the
// points as if a parent had approved at the boundary. The event is returned
// so the caller can publish it after the commit.
func (s *Service) synthesizeApproval(rec *ChoreRecord, def *ChoreDefinition, at time.Time, mut *Mutation) (Event, bool) {
	kid, err := s.reg.Kid(rec.KidID)
	if err != nil {
		return nil, false
	}
	approvedAt := at
	rec.LastApproved = &approvedAt
	rec.PendingClaims = 0

	points := def.Points * kid.Multiplier
	kid.Balance += points
	mut.Kids = append(mut.Kids, kid)
	mut.Ledger = append(mut.Ledger, &LedgerEntry{
		ID:     uuid.New(),
		KidID:  kid.ID,
		Amount: points,
		Reason: "chore auto-approved: " + def.Name,
		Actor:  "system",
		At:     at,
	})
	return ChoreApproved{
		KidID:       rec.KidID,
		ChoreID:     rec.ChoreID,
		Actor:       "system",
		Points:      points,
		At:          at,
		EffectiveAt: at,
	}, true
}

// ResetAll snaps every record of a chore back to pending and advances the
// period, regardless of boundaries. Parent-initiated.
func (s *Service) ResetAll(ctx context.Context, choreID uuid.UUID, actor string) error {
	def, err := s.reg.Chore(choreID)
	if err != nil {
		return err
	}
	unlock := s.lockChore(def)
	defer unlock()

	records, err := s.reg.AssignedRecords(choreID)
	if err != nil {
		return err
	}

	now := s.now()
	mut := &Mutation{}
	var touched []uuid.UUID
	for _, rec := range records {
		rec.PendingClaims = 0
		rec.State = StatePending
		rec.PeriodStart = now
		mut.Records = append(mut.Records, rec)
		touched = append(touched, rec.KidID)
	}

	commitErr := s.commit(ctx, "reset all", mut)
	s.bus.Publish(ChoreStatusReset{ChoreID: def.ID, KidIDs: touched, Actor: actor, Reason: "manual reset", At: now})
	return commitErr
}

// ResetOverdue clears overdue marks on every chore without touching other
// states. Parent-initiated.
func (s *Service) ResetOverdue(ctx context.Context, actor string) error {
	now := s.now()
	var firstErr error
	for _, def := range s.reg.Chores() {
		unlock := s.lockChore(def)
		mut := &Mutation{}
		var kids []uuid.UUID
		for _, kidID := range def.AssignedKids {
			rec, ok := s.reg.RecordIfExists(kidID, def.ID)
			if !ok || rec.State != StateOverdue {
				continue
			}
			rec.State = StatePending
			mut.Records = append(mut.Records, rec)
			kids = append(kids, kidID)
		}
		if len(mut.Records) == 0 {
			unlock()
			continue
		}
		err := s.commit(ctx, "reset overdue", mut)
		s.bus.Publish(ChoreStatusReset{ChoreID: def.ID, KidIDs: kids, Actor: actor, Reason: "overdue cleared", At: now})
		unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Sweep runs the background pass: overdue detection plus boundary resets for
// every chore. Safe to call more often than state changes; re-evaluating an
// already-correct state does nothing. Snapshot rebuilds are coalesced.
func (s *Service) Sweep(ctx context.Context) error {
	now := s.now()
	s.cache.BeginBatch()
	defer s.cache.EndBatch()

	var firstErr error
	for _, def := range s.reg.Chores() {
		if _, err := s.MarkOverdueIfDue(ctx, def.ID, now); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := s.ResetAtBoundary(ctx, def.ID, now); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
