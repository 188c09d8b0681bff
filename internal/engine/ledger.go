package engine

import (
	"context"

	"github.com/google/uuid"
)

// Deposit adds points to a kid's balance outside the chore flow (allowance,
// manual adjustment).
func (s *Service) Deposit(ctx context.Context, kidID uuid.UUID, amount float64, reason, actor string) (*LedgerEntry, error) {
	kid, err := s.reg.Kid(kidID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockKid(kid.ID)
	defer unlock()
	if amount <= 0 {
		return nil, InvalidTransitionError{Op: "deposit", Kid: kid.Name, Reason: "amount must be positive"}
	}

	now := s.now()
	kid.Balance += amount
	entry := &LedgerEntry{
		ID:     uuid.New(),
		KidID:  kid.ID,
		Amount: amount,
		Reason: reason,
		Actor:  actor,
		At:     now,
	}

	commitErr := s.commit(ctx, "deposit", &Mutation{Kids: []*Kid{kid}, Ledger: []*LedgerEntry{entry}})
	s.bus.Publish(PointsEarned{KidID: kid.ID, Actor: actor, Amount: amount, Reason: reason, At: now})
	return entry, commitErr
}

// Withdraw removes points from a kid's balance. The balance may not go
// negative through a plain withdrawal; penalties use applyPenalty, which may
// overdraw.
func (s *Service) Withdraw(ctx context.Context, kidID uuid.UUID, amount float64, reason, actor string) (*LedgerEntry, error) {
	kid, err := s.reg.Kid(kidID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockKid(kid.ID)
	defer unlock()
	if amount <= 0 {
		return nil, InvalidTransitionError{Op: "withdraw", Kid: kid.Name, Reason: "amount must be positive"}
	}
	if kid.Balance < amount {
		return nil, InvalidTransitionError{Op: "withdraw", Kid: kid.Name, Reason: "insufficient points"}
	}

	now := s.now()
	kid.Balance -= amount
	entry := &LedgerEntry{
		ID:     uuid.New(),
		KidID:  kid.ID,
		Amount: -amount,
		Reason: reason,
		Actor:  actor,
		At:     now,
	}

	commitErr := s.commit(ctx, "withdraw", &Mutation{Kids: []*Kid{kid}, Ledger: []*LedgerEntry{entry}})
	s.bus.Publish(PointsSpent{KidID: kid.ID, Actor: actor, Amount: -amount, Reason: reason, At: now})
	return entry, commitErr
}

// ApplyPenalty deducts a named penalty from the kid. Penalties may push the
// balance negative.
func (s *Service) ApplyPenalty(ctx context.Context, kidID, penaltyID uuid.UUID, actor string) (*LedgerEntry, error) {
	kid, err := s.reg.Kid(kidID)
	if err != nil {
		return nil, err
	}
	pen, err := s.reg.Penalty(penaltyID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockKid(kid.ID)
	defer unlock()

	now := s.now()
	kid.Balance -= pen.Points
	entry := &LedgerEntry{
		ID:     uuid.New(),
		KidID:  kid.ID,
		Amount: -pen.Points,
		Reason: "penalty: " + pen.Name,
		Actor:  actor,
		At:     now,
	}

	commitErr := s.commit(ctx, "penalty", &Mutation{Kids: []*Kid{kid}, Ledger: []*LedgerEntry{entry}})
	s.bus.Publish(PenaltyApplied{KidID: kid.ID, PenaltyID: pen.ID, Actor: actor, Points: -pen.Points, At: now})
	return entry, commitErr
}
