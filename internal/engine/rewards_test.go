package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func (f *fixture) addReward(name string, cost float64) *Reward {
	r := &Reward{ID: uuid.New(), Name: name, Cost: cost}
	f.svc.Registry().AddReward(r)
	return r
}

func (f *fixture) addPenalty(name string, points float64) *Penalty {
	p := &Penalty{ID: uuid.New(), Name: name, Points: points}
	f.svc.Registry().AddPenalty(p)
	return p
}

func TestRedeemApproveRewardDeductsAtApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.addKid("Ada", 1)
	reward := f.addReward("movie night", 20)

	if _, err := f.svc.Deposit(ctx, kid.ID, 25, "allowance", "parent"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	claim, err := f.svc.RedeemReward(ctx, kid.ID, reward.ID, "kid")
	if err != nil {
		t.Fatalf("RedeemReward: %v", err)
	}
	if claim.Status != "pending" {
		t.Fatalf("status=%s, want pending", claim.Status)
	}
	if kid.Balance != 25 {
		t.Fatalf("balance=%v at redemption, deduction must wait for approval", kid.Balance)
	}

	// A second redemption of the same reward stacks behind the first.
	_, err = f.svc.RedeemReward(ctx, kid.ID, reward.ID, "kid")
	wantInvalid(t, err, "duplicate pending redemption")

	f.advance(time.Minute)
	resolved, err := f.svc.ApproveReward(ctx, claim.ID, "parent")
	if err != nil {
		t.Fatalf("ApproveReward: %v", err)
	}
	if resolved.Status != "approved" || resolved.ResolvedAt == nil {
		t.Fatalf("resolved=%+v", resolved)
	}
	if kid.Balance != 5 {
		t.Fatalf("balance=%v after approval, want 5", kid.Balance)
	}
	snap, _ := f.svc.Cache().Snapshot(kid.ID)
	if got := snap.Rollups[PeriodDaily].PointsSpent; got != -20 {
		t.Fatalf("daily spent=%v, want -20", got)
	}

	_, err = f.svc.ApproveReward(ctx, claim.ID, "parent")
	wantInvalid(t, err, "double reward approval")
}

func TestRedeemRequiresBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.addKid("Ada", 1)
	reward := f.addReward("movie night", 20)

	_, err := f.svc.RedeemReward(ctx, kid.ID, reward.ID, "kid")
	wantInvalid(t, err, "redeem on empty balance")

	// The balance check repeats at approval: spending in between voids the
	// claim.
	if _, err := f.svc.Deposit(ctx, kid.ID, 20, "allowance", "parent"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	claim, err := f.svc.RedeemReward(ctx, kid.ID, reward.ID, "kid")
	if err != nil {
		t.Fatalf("RedeemReward: %v", err)
	}
	if _, err := f.svc.Withdraw(ctx, kid.ID, 10, "spent elsewhere", "parent"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	_, err = f.svc.ApproveReward(ctx, claim.ID, "parent")
	wantInvalid(t, err, "approval exceeding balance")
}

func TestDisapproveRewardLeavesBalanceAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.addKid("Ada", 1)
	reward := f.addReward("movie night", 10)

	if _, err := f.svc.Deposit(ctx, kid.ID, 10, "allowance", "parent"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	claim, err := f.svc.RedeemReward(ctx, kid.ID, reward.ID, "kid")
	if err != nil {
		t.Fatalf("RedeemReward: %v", err)
	}
	if _, err := f.svc.DisapproveReward(ctx, claim.ID, "parent"); err != nil {
		t.Fatalf("DisapproveReward: %v", err)
	}
	if kid.Balance != 10 {
		t.Fatalf("balance=%v, want 10", kid.Balance)
	}
	if got := len(f.svc.Registry().PendingRewardClaims()); got != 0 {
		t.Fatalf("pending claims=%d, want 0", got)
	}
	// Re-redeeming afterwards is allowed.
	if _, err := f.svc.RedeemReward(ctx, kid.ID, reward.ID, "kid"); err != nil {
		t.Fatalf("redeem after disapproval: %v", err)
	}
}

func TestWithdrawRefusesOverdraftPenaltyDoesNot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.addKid("Ada", 1)
	pen := f.addPenalty("left bike outside", 5)

	if _, err := f.svc.Deposit(ctx, kid.ID, 3, "allowance", "parent"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	_, err := f.svc.Withdraw(ctx, kid.ID, 5, "too much", "parent")
	wantInvalid(t, err, "overdraft withdrawal")

	entry, err := f.svc.ApplyPenalty(ctx, kid.ID, pen.ID, "parent")
	if err != nil {
		t.Fatalf("ApplyPenalty: %v", err)
	}
	if entry.Amount != -5 {
		t.Fatalf("ledger amount=%v, want -5", entry.Amount)
	}
	if kid.Balance != -2 {
		t.Fatalf("balance=%v, penalties may overdraw", kid.Balance)
	}
	snap, _ := f.svc.Cache().Snapshot(kid.ID)
	if got := snap.Rollups[PeriodDaily].PointsSpent; got != -5 {
		t.Fatalf("daily spent=%v, want -5", got)
	}
}

func TestDepositValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.addKid("Ada", 1)

	_, err := f.svc.Deposit(ctx, kid.ID, 0, "zero", "parent")
	wantInvalid(t, err, "zero deposit")
	_, err = f.svc.Deposit(ctx, kid.ID, -1, "negative", "parent")
	wantInvalid(t, err, "negative deposit")

	_, err = f.svc.Deposit(ctx, uuid.New(), 5, "ghost", "parent")
	var ue UnknownEntityError
	if !errors.As(err, &ue) {
		t.Fatalf("unknown kid: got %v", err)
	}
}
