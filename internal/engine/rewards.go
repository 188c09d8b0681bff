package engine

import (
	"context"

	"github.com/google/uuid"
)

// RedeemReward opens a pending reward claim. Points are checked but not yet
// deducted; the deduction happens at parent approval.
func (s *Service) RedeemReward(ctx context.Context, kidID, rewardID uuid.UUID, actor string) (*RewardClaim, error) {
	kid, err := s.reg.Kid(kidID)
	if err != nil {
		return nil, err
	}
	reward, err := s.reg.Reward(rewardID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockKid(kid.ID)
	defer unlock()
	if kid.Balance < reward.Cost {
		return nil, InvalidTransitionError{Op: "redeem", Kid: kid.Name, Chore: reward.Name, Reason: "insufficient points"}
	}
	for _, c := range s.reg.PendingRewardClaims() {
		if c.KidID == kidID && c.RewardID == rewardID {
			return nil, InvalidTransitionError{Op: "redeem", Kid: kid.Name, Chore: reward.Name, Reason: "a claim is already waiting for approval"}
		}
	}

	now := s.now()
	claim := &RewardClaim{
		ID:        uuid.New(),
		RewardID:  reward.ID,
		KidID:     kid.ID,
		Status:    "pending",
		ClaimedAt: now,
	}
	s.reg.AddRewardClaim(claim)

	commitErr := s.commit(ctx, "redeem", &Mutation{RewardClaims: []*RewardClaim{claim}})
	s.bus.Publish(RewardRedeemed{KidID: kid.ID, RewardID: reward.ID, ClaimID: claim.ID, Actor: actor, At: now})
	return claim, commitErr
}

// ApproveReward resolves a pending claim, deducting the cost.
func (s *Service) ApproveReward(ctx context.Context, claimID uuid.UUID, actor string) (*RewardClaim, error) {
	claim, err := s.reg.RewardClaim(claimID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockKid(claim.KidID)
	defer unlock()
	if claim.Status != "pending" {
		return nil, InvalidTransitionError{Op: "approve reward", Reason: "claim already resolved"}
	}
	kid, err := s.reg.Kid(claim.KidID)
	if err != nil {
		return nil, err
	}
	reward, err := s.reg.Reward(claim.RewardID)
	if err != nil {
		return nil, err
	}
	if kid.Balance < reward.Cost {
		return nil, InvalidTransitionError{Op: "approve reward", Kid: kid.Name, Chore: reward.Name, Reason: "insufficient points"}
	}

	now := s.now()
	claim.Status = "approved"
	claim.ResolvedAt = &now
	kid.Balance -= reward.Cost
	entry := &LedgerEntry{
		ID:     uuid.New(),
		KidID:  kid.ID,
		Amount: -reward.Cost,
		Reason: "reward: " + reward.Name,
		Actor:  actor,
		At:     now,
	}

	commitErr := s.commit(ctx, "approve reward", &Mutation{
		Kids:         []*Kid{kid},
		Ledger:       []*LedgerEntry{entry},
		RewardClaims: []*RewardClaim{claim},
	})
	s.bus.Publish(PointsSpent{KidID: kid.ID, Actor: actor, Amount: -reward.Cost, Reason: "reward: " + reward.Name, At: now})
	s.bus.Publish(RewardApproved{KidID: kid.ID, RewardID: reward.ID, ClaimID: claim.ID, Actor: actor, Cost: reward.Cost, At: now})
	return claim, commitErr
}

// DisapproveReward drops a pending claim without any points movement.
func (s *Service) DisapproveReward(ctx context.Context, claimID uuid.UUID, actor string) (*RewardClaim, error) {
	claim, err := s.reg.RewardClaim(claimID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockKid(claim.KidID)
	defer unlock()
	if claim.Status != "pending" {
		return nil, InvalidTransitionError{Op: "disapprove reward", Reason: "claim already resolved"}
	}

	now := s.now()
	claim.Status = "disapproved"
	claim.ResolvedAt = &now

	commitErr := s.commit(ctx, "disapprove reward", &Mutation{RewardClaims: []*RewardClaim{claim}})
	return claim, commitErr
}
