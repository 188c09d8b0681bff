package household

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ccpk1/kidschores-ha-sub008/internal/engine"
	"github.com/ccpk1/kidschores-ha-sub008/internal/storage"
)

// Apply merges a household file into the registry and persists the result.
// Entities are matched by name so re-loading an edited file updates in place
// without losing records, buckets or balances.
func Apply(ctx context.Context, f *File, reg *engine.Registry, store *storage.Store) error {
	byName := map[string]uuid.UUID{}

	for _, kd := range f.Kids {
		mult := kd.Multiplier
		if mult == 0 {
			mult = 1
		}
		kid, err := reg.KidByName(kd.Name)
		if err != nil {
			kid = &engine.Kid{ID: uuid.New(), Name: kd.Name, Multiplier: mult}
			reg.AddKid(kid)
		} else {
			kid.Multiplier = mult
		}
		byName[strings.ToLower(kd.Name)] = kid.ID
		if err := store.SaveKid(ctx, kid); err != nil {
			return fmt.Errorf("save kid %q: %w", kd.Name, err)
		}
	}

	for _, cd := range f.Chores {
		criteria, _ := engine.ParseCompletionCriteria(cd.Criteria)
		reset, _ := engine.ParseResetMode(cd.Reset)
		overdue, _ := engine.ParseOverdueMode(cd.Overdue)
		pending, _ := engine.ParsePendingClaimAction(cd.PendingClaim)
		interval, _ := engine.ParseInterval(cd.Interval)

		assigned := make([]uuid.UUID, 0, len(cd.Assigned))
		for _, name := range cd.Assigned {
			assigned = append(assigned, byName[strings.ToLower(strings.TrimSpace(name))])
		}

		def, err := reg.ChoreByName(cd.Name)
		if err != nil {
			def = &engine.ChoreDefinition{ID: uuid.New(), Name: cd.Name}
			reg.AddChore(def)
		}
		def.Description = cd.Description
		def.AssignedKids = assigned
		def.Criteria = criteria
		def.ResetMode = reset
		def.OverdueMode = overdue
		def.PendingAction = pending
		def.Interval = interval
		def.DueDate = cd.Due
		def.Points = cd.Points
		if err := store.SaveChore(ctx, def); err != nil {
			return fmt.Errorf("save chore %q: %w", cd.Name, err)
		}
	}

	for _, rd := range f.Rewards {
		reward, err := reg.RewardByName(rd.Name)
		if err != nil {
			reward = &engine.Reward{ID: uuid.New(), Name: rd.Name}
			reg.AddReward(reward)
		}
		reward.Description = rd.Description
		reward.Cost = rd.Cost
		if err := store.SaveReward(ctx, reward); err != nil {
			return fmt.Errorf("save reward %q: %w", rd.Name, err)
		}
	}

	for _, pd := range f.Penalties {
		pen, err := reg.PenaltyByName(pd.Name)
		if err != nil {
			pen = &engine.Penalty{ID: uuid.New(), Name: pd.Name}
			reg.AddPenalty(pen)
		}
		pen.Points = pd.Points
		if err := store.SavePenalty(ctx, pen); err != nil {
			return fmt.Errorf("save penalty %q: %w", pd.Name, err)
		}
	}

	return nil
}
