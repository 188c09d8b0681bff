package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newRewardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Redeem and resolve rewards",
	}
	cmd.AddCommand(newRewardRedeemCmd(), newRewardApproveCmd(), newRewardDisapproveCmd(), newRewardListCmd())
	return cmd
}

func newRewardRedeemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem <kid> <reward>",
		Short: "Redeem a reward (waits for parental approval)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("kid and reward are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			reg := a.svc.Registry()
			kid, err := reg.KidByName(args[0])
			if err != nil {
				return err
			}
			reward, err := reg.RewardByName(args[1])
			if err != nil {
				return err
			}

			claim, err := a.svc.RedeemReward(ctx, kid.ID, reward.ID, flagActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s requested %s — pending approval (%s)\n",
				ui.Gold.Render(ui.IconGift), kid.Name, reward.Name, shortID(claim.ID.String()))
			return nil
		},
	}
	return cmd
}

func newRewardApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <claim-id>",
		Short: "Approve a pending redemption and deduct its cost",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("claim id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolveRewardClaim(cmd, args[0], true)
		},
	}
	return cmd
}

func newRewardDisapproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disapprove <claim-id>",
		Short: "Reject a pending redemption",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("claim id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolveRewardClaim(cmd, args[0], false)
		},
	}
	return cmd
}

func newRewardListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending redemptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			reg := a.svc.Registry()
			claims := reg.PendingRewardClaims()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconGift, "Pending redemptions"))
			if len(claims) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("  none"))
				return nil
			}
			for _, c := range claims {
				name, cost := "?", 0.0
				if r, err := reg.Reward(c.RewardID); err == nil {
					name, cost = r.Name, r.Cost
				}
				who := "?"
				if k, err := reg.Kid(c.KidID); err == nil {
					who = k.Name
				}
				fmt.Fprintf(out, "  %s  %-14s wants %-20s %s  %s\n",
					shortID(c.ID.String()), who, name, ui.Points(cost),
					ui.Muted.Render(c.ClaimedAt.Format("Jan 2 15:04")))
			}
			return nil
		},
	}
	return cmd
}

// resolveRewardClaim matches the given id prefix against pending claims, so
// parents can paste the short form printed by `reward list`.
func resolveRewardClaim(cmd *cobra.Command, idArg string, approve bool) error {
	ctx := context.Background()
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := a.svc.Registry()
	var matches []uuid.UUID
	for _, c := range reg.PendingRewardClaims() {
		if strings.HasPrefix(c.ID.String(), strings.ToLower(idArg)) {
			matches = append(matches, c.ID)
		}
	}
	switch len(matches) {
	case 0:
		return fmt.Errorf("no pending claim matches %q", idArg)
	case 1:
	default:
		return fmt.Errorf("%q is ambiguous: %d pending claims match", idArg, len(matches))
	}

	if approve {
		claim, err := a.svc.ApproveReward(ctx, matches[0], flagActor)
		if err != nil {
			return err
		}
		r, _ := reg.Reward(claim.RewardID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s reward approved (-%s)\n",
			ui.Good.Render(ui.IconDone), ui.Points(r.Cost))
		return nil
	}
	if _, err := a.svc.DisapproveReward(ctx, matches[0], flagActor); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "redemption rejected")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
