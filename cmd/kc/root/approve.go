package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newApproveCmd() *cobra.Command {
	var effective string

	cmd := &cobra.Command{
		Use:   "approve <kid> <chore>",
		Short: "Approve a kid's claim and award points",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("kid and chore are required")
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
			chore, err := reg.ChoreByName(args[1])
			if err != nil {
				return err
			}

			if effective != "" {
				eff, err := time.Parse("2006-01-02", effective)
				if err != nil {
					return fmt.Errorf("parse --effective: %w", err)
				}
				if _, err := a.svc.ApproveEffective(ctx, kid.ID, chore.ID, flagActor, eff); err != nil {
					return err
				}
			} else if _, err := a.svc.Approve(ctx, kid.ID, chore.ID, flagActor); err != nil {
				return err
			}

			snap, _ := a.svc.Cache().Snapshot(kid.ID)
			balance := kid.Balance
			if snap != nil {
				balance = snap.Balance
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s approved for %s — +%s points (balance %s)\n",
				ui.Good.Render(ui.IconSparkle), chore.Name, kid.Name,
				ui.Points(chore.Points*kid.Multiplier), ui.Points(balance))
			return nil
		},
	}
	cmd.Flags().StringVar(&effective, "effective", "", "effective date (YYYY-MM-DD) for period bucketing, e.g. the claim date")
	return cmd
}
