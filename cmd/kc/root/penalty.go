package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newPenaltyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "penalty <kid> <penalty>",
		Short: "Apply a named penalty to a kid",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("kid and penalty are required")
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
			pen, err := reg.PenaltyByName(args[1])
			if err != nil {
				return err
			}

			entry, err := a.svc.ApplyPenalty(ctx, kid.ID, pen.ID, flagActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s applied to %s (%s, balance %s)\n",
				ui.Warn.Render(ui.IconWarn), pen.Name, kid.Name,
				ui.Points(entry.Amount), ui.Points(kid.Balance))
			return nil
		},
	}
	return cmd
}
