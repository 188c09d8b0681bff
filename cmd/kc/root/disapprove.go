package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newDisapproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disapprove <kid> <chore>",
		Short: "Reject a claim, or revoke an approval granted in error",
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

			if _, err := a.svc.Disapprove(ctx, kid.ID, chore.ID, flagActor); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s disapproved for %s — back to pending\n",
				ui.Warn.Render(ui.IconWarn), chore.Name, kid.Name)
			return nil
		},
	}
	return cmd
}
