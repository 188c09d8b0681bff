package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo <kid> <chore>",
		Short: "Retract an unapproved claim",
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

			if _, err := a.svc.UndoClaim(ctx, kid.ID, chore.ID, flagActor); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claim on %s undone for %s\n", chore.Name, kid.Name)
			return nil
		},
	}
	return cmd
}
