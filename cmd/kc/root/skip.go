package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSkipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skip <chore>",
		Short: "Skip the current due date and move to the next occurrence",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("chore is required")
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

			chore, err := a.svc.Registry().ChoreByName(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.SkipDueDate(ctx, chore.ID, flagActor); err != nil {
				return err
			}
			if chore.DueDate != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s now due %s\n", chore.Name, chore.DueDate.Format("Mon Jan 2 15:04"))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s skipped\n", chore.Name)
			}
			return nil
		},
	}
	return cmd
}
