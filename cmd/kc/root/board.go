package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Interactive chore board",
		Long: "Board shows every kid's chores side by side and lets you claim,\n" +
			"approve and disapprove with single keys. A background sweep marks\n" +
			"overdue chores and runs period resets while the board is open.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, a.svc, flagActor, a.cfg.SweepInterval, cmd.OutOrStdout())
		},
	}
	return cmd
}
