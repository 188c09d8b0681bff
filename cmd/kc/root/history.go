package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <kid>",
		Short: "Show a kid's point ledger, newest first",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("kid is required")
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

			kid, err := a.svc.Registry().KidByName(args[0])
			if err != nil {
				return err
			}
			entries, err := a.store.LedgerHistory(ctx, kid.ID, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCoin, kid.Name+" — ledger"))
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("  no activity yet"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "  %s  %8s  %s %s\n",
					e.At.Format("Jan 02 15:04"), ui.Points(e.Amount),
					e.Reason, ui.Muted.Render("by "+e.Actor))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max entries to show")
	return cmd
}
