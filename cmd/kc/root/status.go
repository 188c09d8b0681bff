package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/engine"
	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <kid>",
		Short: "Show a kid's balance, streak, badges and chore board",
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
			snap, ok := a.svc.Cache().Snapshot(kid.ID)
			if !ok {
				return fmt.Errorf("no snapshot for %s", kid.Name)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconStar, snap.KidName))
			fmt.Fprintln(out, ui.LabelValue("Balance", ui.Points(snap.Balance)))
			if snap.Streak > 0 {
				fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d days", ui.IconFire, snap.Streak)))
			}
			if len(snap.Badges) > 0 {
				fmt.Fprintln(out, ui.LabelValue("Badges", strings.Join(snap.Badges, ", ")))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.H2.Render("Chores"))
			if len(snap.Chores) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("  nothing assigned"))
			}
			for _, cs := range snap.Chores {
				line := fmt.Sprintf("  %s %-24s %s", ui.IconChore, cs.ChoreName, ui.StateText(string(cs.State)))
				if cs.DaysOverdue > 0 {
					line += ui.Bad.Render(fmt.Sprintf("  %dd late", cs.DaysOverdue))
				} else if cs.DueDate != nil {
					line += ui.Muted.Render("  due " + cs.DueDate.Format("Jan 2"))
				}
				fmt.Fprintln(out, line)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.H2.Render("Totals"))
			for _, pt := range []engine.PeriodType{engine.PeriodDaily, engine.PeriodWeekly, engine.PeriodMonthly, engine.PeriodAllTime} {
				r := snap.Rollups[pt]
				fmt.Fprintf(out, "  %-9s %3d done   %s earned\n",
					rollupLabel(pt), r.Approved, ui.Points(r.PointsEarned))
			}
			return nil
		},
	}
	return cmd
}

func rollupLabel(pt engine.PeriodType) string {
	switch pt {
	case engine.PeriodDaily:
		return "today"
	case engine.PeriodWeekly:
		return "this week"
	case engine.PeriodMonthly:
		return "month"
	case engine.PeriodAllTime:
		return "all time"
	default:
		return string(pt)
	}
}
