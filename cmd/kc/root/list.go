package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list [kids|chores|rewards|penalties]",
		Short:     "List household entities",
		ValidArgs: []string{"kids", "chores", "rewards", "penalties"},
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			what := "chores"
			if len(args) == 1 {
				what = args[0]
			}
			out := cmd.OutOrStdout()
			reg := a.svc.Registry()

			switch what {
			case "kids":
				fmt.Fprintln(out, ui.Heading(ui.IconStar, "Kids"))
				for _, k := range reg.Kids() {
					extra := ""
					if k.Multiplier != 1 {
						extra = ui.Muted.Render(fmt.Sprintf("  ×%.2g", k.Multiplier))
					}
					fmt.Fprintf(out, "  %-16s %s%s\n", k.Name, ui.Points(k.Balance), extra)
				}
			case "chores":
				fmt.Fprintln(out, ui.Heading(ui.IconChore, "Chores"))
				for _, c := range reg.Chores() {
					names := make([]string, 0, len(c.AssignedKids))
					for _, id := range c.AssignedKids {
						if k, err := reg.Kid(id); err == nil {
							names = append(names, k.Name)
						}
					}
					due := ""
					if c.DueDate != nil {
						due = ui.Muted.Render("  due " + c.DueDate.Format("Jan 2"))
					}
					fmt.Fprintf(out, "  %-24s %s  %s%s\n",
						c.Name, ui.Points(c.Points), strings.Join(names, ", "), due)
				}
			case "rewards":
				fmt.Fprintln(out, ui.Heading(ui.IconGift, "Rewards"))
				for _, r := range reg.Rewards() {
					fmt.Fprintf(out, "  %-24s %s\n", r.Name, ui.Points(r.Cost))
				}
			case "penalties":
				fmt.Fprintln(out, ui.Heading(ui.IconWarn, "Penalties"))
				for _, p := range reg.Penalties() {
					fmt.Fprintf(out, "  %-24s -%s\n", p.Name, ui.Points(p.Points))
				}
			default:
				return errors.New("unknown subject: " + what)
			}
			return nil
		},
	}
	return cmd
}
