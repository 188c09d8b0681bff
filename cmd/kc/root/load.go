package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/household"
	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [household.yaml]",
		Short: "Load household definitions (kids, chores, rewards, penalties)",
		Long: "Load merges the household file into the database by name: existing\n" +
			"kids keep their balances and history, existing chores keep their\n" +
			"per-kid state. New entries are created, changed fields are updated.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			path := a.cfg.HouseholdFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				if cwd, err := os.Getwd(); err == nil {
					p := filepath.Join(cwd, ".kidschores", "household.yaml")
					if _, err := os.Stat(p); err == nil {
						path = p
					}
				}
			}
			if path == "" {
				return errors.New("no household file: pass a path or set household_file in config")
			}

			f, err := household.LoadFile(path)
			if err != nil {
				return err
			}
			if err := household.Apply(ctx, f, a.svc.Registry(), a.store); err != nil {
				return err
			}
			a.svc.Cache().RebuildAll()

			reg := a.svc.Registry()
			fmt.Fprintf(cmd.OutOrStdout(), "%s loaded %s: %d kids, %d chores, %d rewards, %d penalties\n",
				ui.Good.Render(ui.IconDone), path,
				len(reg.Kids()), len(reg.Chores()), len(reg.Rewards()), len(reg.Penalties()))
			return nil
		},
	}
	return cmd
}
