package root

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/config"
	"github.com/ccpk1/kidschores-ha-sub008/internal/household"
	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write starter config and household files in ./.kidschores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			dir := filepath.Join(cwd, ".kidschores")
			configPath := filepath.Join(dir, "config.yaml")
			householdPath := filepath.Join(dir, "household.yaml")

			for _, p := range []string{configPath, householdPath} {
				if _, err := os.Stat(p); err == nil && !force {
					return fmt.Errorf("%s already exists (use --force to overwrite)", p)
				}
			}

			if err := config.WriteStarter(configPath); err != nil {
				return err
			}
			if err := os.WriteFile(householdPath, household.Starter(), 0o644); err != nil {
				return fmt.Errorf("write household file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Good.Render(ui.IconDone)+" wrote "+configPath)
			fmt.Fprintln(out, ui.Good.Render(ui.IconDone)+" wrote "+householdPath)
			fmt.Fprintln(out, ui.Muted.Render("edit household.yaml, then run: kc load"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}
