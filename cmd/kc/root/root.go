package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

const Version = "0.1.0"

var (
	flagConfig  string
	flagVerbose bool
	flagActor   string
)

var rootCmd = &cobra.Command{
	Use:           "kc",
	Short:         "KidsChores — household chore tracker with points and streaks",
	Long:          "KidsChores is a local-first CLI/TUI chore tracker: kids claim chores, parents approve, points and streaks follow.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagActor, "by", "parent", "acting user recorded on transitions")

	rootCmd.AddCommand(
		newInitCmd(),
		newLoadCmd(),
		newClaimCmd(),
		newApproveCmd(),
		newDisapproveCmd(),
		newUndoCmd(),
		newSkipCmd(),
		newSweepCmd(),
		newStatusCmd(),
		newListCmd(),
		newHistoryCmd(),
		newRewardCmd(),
		newPenaltyCmd(),
		newPointsCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
