// Command settle computes settlement summaries offline from a JSON snapshot
// of members, expenses and settlements.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/pkg/logging"
)

var (
	snapshotPath string
	verbose      bool
	maxExpenses  int
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "settle",
		Short:         "Compute who owes whom from an expense snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&snapshotPath, "file", "f", "-", "Snapshot JSON file, - for stdin.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging.")
	rootCmd.PersistentFlags().IntVar(&maxExpenses, "max-expenses", calculator.DefaultMaxExpenses, "Maximum expenses per summary, 0 for no limit.")

	rootCmd.AddCommand(newSummaryCmd(), newSharesCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("settle failed", "error", err)
		os.Exit(1)
	}
}
