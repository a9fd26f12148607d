package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pulselab/portpulse/core"
	"github.com/pulselab/portpulse/internal/contract"
)

// goalsCmd projects goal trajectories and prints the outlook per company.
var goalsCmd = &cobra.Command{
	Use:   "goals <dataset>",
	Short: "Project goal trajectories and hit probabilities.",
	Long: `Project each active goal forward from its recorded progress history.

A goal needs enough history to establish a velocity; with it, the
projection yields an on-track verdict, a hit probability and a
confidence grade. Goals that are blocked or too sparse to project are
listed without a trajectory.

Examples:
  # Outlook for the whole portfolio
  portpulse goals portfolio.json

  # One company, with more history required per goal
  portpulse goals portfolio.json --company c-aurora --min-goals 3

  # CSV for a spreadsheet
  portpulse goals portfolio.json --output csv --output-file goals.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePortfolioGoals(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run goal projection", err)
		}
	},
}
