package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pulselab/portpulse/core"
	"github.com/pulselab/portpulse/internal/contract"
)

// actionsCmd runs the full pipeline and prints the ranked action list.
var actionsCmd = &cobra.Command{
	Use:   "actions <dataset>",
	Short: "Show the top actions ranked across the whole portfolio.",
	Long: `Run the full derivation pipeline and rank action candidates by expected impact.

Every run recomputes the complete derivation tree from the raw snapshot:
- Detect metric anomalies against stage-calibrated bounds
- Project goal trajectories from history
- Quantify how open issues damage goal outcomes
- Fold in constraint pressure, trust history and source priors

The result is one globally ranked list: position one is the single most
valuable thing to do across all companies right now.

Examples:
  # Rank actions across the portfolio
  portpulse actions portfolio.json

  # Focus on one company with the driver breakdown
  portpulse actions portfolio.json --company c-zephyr --explain

  # Reproduce last week's view
  portpulse actions portfolio.json --as-of "7 days ago"

  # Export findings to CSV for tracking
  portpulse actions portfolio.json --output csv --output-file actions.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePortfolioActions(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run action ranking", err)
		}
	},
}
