package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pulselab/portpulse/core"
)

// gateCmd runs the full pipeline and then the invariant battery over its
// outputs. A failed battery makes the command exit non-zero.
var gateCmd = &cobra.Command{
	Use:   "gate <dataset>",
	Short: "Verify pipeline invariants over a full run.",
	Long: `Run the full pipeline, then verify its outputs against the invariant
battery: determinism of the ranking, score bounds, evidence traceability,
DAG acyclicity and layer ordering, among others.

Point --source-root at a module tree to also run the static scans that
keep ranking logic on a single surface.

Examples:
  # Verify a dataset end to end
  portpulse gate portfolio.json

  # Include the static source scans
  portpulse gate portfolio.json --source-root .

  # Tighten the determinism tolerance
  portpulse gate portfolio.json --epsilon 1e-12`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecutePortfolioGate(rootCtx, cfg, storeManager)
	},
}
