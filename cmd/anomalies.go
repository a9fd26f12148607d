package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pulselab/portpulse/core"
	"github.com/pulselab/portpulse/internal/contract"
)

// anomaliesCmd runs detection and prints the findings per company.
var anomaliesCmd = &cobra.Command{
	Use:   "anomalies <dataset>",
	Short: "Show metric anomalies against stage-calibrated bounds.",
	Long: `Check every company metric against the bounds for its funding stage.

Bounds are feathered: values inside the tolerance band around a bound
produce a low-severity warning instead of a hard breach, so a company
drifting toward trouble surfaces before it arrives. Several metrics
breaking stage bounds at once raises a stage-mismatch finding.

Examples:
  # Scan the whole portfolio
  portpulse anomalies portfolio.json

  # Check one company as of a past date
  portpulse anomalies portfolio.json --company c-zephyr --as-of 2026-01-01T00:00:00Z

  # Machine-readable output
  portpulse anomalies portfolio.json --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePortfolioAnomalies(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run anomaly detection", err)
		}
	},
}
