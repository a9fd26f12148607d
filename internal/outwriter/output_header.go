package outwriter

import (
	"fmt"
	"path/filepath"

	"github.com/pulselab/portpulse/internal/contract"
)

// LogPipelineHeader prints a concise, 2-line header for each pipeline run.
func LogPipelineHeader(cfg *contract.Config) {
	datasetName := filepath.Base(cfg.DatasetPath)
	if datasetName == "" || datasetName == "." {
		datasetName = "unknown"
	}

	scope := "all companies"
	if cfg.CompanyFilter != "" {
		scope = cfg.CompanyFilter
	}

	// Line 1: The run summary (dataset and scope)
	fmt.Printf("%s\n", headerLine(cfg, "🔎", fmt.Sprintf("Dataset: %s (Scope: %s)", datasetName, scope)))

	// Line 2: The reference time every derivation is pinned to
	fmt.Printf("%s\n", headerLine(cfg, "📅", fmt.Sprintf("As of: %s", cfg.ReferenceTime.Format(contract.DateTimeFormat))))
}
