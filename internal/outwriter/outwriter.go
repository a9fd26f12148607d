// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteActions prints the ranked action list using the configured output format.
func (ow *OutWriter) WriteActions(actions []schema.Action, cfg *contract.Config, duration time.Duration) error {
	return WriteActionResults(actions, cfg, duration)
}

// WriteAnomalies prints detection findings using the configured output format.
func (ow *OutWriter) WriteAnomalies(companies []schema.CompanyDerived, cfg *contract.Config, duration time.Duration) error {
	return WriteAnomalyResults(companies, cfg, duration)
}

// WriteGoals prints goal outlooks using the configured output format.
func (ow *OutWriter) WriteGoals(companies []schema.CompanyDerived, cfg *contract.Config, duration time.Duration) error {
	return WriteGoalResults(companies, cfg, duration)
}

// WriteGate prints the invariant battery report using the configured output format.
func (ow *OutWriter) WriteGate(report *schema.GateReport, cfg *contract.Config, duration time.Duration) error {
	return WriteGateReport(report, cfg, duration)
}
