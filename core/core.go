// Package core has core logic for derivation, projection and ranking.
package core

import (
	"context"
	"fmt"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing different pipeline modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecutePortfolioActions runs the full pipeline and prints the ranked
// action list to stdout. It serves as the main entry point for the
// 'actions' mode.
func ExecutePortfolioActions(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, duration, err := GetPortfolioResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteActions(result.RankedActions, cfg, duration)
}

// ExecutePortfolioAnomalies runs detection across the portfolio and
// prints the findings. It serves as the main entry point for the
// 'anomalies' mode.
func ExecutePortfolioAnomalies(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, duration, err := GetPortfolioResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteAnomalies(result.Companies, cfg, duration)
}

// ExecutePortfolioGoals runs the pipeline and prints the goal outlooks.
// It serves as the main entry point for the 'goals' mode.
func ExecutePortfolioGoals(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, duration, err := GetPortfolioResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteGoals(result.Companies, cfg, duration)
}

// ExecutePortfolioGate runs the pipeline, then the invariant battery
// against its outputs, and prints the report. A failing battery is an
// error so CI callers get a non-zero exit.
func ExecutePortfolioGate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	_, report, duration, err := GetGateResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteGate(report, cfg, duration); err != nil {
		return err
	}
	if !report.Success() {
		return fmt.Errorf("verification failed: %d invariant check(s) violated", report.Failed)
	}
	return nil
}
