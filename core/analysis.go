package core

import (
	"context"
	"time"

	"github.com/pulselab/portpulse/core/algo"
	"github.com/pulselab/portpulse/core/gate"
	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/internal/dataset"
	"github.com/pulselab/portpulse/internal/outwriter"
	"github.com/pulselab/portpulse/schema"
)

// pipelineRun couples one executed pipeline with its tracking state so
// entry points can finalize the audit row after output (and, for the
// gate, after verification).
type pipelineRun struct {
	result *schema.PipelineResult
	loaded *dataset.Loaded
	store  contract.RunStore
	runID  int64
}

// runSinglePipelineCore performs the common Load, Derive and Rank steps.
func runSinglePipelineCore(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*pipelineRun, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogPipelineHeader(cfg)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	var store contract.RunStore
	if mgr != nil {
		store = mgr.GetRunStore()
	}
	if store != nil {
		configParams := map[string]any{
			"as_of":        cfg.ReferenceTime.Format(contract.DateTimeFormat),
			"company":      cfg.CompanyFilter,
			"workers":      cfg.Workers,
			"result_limit": cfg.ResultLimit,
			"min_goals":    cfg.MinGoals,
		}
		var err error
		runID, err = store.BeginRun(time.Now(), configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Load Raw Facts ---
	loaded, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}

	// --- 2. Derive and Rank ---
	result, err := Execute(cfg, loaded.Dataset)
	if err != nil {
		return nil, err
	}

	return &pipelineRun{result: result, loaded: loaded, store: store, runID: runID}, nil
}

// finish closes out run tracking. The gate report is optional; plain
// pipeline runs pass nil and the gate tallies stay zero.
func (pr *pipelineRun) finish(report *schema.GateReport) {
	if pr.store == nil || pr.runID <= 0 {
		return
	}
	if err := pr.store.RecordActions(pr.runID, time.Now(), pr.result.RankedActions); err != nil {
		contract.LogWarn("Failed to record ranked actions", err)
	}
	if err := pr.store.EndRun(pr.runID, time.Now(), pr.metrics(report)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// metrics tallies the run for the audit row.
func (pr *pipelineRun) metrics(report *schema.GateReport) schema.RunMetrics {
	m := schema.RunMetrics{
		ReferenceTime: pr.result.ReferenceTime,
		CompanyCount:  len(pr.result.Companies),
		ActionCount:   len(pr.result.RankedActions),
	}
	for _, c := range pr.result.Companies {
		m.AnomalyCount += len(c.Anomalies)
		m.GoalCount += len(c.Goals)
	}
	if report != nil {
		m.GatePassed = report.Passed
		m.GateFailed = report.Failed
	}
	return m
}

// collectCandidates gathers every company's scored candidates in merge
// order, the exact list the ranking engine consumed.
func collectCandidates(result *schema.PipelineResult) []schema.Action {
	var all []schema.Action
	for i := range result.Companies {
		all = append(all, result.Companies[i].Actions...)
	}
	return all
}

// GetPortfolioResults runs the pipeline end to end and returns the
// consolidated result. Exposed for embedding callers (MCP tools).
func GetPortfolioResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.PipelineResult, time.Duration, error) {
	start := time.Now()
	run, err := runSinglePipelineCore(ctx, cfg, mgr)
	if err != nil {
		return nil, time.Since(start), err
	}
	run.finish(nil)
	return run.result, time.Since(start), nil
}

// GetGateResults runs the pipeline and then the full invariant battery
// against its outputs. Exposed for embedding callers (MCP tools).
func GetGateResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.PipelineResult, *schema.GateReport, time.Duration, error) {
	start := time.Now()
	run, err := runSinglePipelineCore(ctx, cfg, mgr)
	if err != nil {
		return nil, nil, time.Since(start), err
	}

	candidates := collectCandidates(run.result)
	goals := make([]schema.Goal, 0)
	for _, company := range run.loaded.Dataset.Companies {
		goals = append(goals, company.Goals...)
	}
	report := gate.Run(&gate.Input{
		RawTree:       run.loaded.RawTree,
		Goals:         goals,
		DAG:           DerivationDAG(),
		RankedActions: run.result.RankedActions,
		RankFn: func(actions []schema.Action) []schema.Action {
			return algo.RankActions(actions, cfg.ResultLimit)
		},
		ActionsInput: candidates,
		Events:       run.loaded.Dataset.Events,
		Actions:      candidates,
		SourceRoot:   cfg.SourceRoot,
		Epsilon:      cfg.Epsilon,
	})

	run.finish(report)
	return run.result, report, time.Since(start), nil
}
