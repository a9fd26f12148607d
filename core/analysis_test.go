package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/internal/iostore"
	"github.com/pulselab/portpulse/schema"
)

const analysisFixture = `{
	"generatedAt": "2026-02-28T00:00:00Z",
	"companies": [
		{
			"id": "c-zephyr",
			"name": "Zephyr Analytics",
			"stage": "seed",
			"metrics": {"cash": 150000, "burn": 75000, "headcount": 10, "mrr": 40000},
			"goals": [
				{
					"id": "g-arr",
					"entityRefs": [{"type": "company", "id": "c-zephyr"}],
					"type": "revenue_growth",
					"name": "Reach $1M ARR",
					"current": 40000,
					"target": 83000,
					"due": "2026-09-01T00:00:00Z",
					"status": "active",
					"weight": 70,
					"provenance": "manual",
					"history": [
						{"timestamp": "2026-01-01T00:00:00Z", "value": 30000},
						{"timestamp": "2026-03-01T00:00:00Z", "value": 40000}
					]
				}
			],
			"issues": [
				{"id": "iss-runway", "type": "runway_risk", "severity": 3, "title": "Runway below six months", "openedAt": "2026-02-01T00:00:00Z"}
			],
			"constraints": [
				{"id": "k-board", "type": "board_meeting", "date": "2026-03-15T00:00:00Z", "title": "Q1 board"}
			]
		}
	],
	"events": []
}`

// writeFixtureDataset writes the shared orchestration fixture to disk and
// returns a config pointing at it.
func writeFixtureDataset(t *testing.T) *contract.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte(analysisFixture), 0o644))

	cfg := testConfig()
	cfg.DatasetPath = path
	return cfg
}

func TestGetPortfolioResultsRecordsRun(t *testing.T) {
	cfg := writeFixtureDataset(t)

	store := &iostore.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(7), nil)
	store.On("RecordActions", int64(7), mock.Anything, mock.Anything).Return(nil)
	store.On("EndRun", int64(7), mock.Anything, mock.MatchedBy(func(m schema.RunMetrics) bool {
		return m.CompanyCount == 1 && m.ActionCount > 0 && m.GatePassed == 0 && m.GateFailed == 0
	})).Return(nil)

	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	ctx := WithSuppressHeader(t.Context())
	result, duration, err := GetPortfolioResults(ctx, cfg, mgr)
	require.NoError(t, err)

	assert.Positive(t, duration)
	require.Len(t, result.Companies, 1)
	assert.NotEmpty(t, result.RankedActions)

	store.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestGetPortfolioResultsWithoutTracking(t *testing.T) {
	cfg := writeFixtureDataset(t)

	// A nil manager means tracking is off entirely.
	result, _, err := GetPortfolioResults(WithSuppressHeader(t.Context()), cfg, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RankedActions)
}

func TestGetPortfolioResultsMissingDataset(t *testing.T) {
	cfg := testConfig()
	cfg.DatasetPath = filepath.Join(t.TempDir(), "absent.json")

	_, _, err := GetPortfolioResults(WithSuppressHeader(t.Context()), cfg, nil)
	assert.Error(t, err)
}

func TestGetPortfolioResultsSurvivesTrackingFailure(t *testing.T) {
	cfg := writeFixtureDataset(t)

	// A store that cannot begin a run must not break the pipeline.
	store := &iostore.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	result, _, err := GetPortfolioResults(WithSuppressHeader(t.Context()), cfg, mgr)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RankedActions)

	// finish must not record anything against runID 0
	store.AssertNotCalled(t, "RecordActions", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetGateResultsFoldsReportIntoRun(t *testing.T) {
	cfg := writeFixtureDataset(t)

	store := &iostore.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(3), nil)
	store.On("RecordActions", int64(3), mock.Anything, mock.Anything).Return(nil)
	store.On("EndRun", int64(3), mock.Anything, mock.MatchedBy(func(m schema.RunMetrics) bool {
		return m.GatePassed > 0
	})).Return(nil)

	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	result, report, _, err := GetGateResults(WithSuppressHeader(t.Context()), cfg, mgr)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.Success(), "battery should pass on a clean snapshot: %+v", report.Results)
	assert.NotEmpty(t, result.RankedActions)

	store.AssertExpectations(t)
}

func TestExecutePortfolioGateFailsOnViolation(t *testing.T) {
	cfg := writeFixtureDataset(t)

	// A source tree with a second ranking surface trips the static scans.
	srcRoot := t.TempDir()
	rogue := `package rogue

func rankActionList(xs []string) []string { return xs }
`
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "rogue.go"), []byte(rogue), 0o644))
	cfg.SourceRoot = srcRoot

	err := ExecutePortfolioGate(WithSuppressHeader(t.Context()), cfg, nil)
	assert.Error(t, err)
}

func TestRunMetricsTallies(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pr := &pipelineRun{result: &schema.PipelineResult{
		ReferenceTime: now,
		Companies: []schema.CompanyDerived{
			{Anomalies: []schema.Anomaly{{}, {}}, Goals: []schema.Goal{{}}},
			{Goals: []schema.Goal{{}, {}}},
		},
		RankedActions: []schema.Action{{}, {}, {}},
	}}

	m := pr.metrics(&schema.GateReport{Passed: 8, Failed: 1})
	assert.Equal(t, now, m.ReferenceTime)
	assert.Equal(t, 2, m.CompanyCount)
	assert.Equal(t, 2, m.AnomalyCount)
	assert.Equal(t, 3, m.GoalCount)
	assert.Equal(t, 3, m.ActionCount)
	assert.Equal(t, 8, m.GatePassed)
	assert.Equal(t, 1, m.GateFailed)
}
