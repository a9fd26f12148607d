package gate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulselab/portpulse/schema"
)

func resultByName(t *testing.T, report *schema.GateReport, name string) schema.GateCheckResult {
	t.Helper()
	for _, r := range report.Results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("check %s not in report", name)
	return schema.GateCheckResult{}
}

func TestRunSkipsChecksWithoutInputs(t *testing.T) {
	report := Run(&Input{})
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.Passed)
	assert.Len(t, report.Results, 10)
	assert.Equal(t, 10, report.Skipped)
	assert.True(t, report.Success())
}

func TestNoStoredDerivations(t *testing.T) {
	clean := map[string]any{
		"companies": []any{
			map[string]any{"id": "c-1", "metrics": map[string]any{"cash": 100.0, "burn": 10.0}},
		},
	}
	report := Run(&Input{RawTree: clean})
	assert.Equal(t, schema.CheckPassed, resultByName(t, report, "no-stored-derivations").Status)

	dirty := map[string]any{
		"companies": []any{
			map[string]any{
				"id":      "c-1",
				"metrics": map[string]any{"cash": 100.0, "Runway": 9.0},
				"goals": []any{
					map[string]any{"id": "g-1", "rankScore": 1.5},
				},
			},
		},
	}
	report = Run(&Input{RawTree: dirty})
	result := resultByName(t, report, "no-stored-derivations")
	require.Equal(t, schema.CheckFailed, result.Status)
	require.Len(t, result.Messages, 2)
	assert.Contains(t, result.Messages[0], "companies[0].goals[0].rankScore")
	assert.Contains(t, result.Messages[1], "companies[0].metrics.Runway")
}

func TestMutualExclusion(t *testing.T) {
	tree := map[string]any{
		"companies": []any{
			map[string]any{"id": "c-ok", "metrics": map[string]any{"mrr": 100.0}},
			map[string]any{"id": "c-bad", "metrics": map[string]any{"mrr": 100.0, "arr": 1200.0}},
		},
	}
	report := Run(&Input{RawTree: tree})
	result := resultByName(t, report, "mutual-exclusion")
	require.Equal(t, schema.CheckFailed, result.Status)
	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0], "c-bad")
}

func TestGoalSchemaWellFormed(t *testing.T) {
	goals := []schema.Goal{{
		ID:         "g-1",
		EntityRefs: []schema.EntityRef{{Type: schema.CompanyEntity, ID: "c-1"}},
		Status:     schema.ActiveGoalStatus,
	}}
	report := Run(&Input{Goals: goals})
	assert.Equal(t, schema.CheckPassed, resultByName(t, report, "goal-schema").Status)
}

func TestGoalSchemaViolations(t *testing.T) {
	goals := []schema.Goal{
		{ID: "g-norefs", Status: schema.ActiveGoalStatus},
		{
			ID:         "g-badref",
			EntityRefs: []schema.EntityRef{{Type: "planet", ID: "c-1"}},
			Status:     schema.CompletedGoalStatus,
		},
		{
			ID:         "g-badstatus",
			EntityRefs: []schema.EntityRef{{Type: schema.CompanyEntity, ID: "c-1"}},
			Status:     "paused",
		},
	}
	report := Run(&Input{Goals: goals})
	result := resultByName(t, report, "goal-schema")
	require.Equal(t, schema.CheckFailed, result.Status)
	require.Len(t, result.Messages, 3)
	assert.Contains(t, result.Messages[0], "g-norefs")
	assert.Contains(t, result.Messages[0], "no entity refs")
	assert.Contains(t, result.Messages[1], `unknown type "planet"`)
	assert.Contains(t, result.Messages[2], `unknown status "paused"`)
}

func TestDAGAcyclicity(t *testing.T) {
	valid := map[string][]string{
		"facts":     nil,
		"anomalies": {"facts"},
		"actions":   {"anomalies", "facts"},
	}
	report := Run(&Input{DAG: valid})
	assert.Equal(t, schema.CheckPassed, resultByName(t, report, "dag-acyclicity").Status)

	cyclic := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}
	report = Run(&Input{DAG: cyclic})
	result := resultByName(t, report, "dag-acyclicity")
	require.Equal(t, schema.CheckFailed, result.Status)
	assert.Contains(t, result.Messages[0], "a -> b -> c -> a")
}

func TestScorePresence(t *testing.T) {
	good := []schema.Action{{ID: "a-1", RankScore: 1.2}, {ID: "a-2", RankScore: -0.3}}
	report := Run(&Input{RankedActions: good})
	assert.Equal(t, schema.CheckPassed, resultByName(t, report, "score-presence").Status)

	bad := []schema.Action{{ID: "a-1", RankScore: math.NaN()}, {ID: "a-2", RankScore: math.Inf(1)}}
	report = Run(&Input{RankedActions: bad})
	result := resultByName(t, report, "score-presence")
	require.Equal(t, schema.CheckFailed, result.Status)
	assert.Len(t, result.Messages, 2)
}

func TestSortOrder(t *testing.T) {
	sorted := []schema.Action{
		{ID: "a-1", RankScore: 2.0},
		{ID: "a-2", RankScore: 2.0},
		{ID: "a-3", RankScore: 0.5},
	}
	report := Run(&Input{RankedActions: sorted})
	assert.Equal(t, schema.CheckPassed, resultByName(t, report, "sort-order").Status)

	unsorted := []schema.Action{
		{ID: "a-1", RankScore: 0.5},
		{ID: "a-2", RankScore: 2.0},
	}
	report = Run(&Input{RankedActions: unsorted})
	result := resultByName(t, report, "sort-order")
	require.Equal(t, schema.CheckFailed, result.Status)
	assert.Contains(t, result.Messages[0], "a-2")
}

func TestSortOrderEpsilonTolerance(t *testing.T) {
	nearlyEqual := []schema.Action{
		{ID: "a-1", RankScore: 1.0},
		{ID: "a-2", RankScore: 1.0 + 1e-12},
	}
	report := Run(&Input{RankedActions: nearlyEqual, Epsilon: 1e-9})
	assert.Equal(t, schema.CheckPassed, resultByName(t, report, "sort-order").Status)
}

func TestDeterminism(t *testing.T) {
	input := []schema.Action{{ID: "a-1"}, {ID: "a-2"}}

	stable := func(actions []schema.Action) []schema.Action {
		for i := range actions {
			actions[i].RankScore = float64(len(actions) - i)
		}
		return actions
	}
	report := Run(&Input{RankFn: stable, ActionsInput: input})
	assert.Equal(t, schema.CheckPassed, resultByName(t, report, "determinism").Status)

	calls := 0
	flaky := func(actions []schema.Action) []schema.Action {
		calls++
		for i := range actions {
			actions[i].RankScore = float64(calls)
		}
		return actions
	}
	report = Run(&Input{RankFn: flaky, ActionsInput: input})
	result := resultByName(t, report, "determinism")
	require.Equal(t, schema.CheckFailed, result.Status)
	assert.Contains(t, result.Messages[0], "a-1")
}

func TestDeterminismPanicBecomesFailure(t *testing.T) {
	boom := func([]schema.Action) []schema.Action { panic("boom") }
	report := Run(&Input{RankFn: boom, ActionsInput: []schema.Action{{ID: "a-1"}}})
	result := resultByName(t, report, "determinism")
	require.Equal(t, schema.CheckFailed, result.Status)
	assert.Contains(t, result.Messages[0], "boom")
}

func TestEventLedger(t *testing.T) {
	actions := []schema.Action{{ID: "act-1"}}
	valid := []schema.Event{{
		ID:        "ev-1",
		ActionID:  "act-1",
		Type:      schema.ActionCreatedEvent,
		Timestamp: "2026-03-01T00:00:00Z",
	}}
	report := Run(&Input{Events: valid, Actions: actions})
	assert.Equal(t, schema.CheckPassed, resultByName(t, report, "event-ledger").Status)

	tests := []struct {
		name  string
		event schema.Event
		want  string
	}{
		{
			"missing required field",
			schema.Event{ID: "ev-1", Type: schema.ActionCreatedEvent, Timestamp: "2026-03-01T00:00:00Z"},
			`missing required field "actionId"`,
		},
		{
			"unknown type",
			schema.Event{ID: "ev-1", ActionID: "act-1", Type: "action_vanished", Timestamp: "2026-03-01T00:00:00Z"},
			"unknown type",
		},
		{
			"unknown outcome",
			schema.Event{ID: "ev-1", ActionID: "act-1", Type: schema.OutcomeRecordedEvent, Outcome: "meh", Timestamp: "2026-03-01T00:00:00Z"},
			"unknown outcome",
		},
		{
			"bad timestamp",
			schema.Event{ID: "ev-1", ActionID: "act-1", Type: schema.ActionCreatedEvent, Timestamp: "yesterday"},
			"unparseable timestamp",
		},
		{
			"unknown action reference",
			schema.Event{ID: "ev-1", ActionID: "act-ghost", Type: schema.ActionCreatedEvent, Timestamp: "2026-03-01T00:00:00Z"},
			"unknown action",
		},
		{
			"derived field in payload",
			schema.Event{
				ID: "ev-1", ActionID: "act-1", Type: schema.ActionCompletedEvent,
				Timestamp: "2026-03-01T00:00:00Z",
				Payload:   map[string]any{"rankScore": 3.2},
			},
			"derived field",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := Run(&Input{Events: []schema.Event{tc.event}, Actions: actions})
			result := resultByName(t, report, "event-ledger")
			require.Equal(t, schema.CheckFailed, result.Status)
			assert.Contains(t, result.Messages[0], tc.want)
		})
	}
}

func TestEventLedgerDuplicateIDs(t *testing.T) {
	events := []schema.Event{
		{ID: "ev-1", ActionID: "act-1", Type: schema.ActionCreatedEvent, Timestamp: "2026-03-01T00:00:00Z"},
		{ID: "ev-1", ActionID: "act-1", Type: schema.ActionStartedEvent, Timestamp: "2026-03-02T00:00:00Z"},
	}
	report := Run(&Input{Events: events, Actions: []schema.Action{{ID: "act-1"}}})
	result := resultByName(t, report, "event-ledger")
	require.Equal(t, schema.CheckFailed, result.Status)
	assert.Contains(t, result.Messages[0], "duplicate id")
}

func TestEventLedgerWithoutActionSet(t *testing.T) {
	events := []schema.Event{{
		ID: "ev-1", ActionID: "act-anything", Type: schema.ActionCreatedEvent, Timestamp: "2026-03-01T00:00:00Z",
	}}
	report := Run(&Input{Events: events})
	result := resultByName(t, report, "event-ledger")
	assert.Equal(t, schema.CheckPassed, result.Status)
	require.NotEmpty(t, result.Messages)
	assert.Contains(t, result.Messages[0], "referential check skipped")
}

func TestReportTallies(t *testing.T) {
	report := Run(&Input{
		RankedActions: []schema.Action{{ID: "a-1", RankScore: 1}},
		DAG:           map[string][]string{"a": {"b"}, "b": {"a"}},
	})
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 7, report.Skipped)
	assert.False(t, report.Success())
}
