package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Stage
		wantErr  bool
	}{
		{name: "canonical", input: "seed", expected: Seed},
		{name: "series with dash", input: "series-a", expected: SeriesA},
		{name: "series with underscore", input: "series_b", expected: SeriesB},
		{name: "series compact", input: "seriesc", expected: SeriesC},
		{name: "mixed case with space", input: "Pre Seed", expected: PreSeed},
		{name: "unknown", input: "series-z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := ParseStage(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stage)
		})
	}
}

func TestStageJSONRoundTrip(t *testing.T) {
	for _, stage := range AllStages {
		data, err := json.Marshal(stage)
		require.NoError(t, err)

		var decoded Stage
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, stage, decoded)
	}
}

func TestStageParamsForCoversAllStages(t *testing.T) {
	for _, stage := range AllStages {
		params := StageParamsFor(stage)
		assert.Equal(t, stage, params.Stage)
		// Every stage monitors at least the primary metrics.
		for _, key := range []MetricKey{MetricRunway, MetricBurn, MetricHeadcount, MetricRevenue, MetricRaiseTarget} {
			bounds, ok := params.Bounds[key]
			assert.True(t, ok, "stage %s missing %s bounds", stage, key)
			assert.Less(t, bounds.Min, bounds.Max, "stage %s has inverted %s bounds", stage, key)
		}
	}
}

func TestCompanyMetricsRunway(t *testing.T) {
	tests := []struct {
		name     string
		metrics  CompanyMetrics
		expected float64
	}{
		{name: "normal", metrics: CompanyMetrics{Cash: 150_000, Burn: 75_000}, expected: 2},
		{name: "zero burn", metrics: CompanyMetrics{Cash: 150_000, Burn: 0}, expected: 0},
		{name: "negative burn", metrics: CompanyMetrics{Cash: 150_000, Burn: -10}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.metrics.Runway(), 0.0001)
		})
	}
}

func TestCompanyMetricsMonthlyRevenue(t *testing.T) {
	mrr := CompanyMetrics{MRR: 40_000}
	assert.InDelta(t, 40_000, mrr.MonthlyRevenue(), 0.0001)

	arr := CompanyMetrics{ARR: 600_000}
	assert.InDelta(t, 50_000, arr.MonthlyRevenue(), 0.0001)
}

func TestGoalIsMultiEntity(t *testing.T) {
	single := Goal{EntityRefs: []EntityRef{
		{Type: CompanyEntity, ID: "c1"},
		{Type: CompanyEntity, ID: "c2"},
	}}
	assert.False(t, single.IsMultiEntity())

	multi := Goal{EntityRefs: []EntityRef{
		{Type: CompanyEntity, ID: "c1"},
		{Type: RoundEntity, ID: "r1", Role: "sponsor"},
	}}
	assert.True(t, multi.IsMultiEntity())
}

func TestAnomalyTypeFor(t *testing.T) {
	assert.Equal(t, AnomalyType("RUNWAY_BELOW_MIN"), AnomalyTypeFor(MetricRunway, DirectionBelow))
	assert.Equal(t, AnomalyType("BURN_ABOVE_MAX"), AnomalyTypeFor(MetricBurn, DirectionAbove))
	assert.Equal(t, AnomalyType("NRR_NEAR_BOUND"), AnomalyTypeFor(MetricNRR, DirectionWarning))
}
