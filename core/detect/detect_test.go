package detect

import (
	"testing"

	"github.com/pulselab/portpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCompany(metrics schema.CompanyMetrics) *schema.Company {
	return &schema.Company{
		ID:      "c-seed",
		Name:    "Seedling",
		Stage:   schema.Seed,
		Metrics: metrics,
	}
}

func findAnomaly(anomalies []schema.Anomaly, metric schema.MetricKey) *schema.Anomaly {
	for i := range anomalies {
		if anomalies[i].Metric == metric {
			return &anomalies[i]
		}
	}
	return nil
}

func TestClassifyDirections(t *testing.T) {
	bounds := schema.Bounds{Min: 9, Max: 30}
	tol := schema.DefaultToleranceConfig()
	// innerBuffer = 21 * 0.15 = 3.15; softMin = 9 - 2.25 = 6.75

	tests := []struct {
		name      string
		value     float64
		direction schema.Direction
		inTol     bool
		feathered bool
	}{
		{name: "comfortably within", value: 18, direction: schema.DirectionWithin},
		{name: "warning near min", value: 10, direction: schema.DirectionWarning, inTol: true},
		{name: "warning near max", value: 29, direction: schema.DirectionWarning, inTol: true},
		{name: "below inside tolerance", value: 8, direction: schema.DirectionBelow, inTol: true, feathered: true},
		{name: "below beyond tolerance", value: 4, direction: schema.DirectionBelow},
		{name: "above inside tolerance", value: 33, direction: schema.DirectionAbove, inTol: true, feathered: true},
		{name: "above beyond tolerance", value: 60, direction: schema.DirectionAbove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := Classify(tt.value, bounds, tol)
			assert.Equal(t, tt.direction, dev.Direction)
			assert.Equal(t, tt.inTol, dev.InToleranceZone)
			assert.Equal(t, tt.feathered, dev.Feathered)
		})
	}
}

func TestClassifyFeatheredRatioInterpolation(t *testing.T) {
	bounds := schema.Bounds{Min: 10, Max: 20}
	tol := schema.ToleranceConfig{Inner: 0.1, Outer: 0.2, Symmetric: true}
	// outerLow = 2, softMin = 8

	// At the hard bound the feathered ratio is 1 (no effective deviation);
	// at the soft edge it equals the raw ratio.
	atBound := Classify(9.999, bounds, tol)
	assert.InDelta(t, 1.0, atBound.FeatheredRatio, 0.01)

	atSoftEdge := Classify(8.0, bounds, tol)
	assert.InDelta(t, 0.8, atSoftEdge.Ratio, 0.0001)
	assert.InDelta(t, 0.8, atSoftEdge.FeatheredRatio, 0.0001)

	midBand := Classify(9.0, bounds, tol)
	assert.Greater(t, midBand.FeatheredRatio, midBand.Ratio)
	assert.Less(t, midBand.FeatheredRatio, 1.0)
}

// Severity must never decrease as the deviation grows for a fixed bound.
func TestSeverityMonotonicBelow(t *testing.T) {
	bounds := schema.Bounds{Min: 100, Max: 200}
	tol := schema.DefaultToleranceConfig()

	last := schema.SeverityCritical
	for value := 0.0; value <= 100; value += 2.5 {
		dev := Classify(value, bounds, tol)
		severity := SeverityFor(dev)
		assert.LessOrEqual(t, severity, last, "severity rose as deviation shrank at value %.1f", value)
		last = severity
	}
}

func TestSeverityMonotonicAbove(t *testing.T) {
	bounds := schema.Bounds{Min: 100, Max: 200}
	tol := schema.DefaultToleranceConfig()

	last := schema.SeverityLow
	for value := 200.0; value <= 800; value += 10 {
		dev := Classify(value, bounds, tol)
		severity := SeverityFor(dev)
		assert.GreaterOrEqual(t, severity, last, "severity dropped as deviation grew at value %.1f", value)
		last = severity
	}
}

// Tolerance-zone findings are capped at medium regardless of raw ratio.
func TestToleranceZoneSeverityCap(t *testing.T) {
	bounds := schema.Bounds{Min: 10, Max: 20}
	tol := schema.ToleranceConfig{Inner: 0.05, Outer: 0.8, Symmetric: true}

	for value := 2.1; value < 10; value += 0.5 {
		dev := Classify(value, bounds, tol)
		if !dev.InToleranceZone {
			continue
		}
		assert.LessOrEqual(t, SeverityFor(dev), schema.SeverityMedium,
			"tolerance-zone severity exceeded medium at value %.1f", value)
	}
}

// Seed stage, cash 150k, burn 75k: runway is 2 months, under the
// absolute 3-month floor, so the finding is critical and unfeathered
// regardless of the stage-relative ratio.
func TestDetectRunwayCriticalFloor(t *testing.T) {
	company := seedCompany(schema.CompanyMetrics{
		Cash:      150_000,
		Burn:      75_000,
		Headcount: 10,
		MRR:       50_000,
	})

	anomalies, summary := Detect(company, schema.StageParamsFor(schema.Seed), schema.DefaultToleranceConfig())

	runway := findAnomaly(anomalies, schema.MetricRunway)
	require.NotNil(t, runway)
	assert.Equal(t, schema.AnomalyType("RUNWAY_BELOW_MIN"), runway.Type)
	assert.Equal(t, schema.SeverityCritical, runway.Severity)
	assert.False(t, runway.Evidence.Feathered)
	assert.Zero(t, runway.Evidence.FeatheredRatio)
	assert.InDelta(t, 2.0, runway.Evidence.Actual, 0.0001)
	assert.Equal(t, summary.BySeverity["critical"], 1)
}

// A runway just inside the lower bound lands in the inner warning buffer.
func TestDetectRunwayWarningZone(t *testing.T) {
	params := schema.StageParamsFor(schema.Seed)
	bounds := params.Bounds[schema.MetricRunway] // [9, 30]
	warningMin := bounds.Min + (bounds.Max-bounds.Min)*0.15

	// Pick a runway in [9, warningMin).
	runwayMonths := (bounds.Min + warningMin) / 2
	company := seedCompany(schema.CompanyMetrics{
		Cash:      runwayMonths * 100_000,
		Burn:      100_000,
		Headcount: 10,
		MRR:       50_000,
	})

	anomalies, _ := Detect(company, params, schema.DefaultToleranceConfig())
	runway := findAnomaly(anomalies, schema.MetricRunway)
	require.NotNil(t, runway)
	assert.Equal(t, schema.DirectionWarning, runway.Evidence.Direction)
	assert.Equal(t, schema.SeverityLow, runway.Severity)
	assert.True(t, runway.Evidence.InToleranceZone)
}

func TestDetectHealthyCompanyIsQuiet(t *testing.T) {
	company := seedCompany(schema.CompanyMetrics{
		Cash:      1_800_000,
		Burn:      100_000, // 18 months runway
		Headcount: 12,
		MRR:       60_000,
		Operating: map[schema.MetricKey]float64{
			schema.MetricNRR:         1.1,
			schema.MetricGrossMargin: 0.7,
		},
	})

	anomalies, summary := Detect(company, schema.StageParamsFor(schema.Seed), schema.DefaultToleranceConfig())
	assert.Empty(t, anomalies)
	assert.Zero(t, summary.Total)
}

func TestDetectMissingSecondaryMetricsSkipped(t *testing.T) {
	company := seedCompany(schema.CompanyMetrics{
		Cash:      1_800_000,
		Burn:      100_000,
		Headcount: 12,
		MRR:       60_000,
		// No Operating map at all.
	})

	anomalies, _ := Detect(company, schema.StageParamsFor(schema.Seed), schema.DefaultToleranceConfig())
	for _, key := range schema.SecondaryMetrics {
		assert.Nil(t, findAnomaly(anomalies, key), "unreported metric %s produced a finding", key)
	}
}

func TestDetectStageMismatch(t *testing.T) {
	// Seed-staged company with Series B numbers: burn, headcount and
	// revenue all blow through the seed maximums.
	company := seedCompany(schema.CompanyMetrics{
		Cash:      20_000_000,
		Burn:      900_000,
		Headcount: 120,
		MRR:       1_500_000,
	})

	anomalies, _ := Detect(company, schema.StageParamsFor(schema.Seed), schema.DefaultToleranceConfig())
	mismatch := findAnomaly(anomalies, "stage")
	require.NotNil(t, mismatch)
	assert.Equal(t, schema.StageMismatchAnomaly, mismatch.Type)
	assert.Equal(t, schema.SeverityMedium, mismatch.Severity)
}

func TestDetectOutputSortedBySeverity(t *testing.T) {
	company := seedCompany(schema.CompanyMetrics{
		Cash:      200_000,
		Burn:      100_000, // runway 2 -> critical
		Headcount: 2,       // below seed min 3, mild
		MRR:       60_000,
	})

	anomalies, _ := Detect(company, schema.StageParamsFor(schema.Seed), schema.DefaultToleranceConfig())
	require.NotEmpty(t, anomalies)
	for i := 1; i < len(anomalies); i++ {
		assert.GreaterOrEqual(t, anomalies[i-1].Severity, anomalies[i].Severity)
	}
}

// Recomputing with identical input yields identical findings.
func TestDetectDeterministic(t *testing.T) {
	company := seedCompany(schema.CompanyMetrics{
		Cash:      400_000,
		Burn:      90_000,
		Headcount: 30,
		MRR:       4_000,
		Operating: map[schema.MetricKey]float64{
			schema.MetricNRR:        0.7,
			schema.MetricLogoChurn:  0.2,
			schema.MetricGrowthRate: 0.01,
		},
	})

	first, firstSummary := Detect(company, schema.StageParamsFor(schema.Seed), schema.DefaultToleranceConfig())
	second, secondSummary := Detect(company, schema.StageParamsFor(schema.Seed), schema.DefaultToleranceConfig())
	assert.Equal(t, first, second)
	assert.Equal(t, firstSummary, secondSummary)
}
