package algo

import (
	"math"
	"testing"

	"github.com/pulselab/portpulse/schema"
)

// FuzzComputeRankScore fuzzes the scoring function with arbitrary
// impact bundles: whatever garbage arrives, the score must be a real
// number and the breakdown must account for all of it.
func FuzzComputeRankScore(f *testing.F) {
	seeds := []schema.ActionImpact{
		{
			Upside:               1.0,
			Downside:             0.4,
			SecondOrder:          0.2,
			Effort:               0.1,
			TimeToImpactDays:     30,
			ExecutionProbability: 0.8,
			ProbabilityOfSuccess: 0.5,
			TrustPenalty:         0.05,
			Friction:             0.1,
			Pressure:             0.3,
			SourceBoost:          0.15,
			PatternLift:          0.05,
		},
		{}, // zero impact edge case
		{
			Upside:               1e6,
			Downside:             1e6,
			TimeToImpactDays:     -100,
			ExecutionProbability: 5,
			ProbabilityOfSuccess: -3,
		},
	}
	for _, seed := range seeds {
		f.Add(seed.Upside, seed.Downside, seed.SecondOrder, seed.Effort,
			seed.TimeToImpactDays, seed.ExecutionProbability, seed.ProbabilityOfSuccess,
			seed.TrustPenalty, seed.Friction, seed.Pressure, seed.SourceBoost, seed.PatternLift)
	}

	f.Fuzz(func(t *testing.T,
		upside float64,
		downside float64,
		secondOrder float64,
		effort float64,
		timeToImpactDays float64,
		executionProbability float64,
		probabilityOfSuccess float64,
		trustPenalty float64,
		friction float64,
		pressure float64,
		sourceBoost float64,
		patternLift float64,
	) {
		action := schema.Action{
			ID: "fuzz",
			Impact: schema.ActionImpact{
				Upside:               upside,
				Downside:             downside,
				SecondOrder:          secondOrder,
				Effort:               effort,
				TimeToImpactDays:     timeToImpactDays,
				ExecutionProbability: executionProbability,
				ProbabilityOfSuccess: probabilityOfSuccess,
				TrustPenalty:         trustPenalty,
				Friction:             friction,
				Pressure:             pressure,
				SourceBoost:          sourceBoost,
				PatternLift:          patternLift,
			},
		}
		score := ComputeRankScore(&action)

		if allFinite(upside, downside, secondOrder, effort, trustPenalty,
			friction, pressure, sourceBoost, patternLift) && math.IsNaN(score) {
			t.Fatalf("finite impact produced NaN score: %+v", action.Impact)
		}
		if len(action.Breakdown) != 6 {
			t.Fatalf("breakdown has %d terms, want 6", len(action.Breakdown))
		}
		if ComputeRankScore(&action) != score && !math.IsNaN(score) {
			t.Fatal("rescoring the same action changed the score")
		}
	})
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
