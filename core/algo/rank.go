// Package algo is the ranking engine: the single authority that scores
// and orders action candidates. Nothing outside this package may sort
// actions or compute an equivalent score; the invariant battery scans
// for violations.
package algo

import (
	"math"
	"sort"

	"github.com/pulselab/portpulse/schema"
)

// Time-penalty shape: slow-burn actions lose a little expected value
// per month out, saturating so distant bets are discounted, not erased.
const (
	timePenaltyPerMonth = 0.05
	timePenaltyMax      = 0.3
	daysPerMonth        = 30.0
)

// ComputeRankScore derives the canonical score for one action from its
// impact bundle and nothing else. The per-term breakdown is saved on
// the action so an operator can see exactly why it ranked where it did.
func ComputeRankScore(action *schema.Action) float64 {
	impact := &action.Impact

	p := clamp01(impact.ExecutionProbability) * clamp01(impact.ProbabilityOfSuccess)

	expectedNet := impact.Upside*p +
		impact.SecondOrder -
		impact.Downside*(1-p) -
		impact.Effort -
		timePenalty(impact.TimeToImpactDays)

	breakdown := map[string]float64{
		schema.BreakdownExpectedNet: expectedNet,
		schema.BreakdownTrust:       -impact.TrustPenalty,
		schema.BreakdownFriction:    -impact.Friction,
		schema.BreakdownPressure:    impact.Pressure,
		schema.BreakdownSource:      impact.SourceBoost,
		schema.BreakdownPattern:     impact.PatternLift,
	}

	score := expectedNet - impact.TrustPenalty - impact.Friction +
		impact.Pressure + impact.SourceBoost + impact.PatternLift

	action.RankScore = score
	action.Breakdown = breakdown
	return score
}

// RankActions scores every candidate and returns them ordered by rank
// score descending. Ties break by action ID ascending so identical
// inputs always produce identical orderings. A non-positive limit means
// no truncation.
func RankActions(actions []schema.Action, limit int) []schema.Action {
	ranked := make([]schema.Action, len(actions))
	copy(ranked, actions)

	for i := range ranked {
		ComputeRankScore(&ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RankScore != ranked[j].RankScore {
			return ranked[i].RankScore > ranked[j].RankScore
		}
		return ranked[i].ID < ranked[j].ID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// timePenalty discounts actions whose impact lands far in the future.
func timePenalty(timeToImpactDays float64) float64 {
	if timeToImpactDays <= 0 {
		return 0
	}
	return math.Min(timeToImpactDays/daysPerMonth*timePenaltyPerMonth, timePenaltyMax)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
