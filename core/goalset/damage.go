// Package goalset maps issues and anomalies onto goals: it quantifies
// how open issues damage existing goals and assembles the bounded
// top-goal set for a company.
package goalset

import (
	"sort"
	"time"

	"github.com/pulselab/portpulse/schema"
)

// issueGoalTypes maps each issue type to the goal types it can hurt.
// Used only when the issue carries no explicit goal link.
var issueGoalTypes = map[schema.IssueType][]schema.GoalType{
	schema.RunwayRiskIssue:  {schema.RunwayGoal, schema.FundraiseGoal},
	schema.BurnOverrunIssue: {schema.RunwayGoal, schema.EfficiencyGoal},
	schema.ChurnSpikeIssue:  {schema.RetentionGoal, schema.RevenueGoal},
	schema.PipelineGapIssue: {schema.RevenueGoal},
	schema.HiringGapIssue:   {schema.HiringGoal},
	schema.MarginSlipIssue:  {schema.MarginGoal, schema.EfficiencyGoal},
	schema.DataQualityIssue: {}, // hygiene, hurts no goal directly
}

// severityMultipliers scale damage by how bad the issue is.
var severityMultipliers = map[schema.Severity]float64{
	schema.SeverityCritical: 1.0,
	schema.SeverityHigh:     0.7,
	schema.SeverityMedium:   0.4,
	schema.SeverityLow:      0.2,
}

// ComputeDamages pairs every open issue with every open goal it can
// affect and scores the damage. Pairs are listed individually, never
// summed here; callers aggregate explicitly.
func ComputeDamages(issues []schema.Issue, goals []schema.Goal, now time.Time) []schema.GoalDamage {
	var damages []schema.GoalDamage
	for _, issue := range issues {
		for i := range goals {
			goal := &goals[i]
			if !goal.IsOpen() || !affects(&issue, goal) {
				continue
			}
			damages = append(damages, damageFor(&issue, goal, now))
		}
	}
	return damages
}

// affects reports whether the issue can hurt the goal: an explicit goal
// link wins, otherwise the type table decides.
func affects(issue *schema.Issue, goal *schema.Goal) bool {
	if issue.GoalID != "" {
		return issue.GoalID == goal.ID
	}
	for _, gt := range issueGoalTypes[issue.Type] {
		if gt == goal.Type {
			return true
		}
	}
	return false
}

func damageFor(issue *schema.Issue, goal *schema.Goal, now time.Time) schema.GoalDamage {
	severity := severityMultipliers[issue.Severity]
	weight := clamp01(goal.Weight / 100)
	proximity := proximityFactor(goal.Due.Sub(now).Hours() / 24)

	return schema.GoalDamage{
		IssueID: issue.ID,
		GoalID:  goal.ID,
		Damage:  clamp01(severity * weight * proximity),
		Components: map[string]float64{
			schema.DamageSeverityComponent:  severity,
			schema.DamageWeightComponent:    weight,
			schema.DamageProximityComponent: proximity,
		},
	}
}

// proximityFactor steps down as the goal's due date recedes: damage to
// a goal due next week matters more than damage to one due next year.
func proximityFactor(daysUntilDue float64) float64 {
	switch {
	case daysUntilDue <= 30:
		return 1.0
	case daysUntilDue <= 90:
		return 0.8
	case daysUntilDue <= 180:
		return 0.5
	default:
		return 0.3
	}
}

// AggregateDamage sums per-goal damage for reporting. The per-pair list
// remains the source of truth.
func AggregateDamage(damages []schema.GoalDamage) map[string]float64 {
	totals := make(map[string]float64, len(damages))
	for _, d := range damages {
		totals[d.GoalID] += d.Damage
	}
	return totals
}

// MostDamagedGoals returns goal IDs ordered by total damage descending,
// ties broken by goal ID ascending for stable output.
func MostDamagedGoals(damages []schema.GoalDamage) []string {
	totals := AggregateDamage(damages)
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if totals[ids[i]] != totals[ids[j]] {
			return totals[ids[i]] > totals[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
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
