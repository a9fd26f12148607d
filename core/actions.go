package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/pulselab/portpulse/core/pressure"
	"github.com/pulselab/portpulse/schema"
)

// Source-type priors. Issues are confirmed problems, so acting on them
// carries the strongest prior; pre-issue watches are cheap but
// speculative.
var sourceBoosts = map[schema.SourceType]float64{
	schema.IssueSource:    0.10,
	schema.GoalSource:     0.05,
	schema.MeetingSource:  0.08,
	schema.PreIssueSource: 0.02,
}

// Category vocabulary per issue type, matched against the constraint
// relevance sets. Unlisted categories still earn ambient pressure.
var issueCategories = map[schema.IssueType][]string{
	schema.RunwayRiskIssue:  {"runway", "fundraise"},
	schema.BurnOverrunIssue: {"finance", "runway"},
	schema.ChurnSpikeIssue:  {"revenue", "metrics"},
	schema.PipelineGapIssue: {"revenue"},
	schema.HiringGapIssue:   {"hiring"},
	schema.MarginSlipIssue:  {"finance", "metrics"},
	schema.DataQualityIssue: {"reporting", "metrics"},
}

// Category vocabulary per goal type.
var goalCategories = map[schema.GoalType][]string{
	schema.RunwayGoal:     {"runway", "finance"},
	schema.RevenueGoal:    {"revenue"},
	schema.HiringGoal:     {"hiring"},
	schema.FundraiseGoal:  {"fundraise", "narrative"},
	schema.RetentionGoal:  {"revenue"},
	schema.EfficiencyGoal: {"finance"},
	schema.MarginGoal:     {"finance", "metrics"},
	schema.CustomGoal:     {"metrics"},
}

// effortForGoalType estimates execution cost on the same 0-1 scale as
// upside and downside. Fundraises are the heaviest lift in the portfolio.
var effortForGoalType = map[schema.GoalType]float64{
	schema.RunwayGoal:     0.4,
	schema.RevenueGoal:    0.5,
	schema.HiringGoal:     0.4,
	schema.FundraiseGoal:  0.6,
	schema.RetentionGoal:  0.4,
	schema.EfficiencyGoal: 0.3,
	schema.MarginGoal:     0.4,
	schema.CustomGoal:     0.3,
}

// Severity-indexed priors for issue remediation. Harder problems promise
// more upside but are less likely to resolve cleanly and take longer.
var (
	issueUpside      = [4]float64{0.3, 0.5, 0.7, 0.9}  // low..critical
	issueSuccessProb = [4]float64{0.8, 0.7, 0.6, 0.5}  // low..critical
	issueEffort      = [4]float64{0.2, 0.3, 0.4, 0.5}  // low..critical
	issueDownside    = [4]float64{0.1, 0.25, 0.4, 0.6} // fallback when no goal damage
	issueImpactDays  = [4]float64{60, 45, 30, 14}      // low..critical
	issueExecProb    = 0.8
)

// Pre-issue watch priors: cheap, fast, near-certain to execute.
const (
	watchDownside    = 0.1
	watchSuccessProb = 0.9
	watchExecProb    = 0.9
	watchEffort      = 0.1
	watchImpactDays  = 7
)

// Trust and pattern increments from ledger history, applied per action id.
const (
	trustPerMiss        = 0.1
	trustPenaltyCap     = 0.4
	liftPerSuccess      = 0.05
	liftPerCompletion   = 0.02
	patternLiftCap      = 0.25
	defaultGoalUpside   = 0.5
	defaultGoalProb     = 0.5
	blockedFriction     = 0.2
	suggestedFriction   = 0.1
	multiEntityLeverage = 0.1
	defaultImpactDays   = 30
)

// ledgerStats aggregates past outcomes for one action id.
type ledgerStats struct {
	dismissed int
	failed    int
	succeeded int
	completed int
}

// ledgerByAction folds the event log into per-action outcome counts.
// Action ids are deterministic across runs, so history recorded against
// an id in past runs attaches to the same candidate today.
func ledgerByAction(events []schema.Event) map[string]ledgerStats {
	stats := make(map[string]ledgerStats)
	for _, ev := range events {
		s := stats[ev.ActionID]
		switch ev.Type {
		case schema.ActionDismissedEvent:
			s.dismissed++
		case schema.ActionCompletedEvent:
			s.completed++
		case schema.OutcomeRecordedEvent:
			switch ev.Outcome {
			case schema.SuccessOutcome:
				s.succeeded++
			case schema.FailureOutcome:
				s.failed++
			}
		}
		stats[ev.ActionID] = s
	}
	return stats
}

func trustPenaltyFor(s ledgerStats) float64 {
	p := trustPerMiss * float64(s.dismissed+s.failed)
	return min(p, trustPenaltyCap)
}

func patternLiftFor(s ledgerStats) float64 {
	l := liftPerSuccess*float64(s.succeeded) + liftPerCompletion*float64(s.completed)
	return min(l, patternLiftCap)
}

// BuildActions assembles the action candidates for one company from its
// issues, selected goals, trajectories, damages and warning anomalies.
// Every impact term is derived from upstream signals; nothing here is
// tuned per action. Scores are left zero: ranking happens elsewhere.
func BuildActions(
	company *schema.Company,
	anomalies []schema.Anomaly,
	goals []schema.Goal,
	trajectories map[string]schema.GoalTrajectory,
	damages []schema.GoalDamage,
	events []schema.Event,
	now time.Time,
	params schema.PressureParams,
) []schema.Action {
	ledger := ledgerByAction(events)
	damageByGoal := make(map[string]float64)
	damageByIssue := make(map[string]float64)
	for _, d := range damages {
		damageByGoal[d.GoalID] += d.Damage
		damageByIssue[d.IssueID] += d.Damage
	}

	var actions []schema.Action
	for i := range company.Issues {
		actions = append(actions, issueAction(company, &company.Issues[i], damageByIssue))
	}
	for i := range goals {
		actions = append(actions, goalAction(company, &goals[i], trajectories, damageByGoal, now))
	}
	actions = append(actions, watchActions(company, anomalies)...)

	for i := range actions {
		a := &actions[i]
		a.Impact.Pressure = pressure.Compute(a, company.Constraints, now, params)
		stats := ledger[a.ID]
		a.Impact.TrustPenalty = trustPenaltyFor(stats)
		a.Impact.PatternLift = patternLiftFor(stats)
		a.Impact.SourceBoost = boostFor(a.Sources)
	}
	return actions
}

// issueAction builds the remediation candidate for one open issue.
// Downside prefers the actual damage the issue inflicts on goals; the
// severity fallback covers issues that threaten nothing tracked.
func issueAction(company *schema.Company, issue *schema.Issue, damageByIssue map[string]float64) schema.Action {
	sev := severityIndex(issue.Severity)
	downside := damageByIssue[issue.ID]
	if downside <= 0 {
		downside = issueDownside[sev]
	}
	return schema.Action{
		ID:         fmt.Sprintf("act-%s-issue-%s", company.ID, issue.ID),
		CompanyID:  company.ID,
		Title:      "Resolve: " + issue.Title,
		Categories: issueCategories[issue.Type],
		GoalID:     issue.GoalID,
		Resolution: string(issue.Type),
		Sources:    []schema.ActionSource{{Type: schema.IssueSource, RefID: issue.ID}},
		Impact: schema.ActionImpact{
			Upside:               issueUpside[sev],
			Downside:             min(downside, 1),
			Effort:               issueEffort[sev],
			TimeToImpactDays:     issueImpactDays[sev],
			ExecutionProbability: issueExecProb,
			ProbabilityOfSuccess: issueSuccessProb[sev],
		},
	}
}

// goalAction builds the advancement candidate for one goal in the
// selected top set. Trajectory signals drive both probabilities; the
// goal's own priority weight is the upside.
func goalAction(company *schema.Company, goal *schema.Goal, trajectories map[string]schema.GoalTrajectory, damageByGoal map[string]float64, now time.Time) schema.Action {
	upside := goal.Weight / 100
	if upside <= 0 {
		upside = defaultGoalUpside
	}
	execProb := defaultGoalProb
	successProb := defaultGoalProb
	if traj, ok := trajectories[goal.ID]; ok {
		execProb = traj.Confidence
		successProb = traj.ProbabilityOfHit
	}
	var secondOrder float64
	if goal.IsMultiEntity() {
		secondOrder = multiEntityLeverage
	}
	var friction float64
	switch goal.Status {
	case schema.BlockedGoalStatus:
		friction = blockedFriction
	case schema.SuggestedGoalStatus:
		friction = suggestedFriction
	}
	days := float64(defaultImpactDays)
	if !goal.Due.IsZero() {
		days = max(goal.Due.Sub(now).Hours()/24, 0)
	}
	return schema.Action{
		ID:         fmt.Sprintf("act-%s-goal-%s", company.ID, goal.ID),
		CompanyID:  company.ID,
		Title:      "Advance: " + goal.Name,
		Categories: goalCategories[goal.Type],
		GoalID:     goal.ID,
		Resolution: string(goal.Type),
		Sources:    []schema.ActionSource{{Type: schema.GoalSource, RefID: goal.ID}},
		Impact: schema.ActionImpact{
			Upside:               upside,
			Downside:             min(damageByGoal[goal.ID], 1),
			SecondOrder:          secondOrder,
			Effort:               effortForGoalType[goal.Type],
			TimeToImpactDays:     days,
			ExecutionProbability: execProb,
			ProbabilityOfSuccess: successProb,
			Friction:             friction,
		},
	}
}

// watchActions turns early-warning anomalies (in the tolerance zone or
// flagged as warnings) into cheap investigation candidates, one per
// metric.
func watchActions(company *schema.Company, anomalies []schema.Anomaly) []schema.Action {
	var actions []schema.Action
	seen := make(map[schema.MetricKey]struct{})
	for i := range anomalies {
		an := &anomalies[i]
		if !an.Evidence.InToleranceZone && an.Evidence.Direction != schema.DirectionWarning {
			continue
		}
		if _, dup := seen[an.Metric]; dup {
			continue
		}
		seen[an.Metric] = struct{}{}
		sev := severityIndex(an.Severity)
		actions = append(actions, schema.Action{
			ID:         fmt.Sprintf("act-%s-watch-%s", company.ID, an.Metric),
			CompanyID:  company.ID,
			Title:      fmt.Sprintf("Investigate %s drift", strings.ReplaceAll(string(an.Metric), "_", " ")),
			Categories: []string{"metrics"},
			Resolution: string(an.Type),
			Sources:    []schema.ActionSource{{Type: schema.PreIssueSource, RefID: string(an.Type)}},
			Impact: schema.ActionImpact{
				Upside:               0.2 + 0.1*float64(sev),
				Downside:             watchDownside,
				Effort:               watchEffort,
				TimeToImpactDays:     watchImpactDays,
				ExecutionProbability: watchExecProb,
				ProbabilityOfSuccess: watchSuccessProb,
			},
		})
	}
	return actions
}

// boostFor returns the strongest source prior carried by the action.
func boostFor(sources []schema.ActionSource) float64 {
	var boost float64
	for _, s := range sources {
		boost = max(boost, sourceBoosts[s.Type])
	}
	return boost
}

func severityIndex(s schema.Severity) int {
	if s < schema.SeverityLow {
		return 0
	}
	if s > schema.SeverityCritical {
		return int(schema.SeverityCritical)
	}
	return int(s)
}
