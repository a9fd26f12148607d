package goalset

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pulselab/portpulse/schema"
)

// DefaultGoalSetSize is the minimum number of goals SelectTopGoals
// tries to return.
const DefaultGoalSetSize = 5

// maxPerType caps same-typed goals in the selected set to keep it diverse.
const maxPerType = 2

// goalTemplate is a suggested goal shape before it is bound to a company.
type goalTemplate struct {
	Type schema.GoalType
	Name string
}

// anomalyTemplates converts detection findings into candidate goals.
// Unlisted anomaly types fall back to a generic stabilization goal.
var anomalyTemplates = map[schema.AnomalyType]goalTemplate{
	"RUNWAY_BELOW_MIN":          {schema.RunwayGoal, "Extend Runway"},
	"RUNWAY_NEAR_BOUND":         {schema.RunwayGoal, "Protect Runway"},
	"BURN_ABOVE_MAX":            {schema.EfficiencyGoal, "Reduce Burn"},
	"BURN_NEAR_BOUND":           {schema.EfficiencyGoal, "Watch Burn"},
	"REVENUE_BELOW_MIN":         {schema.RevenueGoal, "Accelerate Revenue"},
	"HEADCOUNT_BELOW_MIN":       {schema.HiringGoal, "Close Hiring Gap"},
	"HEADCOUNT_ABOVE_MAX":       {schema.EfficiencyGoal, "Right-Size Team"},
	"RAISE_TARGET_BELOW_MIN":    {schema.FundraiseGoal, "Prepare Fundraise"},
	"NRR_BELOW_MIN":             {schema.RetentionGoal, "Recover Net Retention"},
	"LOGO_CHURN_ABOVE_MAX":      {schema.RetentionGoal, "Stop Logo Churn"},
	"GROSS_MARGIN_BELOW_MIN":    {schema.MarginGoal, "Restore Gross Margin"},
	"BURN_MULTIPLE_ABOVE_MAX":   {schema.EfficiencyGoal, "Improve Burn Multiple"},
	"CAC_PAYBACK_ABOVE_MAX":     {schema.EfficiencyGoal, "Shorten CAC Payback"},
	"GROWTH_RATE_BELOW_MIN":     {schema.RevenueGoal, "Reignite Growth"},
	schema.StageMismatchAnomaly: {schema.CustomGoal, "Reassess Stage Fit"},
}

// stageTemplates pad the goal set when a company has few findings.
var stageTemplates = map[schema.Stage][]goalTemplate{
	schema.PreSeed: {
		{schema.RevenueGoal, "Reach First Revenue"},
		{schema.FundraiseGoal, "Raise Seed Round"},
	},
	schema.Seed: {
		{schema.RevenueGoal, "Prove Repeatable Sales"},
		{schema.FundraiseGoal, "Raise Series A"},
	},
	schema.SeriesA: {
		{schema.RevenueGoal, "Scale Go-To-Market"},
		{schema.HiringGoal, "Build Leadership Team"},
	},
	schema.SeriesB: {
		{schema.EfficiencyGoal, "Improve Unit Economics"},
		{schema.RevenueGoal, "Expand Market Segments"},
	},
	schema.SeriesC: {
		{schema.MarginGoal, "Drive Operating Leverage"},
		{schema.RetentionGoal, "Deepen Account Expansion"},
	},
	schema.SeriesD: {
		{schema.MarginGoal, "Reach Profitability Path"},
		{schema.EfficiencyGoal, "Optimize Cost Structure"},
	},
}

// genericTemplates are the last-resort padding goals.
var genericTemplates = []goalTemplate{
	{schema.RunwayGoal, "Maintain Runway Buffer"},
	{schema.RetentionGoal, "Hold Net Retention"},
	{schema.HiringGoal, "Fill Key Roles"},
	{schema.CustomGoal, "Quarterly Operating Review"},
}

// GoalsFromAnomalies converts findings into suggested goals. Severity
// sets the weight and the due-date horizon; output is deduplicated so
// at most one goal per (type, name) pair survives, keeping the highest
// severity when duplicates collide.
func GoalsFromAnomalies(companyID string, anomalies []schema.Anomaly, now time.Time) []schema.Goal {
	type keyed struct {
		goal     schema.Goal
		severity schema.Severity
	}
	seen := make(map[string]keyed)
	var order []string

	for _, a := range anomalies {
		tpl, ok := anomalyTemplates[a.Type]
		if !ok {
			tpl = genericTemplateFor(a.Metric)
		}
		key := string(tpl.Type) + "|" + tpl.Name
		if prev, dup := seen[key]; dup {
			if a.Severity > prev.severity {
				prev.goal.Weight = severityWeight(a.Severity)
				prev.goal.Due = now.AddDate(0, 0, horizonDays(a.Severity))
				prev.severity = a.Severity
				seen[key] = prev
			}
			continue
		}
		seen[key] = keyed{
			goal: schema.Goal{
				ID:         fmt.Sprintf("goal-%s-%s", companyID, strings.ToLower(string(a.Type))),
				EntityRefs: []schema.EntityRef{{Type: schema.CompanyEntity, ID: companyID}},
				Type:       tpl.Type,
				Name:       tpl.Name,
				Due:        now.AddDate(0, 0, horizonDays(a.Severity)),
				Status:     schema.SuggestedGoalStatus,
				Weight:     severityWeight(a.Severity),
				Provenance: schema.AnomalyProvenance,
			},
			severity: a.Severity,
		}
		order = append(order, key)
	}

	goals := make([]schema.Goal, 0, len(seen))
	for _, key := range order {
		goals = append(goals, seen[key].goal)
	}
	return goals
}

func genericTemplateFor(metric schema.MetricKey) goalTemplate {
	return goalTemplate{
		Type: schema.CustomGoal,
		Name: "Stabilize " + strings.ReplaceAll(string(metric), "_", " "),
	}
}

// horizonDays is the implied due-date horizon for a finding, tighter
// the worse it is.
func horizonDays(severity schema.Severity) int {
	switch severity {
	case schema.SeverityCritical:
		return 30
	case schema.SeverityHigh:
		return 60
	case schema.SeverityMedium:
		return 90
	default:
		return 120
	}
}

func severityWeight(severity schema.Severity) float64 {
	switch severity {
	case schema.SeverityCritical:
		return 95
	case schema.SeverityHigh:
		return 80
	case schema.SeverityMedium:
		return 60
	default:
		return 40
	}
}

// SelectTopGoals builds the bounded goal set for a company by layering
// priority sources: existing open goals, then anomaly-derived goals by
// descending severity, then stage templates, then generic fallbacks.
// At most maxPerType goals of the same type are admitted.
func SelectTopGoals(company *schema.Company, anomalies []schema.Anomaly, minGoals int, now time.Time) []schema.Goal {
	if minGoals <= 0 {
		minGoals = DefaultGoalSetSize
	}

	typeCounts := make(map[schema.GoalType]int)
	nameSeen := make(map[string]struct{})
	var selected []schema.Goal

	admit := func(g schema.Goal) {
		key := string(g.Type) + "|" + g.Name
		if _, dup := nameSeen[key]; dup {
			return
		}
		if typeCounts[g.Type] >= maxPerType {
			return
		}
		nameSeen[key] = struct{}{}
		typeCounts[g.Type]++
		selected = append(selected, g)
	}

	// Existing open goals first, heaviest weight wins.
	open := make([]schema.Goal, 0, len(company.Goals))
	for _, g := range company.Goals {
		if g.IsOpen() {
			open = append(open, g)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].Weight > open[j].Weight })
	for _, g := range open {
		admit(g)
	}

	// Anomaly-derived goals next, worst findings first.
	sorted := make([]schema.Anomaly, len(anomalies))
	copy(sorted, anomalies)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Severity > sorted[j].Severity })
	for _, g := range GoalsFromAnomalies(company.ID, sorted, now) {
		if len(selected) >= minGoals {
			break
		}
		admit(g)
	}

	// Stage templates as padding.
	for _, tpl := range stageTemplates[company.Stage] {
		if len(selected) >= minGoals {
			break
		}
		admit(templateGoal(company.ID, tpl, now))
	}

	// Generic fallbacks if still short.
	for _, tpl := range genericTemplates {
		if len(selected) >= minGoals {
			break
		}
		admit(templateGoal(company.ID, tpl, now))
	}

	return selected
}

func templateGoal(companyID string, tpl goalTemplate, now time.Time) schema.Goal {
	slug := strings.ToLower(strings.ReplaceAll(tpl.Name, " ", "-"))
	return schema.Goal{
		ID:         fmt.Sprintf("goal-%s-%s", companyID, slug),
		EntityRefs: []schema.EntityRef{{Type: schema.CompanyEntity, ID: companyID}},
		Type:       tpl.Type,
		Name:       tpl.Name,
		Due:        now.AddDate(0, 0, 90),
		Status:     schema.SuggestedGoalStatus,
		Weight:     50,
		Provenance: schema.TemplateProvenance,
	}
}
