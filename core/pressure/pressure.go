// Package pressure converts hard constraint dates (board meetings,
// fundraise closes) into a time-criticality boost for actions whose
// categories make them relevant to the looming deadline.
package pressure

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pulselab/portpulse/schema"
)

const hoursPerDay = 24

// fullRelevance applies when an action's categories intersect the
// constraint's relevant set.
const fullRelevance = 1.0

// constraintWeights are the base weight per constraint type: a term
// sheet expiring outranks a routine board meeting at the same distance.
var constraintWeights = map[schema.ConstraintType]float64{
	schema.BoardMeetingConstraint:    0.6,
	schema.FundraiseCloseConstraint:  1.0,
	schema.TermSheetExpiryConstraint: 1.0,
	schema.DebtMaturityConstraint:    0.9,
}

// relevantCategories maps a constraint type to the action categories it
// amplifies. Anything else still gets the ambient relevance.
var relevantCategories = map[schema.ConstraintType][]string{
	schema.BoardMeetingConstraint:    {"reporting", "governance", "metrics", "narrative"},
	schema.FundraiseCloseConstraint:  {"fundraise", "runway", "revenue", "narrative"},
	schema.TermSheetExpiryConstraint: {"fundraise", "legal", "governance"},
	schema.DebtMaturityConstraint:    {"runway", "fundraise", "finance"},
}

// Driver is one constraint's contribution to an action's pressure,
// kept for explainability.
type Driver struct {
	ConstraintID string                `json:"constraintId"`
	Type         schema.ConstraintType `json:"type"`
	DaysUntil    float64               `json:"daysUntil"`
	Urgency      float64               `json:"urgency"`
	Relevance    float64               `json:"relevance"`
	Pressure     float64               `json:"pressure"`
}

// Compute returns the stacked, capped pressure on one action from all
// of a company's constraints at the reference time.
func Compute(action *schema.Action, constraints []schema.Constraint, now time.Time, params schema.PressureParams) float64 {
	total := 0.0
	for i := range constraints {
		total += driverFor(action, &constraints[i], now, params).Pressure
	}
	return math.Min(total, params.MaxPressure)
}

// Drivers returns the per-constraint contributions that matter, sorted
// by pressure descending. Zero-pressure constraints are omitted.
func Drivers(action *schema.Action, constraints []schema.Constraint, now time.Time, params schema.PressureParams) []Driver {
	var drivers []Driver
	for i := range constraints {
		d := driverFor(action, &constraints[i], now, params)
		if d.Pressure > 0 {
			drivers = append(drivers, d)
		}
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		if drivers[i].Pressure != drivers[j].Pressure {
			return drivers[i].Pressure > drivers[j].Pressure
		}
		return drivers[i].ConstraintID < drivers[j].ConstraintID
	})
	return drivers
}

func driverFor(action *schema.Action, constraint *schema.Constraint, now time.Time, params schema.PressureParams) Driver {
	daysUntil := constraint.Date.Sub(now).Hours() / hoursPerDay
	urgency := Urgency(daysUntil, params)
	relevance := Relevance(action, constraint.Type, params.Ambient)

	return Driver{
		ConstraintID: constraint.ID,
		Type:         constraint.Type,
		DaysUntil:    daysUntil,
		Urgency:      urgency,
		Relevance:    relevance,
		Pressure:     constraintWeights[constraint.Type] * urgency * relevance,
	}
}

// Urgency ramps exponentially as the constraint date approaches, is
// zero beyond the horizon, and leaves a linearly-decaying residual for
// dates that just passed.
func Urgency(daysUntil float64, params schema.PressureParams) float64 {
	switch {
	case daysUntil > params.HorizonDays:
		return 0
	case daysUntil >= 0:
		return params.Peak * math.Exp(-daysUntil/params.DecayDays)
	case -daysUntil <= params.ResidualDays:
		// Just passed: still worth cleaning up after.
		return params.Peak * (1 + daysUntil/params.ResidualDays)
	default:
		return 0
	}
}

// Relevance matches the action's category tags against the constraint
// type's relevant set. Tags come from explicit categories plus keywords
// in the resolution identifier and title. Unrelated actions still get
// the ambient floor so nothing is immune to a looming deadline.
func Relevance(action *schema.Action, constraintType schema.ConstraintType, ambient float64) float64 {
	relevant := relevantCategories[constraintType]
	for _, tag := range CategoryTags(action) {
		for _, want := range relevant {
			if tag == want {
				return fullRelevance
			}
		}
	}
	return ambient
}

// CategoryTags derives the action's matchable tags: explicit categories
// plus lowercase keywords found in the resolution and title.
func CategoryTags(action *schema.Action) []string {
	tags := make([]string, 0, len(action.Categories)+2)
	for _, c := range action.Categories {
		tags = append(tags, strings.ToLower(c))
	}
	haystack := strings.ToLower(action.Resolution + " " + action.Title)
	for _, keyword := range []string{"fundraise", "runway", "revenue", "governance", "reporting", "legal", "finance", "narrative", "metrics"} {
		if strings.Contains(haystack, keyword) {
			tags = append(tags, keyword)
		}
	}
	return tags
}
