package schema

import "time"

// GoalTrajectory is the derived outlook for one goal at one reference
// time. Never persisted; recomputed from Goal.History and "now".
type GoalTrajectory struct {
	GoalID           string     `json:"goalId"`
	Progress         float64    `json:"progress"` // fraction of target reached, clamped [0,1]
	DaysLeft         float64    `json:"daysLeft"`
	OnTrack          *bool      `json:"onTrack"` // nil when history is insufficient
	ProjectedDate    *time.Time `json:"projectedDate,omitempty"`
	Velocity         float64    `json:"velocity"`         // value units per day
	RequiredVelocity float64    `json:"requiredVelocity"` // rate needed to hit target by due
	ProbabilityOfHit float64    `json:"probabilityOfHit"` // [0,1]
	Confidence       float64    `json:"confidence"`       // [0,1]
	Message          string     `json:"message,omitempty"`
}

// GoalDamage quantifies how one open issue hurts one goal.
// Damages are listed individually; AggregateDamage sums them per goal.
type GoalDamage struct {
	IssueID    string             `json:"issueId"`
	GoalID     string             `json:"goalId"`
	Damage     float64            `json:"damage"` // [0,1]
	Components map[string]float64 `json:"components,omitempty"`
}

// Damage component keys.
const (
	DamageSeverityComponent  = "severity"
	DamageWeightComponent    = "goal_weight"
	DamageProximityComponent = "proximity"
)
