package schema

// ActionSource records what produced an action candidate.
type ActionSource struct {
	Type  SourceType `json:"type"`
	RefID string     `json:"refId"`
}

// ActionImpact is the per-action signal bundle assembled by the decide
// layer. Every field is derived from upstream data (anomalies, damages,
// trajectories, constraint pressure, ledger history), never hand-tuned
// per action. The ranking engine reads these and nothing else.
type ActionImpact struct {
	Upside               float64 `json:"upside"`
	Downside             float64 `json:"downside"`
	SecondOrder          float64 `json:"secondOrder"`
	Effort               float64 `json:"effort"`
	TimeToImpactDays     float64 `json:"timeToImpactDays"`
	ExecutionProbability float64 `json:"executionProbability"`
	ProbabilityOfSuccess float64 `json:"probabilityOfSuccess"`
	TrustPenalty         float64 `json:"trustPenalty"`
	Friction             float64 `json:"friction"`
	Pressure             float64 `json:"pressure"` // constraint time-criticality boost
	SourceBoost          float64 `json:"sourceBoost"`
	PatternLift          float64 `json:"patternLift"`
}

// Action is one recommendation candidate. RankScore is written exactly
// once, by the ranking engine; nothing else computes or sorts by an
// equivalent score.
type Action struct {
	ID         string             `json:"id"`
	CompanyID  string             `json:"companyId"`
	Title      string             `json:"title"`
	Categories []string           `json:"categories,omitempty"`
	GoalID     string             `json:"goalId,omitempty"`
	Resolution string             `json:"resolution,omitempty"`
	Sources    []ActionSource     `json:"sources"`
	Impact     ActionImpact       `json:"impact"`
	RankScore  float64            `json:"rankScore"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty"`
}

// Breakdown keys used in the ranking logic.
const (
	BreakdownExpectedNet = "expected_net" // upside×p + leverage − downside×(1−p) − effort − time penalty
	BreakdownTrust       = "trust"        // trust penalty from ledger history
	BreakdownFriction    = "friction"     // execution friction penalty
	BreakdownPressure    = "pressure"     // constraint time-criticality boost
	BreakdownSource      = "source"       // source-type prior
	BreakdownPattern     = "pattern"      // pattern lift from past outcomes
)

// HasSource reports whether the action carries a source of the given type.
func (a *Action) HasSource(t SourceType) bool {
	for _, s := range a.Sources {
		if s.Type == t {
			return true
		}
	}
	return false
}
