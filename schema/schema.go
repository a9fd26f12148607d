// Package schema has configs, models and global variables for all parts of portpulse.
package schema

import "time"

// EntityType identifies the kind of entity a reference points at.
// The set is closed: every consumer of EntityRefs must handle all of them.
type EntityType string

// All entity types supported.
const (
	CompanyEntity EntityType = "company"
	FirmEntity    EntityType = "firm"
	DealEntity    EntityType = "deal"
	RoundEntity   EntityType = "round"
	PersonEntity  EntityType = "person"
)

// ValidEntityTypes lists all valid entity types.
var ValidEntityTypes = map[EntityType]struct{}{
	CompanyEntity: {},
	FirmEntity:    {},
	DealEntity:    {},
	RoundEntity:   {},
	PersonEntity:  {},
}

// EntityRef is a typed reference to an entity plus the role it plays
// (e.g. "owner", "lead", "sponsor"). References are id-indexed, never
// live pointers, so the graph can be validated for cycles.
type EntityRef struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
	Role string     `json:"role,omitempty"`
}

// CompanyMetrics is the current metric snapshot for a company.
// Monetary values are monthly USD unless noted. Runway is intentionally
// absent: it is derived from cash and burn, never stored.
type CompanyMetrics struct {
	Cash        float64 `json:"cash"`
	Burn        float64 `json:"burn"`
	Headcount   int     `json:"headcount"`
	MRR         float64 `json:"mrr,omitempty"`
	ARR         float64 `json:"arr,omitempty"`
	RaiseTarget float64 `json:"raiseTarget,omitempty"`

	// Operating holds secondary operating metrics keyed by MetricKey
	// (NRR, gross margin, CAC, etc.). Missing keys mean "not reported".
	Operating map[MetricKey]float64 `json:"operating,omitempty"`
}

// Runway returns the cash runway in months, or 0 when burn is not positive.
func (m *CompanyMetrics) Runway() float64 {
	if m.Burn <= 0 {
		return 0
	}
	return m.Cash / m.Burn
}

// MonthlyRevenue returns the canonical monthly revenue figure.
// MRR and ARR are mutually exclusive on raw records (the Gate enforces
// this); whichever is present wins, with ARR normalized to monthly.
func (m *CompanyMetrics) MonthlyRevenue() float64 {
	if m.MRR > 0 {
		return m.MRR
	}
	return m.ARR / 12
}

// Issue is an open, raw-layer problem record on a company. Issues may
// name the goal they threaten directly via GoalID; otherwise the
// issue-type table decides which goal types they can damage.
type Issue struct {
	ID       string    `json:"id"`
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Title    string    `json:"title"`
	GoalID   string    `json:"goalId,omitempty"`
	OpenedAt time.Time `json:"openedAt"`
}

// Constraint is a hard deadline on a company (board meeting, fundraise
// close). Constraints contribute time pressure to actions whose
// categories match the constraint type's relevance set.
type Constraint struct {
	ID    string         `json:"id"`
	Type  ConstraintType `json:"type"`
	Date  time.Time      `json:"date"`
	Title string         `json:"title"`
}

// Company is a raw portfolio company record. Derived values (anomalies,
// trajectories, scores) are never written back onto this struct.
type Company struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Stage       Stage          `json:"stage"`
	Metrics     CompanyMetrics `json:"metrics"`
	Goals       []Goal         `json:"goals,omitempty"`
	Issues      []Issue        `json:"issues,omitempty"`
	Constraints []Constraint   `json:"constraints,omitempty"`
}

// Event is one entry in the append-only outcome ledger. Timestamps stay
// as RFC3339 strings so the Gate can validate parseability exactly as
// recorded.
type Event struct {
	ID        string         `json:"id"`
	ActionID  string         `json:"actionId"`
	Type      EventType      `json:"type"`
	Outcome   EventOutcome   `json:"outcome,omitempty"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// RawDataset is one immutable snapshot of raw facts: the sole input to a
// pipeline run, supplied by an external loader.
type RawDataset struct {
	GeneratedAt time.Time `json:"generatedAt,omitempty"`
	Companies   []Company `json:"companies"`
	Events      []Event   `json:"events,omitempty"`
}

// CompanyByID returns the company with the given id, or nil.
func (d *RawDataset) CompanyByID(id string) *Company {
	for i := range d.Companies {
		if d.Companies[i].ID == id {
			return &d.Companies[i]
		}
	}
	return nil
}
