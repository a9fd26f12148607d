package schema

import "time"

// GoalPoint is a single historical measurement of a goal's value.
type GoalPoint struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Goal is a raw-layer objective on one or more entities. Current and
// Target are the canonical value fields; the legacy cur/tgt aliases are
// normalized away by the dataset loader before anything computes on them.
type Goal struct {
	ID         string      `json:"id"`
	EntityRefs []EntityRef `json:"entityRefs"`
	Type       GoalType    `json:"type"`
	Name       string      `json:"name"`
	Current    float64     `json:"current"`
	Target     float64     `json:"target"`
	Unit       string      `json:"unit,omitempty"`
	Due        time.Time   `json:"due"`
	Status     GoalStatus  `json:"status"`
	Weight     float64     `json:"weight,omitempty"` // 0-100 priority weight
	History    []GoalPoint `json:"history,omitempty"`
	Provenance Provenance  `json:"provenance"`
}

// IsMultiEntity reports whether the goal spans more than one entity type.
// Derived on demand, never stored.
func (g *Goal) IsMultiEntity() bool {
	seen := make(map[EntityType]struct{}, len(g.EntityRefs))
	for _, ref := range g.EntityRefs {
		seen[ref.Type] = struct{}{}
	}
	return len(seen) > 1
}

// PrimaryEntity returns the first entity reference, the goal's anchor.
// A goal with zero entity refs is a schema violation caught by the Gate.
func (g *Goal) PrimaryEntity() EntityRef {
	if len(g.EntityRefs) == 0 {
		return EntityRef{}
	}
	return g.EntityRefs[0]
}

// IsOpen reports whether the goal still needs attention.
func (g *Goal) IsOpen() bool {
	return g.Status == ActiveGoalStatus || g.Status == BlockedGoalStatus || g.Status == SuggestedGoalStatus
}
