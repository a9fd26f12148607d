package pressure

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulselab/portpulse/schema"
)

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func constraint(id string, constraintType schema.ConstraintType, inDays int) schema.Constraint {
	return schema.Constraint{
		ID:    id,
		Type:  constraintType,
		Date:  testNow.AddDate(0, 0, inDays),
		Title: string(constraintType),
	}
}

func fundraiseAction() *schema.Action {
	return &schema.Action{
		ID:         "a1",
		CompanyID:  "c1",
		Title:      "Prepare fundraise materials",
		Categories: []string{"fundraise"},
	}
}

func unrelatedAction() *schema.Action {
	return &schema.Action{
		ID:        "a2",
		CompanyID: "c1",
		Title:     "Ship onboarding revamp",
	}
}

func TestUrgencyCurve(t *testing.T) {
	params := schema.GetDefaultPressureParams()

	tests := []struct {
		name      string
		daysUntil float64
		want      float64
	}{
		{name: "today", daysUntil: 0, want: 1.0},
		{name: "one decay constant out", daysUntil: 14, want: math.Exp(-1)},
		{name: "at horizon", daysUntil: 90, want: math.Exp(-90.0 / 14)},
		{name: "beyond horizon", daysUntil: 91, want: 0},
		{name: "passed yesterday", daysUntil: -1, want: 1 - 1.0/7},
		{name: "residual exhausted", daysUntil: -7, want: 0},
		{name: "long gone", daysUntil: -30, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Urgency(tc.daysUntil, params), 1e-9)
		})
	}
}

func TestUrgencyMonotonicApproach(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	last := 0.0
	for days := 90.0; days >= 0; days-- {
		u := Urgency(days, params)
		assert.GreaterOrEqual(t, u, last, "urgency must rise as the date nears (days=%v)", days)
		last = u
	}
}

func TestRelevanceExactMatch(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	assert.Equal(t, fullRelevance,
		Relevance(fundraiseAction(), schema.FundraiseCloseConstraint, params.Ambient))
	assert.Equal(t, params.Ambient,
		Relevance(unrelatedAction(), schema.FundraiseCloseConstraint, params.Ambient))
}

func TestRelevanceFromTitleKeywords(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	action := &schema.Action{ID: "a3", Title: "Extend runway via vendor renegotiation"}
	assert.Equal(t, fullRelevance,
		Relevance(action, schema.DebtMaturityConstraint, params.Ambient))
}

func TestRelevanceFromResolution(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	action := &schema.Action{ID: "a4", Title: "Q2 prep", Resolution: "refresh_board_reporting_pack"}
	assert.Equal(t, fullRelevance,
		Relevance(action, schema.BoardMeetingConstraint, params.Ambient))
}

func TestComputeRelevantBeatsUnrelated(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	constraints := []schema.Constraint{constraint("k1", schema.FundraiseCloseConstraint, 7)}

	relevant := Compute(fundraiseAction(), constraints, testNow, params)
	ambient := Compute(unrelatedAction(), constraints, testNow, params)

	assert.Greater(t, relevant, ambient)
	assert.Positive(t, ambient, "unrelated actions still feel a near deadline")
	assert.InDelta(t, relevant*params.Ambient, ambient, 1e-9)
}

func TestComputeStacksAdditivelyAndCaps(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	one := []schema.Constraint{constraint("k1", schema.FundraiseCloseConstraint, 2)}
	many := []schema.Constraint{
		constraint("k1", schema.FundraiseCloseConstraint, 2),
		constraint("k2", schema.TermSheetExpiryConstraint, 3),
		constraint("k3", schema.DebtMaturityConstraint, 1),
		constraint("k4", schema.BoardMeetingConstraint, 5),
	}

	single := Compute(fundraiseAction(), one, testNow, params)
	stacked := Compute(fundraiseAction(), many, testNow, params)

	assert.Greater(t, stacked, single)
	assert.LessOrEqual(t, stacked, params.MaxPressure)
}

func TestComputeZeroBeyondHorizon(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	constraints := []schema.Constraint{constraint("k1", schema.FundraiseCloseConstraint, 120)}
	assert.Zero(t, Compute(fundraiseAction(), constraints, testNow, params))
}

func TestDriversSortedAndFiltered(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	constraints := []schema.Constraint{
		constraint("k-far", schema.BoardMeetingConstraint, 120), // beyond horizon, dropped
		constraint("k-near", schema.FundraiseCloseConstraint, 3),
		constraint("k-mid", schema.TermSheetExpiryConstraint, 30),
	}

	drivers := Drivers(fundraiseAction(), constraints, testNow, params)
	require.Len(t, drivers, 2)
	assert.Equal(t, "k-near", drivers[0].ConstraintID)
	assert.Equal(t, "k-mid", drivers[1].ConstraintID)
	assert.Greater(t, drivers[0].Pressure, drivers[1].Pressure)
	for _, d := range drivers {
		assert.Positive(t, d.Urgency)
		assert.Positive(t, d.Relevance)
	}
}

func TestComputeDeterministic(t *testing.T) {
	params := schema.GetDefaultPressureParams()
	constraints := []schema.Constraint{
		constraint("k1", schema.FundraiseCloseConstraint, 2),
		constraint("k2", schema.BoardMeetingConstraint, 9),
	}
	first := Compute(fundraiseAction(), constraints, testNow, params)
	for range 5 {
		assert.Equal(t, first, Compute(fundraiseAction(), constraints, testNow, params))
	}
}
