package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulselab/portpulse/schema"
)

func goalFixture() []schema.CompanyDerived {
	onTrack := false
	return []schema.CompanyDerived{
		{
			CompanyID:   "c-1",
			CompanyName: "Zephyr",
			Goals: []schema.Goal{
				{
					ID:     "g-1",
					Name:   "ARR to 1.2M",
					Type:   schema.RevenueGoal,
					Status: schema.ActiveGoalStatus,
					Weight: 80,
					Due:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
				},
				{
					ID:     "g-2",
					Name:   "Extend runway",
					Type:   schema.RunwayGoal,
					Status: schema.SuggestedGoalStatus,
					Due:    time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
				},
			},
			Trajectories: map[string]schema.GoalTrajectory{
				"g-1": {
					GoalID:           "g-1",
					Progress:         0.55,
					DaysLeft:         121,
					OnTrack:          &onTrack,
					Velocity:         1200,
					RequiredVelocity: 2100,
					ProbabilityOfHit: 0.4,
					Confidence:       0.7,
				},
			},
		},
	}
}

func TestWriteGoalJSONModel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, goalJSONModel(goalFixture())))

	var result []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 1)

	goals, ok := result[0]["goals"].([]any)
	require.True(t, ok)
	assert.Len(t, goals, 2)
	trajectories, ok := result[0]["trajectories"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, trajectories, "g-1")
}

func TestWriteGoalCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, writeCSVResultsForGoals(w, goalFixture(), fmtFloat))
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 goals

	assert.Contains(t, lines[0], "required_velocity")
	assert.Contains(t, lines[1], "no")      // projected to miss
	assert.Contains(t, lines[2], "unknown") // suggested goal without projection
	assert.Contains(t, lines[2], "suggested")
}

func TestWriteGoalTable(t *testing.T) {
	cfg := tableConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeGoalTable(goalFixture(), cfg, fmtFloat, time.Second, &buf))

	output := buf.String()
	assert.Contains(t, output, "ARR to 1.2M")
	assert.Contains(t, output, "Extend runway")
	assert.Contains(t, output, "Showing 2 goals across 1 companies")
}

func TestFormatOnTrack(t *testing.T) {
	yes := true
	assert.Equal(t, "unknown", formatOnTrack(nil))
	assert.Equal(t, "unknown", formatOnTrack(&schema.GoalTrajectory{}))
	assert.Equal(t, "yes", formatOnTrack(&schema.GoalTrajectory{OnTrack: &yes}))
}
