package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulselab/portpulse/schema"
)

const sampleDataset = `{
	"generatedAt": "2026-02-28T00:00:00Z",
	"companies": [
		{
			"id": "c-acme",
			"name": "Acme Robotics",
			"stage": "seed",
			"metrics": {"cash": 1200000, "burn": 100000, "headcount": 12, "mrr": 45000},
			"goals": [
				{
					"id": "g-1",
					"entityRefs": [{"type": "company", "id": "c-acme"}],
					"type": "revenue_growth",
					"name": "Reach 100k MRR",
					"current": 45000,
					"target": 100000,
					"due": "2026-09-01T00:00:00Z",
					"status": "active",
					"weight": 80,
					"provenance": "manual"
				}
			],
			"issues": [
				{"id": "i-1", "type": "burn_overrun", "severity": 2, "title": "Burn above plan", "openedAt": "2026-01-15T00:00:00Z"}
			],
			"constraints": [
				{"id": "k-1", "type": "board_meeting", "date": "2026-03-15T00:00:00Z", "title": "Q1 board"}
			]
		}
	],
	"events": [
		{"id": "e-1", "actionId": "a-1", "type": "action_created", "timestamp": "2026-02-01T00:00:00Z"}
	]
}`

func TestParseSampleDataset(t *testing.T) {
	loaded, err := Parse([]byte(sampleDataset))
	require.NoError(t, err)

	ds := loaded.Dataset
	require.Len(t, ds.Companies, 1)
	company := ds.Companies[0]
	assert.Equal(t, "c-acme", company.ID)
	assert.Equal(t, schema.Seed, company.Stage)
	assert.Equal(t, 100_000.0, company.Metrics.Burn)
	require.Len(t, company.Goals, 1)
	assert.Equal(t, 45_000.0, company.Goals[0].Current)
	require.Len(t, ds.Events, 1)
	assert.Equal(t, schema.ActionCreatedEvent, ds.Events[0].Type)

	// Raw tree keeps what was on disk for invariant scanning.
	require.NotNil(t, loaded.RawTree)
	assert.Contains(t, loaded.RawTree, "companies")
}

func TestParseNormalizesLegacyGoalAliases(t *testing.T) {
	legacy := `{
		"companies": [{
			"id": "c-1", "name": "Legacy Co", "stage": "series-a",
			"metrics": {"cash": 1, "burn": 1},
			"goals": [{
				"id": "g-1",
				"entityRefs": [{"type": "company", "id": "c-1"}],
				"type": "hiring", "name": "Hire 10", "cur": 4, "tgt": 10,
				"due": "2026-06-01T00:00:00Z", "status": "active", "provenance": "manual"
			}]
		}]
	}`
	loaded, err := Parse([]byte(legacy))
	require.NoError(t, err)

	goal := loaded.Dataset.Companies[0].Goals[0]
	assert.Equal(t, 4.0, goal.Current)
	assert.Equal(t, 10.0, goal.Target)
}

func TestParseCanonicalFieldsWinOverAliases(t *testing.T) {
	mixed := `{
		"companies": [{
			"id": "c-1", "name": "Mixed Co", "stage": "seed",
			"metrics": {"cash": 1, "burn": 1},
			"goals": [{
				"id": "g-1",
				"entityRefs": [{"type": "company", "id": "c-1"}],
				"type": "hiring", "name": "Hire", "current": 6, "cur": 4, "target": 12, "tgt": 10,
				"due": "2026-06-01T00:00:00Z", "status": "active", "provenance": "manual"
			}]
		}]
	}`
	loaded, err := Parse([]byte(mixed))
	require.NoError(t, err)

	goal := loaded.Dataset.Companies[0].Goals[0]
	assert.Equal(t, 6.0, goal.Current)
	assert.Equal(t, 12.0, goal.Target)
}

func TestParseRejectsBrokenDatasets(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		errPart string
	}{
		{
			name:    "not json",
			payload: "portfolio: yaml",
			errPart: "parse dataset",
		},
		{
			name:    "company without id",
			payload: `{"companies": [{"name": "NoID", "stage": "seed", "metrics": {}}]}`,
			errPart: "has no id",
		},
		{
			name: "duplicate company ids",
			payload: `{"companies": [
				{"id": "c-1", "name": "A", "stage": "seed", "metrics": {}},
				{"id": "c-1", "name": "B", "stage": "seed", "metrics": {}}
			]}`,
			errPart: "duplicate company id",
		},
		{
			name:    "unknown stage",
			payload: `{"companies": [{"id": "c-1", "name": "A", "stage": "series-z", "metrics": {}}]}`,
			errPart: "stage",
		},
		{
			name: "goal without id",
			payload: `{"companies": [{"id": "c-1", "name": "A", "stage": "seed", "metrics": {},
				"goals": [{"entityRefs": [], "type": "hiring", "name": "x", "due": "2026-06-01T00:00:00Z", "status": "active", "provenance": "manual"}]}]}`,
			errPart: "goal at index 0 has no id",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errPart)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDataset), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Dataset.Companies, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
