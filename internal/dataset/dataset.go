// Package dataset loads raw portfolio snapshots from JSON files. The
// loader is the only place raw facts enter the system; it normalizes
// legacy field aliases and keeps the untyped tree around so invariant
// checks can scan exactly what was on disk.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pulselab/portpulse/schema"
)

// Loaded couples the typed dataset with the untyped JSON tree it was
// decoded from. RawTree reflects the file before alias normalization.
type Loaded struct {
	Dataset *schema.RawDataset
	RawTree map[string]any
}

// Load reads and decodes a dataset file.
func Load(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes dataset bytes. Unknown top-level fields are tolerated;
// malformed JSON is not.
func Parse(data []byte) (*Loaded, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	var ds schema.RawDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	normalizeGoalAliases(&ds, tree)

	if err := validate(&ds); err != nil {
		return nil, err
	}

	return &Loaded{Dataset: &ds, RawTree: tree}, nil
}

// normalizeGoalAliases fills Goal.Current and Goal.Target from the
// legacy "cur"/"tgt" keys when the canonical fields are absent. Older
// exporters still emit the short names.
func normalizeGoalAliases(ds *schema.RawDataset, tree map[string]any) {
	companies, ok := tree["companies"].([]any)
	if !ok {
		return
	}
	for ci := range ds.Companies {
		if ci >= len(companies) {
			break
		}
		rawCompany, ok := companies[ci].(map[string]any)
		if !ok {
			continue
		}
		rawGoals, ok := rawCompany["goals"].([]any)
		if !ok {
			continue
		}
		for gi := range ds.Companies[ci].Goals {
			if gi >= len(rawGoals) {
				break
			}
			rawGoal, ok := rawGoals[gi].(map[string]any)
			if !ok {
				continue
			}
			goal := &ds.Companies[ci].Goals[gi]
			if goal.Current == 0 {
				if v, ok := floatField(rawGoal, "cur"); ok {
					goal.Current = v
				}
			}
			if goal.Target == 0 {
				if v, ok := floatField(rawGoal, "tgt"); ok {
					goal.Target = v
				}
			}
		}
	}
}

func floatField(m map[string]any, key string) (float64, bool) {
	v, ok := m[key].(float64)
	return v, ok
}

// validate rejects structurally broken datasets early. Semantic
// violations (forbidden fields, bad events) are the invariant
// battery's job, not the loader's.
func validate(ds *schema.RawDataset) error {
	seen := make(map[string]struct{}, len(ds.Companies))
	for i := range ds.Companies {
		c := &ds.Companies[i]
		if c.ID == "" {
			return fmt.Errorf("company at index %d has no id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate company id %q", c.ID)
		}
		seen[c.ID] = struct{}{}

		if _, err := stageKnown(c.Stage); err != nil {
			return fmt.Errorf("company %q: %w", c.ID, err)
		}
		// Goals with zero entity refs still load; the invariant
		// battery reports them instead of the loader rejecting.
		for gi := range c.Goals {
			if c.Goals[gi].ID == "" {
				return fmt.Errorf("company %q: goal at index %d has no id", c.ID, gi)
			}
		}
	}
	return nil
}

func stageKnown(stage schema.Stage) (schema.Stage, error) {
	for _, s := range schema.AllStages {
		if s == stage {
			return stage, nil
		}
	}
	return stage, fmt.Errorf("unknown stage value %d", int(stage))
}
