// Package gate verifies the pipeline's architectural and data
// invariants after a run. Each check is independent, reports pass,
// fail or skip, and never aborts the battery: an operator sees every
// violation in one pass.
package gate

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pulselab/portpulse/schema"
)

// defaultEpsilon bounds float comparisons in the sort-order and
// determinism checks when the caller does not supply one.
const defaultEpsilon = 1e-9

// Input is the options bag for one battery run. Every field is
// optional; checks whose inputs are absent report skipped.
type Input struct {
	RawTree       map[string]any                        // decoded raw storage shape
	DAG           map[string][]string                   // derivation adjacency (node -> dependencies)
	RankedActions []schema.Action                       // final ranked list
	RankFn        func([]schema.Action) []schema.Action // ranking entry point, for the determinism check
	ActionsInput  []schema.Action                       // unranked candidates fed to RankFn
	Events        []schema.Event                        // outcome ledger
	Actions       []schema.Action                       // known actions for referential integrity
	Goals         []schema.Goal                         // raw goals for the shape check
	SourceRoot    string                                // module source tree for the static scans
	Epsilon       float64
}

type check struct {
	name string
	run  func(*Input) schema.GateCheckResult
}

// Run executes the full battery and returns the consolidated report.
// A panicking check becomes a failure with the panic message, so one
// malformed input cannot take down the rest of the battery.
func Run(in *Input) *schema.GateReport {
	if in.Epsilon <= 0 {
		in.Epsilon = defaultEpsilon
	}
	checks := []check{
		{"layer-import-direction", checkLayerImports},
		{"single-ranking-surface", checkSingleRankingSurface},
		{"no-stored-derivations", checkNoStoredDerivations},
		{"mutual-exclusion", checkMutualExclusion},
		{"goal-schema", checkGoalSchema},
		{"dag-acyclicity", checkDAGAcyclic},
		{"score-presence", checkScorePresence},
		{"sort-order", checkSortOrder},
		{"determinism", checkDeterminism},
		{"event-ledger", checkEventLedger},
	}

	report := &schema.GateReport{}
	for _, c := range checks {
		report.Add(runSafely(c, in))
	}
	return report
}

func runSafely(c check, in *Input) (result schema.GateCheckResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failed(c.name, fmt.Sprintf("check panicked: %v", r))
		}
	}()
	result = c.run(in)
	result.Name = c.name
	return result
}

func passed(name string, messages ...string) schema.GateCheckResult {
	return schema.GateCheckResult{Name: name, Status: schema.CheckPassed, Messages: messages}
}

func failed(name string, messages ...string) schema.GateCheckResult {
	return schema.GateCheckResult{Name: name, Status: schema.CheckFailed, Messages: messages}
}

func skipped(reason string) schema.GateCheckResult {
	return schema.GateCheckResult{Status: schema.CheckSkipped, Messages: []string{reason}}
}

// checkNoStoredDerivations scans raw storage recursively for field
// names that must only ever be computed.
func checkNoStoredDerivations(in *Input) schema.GateCheckResult {
	if in.RawTree == nil {
		return skipped("no raw data supplied")
	}
	forbidden := make(map[string]string, len(schema.ForbiddenRawFields))
	for _, f := range schema.ForbiddenRawFields {
		forbidden[strings.ToLower(f)] = f
	}
	var violations []string
	walkTree(in.RawTree, "", func(path, key string) {
		if canonical, bad := forbidden[strings.ToLower(key)]; bad {
			violations = append(violations, fmt.Sprintf("derived field %q stored at %s", canonical, path))
		}
	})
	if len(violations) > 0 {
		return failed("", violations...)
	}
	return passed("")
}

// walkTree visits every map key in a decoded JSON tree, depth first,
// calling visit with the dotted path of the key.
func walkTree(node any, path string, visit func(path, key string)) {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			visit(childPath, k)
			walkTree(v[k], childPath, visit)
		}
	case []any:
		for i, item := range v {
			walkTree(item, fmt.Sprintf("%s[%d]", path, i), visit)
		}
	}
}

// checkMutualExclusion rejects raw records carrying both halves of a
// mutually exclusive metric pair.
func checkMutualExclusion(in *Input) schema.GateCheckResult {
	if in.RawTree == nil {
		return skipped("no raw data supplied")
	}
	companies, _ := in.RawTree["companies"].([]any)
	var violations []string
	for i, c := range companies {
		company, ok := c.(map[string]any)
		if !ok {
			continue
		}
		metrics, ok := company["metrics"].(map[string]any)
		if !ok {
			continue
		}
		for _, pair := range schema.MutuallyExclusiveFields {
			_, hasA := metrics[pair[0]]
			_, hasB := metrics[pair[1]]
			if hasA && hasB {
				id, _ := company["id"].(string)
				if id == "" {
					id = fmt.Sprintf("companies[%d]", i)
				}
				violations = append(violations, fmt.Sprintf("%s carries both %q and %q", id, pair[0], pair[1]))
			}
		}
	}
	if len(violations) > 0 {
		return failed("", violations...)
	}
	return passed("")
}

// checkGoalSchema validates the shape of every raw goal: at least one
// entity reference, known entity types, non-empty referenced ids and a
// known status. Loading keeps malformed goals so they surface here as
// itemized violations instead of silently vanishing at ingestion.
func checkGoalSchema(in *Input) schema.GateCheckResult {
	if in.Goals == nil {
		return skipped("no goals supplied")
	}
	var violations []string
	for i, g := range in.Goals {
		name := g.ID
		if name == "" {
			name = fmt.Sprintf("goals[%d]", i)
		}
		if len(g.EntityRefs) == 0 {
			violations = append(violations, fmt.Sprintf("%s: no entity refs", name))
		}
		for j, ref := range g.EntityRefs {
			if _, ok := schema.ValidEntityTypes[ref.Type]; !ok {
				violations = append(violations, fmt.Sprintf("%s: entityRefs[%d] has unknown type %q", name, j, ref.Type))
			}
			if ref.ID == "" {
				violations = append(violations, fmt.Sprintf("%s: entityRefs[%d] has no id", name, j))
			}
		}
		if _, ok := schema.ValidGoalStatuses[g.Status]; !ok {
			violations = append(violations, fmt.Sprintf("%s: unknown status %q", name, g.Status))
		}
	}
	if len(violations) > 0 {
		return failed("", violations...)
	}
	return passed("")
}

// checkDAGAcyclic runs a depth-first traversal with an explicit
// recursion stack and reports the exact cycle path on failure.
func checkDAGAcyclic(in *Input) schema.GateCheckResult {
	if in.DAG == nil {
		return skipped("no dag supplied")
	}
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(in.DAG))
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		switch state[name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			return append(append([]string{}, stack[start:]...), name)
		}
		state[name] = visiting
		stack = append(stack, name)
		deps := append([]string{}, in.DAG[name]...)
		sort.Strings(deps)
		for _, dep := range deps {
			if cycle := visit(dep); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	names := make([]string, 0, len(in.DAG))
	for name := range in.DAG {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if cycle := visit(name); cycle != nil {
			return failed("", "cycle: "+strings.Join(cycle, " -> "))
		}
	}
	return passed("")
}

// checkScorePresence requires every ranked action to carry a numeric,
// non-NaN score.
func checkScorePresence(in *Input) schema.GateCheckResult {
	if in.RankedActions == nil {
		return skipped("no ranked actions supplied")
	}
	var violations []string
	for _, a := range in.RankedActions {
		if math.IsNaN(a.RankScore) || math.IsInf(a.RankScore, 0) {
			violations = append(violations, fmt.Sprintf("action %s score is %v", a.ID, a.RankScore))
		}
	}
	if len(violations) > 0 {
		return failed("", violations...)
	}
	return passed("")
}

// checkSortOrder requires the ranked list to be monotonically
// non-increasing within epsilon.
func checkSortOrder(in *Input) schema.GateCheckResult {
	if in.RankedActions == nil {
		return skipped("no ranked actions supplied")
	}
	var violations []string
	for i := 1; i < len(in.RankedActions); i++ {
		prev, cur := in.RankedActions[i-1], in.RankedActions[i]
		if cur.RankScore > prev.RankScore+in.Epsilon {
			violations = append(violations, fmt.Sprintf(
				"position %d: %s (%.6f) outranks %s (%.6f)", i, cur.ID, cur.RankScore, prev.ID, prev.RankScore))
		}
	}
	if len(violations) > 0 {
		return failed("", violations...)
	}
	return passed("")
}

// checkDeterminism runs the ranking function twice on identical input
// and requires identical ordering and scores within epsilon.
func checkDeterminism(in *Input) schema.GateCheckResult {
	if in.RankFn == nil || in.ActionsInput == nil {
		return skipped("no ranking function or input supplied")
	}
	first := in.RankFn(cloneActions(in.ActionsInput))
	second := in.RankFn(cloneActions(in.ActionsInput))
	if len(first) != len(second) {
		return failed("", fmt.Sprintf("run lengths differ: %d vs %d", len(first), len(second)))
	}
	var violations []string
	for i := range first {
		if first[i].ID != second[i].ID {
			violations = append(violations, fmt.Sprintf(
				"position %d: %s vs %s", i, first[i].ID, second[i].ID))
			continue
		}
		if math.Abs(first[i].RankScore-second[i].RankScore) > in.Epsilon {
			violations = append(violations, fmt.Sprintf(
				"action %s scored %.9f then %.9f", first[i].ID, first[i].RankScore, second[i].RankScore))
		}
	}
	if len(violations) > 0 {
		return failed("", violations...)
	}
	return passed("")
}

func cloneActions(actions []schema.Action) []schema.Action {
	out := make([]schema.Action, len(actions))
	copy(out, actions)
	return out
}

// checkEventLedger validates the append-only outcome log: required
// fields, valid enums, unique ids, parseable timestamps, no derived
// score fields in payloads, and (when the action set is available)
// only references to known actions.
func checkEventLedger(in *Input) schema.GateCheckResult {
	if in.Events == nil {
		return skipped("no events supplied")
	}
	known := make(map[string]struct{}, len(in.Actions))
	for _, a := range in.Actions {
		known[a.ID] = struct{}{}
	}
	seen := make(map[string]int)
	var violations []string
	for i, ev := range in.Events {
		for _, field := range schema.RequiredEventFields {
			if eventField(&ev, field) == "" {
				violations = append(violations, fmt.Sprintf("events[%d]: missing required field %q", i, field))
			}
		}
		if ev.Type != "" {
			if _, ok := schema.ValidEventTypes[ev.Type]; !ok {
				violations = append(violations, fmt.Sprintf("events[%d]: unknown type %q", i, ev.Type))
			}
		}
		if ev.Outcome != "" {
			if _, ok := schema.ValidEventOutcomes[ev.Outcome]; !ok {
				violations = append(violations, fmt.Sprintf("events[%d]: unknown outcome %q", i, ev.Outcome))
			}
		}
		if ev.ID != "" {
			if prev, dup := seen[ev.ID]; dup {
				violations = append(violations, fmt.Sprintf("events[%d]: duplicate id %q (first at %d)", i, ev.ID, prev))
			} else {
				seen[ev.ID] = i
			}
		}
		if ev.Timestamp != "" {
			if _, err := time.Parse(time.RFC3339, ev.Timestamp); err != nil {
				violations = append(violations, fmt.Sprintf("events[%d]: unparseable timestamp %q", i, ev.Timestamp))
			}
		}
		for _, field := range schema.ForbiddenEventFields {
			if _, bad := ev.Payload[field]; bad {
				violations = append(violations, fmt.Sprintf("events[%d]: payload carries derived field %q", i, field))
			}
		}
		if len(in.Actions) > 0 && ev.ActionID != "" {
			if _, ok := known[ev.ActionID]; !ok {
				violations = append(violations, fmt.Sprintf("events[%d]: references unknown action %q", i, ev.ActionID))
			}
		}
	}
	if len(violations) > 0 {
		return failed("", violations...)
	}
	messages := []string{}
	if len(in.Actions) == 0 {
		messages = append(messages, "referential check skipped: no action set supplied")
	}
	return passed("", messages...)
}

// eventField maps the required-field table onto the typed event.
func eventField(ev *schema.Event, name string) string {
	switch name {
	case "id":
		return ev.ID
	case "actionId":
		return ev.ActionID
	case "type":
		return string(ev.Type)
	case "timestamp":
		return ev.Timestamp
	default:
		return ""
	}
}
