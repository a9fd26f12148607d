package schema

// CheckStatus is the outcome of one Gate check.
type CheckStatus string

// All check statuses supported. Skipped means the check's required input
// was absent; it is never counted as a failure.
const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckSkipped CheckStatus = "skipped"
)

// GateCheckResult is the outcome of a single invariant check.
type GateCheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Messages []string    `json:"messages,omitempty"`
}

// GateReport is the consolidated outcome of the full battery.
type GateReport struct {
	Passed  int               `json:"passed"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Results []GateCheckResult `json:"results"`
}

// Success reports whether the battery passed: zero failures.
func (r *GateReport) Success() bool {
	return r.Failed == 0
}

// Add appends a check result and updates the tallies.
func (r *GateReport) Add(result GateCheckResult) {
	r.Results = append(r.Results, result)
	switch result.Status {
	case CheckPassed:
		r.Passed++
	case CheckFailed:
		r.Failed++
	case CheckSkipped:
		r.Skipped++
	}
}
