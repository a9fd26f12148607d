package schema

import "time"

// CompanyDerived is the full derivation tree for one company in one run.
type CompanyDerived struct {
	CompanyID    string                    `json:"companyId"`
	CompanyName  string                    `json:"companyName"`
	Stage        Stage                     `json:"stage"`
	Anomalies    []Anomaly                 `json:"anomalies"`
	Summary      DetectionSummary          `json:"summary"`
	Goals        []Goal                    `json:"goals"`        // bounded top-goal set, incl. suggested
	Trajectories map[string]GoalTrajectory `json:"trajectories"` // keyed by goal id
	Damages      []GoalDamage              `json:"damages"`
	Actions      []Action                  `json:"actions"` // this company's scored candidates
}

// PipelineResult is the consolidated output of one pipeline execution:
// per-company derived fields plus the global ranked action list. It is
// a pure function of (dataset, referenceTime) and must reproduce
// byte-identically for identical inputs.
type PipelineResult struct {
	ReferenceTime time.Time        `json:"referenceTime"`
	Companies     []CompanyDerived `json:"companies"`
	RankedActions []Action         `json:"rankedActions"`
}

// CompanyResult returns the derived tree for a company id, or nil.
func (r *PipelineResult) CompanyResult(id string) *CompanyDerived {
	for i := range r.Companies {
		if r.Companies[i].CompanyID == id {
			return &r.Companies[i]
		}
	}
	return nil
}
