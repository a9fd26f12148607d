package schema

import "time"

// RunMetrics summarizes one pipeline run for the run store.
type RunMetrics struct {
	ReferenceTime time.Time
	CompanyCount  int
	AnomalyCount  int
	GoalCount     int
	ActionCount   int
	GatePassed    int
	GateFailed    int
}

// ActionRecord is the audit copy of one ranked action, keyed by run.
// Storing the score here does not violate the no-stored-derivations rule:
// the record is an immutable audit artifact of a specific run, not a raw
// fact the pipeline reads back.
type ActionRecord struct {
	RecordedAt time.Time
	ActionID   string
	CompanyID  string
	Title      string
	Rank       int
	RankScore  float64
	Sources    string // comma-joined source types
}

// RunRecord is one completed (or in-flight) run as stored.
type RunRecord struct {
	ID           int64
	StartedAt    time.Time
	EndedAt      *time.Time
	CompanyCount int
	ActionCount  int
	GateFailed   int
}

// RunStatus reports on the run store for the status command.
type RunStatus struct {
	Backend      DatabaseBackend
	Location     string
	TotalRuns    int
	TotalActions int
	LastRunAt    *time.Time
}
