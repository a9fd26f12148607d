// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/pulselab/portpulse/schema"
)

// RunStore defines the interface for tracking pipeline runs and their
// ranked output. This allows the persistence layer to be mocked for testing.
type RunStore interface {
	// BeginRun creates a new run record and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, metrics schema.RunMetrics) error

	// RecordActions stores an audit copy of the ranked actions for a run
	RecordActions(runID int64, recordedAt time.Time, actions []schema.Action) error

	// ListRuns returns the most recent runs, newest first
	ListRuns(limit int) ([]schema.RunRecord, error)

	// ListActions returns the audit records for one run, rank ascending
	ListActions(runID int64) ([]schema.ActionRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// Clear removes all recorded runs and actions
	Clear() error

	// Close closes the underlying connection
	Close() error
}

// StoreManager hands out the configured run store, or nil when run
// tracking is disabled.
type StoreManager interface {
	GetRunStore() RunStore
}
