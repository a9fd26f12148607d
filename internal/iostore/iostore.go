// Package iostore persists pipeline runs and their ranked output across
// SQLite, MySQL and PostgreSQL backends. Storage here is an audit trail
// of past runs; the pipeline never reads scores back out of it.
package iostore

import (
	"fmt"
	"sync"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/schema"
)

// RunStoreManager hands out the configured run store.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runStore     contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// GetRunStore returns the run store, or nil when tracking is disabled.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runStore
}

// Global Manager instance for main logic.
var (
	Manager   = &RunStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitRunTracking safely initializes the global run store once.
// NoneBackend leaves the manager empty: every tracking call becomes a
// no-op without the callers having to check.
func InitRunTracking(backend schema.DatabaseBackend, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		if backend == schema.NoneBackend {
			return
		}
		store, err := NewRunStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize run tracking: %w", err)
			return
		}
		Manager.Lock()
		Manager.runStore = store
		Manager.Unlock()
	})
	return initErr
}

// CloseRunTracking should be called on application shutdown.
func CloseRunTracking() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.runStore != nil {
			_ = Manager.runStore.Close()
		}
	})
}

// ClearRuns wipes all recorded runs on the given backend.
func ClearRuns(backend schema.DatabaseBackend, connStr string) error {
	if backend == schema.NoneBackend {
		return nil
	}
	store, err := NewRunStore(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Clear()
}

// PrintRunStatus prints run store status information.
func PrintRunStatus(status schema.RunStatus) {
	fmt.Printf("Run Backend: %s\n", status.Backend)
	if status.Location != "" {
		fmt.Printf("Location: %s\n", status.Location)
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	fmt.Printf("Total Actions Recorded: %d\n", status.TotalActions)
	if status.LastRunAt != nil {
		fmt.Printf("Last Run: %s\n", status.LastRunAt.Format("2006-01-02 15:04:05"))
	}
}
