package iostore

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pulselab/portpulse/internal/contract"
	"github.com/pulselab/portpulse/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, metrics schema.RunMetrics) error {
	args := m.Called(runID, endTime, metrics)
	return args.Error(0)
}

// RecordActions implements the RunStore interface.
func (m *MockRunStore) RecordActions(runID int64, recordedAt time.Time, actions []schema.Action) error {
	args := m.Called(runID, recordedAt, actions)
	return args.Error(0)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	return args.Get(0).([]schema.RunRecord), args.Error(1)
}

// ListActions implements the RunStore interface.
func (m *MockRunStore) ListActions(runID int64) ([]schema.ActionRecord, error) {
	args := m.Called(runID)
	return args.Get(0).([]schema.ActionRecord), args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// Clear implements the RunStore interface.
func (m *MockRunStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
