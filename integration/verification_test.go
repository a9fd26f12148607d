//go:build integration

// Package integration contains integration tests for portpulse.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestActionRankingIsDeterministic runs the actions command twice on the same
// snapshot with a pinned reference time and requires byte-identical CSV output.
func TestActionRankingIsDeterministic(t *testing.T) {
	dataset := writeSampleDataset(t, t.TempDir())
	args := []string{
		"actions", dataset,
		"--as-of", "2026-02-28T00:00:00Z",
		"--output", "csv",
		"--run-backend", "none",
	}

	first := runForOutput(t, args...)
	second := runForOutput(t, args...)

	assert.Equal(t, first, second, "ranking output changed between identical runs")
}

// TestGatePassesOnSampleSnapshot runs the full invariant battery end to end.
func TestGatePassesOnSampleSnapshot(t *testing.T) {
	dataset := writeSampleDataset(t, t.TempDir())

	out := runForOutput(t, "gate", dataset,
		"--as-of", "2026-02-28T00:00:00Z",
		"--run-backend", "none",
	)

	assert.Contains(t, out, "PASSED")
	assert.NotContains(t, out, "FAILED")
}

// TestCompanyFilterRestrictsOutput verifies --company trims the run to one company.
func TestCompanyFilterRestrictsOutput(t *testing.T) {
	dataset := writeSampleDataset(t, t.TempDir())

	out := runForOutput(t, "anomalies", dataset,
		"--as-of", "2026-02-28T00:00:00Z",
		"--company", "c-acme",
		"--output", "csv",
		"--run-backend", "none",
	)

	for _, line := range strings.Split(strings.TrimSpace(out), "\n")[1:] {
		if line == "" {
			continue
		}
		assert.True(t, strings.HasPrefix(line, "c-acme,"),
			"unexpected company in output line: %s", line)
	}
}

// runForOutput runs the portpulse binary and returns its stdout.
func runForOutput(t *testing.T, args ...string) string {
	t.Helper()

	binaryPath := getPortpulseBinary()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = "../"
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	require.NoError(t, err, "stderr: %s", stderr.String())
	return stdout.String()
}
