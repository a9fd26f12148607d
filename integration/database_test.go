//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPortpulseWithMySQL tests the portpulse CLI with a MySQL run backend.
func TestPortpulseWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "portpulse",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/portpulse?parseTime=true", host, port.Port())

	runBackendScenario(t, "mysql", connStr)
}

// TestPortpulseWithPostgres tests the portpulse CLI with a PostgreSQL run backend.
func TestPortpulseWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario exercises a full run-tracking lifecycle against one backend:
// clear, a tracked pipeline run, then status.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()

	_ = os.Setenv("PORTPULSE_RUN_BACKEND", backend)
	_ = os.Setenv("PORTPULSE_RUN_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("PORTPULSE_RUN_BACKEND") }()
	defer func() { _ = os.Unsetenv("PORTPULSE_RUN_DB_CONNECT") }()

	dataset := writeSampleDataset(t, t.TempDir())

	// Run portpulse runs clear
	err := runPortpulseCommand(t, "runs", "clear")
	require.NoError(t, err)

	// Run a tracked pipeline pass
	err = runPortpulseCommand(t, "actions", dataset, "--limit", "5")
	require.NoError(t, err)

	// Run portpulse runs status
	err = runPortpulseCommand(t, "runs", "status")
	require.NoError(t, err)
}

func runPortpulseCommand(t *testing.T, args ...string) error {
	binaryPath := getPortpulseBinary()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
