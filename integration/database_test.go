//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPerfpipeWithMySQL tests the perfpipe CLI with a MySQL backend.
func TestPerfpipeWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "perfpipe",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/perfpipe?parseTime=true", host, port.Port())
	exerciseBackend(t, "mysql", connStr)
}

// TestPerfpipeWithPostgres tests the perfpipe CLI with a PostgreSQL backend.
func TestPerfpipeWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseBackend(t, "postgresql", connStr)
}

// exerciseBackend runs the store commands and two pipeline runs against one database.
func exerciseBackend(t *testing.T, backend, connStr string) {
	t.Helper()
	env := []string{
		"PERFPIPE_CACHE_BACKEND=" + backend,
		"PERFPIPE_CACHE_DB_CONNECT=" + connStr,
		"PERFPIPE_HISTORY_BACKEND=" + backend,
		"PERFPIPE_HISTORY_DB_CONNECT=" + connStr,
	}

	_, err := runPerfpipe(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runPerfpipe(t, env, "history", "clear")
	require.NoError(t, err)

	out, err := runPerfpipe(t, env, "history", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "version 2")

	dataDir := writeFixtures(t)
	outDir := filepath.Join(t.TempDir(), "report")
	for range 2 {
		out, err = runPerfpipe(t, env, "run", "--data-dir", dataDir, "--output-dir", outDir, "--no-html")
		require.NoError(t, err)
		assert.Contains(t, out, "PIPELINE COMPLETED SUCCESSFULLY!")
	}

	out, err = runPerfpipe(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")
	assert.NotContains(t, out, "Total Entries: 0")

	out, err = runPerfpipe(t, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "completed")

	exportBase := filepath.Join(t.TempDir(), "history")
	_, err = runPerfpipe(t, env, "history", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".runs.parquet")
	assert.FileExists(t, exportBase+".rows.parquet")
}
