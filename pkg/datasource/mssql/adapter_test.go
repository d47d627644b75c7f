package mssql

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envConfig(t *testing.T) *Config {
	t.Helper()
	host := os.Getenv("MSSQL_HOST")
	user := os.Getenv("MSSQL_USER")
	password := os.Getenv("MSSQL_PASSWORD")
	database := os.Getenv("MSSQL_DATABASE")
	if host == "" || user == "" || password == "" || database == "" {
		t.Skip("skipping integration test: MSSQL_HOST, MSSQL_USER, MSSQL_PASSWORD, or MSSQL_DATABASE not set")
	}

	port := DefaultPort()
	if p := os.Getenv("MSSQL_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		require.NoError(t, err, "invalid MSSQL_PORT")
		port = parsed
	}

	return &Config{
		Host:       host,
		Port:       port,
		Database:   database,
		AuthMethod: "sql",
		Username:   user,
		Password:   password,
		Encrypt:    false,
	}
}

// TestAdapter_TestConnection_FailsWithWrongDatabaseName tests that TestConnection
// fails when connected to a different database than specified in config.
func TestAdapter_TestConnection_FailsWithWrongDatabaseName(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg := envConfig(t)
	cfg.Database = "nonexistent_database_12345"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adapter, err := NewAdapter(ctx, cfg)
	if err != nil {
		// Connection may fail at creation if the database doesn't exist; that
		// already demonstrates the wrong-database case.
		return
	}
	defer adapter.Close()

	err = adapter.TestConnection(ctx)
	require.Error(t, err, "expected connection test to fail with wrong database name")
	assert.Contains(t, strings.ToLower(err.Error()), "database")
}

// TestAdapter_TestConnection_SucceedsWithCorrectDatabaseName tests that TestConnection
// succeeds when connected to the correct database.
func TestAdapter_TestConnection_SucceedsWithCorrectDatabaseName(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg := envConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adapter, err := NewAdapter(ctx, cfg)
	require.NoError(t, err, "failed to create adapter")
	defer adapter.Close()

	err = adapter.TestConnection(ctx)
	assert.NoError(t, err, "connection test should succeed with correct database")
}

func TestConfig_Validate_RejectsUnknownAuthMethod(t *testing.T) {
	cfg := &Config{Host: "h", Database: "d", Port: 1433, AuthMethod: "carrier-pigeon"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid auth method")
}

func TestConfig_Validate_RequiresCredentialsPerMethod(t *testing.T) {
	cfg := &Config{Host: "h", Database: "d", Port: 1433, AuthMethod: "sql"}
	require.Error(t, cfg.Validate())

	cfg.Username = "u"
	require.NoError(t, cfg.Validate())
}
