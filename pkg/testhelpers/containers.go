package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dbaudit/sqlserver3nf/pkg/datasource/mssql"
)

// MSSQLTestImage is the official SQL Server developer-edition image used for
// integration tests. It starts with an empty master database; tests create
// whatever schema they need.
const MSSQLTestImage = "mcr.microsoft.com/mssql/server:2022-latest"

// mssqlTestSAPassword satisfies SQL Server's complexity policy: upper, lower,
// digit, and symbol.
const mssqlTestSAPassword = "AuditTest!2024"

// TestMSSQL holds a shared SQL Server container and an Adapter connected to it.
type TestMSSQL struct {
	Container testcontainers.Container
	Adapter   *mssql.Adapter
	Config    *mssql.Config
}

var (
	sharedTestMSSQL     *TestMSSQL
	sharedTestMSSQLOnce sync.Once
	sharedTestMSSQLErr  error
)

// GetTestMSSQL returns a shared SQL Server container and connected adapter
// for integration tests. The container is started once and reused across
// every test in the run.
func GetTestMSSQL(t *testing.T) *TestMSSQL {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode (requires Docker)")
	}

	sharedTestMSSQLOnce.Do(func() {
		sharedTestMSSQL, sharedTestMSSQLErr = setupTestMSSQL()
	})

	if sharedTestMSSQLErr != nil {
		t.Fatalf("failed to set up test SQL Server: %v", sharedTestMSSQLErr)
	}

	return sharedTestMSSQL
}

func setupTestMSSQL() (*TestMSSQL, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        MSSQLTestImage,
		ExposedPorts: []string{"1433/tcp"},
		Env: map[string]string{
			"ACCEPT_EULA": "Y",
			"MSSQL_SA_PASSWORD": mssqlTestSAPassword,
			"MSSQL_PID":         "Developer",
		},
		WaitingFor: wait.ForLog("Recovery is complete").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "1433")
	if err != nil {
		return nil, fmt.Errorf("get container port: %w", err)
	}

	cfg := &mssql.Config{
		Host:       host,
		Port:       port.Int(),
		Database:   "master",
		AuthMethod: "sql",
		Username:   "sa",
		Password:   mssqlTestSAPassword,
		Encrypt:    false,
	}

	var adapter *mssql.Adapter
	var lastErr error
	for i := 0; i < 10; i++ {
		adapter, lastErr = mssql.NewAdapter(ctx, cfg)
		if lastErr == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("connect to test container: %w", lastErr)
	}

	return &TestMSSQL{
		Container: container,
		Adapter:   adapter,
		Config:    cfg,
	}, nil
}
