package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"         // SQL Server driver
	_ "github.com/microsoft/go-mssqldb/azuread" // Azure AD support
)

// Adapter owns a single *sql.DB connection pool for one configured source.
// Per the one-connection-per-table resource model, the runner checks out the
// same pool for every table belonging to this source; pooling within
// database/sql is the implementation choice that satisfies that requirement
// without a dedicated connection per query.
type Adapter struct {
	config *Config
	db     *sql.DB
}

// NewAdapter opens a SQL Server connection pool using one of three
// authentication methods:
//  1. SQL Authentication (username/password)
//  2. Service Principal (Azure AD client credentials, handled by the driver)
//  3. Managed Identity (Azure AD token acquired via azidentity, passed as an
//     access token)
func NewAdapter(ctx context.Context, cfg *Config) (*Adapter, error) {
	if cfg.AuthMethod == "managed_identity" && cfg.AzureAccessToken == "" {
		token, err := acquireManagedIdentityToken(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("acquire managed identity token: %w", err)
		}
		cfg.AzureAccessToken = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var db *sql.DB
	var err error
	switch cfg.AuthMethod {
	case "sql":
		db, err = createSQLAuthConnection(cfg)
	case "service_principal":
		db, err = createServicePrincipalConnection(cfg)
	case "managed_identity":
		db, err = createManagedIdentityConnection(cfg)
	default:
		return nil, fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	return &Adapter{config: cfg, db: db}, nil
}

// createSQLAuthConnection creates a connection using SQL Server authentication.
func createSQLAuthConnection(cfg *Config) (*sql.DB, error) {
	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeoutSecs > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeoutSecs))
	}

	connStr := fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		query.Encode(),
	)

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sql auth connection: %w", err)
	}
	return db, nil
}

// createServicePrincipalConnection creates a connection using Azure AD Service
// Principal credentials. Token acquisition for this fedauth mode is handled
// by the driver itself, so no azidentity call is needed here.
func createServicePrincipalConnection(cfg *Config) (*sql.DB, error) {
	query := url.Values{}
	query.Add("database", cfg.Database)
	query.Add("fedauth", "ActiveDirectoryServicePrincipal")
	query.Add("user id", cfg.ClientID)
	query.Add("password", cfg.ClientSecret)
	query.Add("tenant id", cfg.TenantID)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	}
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeoutSecs > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeoutSecs))
	}

	connStr := fmt.Sprintf("sqlserver://%s:%d?%s", cfg.Host, cfg.Port, query.Encode())
	db, err := sql.Open("azuresql", connStr)
	if err != nil {
		return nil, fmt.Errorf("open service principal connection: %w", err)
	}
	return db, nil
}

// createManagedIdentityConnection creates a connection using a pre-acquired
// Azure AD access token (see azureauth.go). The token is passed using the
// sqlserver driver's ActiveDirectoryAccessToken fedauth mode.
func createManagedIdentityConnection(cfg *Config) (*sql.DB, error) {
	query := url.Values{}
	query.Add("database", cfg.Database)
	query.Add("fedauth", "ActiveDirectoryAccessToken")

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeoutSecs > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeoutSecs))
	}
	query.Add("password", cfg.AzureAccessToken)

	connStr := fmt.Sprintf("sqlserver://%s:%d?%s", cfg.Host, cfg.Port, query.Encode())
	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open managed identity connection: %w", err)
	}
	return db, nil
}

// TestConnection verifies the database is reachable with valid credentials.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	var result int
	if err := a.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (a *Adapter) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// DB returns the underlying *sql.DB for use by the metadata reader and executor.
func (a *Adapter) DB() *sql.DB {
	return a.db
}
