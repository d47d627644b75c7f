package runner

import (
	"context"
	"fmt"

	"github.com/dbaudit/sqlserver3nf/pkg/config"
	"github.com/dbaudit/sqlserver3nf/pkg/datasource/mssql"
)

// connExecutor combines the mssql package's query executor and metadata
// reader, both built from the same *sql.DB pool, into the single Executor a
// table's pipeline stages need.
type connExecutor struct {
	*mssql.SQLExecutor
	*mssql.MetadataReader
}

// MSSQLConnector opens one mssql.Adapter per source, resolving localhost to
// the Docker-reachable host when the process itself runs inside a
// container.
type MSSQLConnector struct{}

// NewMSSQLConnector returns the default SQL Server connector.
func NewMSSQLConnector() *MSSQLConnector {
	return &MSSQLConnector{}
}

// Connect opens a connection pool for source and returns an Executor backed
// by it, plus a close function releasing the pool.
func (c *MSSQLConnector) Connect(ctx context.Context, source config.Source) (Executor, func() error, error) {
	cfg := &mssql.Config{
		Host:                   config.ResolveHostForDocker(source.Host),
		Port:                   source.Port,
		Database:               source.Database,
		AuthMethod:             source.AuthMethod,
		Username:               source.Username,
		Password:               source.Password,
		TenantID:               source.TenantID,
		ClientID:               source.ClientID,
		ClientSecret:           source.ClientSecret,
		Encrypt:                source.Encrypt,
		TrustServerCertificate: source.TrustServerCertificate,
		ConnectionTimeoutSecs:  source.ConnectionTimeoutSecs,
	}

	adapter, err := mssql.NewAdapter(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open adapter for source %s: %w", source.Name, err)
	}

	exec := connExecutor{
		SQLExecutor:    mssql.NewSQLExecutor(adapter.DB()),
		MetadataReader: mssql.NewMetadataReader(adapter.DB()),
	}
	return exec, adapter.Close, nil
}
