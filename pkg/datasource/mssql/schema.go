package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbaudit/sqlserver3nf/pkg/datasource"
)

// MetadataReader implements datasource.MetadataReader against sys.* catalog
// views. It never executes user-table DML; every query here targets system
// metadata only.
type MetadataReader struct {
	db *sql.DB
}

// NewMetadataReader wraps an already-open connection pool. The pool is owned
// by the caller (typically the same Adapter a SQLExecutor was built from) and
// is not closed here.
func NewMetadataReader(db *sql.DB) *MetadataReader {
	return &MetadataReader{db: db}
}

// ListTables returns every user table, ordered by schema then table name,
// excluding Microsoft-shipped system tables.
func (m *MetadataReader) ListTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	query := `
	SET NOCOUNT ON;
	SELECT
	    SCHEMA_NAME(t.schema_id) AS table_schema,
	    t.name AS table_name
	FROM sys.tables t
	WHERE t.is_ms_shipped = 0
	ORDER BY table_schema, table_name
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableMetadata
	for rows.Next() {
		var t datasource.TableMetadata
		if err := rows.Scan(&t.SchemaName, &t.TableName); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}

	for i := range tables {
		count, err := m.GetRowCount(ctx, tables[i].SchemaName, tables[i].TableName)
		if err != nil {
			return nil, fmt.Errorf("row count for %s.%s: %w", tables[i].SchemaName, tables[i].TableName, err)
		}
		tables[i].RowCount = count
	}

	return tables, nil
}

// ListColumns returns a table's columns in column-id order, with the
// dialect-native type name lowercased rather than mapped to a generic name —
// determinant scoring and blob-skip logic both key off SQL Server's own
// vocabulary (varchar, uniqueidentifier, and so on).
func (m *MetadataReader) ListColumns(ctx context.Context, schemaName, tableName string) ([]datasource.ColumnMetadata, error) {
	query := `
	SET NOCOUNT ON;
	SELECT
	    c.name AS column_name,
	    tp.name AS data_type,
	    c.is_nullable AS is_nullable,
	    c.column_id AS ordinal_position
	FROM sys.columns c
	INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
	WHERE c.object_id = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@table))
	ORDER BY c.column_id
	`

	rows, err := m.db.QueryContext(ctx, query,
		sql.Named("schema", schemaName),
		sql.Named("table", tableName),
	)
	if err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", schemaName, tableName, err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var col datasource.ColumnMetadata
		var dataType string
		var isNullable bool

		if err := rows.Scan(&col.ColumnName, &dataType, &isNullable, &col.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}

		col.DataTypeLower = strings.ToLower(dataType)
		col.Nullable = isNullable
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}

	return columns, nil
}

// GetRowCount returns the table's current row count via sys.partitions,
// avoiding a full table scan.
func (m *MetadataReader) GetRowCount(ctx context.Context, schemaName, tableName string) (int64, error) {
	query := `
	SET NOCOUNT ON;
	SELECT ISNULL(SUM(p.rows), 0)
	FROM sys.tables t
	INNER JOIN sys.partitions p ON t.object_id = p.object_id
	WHERE p.index_id IN (0, 1)
	  AND t.object_id = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@table))
	`

	var count int64
	err := m.db.QueryRowContext(ctx, query,
		sql.Named("schema", schemaName),
		sql.Named("table", tableName),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("row count for %s.%s: %w", schemaName, tableName, err)
	}
	return count, nil
}

// Ensure MetadataReader implements datasource.MetadataReader at compile time.
var _ datasource.MetadataReader = (*MetadataReader)(nil)
