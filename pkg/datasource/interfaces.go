package datasource

import "context"

// MetadataReader discovers the structural facts a normalization audit needs:
// which tables exist, what columns they declare, and how many rows they hold.
// Implementations must exclude system/shipped objects and order results
// deterministically so repeated runs over an unchanged schema agree.
type MetadataReader interface {
	// ListTables returns every user table, ordered by schema then table name.
	ListTables(ctx context.Context) ([]TableMetadata, error)

	// ListColumns returns a table's columns in ordinal (column-id) order.
	ListColumns(ctx context.Context, schema, table string) ([]ColumnMetadata, error)

	// GetRowCount returns the table's current row count.
	GetRowCount(ctx context.Context, schema, table string) (int64, error)
}

// SQLExecutor runs read-only SQL built by the caller. Identifiers embedded in
// query are assumed already quoted (see pkg/sqlfrag); only value parameters
// are bound here, so no component constructs a query from unescaped user
// input.
type SQLExecutor interface {
	// Execute runs a query and returns the result set.
	Execute(ctx context.Context, query string, params ...any) (*QueryResult, error)

	// FetchValue runs a query expected to return exactly one row and one
	// column, and returns that scalar.
	FetchValue(ctx context.Context, query string, params ...any) (any, error)
}

// QueryResult contains the results of a SQL query execution.
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}
