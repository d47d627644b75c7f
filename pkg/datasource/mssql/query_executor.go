package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"

	"github.com/dbaudit/sqlserver3nf/pkg/datasource"
)

// SQLExecutor implements datasource.SQLExecutor. It runs the read-only SQL
// the profiler, key finder and FD discoverer build with pkg/sqlfrag; callers
// are responsible for quoting every identifier before it reaches Execute or
// FetchValue, since only value placeholders are parameterized here.
type SQLExecutor struct {
	db *sql.DB
}

// NewSQLExecutor wraps an already-open connection pool.
func NewSQLExecutor(db *sql.DB) *SQLExecutor {
	return &SQLExecutor{db: db}
}

// paramPlaceholder matches the positional placeholders ($1, $2, ...) callers
// use in query text, converted here to the driver's named-parameter form.
var paramPlaceholder = regexp.MustCompile(`\$(\d+)`)

func toNamedParams(query string, params []any) (string, []any) {
	converted := paramPlaceholder.ReplaceAllStringFunc(query, func(match string) string {
		n, err := strconv.Atoi(match[1:])
		if err != nil {
			return match
		}
		return fmt.Sprintf("@p%d", n)
	})

	named := make([]any, len(params))
	for i, p := range params {
		named[i] = sql.Named(fmt.Sprintf("p%d", i+1), p)
	}
	return converted, named
}

// Execute runs a query and returns the full result set.
func (e *SQLExecutor) Execute(ctx context.Context, query string, params ...any) (*datasource.QueryResult, error) {
	convertedQuery, namedParams := toNamedParams(query, params)

	rows, err := e.db.QueryContext(ctx, convertedQuery, namedParams...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	result := &datasource.QueryResult{
		Columns: columnNames,
		Rows:    make([]map[string]any, 0),
	}

	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columnNames))
		for i, col := range columnNames {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// FetchValue runs a query expected to return exactly one row and one column
// and returns that scalar value. Used for the COUNT/APPROX_COUNT_DISTINCT
// measurement queries the profiler and key finder issue.
func (e *SQLExecutor) FetchValue(ctx context.Context, query string, params ...any) (any, error) {
	convertedQuery, namedParams := toNamedParams(query, params)

	var value any
	if err := e.db.QueryRowContext(ctx, convertedQuery, namedParams...).Scan(&value); err != nil {
		return nil, fmt.Errorf("fetch value: %w", err)
	}
	if b, ok := value.([]byte); ok {
		return string(b), nil
	}
	return value, nil
}

// QuoteIdentifier safely quotes a SQL identifier using SQL Server's square
// bracket syntax, escaping an embedded ] by doubling it.
func (e *SQLExecutor) QuoteIdentifier(name string) string {
	return quoteName(name)
}

// Ensure SQLExecutor implements datasource.SQLExecutor at compile time.
var _ datasource.SQLExecutor = (*SQLExecutor)(nil)
