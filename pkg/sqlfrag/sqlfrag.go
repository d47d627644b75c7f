// Package sqlfrag builds the small, repeated SQL text fragments the
// profiler, key finder and FD discoverer all need: quoted identifiers,
// qualified table references, and the boilerplate WHERE/GROUP BY clauses
// that change only by column list from one measurement query to the next.
// Every identifier produced here is quoted before it is ever concatenated
// into a query string; value literals are never interpolated; they are
// always passed through as bound parameters.
package sqlfrag

import (
	"fmt"
	"strings"
)

// Quoter quotes a single identifier in the target dialect's syntax. The
// mssql adapter's SQLExecutor and MetadataReader both satisfy this via
// QuoteIdentifier/quoteName.
type Quoter interface {
	QuoteIdentifier(name string) string
}

// QualifiedTable returns "schema"."table" quoted with q, the fully-qualified
// form used in every FROM clause this module builds.
func QualifiedTable(q Quoter, schema, table string) string {
	return q.QuoteIdentifier(schema) + "." + q.QuoteIdentifier(table)
}

// ColumnList quotes and joins a column tuple with ", ", e.g. for a GROUP BY
// or SELECT list built from a determinant.
func ColumnList(q Quoter, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = q.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

// NotNullClause returns "col1 IS NOT NULL AND col2 IS NOT NULL ..." for the
// given columns, used to exclude incomplete determinant tuples from key and
// FD measurement queries. Returns "" for an empty column list.
func NotNullClause(q Quoter, columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s IS NOT NULL", q.QuoteIdentifier(c))
	}
	return strings.Join(parts, " AND ")
}

// SampledFrom returns the FROM clause for a table, with the sample clause
// appended when non-empty: `[schema].[table] TABLESAMPLE (2.50 PERCENT)`.
func SampledFrom(q Quoter, schema, table, sampleClause string) string {
	from := QualifiedTable(q, schema, table)
	if sampleClause == "" {
		return from
	}
	return from + " " + sampleClause
}
