package mssql

import (
	"fmt"
	"strings"
)

// quoteName returns a SQL Server bracket-quoted identifier, escaping an
// embedded ] by doubling it. This is the Go-side equivalent of calling
// QUOTENAME() in T-SQL, used here rather than the driver's parameter binding
// because identifiers (unlike values) cannot be bound as parameters.
func quoteName(identifier string) string {
	escaped := strings.ReplaceAll(identifier, "]", "]]")
	return fmt.Sprintf("[%s]", escaped)
}
