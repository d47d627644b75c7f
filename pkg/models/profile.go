package models

// ColumnProfile is the profiler's per-column output: what the column looked
// like in the sampled rows, plus the determinant-selector score computed
// from those observations. Score is set once by the selector and never
// revised afterward.
type ColumnProfile struct {
	ColumnName    string `json:"column_name"`
	DataTypeLower string `json:"data_type_lower"`
	Nullable      bool   `json:"nullable"`

	TestedRows     int64 `json:"tested_rows"`
	NullCount      int64 `json:"null_count"`
	DistinctApprox int64 `json:"distinct_approx"`

	// Min and Max are absent (IsNull) when the column is a skipped blob type,
	// when every sampled value was null, or when the aggregate query itself
	// failed (errors are swallowed here; see pkg/profiler).
	Min CellValue `json:"min,omitempty"`
	Max CellValue `json:"max,omitempty"`

	// Score is the determinant selector's 0..~2.2 ranking value; zero until
	// the selector runs. Higher is a better determinant candidate.
	Score float64 `json:"score"`
}

// NullRatio returns the fraction of tested rows that were NULL, 0 when no
// rows were tested.
func (c ColumnProfile) NullRatio() float64 {
	if c.TestedRows == 0 {
		return 0
	}
	return float64(c.NullCount) / float64(c.TestedRows)
}

// NonNullRatio is 1 - NullRatio, the selector's preferred orientation.
func (c ColumnProfile) NonNullRatio() float64 {
	return 1 - c.NullRatio()
}

// DistinctRatio returns the fraction of tested rows with distinct values,
// 0 when no rows were tested. Can exceed 1 only if DistinctApprox is itself
// an overestimate; callers that need the selector's clamp should use
// min(DistinctRatio(), 1.5) directly, since that clamp is scoring policy and
// belongs in pkg/keys rather than here.
func (c ColumnProfile) DistinctRatio() float64 {
	if c.TestedRows == 0 {
		return 0
	}
	return float64(c.DistinctApprox) / float64(c.TestedRows)
}

// TableProfile is a single table's full profiling result: its identity, row
// count, the sample clause that was applied to reach these measurements, its
// profiled columns in ordinal order, and the pool of columns the determinant
// selector ranked as worth testing as keys.
type TableProfile struct {
	SchemaName string `json:"schema_name"`
	TableName  string `json:"table_name"`

	RowCount int64 `json:"row_count"`

	// SampleClause is the TABLESAMPLE fragment applied when measuring this
	// table, or empty when the table was scanned in full. See pkg/sampling.
	SampleClause string `json:"sample_clause"`

	Columns []ColumnProfile `json:"columns"`

	// DeterminantPool is the ordered subset of column names the selector
	// judged worth testing as key/FD determinants, truncated to the
	// configured pool size. Order is descending by ColumnProfile.Score.
	DeterminantPool []string `json:"determinant_pool"`
}

// FullyQualifiedName returns "schema.table", the identity used throughout
// overrides, the manifest, and output file naming.
func (t TableProfile) FullyQualifiedName() string {
	return t.SchemaName + "." + t.TableName
}

// ColumnByName looks up a profiled column, returning false if absent.
func (t TableProfile) ColumnByName(name string) (ColumnProfile, bool) {
	for _, c := range t.Columns {
		if c.ColumnName == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}
