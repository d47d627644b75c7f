package models

// KeyCandidate is one determinant tuple measured by the key finder: how many
// rows it was tested against, how often the tuple repeated, and how often it
// was null, plus the strength verdict derived from those measurements against
// configured thresholds.
type KeyCandidate struct {
	// Columns is the ordered, distinct tuple under test, e.g. ["OrderID"] or
	// ["CustomerID", "OrderDate"]. Order follows the lexicographic
	// enumeration the finder used to generate it.
	Columns []string `json:"columns"`

	TestedRows int64 `json:"tested_rows"`

	// DuplicateExcessRows is tested_rows minus the number of distinct tuple
	// values observed: the count of rows that are "extra" beyond one row per
	// distinct value. Zero means the tuple was unique across tested rows.
	DuplicateExcessRows int64 `json:"duplicate_excess_rows"`
	DuplicateRowPct     float64 `json:"duplicate_row_pct"`

	NullRows   int64   `json:"null_rows"`
	NullRowPct float64 `json:"null_row_pct"`
}

// IsStrong reports whether this candidate clears the duplicate and null
// thresholds with enough tested rows to trust the result. Below
// minConfidentRows, even a clean measurement is reported but not trusted as
// a key.
func (k KeyCandidate) IsStrong(maxDupPct, maxNullPct float64, minConfidentRows int64) bool {
	if k.TestedRows < minConfidentRows {
		return false
	}
	return k.DuplicateRowPct <= maxDupPct && k.NullRowPct <= maxNullPct
}

// Size returns the tuple's arity, used to prefer smaller keys when sorting.
func (k KeyCandidate) Size() int {
	return len(k.Columns)
}
