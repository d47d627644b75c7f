package models

// SampleViolation is one piece of evidence that a determinant does not
// functionally determine a dependent: a determinant-value group together
// with the distinct dependent values observed within it (sorted and joined
// so the same violation always serializes identically across runs).
type SampleViolation struct {
	// DeterminantValues holds one CellValue per determinant column, in the
	// same order as the owning FunctionalDependency's Determinant.
	DeterminantValues []CellValue `json:"determinant_values"`

	// DependentValues lists the distinct values of the dependent column seen
	// for this determinant-value group, sorted ascending by string form.
	DependentValues []string `json:"dependent_values"`

	GroupSize int64 `json:"group_size"`
}

// FunctionalDependency is one determinant-to-dependent relationship measured
// by the FD discoverer: how many groups of determinant values existed, how
// many of those groups disagreed on the dependent, and a handful of sample
// violations for human review.
type FunctionalDependency struct {
	Determinant []string `json:"determinant"`
	Dependent   string   `json:"dependent"`

	TestedRows      int64   `json:"tested_rows"`
	CoveragePct     float64 `json:"coverage_pct"`
	TotalGroups     int64   `json:"total_groups"`
	ViolatingGroups int64   `json:"violating_groups"`
	ViolatingRows   int64   `json:"violating_rows"`

	ViolatingGroupPct float64 `json:"violating_group_pct"`
	ViolatingRowPct   float64 `json:"violating_row_pct"`

	// SampleViolations holds up to CONFIRM_TOP_N_FDS_PER_TABLE's worth of
	// evidence rows (capped at 5 regardless), empty when the FD holds clean
	// or when evidence collection failed (see apperrors.ErrSampleCollection).
	SampleViolations []SampleViolation `json:"sample_violations,omitempty"`
}

// IsStrong reports whether this dependency clears the coverage and
// violation thresholds with enough tested rows to trust the result.
func (f FunctionalDependency) IsStrong(minCoveragePct, maxViolatingGroupPct, maxViolatingRowPct float64, minConfidentRows int64) bool {
	if f.TestedRows < minConfidentRows {
		return false
	}
	if f.CoveragePct < minCoveragePct {
		return false
	}
	return f.ViolatingGroupPct <= maxViolatingGroupPct && f.ViolatingRowPct <= maxViolatingRowPct
}

// DeterminantSize returns the determinant tuple's arity.
func (f FunctionalDependency) DeterminantSize() int {
	return len(f.Determinant)
}

// DeterminantIsSupersetOf reports whether f's determinant contains every
// column of other, used by the minimization pass to reject redundant FDs
// once a smaller determinant for the same dependent has been accepted.
func (f FunctionalDependency) DeterminantIsSupersetOf(other []string) bool {
	if len(other) == 0 || len(other) > len(f.Determinant) {
		return false
	}
	have := make(map[string]bool, len(f.Determinant))
	for _, c := range f.Determinant {
		have[c] = true
	}
	for _, c := range other {
		if !have[c] {
			return false
		}
	}
	return true
}
