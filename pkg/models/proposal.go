package models

// Proposal is one normalization suggestion for a table: move Dependents out
// to a table keyed by Determinant. There is no type field distinguishing
// 2NF from 3NF proposals; the normalization analyzer treats both partial and
// transitive dependency issues as the same shape of fix, a decomposition
// anchored on a non-key determinant.
type Proposal struct {
	Determinant []string `json:"determinant"`
	Dependents  []string `json:"dependents"`

	// Confidence is in [0, 1], derived from the supporting FDs' violation
	// rates: max(0.1, 1 - violating_rows_pct/100). A proposal always carries
	// some confidence, even a weak one, since it is only ever built from an
	// FD that already cleared IsStrong.
	Confidence float64 `json:"confidence"`

	Notes []string `json:"notes,omitempty"`
}
