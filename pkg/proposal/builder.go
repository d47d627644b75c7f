// Package proposal converts 3NF issues into decomposition proposals with a
// confidence score derived from the supporting FD's violation rate.
package proposal

import (
	"math"

	"github.com/dbaudit/sqlserver3nf/pkg/models"
	"github.com/dbaudit/sqlserver3nf/pkg/normalize"
)

// reviewNotes are the fixed review-guidance lines every proposal carries,
// regardless of which FD produced it.
var reviewNotes = []string{
	"Review semantics and ensure determinant uniquely identifies dependent attributes.",
	"Validate coverage and row counts before applying any schema change.",
}

// Build converts a normalization analyzer's 3NF issues into proposals. Per
// spec.md §9's binding resolution, proposals are emitted for 3NF issues
// only (2NF issues are reported but not proposed) and carry no type field;
// they are not merged across issues sharing a determinant.
func Build(issues3NF []normalize.Issue, fds []models.FunctionalDependency) []models.Proposal {
	violatingRowPct := make(map[string]float64, len(fds))
	for _, f := range fds {
		violatingRowPct[fdKey(f.Determinant, f.Dependent)] = f.ViolatingRowPct
	}

	proposals := make([]models.Proposal, 0, len(issues3NF))
	for _, issue := range issues3NF {
		pct := violatingRowPct[fdKey(issue.Determinant, issue.Dependent)]
		confidence := Confidence(pct)

		proposals = append(proposals, models.Proposal{
			Determinant: issue.Determinant,
			Dependents:  []string{issue.Dependent},
			Confidence:  confidence,
			Notes:       reviewNotes,
		})
	}
	return proposals
}

// Confidence normalizes a violating-rows percentage (in [0, 100]) to a
// [0, 1] fraction and computes max(0.1, 1 - fraction), per spec.md §4.7 and
// its Open Question resolution on the fraction-vs-percentage mismatch.
func Confidence(violatingRowsPct float64) float64 {
	fraction := violatingRowsPct / 100
	return math.Max(0.1, 1-fraction)
}

func fdKey(determinant []string, dependent string) string {
	key := dependent
	for _, c := range determinant {
		key += "\x00" + c
	}
	return key
}
