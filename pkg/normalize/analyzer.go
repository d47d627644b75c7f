// Package normalize classifies accepted functional dependencies against a
// table's working key as 2NF or 3NF issues.
package normalize

import (
	"github.com/dbaudit/sqlserver3nf/pkg/models"
)

// Issue is one FD classified as violating 2NF or 3NF against the working
// key.
type Issue struct {
	Determinant []string
	Dependent   string
}

// Result is the normalization analyzer's verdict for one table.
type Result struct {
	WorkingKey   []string
	PrimeColumns map[string]bool
	Issues2NF    []Issue
	Issues3NF    []Issue
}

// WorkingKey chooses the key the analyzer reasons against, in priority
// order: an explicit FORCE_KEY override, the best-ranked strong key
// candidate, the top-1 column of the determinant pool, or empty.
func WorkingKey(forceKey []string, keyCandidates []models.KeyCandidate, determinantPool []string) []string {
	if len(forceKey) > 0 {
		return forceKey
	}
	for _, k := range keyCandidates {
		return k.Columns // keyCandidates is pre-sorted; first is best-ranked
	}
	if len(determinantPool) > 0 {
		return []string{determinantPool[0]}
	}
	return nil
}

// Analyze classifies every accepted FD against the working key, per
// spec.md §4.6: a 2NF issue requires a composite key and a determinant that
// is a proper, strict subset of it; a 3NF issue requires a determinant that
// is not a superkey under this inference. Both require the dependent to not
// already be a prime column. The two conditions are independently evaluated,
// not mutually exclusive: a determinant that is a proper subset of a
// composite key is also not a superkey, so it lands in both lists.
func Analyze(workingKey []string, fds []models.FunctionalDependency) Result {
	prime := make(map[string]bool, len(workingKey))
	for _, c := range workingKey {
		prime[c] = true
	}

	result := Result{WorkingKey: workingKey, PrimeColumns: prime}

	for _, f := range fds {
		if prime[f.Dependent] {
			continue
		}

		isSubsetOfKey := isProperSubset(f.Determinant, workingKey)
		isSuperkey := isSuperset(f.Determinant, workingKey)

		if len(workingKey) > 1 && isSubsetOfKey {
			result.Issues2NF = append(result.Issues2NF, Issue{Determinant: f.Determinant, Dependent: f.Dependent})
		}
		if !isSuperkey {
			result.Issues3NF = append(result.Issues3NF, Issue{Determinant: f.Determinant, Dependent: f.Dependent})
		}
	}

	return result
}

// isProperSubset reports whether x is a non-empty, strict subset of key:
// every element of x is in key, and x != key.
func isProperSubset(x, key []string) bool {
	if len(x) == 0 || len(x) >= len(key) {
		return false
	}
	keySet := toSet(key)
	for _, c := range x {
		if !keySet[c] {
			return false
		}
	}
	return true
}

// isSuperset reports whether x contains every column of key (x is a
// superkey under this inference). An empty key is trivially a subset of
// anything, including an empty x.
func isSuperset(x, key []string) bool {
	xSet := toSet(x)
	for _, c := range key {
		if !xSet[c] {
			return false
		}
	}
	return true
}

func toSet(columns []string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return set
}
