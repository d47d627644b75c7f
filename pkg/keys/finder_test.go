package keys

import (
	"context"
	"strings"
	"testing"

	"github.com/dbaudit/sqlserver3nf/pkg/datasource"
	"github.com/dbaudit/sqlserver3nf/pkg/models"
)

func candidateWith(testedRows int64, dupPct, nullPct float64) models.KeyCandidate {
	return models.KeyCandidate{
		Columns:         []string{"OrderID"},
		TestedRows:      testedRows,
		DuplicateRowPct: dupPct,
		NullRowPct:      nullPct,
	}
}

type fakeExecutor struct {
	rules []fakeRule
}

type fakeRule struct {
	contains []string
	value    any
	err      error
}

func (f *fakeExecutor) QuoteIdentifier(name string) string {
	return "[" + name + "]"
}

func (f *fakeExecutor) Execute(ctx context.Context, query string, params ...any) (*datasource.QueryResult, error) {
	return &datasource.QueryResult{}, nil
}

func (f *fakeExecutor) FetchValue(ctx context.Context, query string, params ...any) (any, error) {
	for _, r := range f.rules {
		matched := true
		for _, s := range r.contains {
			if !strings.Contains(query, s) {
				matched = false
				break
			}
		}
		if matched {
			return r.value, r.err
		}
	}
	return nil, nil
}

func TestFindKeys_MeasuresAndSortsByDupThenNullThenSize(t *testing.T) {
	exec := &fakeExecutor{rules: []fakeRule{
		{contains: []string{"COUNT(*)", "WHERE", "GROUP BY"}, err: nil, value: nil},
		{contains: []string{"SUM(cnt - 1)"}, value: int64(0)},
		{contains: []string{"COUNT(*) FROM", "IS NULL"}, value: int64(0)},
		{contains: []string{"COUNT(*) FROM"}, value: int64(100)},
	}}

	f := NewFinder(exec, 1, 0.01, 0.01, 200, nil)
	keys := f.FindKeys(context.Background(), "dbo", "Orders", "", []string{"OrderID"})

	if len(keys) != 1 {
		t.Fatalf("expected 1 key candidate, got %d", len(keys))
	}
	if keys[0].Columns[0] != "OrderID" {
		t.Errorf("expected OrderID, got %v", keys[0].Columns)
	}
}

func TestFinder_IsStrong_DelegatesToThresholds(t *testing.T) {
	f := NewFinder(&fakeExecutor{}, 3, 0.01, 0.01, 200, nil)

	strongCandidate := candidateWith(1000, 0, 0)
	if !f.IsStrong(strongCandidate) {
		t.Error("expected clean candidate with enough rows to be strong")
	}

	weakCandidate := candidateWith(50, 0, 0)
	if f.IsStrong(weakCandidate) {
		t.Error("expected candidate below MIN_ROWS_FOR_CONFIDENT_RESULTS to not be strong")
	}
}
