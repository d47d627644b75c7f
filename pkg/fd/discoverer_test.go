package fd

import (
	"context"
	"strings"
	"testing"

	"github.com/dbaudit/sqlserver3nf/pkg/datasource"
	"github.com/dbaudit/sqlserver3nf/pkg/models"
)

type fakeExecutor struct {
	rules      []fakeRule
	execResult *datasource.QueryResult
	execErr    error
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
	if f.execErr != nil {
		return nil, f.execErr
	}
	if f.execResult != nil {
		return f.execResult, nil
	}
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

func TestDependentCandidates_ExcludesDeterminantAndBlobTypes(t *testing.T) {
	d := NewDiscoverer(&fakeExecutor{}, 3, 60, Thresholds{}, nil)

	cols := []datasource.ColumnMetadata{
		{ColumnName: "OrderID", DataTypeLower: "int"},
		{ColumnName: "Notes", DataTypeLower: "text"},
		{ColumnName: "CustomerID", DataTypeLower: "int"},
	}
	isBlob := func(t string) bool { return t == "text" }

	got := d.DependentCandidates(cols, []string{"OrderID"}, isBlob, nil)
	want := []string{"CustomerID"}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDependentCandidates_ForceIncludeBypassesBlobSkip(t *testing.T) {
	d := NewDiscoverer(&fakeExecutor{}, 3, 60, Thresholds{}, nil)

	cols := []datasource.ColumnMetadata{
		{ColumnName: "OrderID", DataTypeLower: "int"},
		{ColumnName: "Notes", DataTypeLower: "text"},
	}
	isBlob := func(t string) bool { return t == "text" }

	got := d.DependentCandidates(cols, []string{"OrderID"}, isBlob, map[string]bool{"Notes": true})
	if len(got) != 1 || got[0] != "Notes" {
		t.Errorf("expected force-included Notes, got %v", got)
	}
}

func TestDependentCandidates_CapsAtMaxDependentsTested(t *testing.T) {
	d := NewDiscoverer(&fakeExecutor{}, 3, 2, Thresholds{}, nil)

	cols := []datasource.ColumnMetadata{
		{ColumnName: "A", DataTypeLower: "int"},
		{ColumnName: "B", DataTypeLower: "int"},
		{ColumnName: "C", DataTypeLower: "int"},
	}
	got := d.DependentCandidates(cols, nil, func(string) bool { return false }, nil)
	if len(got) != 2 {
		t.Errorf("expected cap of 2, got %d", len(got))
	}
}

func TestDiscoverer_IsStrong(t *testing.T) {
	d := NewDiscoverer(&fakeExecutor{}, 3, 60, Thresholds{
		MinCoveragePct:       80,
		MaxViolatingGroupPct: 1,
		MaxViolatingRowPct:   1,
		MinRowsForConfident:  200,
	}, nil)

	strongFD := models.FunctionalDependency{TestedRows: 1000, CoveragePct: 95, ViolatingGroupPct: 0, ViolatingRowPct: 0}
	if !d.IsStrong(strongFD) {
		t.Error("expected clean FD with enough rows to be strong")
	}

	weakFD := models.FunctionalDependency{TestedRows: 100, CoveragePct: 95, ViolatingGroupPct: 0, ViolatingRowPct: 0}
	if d.IsStrong(weakFD) {
		t.Error("expected FD below MinRowsForConfident to not be strong")
	}
}

func TestMinimize_DiscardsSupersetsForSameDependent(t *testing.T) {
	thresholds := Thresholds{MinCoveragePct: 0, MaxViolatingGroupPct: 100, MaxViolatingRowPct: 100, MinRowsForConfident: 0}
	d := NewDiscoverer(&fakeExecutor{}, 3, 60, thresholds, nil)

	all := []models.FunctionalDependency{
		{Determinant: []string{"A"}, Dependent: "X", TestedRows: 1000, CoveragePct: 100},
		{Determinant: []string{"A", "B"}, Dependent: "X", TestedRows: 1000, CoveragePct: 100},
		{Determinant: []string{"A", "C"}, Dependent: "X", TestedRows: 1000, CoveragePct: 100},
	}

	got := d.Minimize(all)
	if len(got) != 1 {
		t.Fatalf("expected only the smallest determinant to survive, got %d: %v", len(got), got)
	}
	if got[0].Determinant[0] != "A" || len(got[0].Determinant) != 1 {
		t.Errorf("expected surviving FD to be A->X, got %v", got[0].Determinant)
	}
}

func TestMinimize_DiscardsNonStrongFDs(t *testing.T) {
	thresholds := Thresholds{MinCoveragePct: 80, MaxViolatingGroupPct: 1, MaxViolatingRowPct: 1, MinRowsForConfident: 200}
	d := NewDiscoverer(&fakeExecutor{}, 3, 60, thresholds, nil)

	all := []models.FunctionalDependency{
		{Determinant: []string{"A"}, Dependent: "X", TestedRows: 1000, CoveragePct: 50},
	}

	got := d.Minimize(all)
	if len(got) != 0 {
		t.Errorf("expected weak FD to be discarded, got %v", got)
	}
}

func TestBuildSampleViolations_KeepsOnlyGroupsWithMultipleDependentValues(t *testing.T) {
	result := &datasource.QueryResult{
		Rows: []map[string]any{
			{"A": int64(1), "X": "red"},
			{"A": int64(1), "X": "blue"},
			{"A": int64(2), "X": "green"},
			{"A": int64(2), "X": "green"},
		},
	}

	violations := buildSampleViolations(result, []string{"A"}, "X")
	if len(violations) != 1 {
		t.Fatalf("expected 1 violating group, got %d", len(violations))
	}
	if violations[0].GroupSize != 2 {
		t.Errorf("expected group size 2, got %d", violations[0].GroupSize)
	}
	if len(violations[0].DependentValues) != 2 || violations[0].DependentValues[0] != "blue" {
		t.Errorf("expected sorted [blue red], got %v", violations[0].DependentValues)
	}
}
