package models

import "testing"

func TestFunctionalDependency_IsStrong(t *testing.T) {
	cases := []struct {
		name string
		f    FunctionalDependency
		want bool
	}{
		{
			name: "clean and enough rows",
			f:    FunctionalDependency{TestedRows: 1000, CoveragePct: 95, ViolatingGroupPct: 0, ViolatingRowPct: 0},
			want: true,
		},
		{
			name: "too few tested rows",
			f:    FunctionalDependency{TestedRows: 100, CoveragePct: 95, ViolatingGroupPct: 0, ViolatingRowPct: 0},
			want: false,
		},
		{
			name: "coverage below minimum",
			f:    FunctionalDependency{TestedRows: 1000, CoveragePct: 50, ViolatingGroupPct: 0, ViolatingRowPct: 0},
			want: false,
		},
		{
			name: "violating group pct over threshold",
			f:    FunctionalDependency{TestedRows: 1000, CoveragePct: 95, ViolatingGroupPct: 5, ViolatingRowPct: 0},
			want: false,
		},
		{
			name: "violating row pct over threshold",
			f:    FunctionalDependency{TestedRows: 1000, CoveragePct: 95, ViolatingGroupPct: 0, ViolatingRowPct: 5},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.f.IsStrong(80.0, 1.0, 1.0, 200)
			if got != tc.want {
				t.Errorf("IsStrong() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFunctionalDependency_DeterminantIsSupersetOf(t *testing.T) {
	f := FunctionalDependency{Determinant: []string{"A", "B", "C"}}

	if !f.DeterminantIsSupersetOf([]string{"A", "B"}) {
		t.Error("expected {A,B,C} to be a superset of {A,B}")
	}
	if f.DeterminantIsSupersetOf([]string{"A", "D"}) {
		t.Error("expected {A,B,C} to not be a superset of {A,D}")
	}
	if f.DeterminantIsSupersetOf(nil) {
		t.Error("expected empty determinant to not count as a subset")
	}
	if f.DeterminantIsSupersetOf([]string{"A", "B", "C", "D"}) {
		t.Error("expected a larger set to not be treated as a subset")
	}
}

func TestFunctionalDependency_DeterminantSize(t *testing.T) {
	f := FunctionalDependency{Determinant: []string{"A", "B"}}
	if f.DeterminantSize() != 2 {
		t.Errorf("expected size 2, got %d", f.DeterminantSize())
	}
}
