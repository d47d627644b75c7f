package proposal

import (
	"testing"

	"github.com/dbaudit/sqlserver3nf/pkg/models"
	"github.com/dbaudit/sqlserver3nf/pkg/normalize"
)

func TestBuild_EmitsOneProposalPer3NFIssue(t *testing.T) {
	issues := []normalize.Issue{
		{Determinant: []string{"B"}, Dependent: "C"},
	}
	fds := []models.FunctionalDependency{
		{Determinant: []string{"B"}, Dependent: "C", ViolatingRowPct: 0},
	}

	proposals := Build(issues, fds)
	if len(proposals) != 1 {
		t.Fatalf("expected 1 proposal, got %d", len(proposals))
	}
	p := proposals[0]
	if p.Determinant[0] != "B" || p.Dependents[0] != "C" {
		t.Errorf("unexpected proposal shape: %+v", p)
	}
	if p.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0 for zero violations, got %v", p.Confidence)
	}
	if len(p.Notes) != 2 {
		t.Errorf("expected 2 review notes, got %d", len(p.Notes))
	}
}

func TestConfidence_ClampsToMinimum(t *testing.T) {
	got := Confidence(95)
	if got != 0.1 {
		t.Errorf("expected confidence floor 0.1 for heavy violation rate, got %v", got)
	}
}

func TestConfidence_NormalizesPercentageToFraction(t *testing.T) {
	got := Confidence(20)
	want := 0.8
	if got != want {
		t.Errorf("expected confidence %v, got %v", want, got)
	}
}

func TestBuild_NoIssuesProducesNoProposals(t *testing.T) {
	proposals := Build(nil, nil)
	if len(proposals) != 0 {
		t.Errorf("expected no proposals, got %d", len(proposals))
	}
}
