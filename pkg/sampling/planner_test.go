package sampling

import (
	"testing"

	"github.com/dbaudit/sqlserver3nf/pkg/config"
)

func defaultCfg() config.SamplingConfig {
	return config.SamplingConfig{
		FullScanMaxRows:  500000,
		SampleTargetRows: 200000,
		SampleMinPct:     1.0,
		SampleMaxPct:     2.0,
	}
}

func TestPlan_FullScanBelowThreshold(t *testing.T) {
	if got := Plan(defaultCfg(), 500000); got != "" {
		t.Errorf("expected full scan for row count at threshold, got %q", got)
	}
	if got := Plan(defaultCfg(), 100); got != "" {
		t.Errorf("expected full scan for small table, got %q", got)
	}
}

func TestPlan_ClampsToMaxPct(t *testing.T) {
	// target/rowCount*100 = 200000/600000*100 = 33.3%, clamped to 2.0%
	got := Plan(defaultCfg(), 600000)
	want := "TABLESAMPLE (2.0000 PERCENT)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPlan_ClampsToMinPct(t *testing.T) {
	// target/rowCount*100 = 200000/50000000*100 = 0.4%, clamped to 1.0%
	got := Plan(defaultCfg(), 50000000)
	want := "TABLESAMPLE (1.0000 PERCENT)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPlan_ComputesWithinRange(t *testing.T) {
	// target/rowCount*100 = 200000/10000000*100 = 2.0%, right at the max clamp
	got := Plan(defaultCfg(), 10000000)
	want := "TABLESAMPLE (2.0000 PERCENT)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPlan_MidRangePercentage(t *testing.T) {
	cfg := config.SamplingConfig{
		FullScanMaxRows:  500000,
		SampleTargetRows: 200000,
		SampleMinPct:     0.5,
		SampleMaxPct:     5.0,
	}
	// 200000/2000000*100 = 10%, clamped to 5.0%
	got := Plan(cfg, 2000000)
	want := "TABLESAMPLE (5.0000 PERCENT)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// 200000/8000000*100 = 2.5%, within range
	got = Plan(cfg, 8000000)
	want = "TABLESAMPLE (2.5000 PERCENT)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
