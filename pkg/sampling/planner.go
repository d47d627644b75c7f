// Package sampling computes the TABLESAMPLE clause a table's row count earns
// it: full scans for small tables, a bounded percentage sample for large
// ones, aimed at a target row count and clamped to a configured percentage
// range.
package sampling

import (
	"fmt"

	"github.com/dbaudit/sqlserver3nf/pkg/config"
)

// Plan decides the sample clause for a table with the given row count. When
// rowCount is at or below cfg.FullScanMaxRows, it returns "" (scan every
// row). Otherwise it computes the percentage needed to expect roughly
// SampleTargetRows rows back, clamps it to [SampleMinPct, SampleMaxPct], and
// formats it to 4 decimal places, e.g. "TABLESAMPLE (2.0000 PERCENT)".
func Plan(cfg config.SamplingConfig, rowCount int64) string {
	if rowCount <= int64(cfg.FullScanMaxRows) {
		return ""
	}

	pct := float64(cfg.SampleTargetRows) / float64(rowCount) * 100
	pct = clamp(pct, cfg.SampleMinPct, cfg.SampleMaxPct)

	return fmt.Sprintf("TABLESAMPLE (%.4f PERCENT)", pct)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
