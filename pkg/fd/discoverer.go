// Package fd discovers functional dependencies between a table's columns:
// for each candidate determinant and dependent pair it measures coverage and
// violation rates, collects sample evidence, and minimizes the accepted set
// to the smallest determinants that still explain each dependency.
package fd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dbaudit/sqlserver3nf/pkg/combin"
	"github.com/dbaudit/sqlserver3nf/pkg/datasource"
	"github.com/dbaudit/sqlserver3nf/pkg/models"
	"github.com/dbaudit/sqlserver3nf/pkg/sqlfrag"
)

// Executor is what the FD discoverer needs from a data source.
type Executor interface {
	datasource.SQLExecutor
	sqlfrag.Quoter
}

// Thresholds bundles the configured accept/reject cutoffs an FD must clear
// to be classified strong.
type Thresholds struct {
	MinCoveragePct        float64
	MaxViolatingGroupPct  float64
	MaxViolatingRowPct    float64
	MinRowsForConfident   int64
}

// Discoverer measures functional dependencies for a table's determinant
// pool against its dependent column candidates.
type Discoverer struct {
	exec                Executor
	maxDeterminantSize  int
	maxDependentsTested int
	thresholds          Thresholds
	log                 *zap.Logger
}

// NewDiscoverer builds a Discoverer from the configured limits and
// thresholds.
func NewDiscoverer(exec Executor, maxDeterminantSize, maxDependentsTested int, thresholds Thresholds, log *zap.Logger) *Discoverer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Discoverer{
		exec:                exec,
		maxDeterminantSize:  maxDeterminantSize,
		maxDependentsTested: maxDependentsTested,
		thresholds:          thresholds,
		log:                 log,
	}
}

// DependentCandidates returns every column eligible as a dependent for a
// given determinant: not a member of the determinant, not blob-typed
// (unless force-included), not ETL-excluded (the pool is already
// ETL-filtered upstream, so this only re-checks blob status), capped at
// maxDependentsTested.
func (d *Discoverer) DependentCandidates(allColumns []datasource.ColumnMetadata, determinant []string, isBlobType func(string) bool, forceInclude map[string]bool) []string {
	inDeterminant := make(map[string]bool, len(determinant))
	for _, c := range determinant {
		inDeterminant[c] = true
	}

	var out []string
	for _, col := range allColumns {
		if inDeterminant[col.ColumnName] {
			continue
		}
		if isBlobType(col.DataTypeLower) && !forceInclude[col.ColumnName] {
			continue
		}
		out = append(out, col.ColumnName)
		if len(out) >= d.maxDependentsTested {
			break
		}
	}
	return out
}

// Discover measures every (determinant, dependent) pair over the pool at
// sizes 1..maxDeterminantSize and returns the raw, unminimized measurements.
// A per-pair measurement failure is logged and that pair is skipped.
func (d *Discoverer) Discover(ctx context.Context, schema, table, sampleClause string, rowCount int64, pool []string, allColumns []datasource.ColumnMetadata, isBlobType func(string) bool, forceInclude map[string]bool) []models.FunctionalDependency {
	from := sqlfrag.SampledFrom(d.exec, schema, table, sampleClause)

	var results []models.FunctionalDependency
	for size := 1; size <= d.maxDeterminantSize; size++ {
		for _, determinant := range combin.Combinations(pool, size) {
			for _, dependent := range d.DependentCandidates(allColumns, determinant, isBlobType, forceInclude) {
				measured, err := d.measure(ctx, from, rowCount, determinant, dependent)
				if err != nil {
					d.log.Warn("FD measurement failed, skipping",
						zap.Strings("determinant", determinant), zap.String("dependent", dependent), zap.Error(err))
					continue
				}
				d.collectEvidence(ctx, from, &measured)
				results = append(results, measured)
			}
		}
	}
	return results
}

// IsStrong applies the discoverer's configured thresholds to a measured FD.
func (d *Discoverer) IsStrong(f models.FunctionalDependency) bool {
	return f.IsStrong(d.thresholds.MinCoveragePct, d.thresholds.MaxViolatingGroupPct, d.thresholds.MaxViolatingRowPct, d.thresholds.MinRowsForConfident)
}

func (d *Discoverer) measure(ctx context.Context, from string, rowCount int64, determinant []string, dependent string) (models.FunctionalDependency, error) {
	involved := append(append([]string{}, determinant...), dependent)
	notNull := sqlfrag.NotNullClause(d.exec, involved)
	detList := sqlfrag.ColumnList(d.exec, determinant)
	depCol := d.exec.QuoteIdentifier(dependent)

	testedRows, err := d.fetchInt64(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", from, notNull))
	if err != nil {
		return models.FunctionalDependency{}, fmt.Errorf("count tested rows: %w", err)
	}

	totalGroups, err := d.fetchInt64(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM (SELECT %s FROM %s WHERE %s GROUP BY %s) g",
		detList, from, notNull, detList))
	if err != nil {
		return models.FunctionalDependency{}, fmt.Errorf("count total groups: %w", err)
	}

	violatingGroups, err := d.fetchInt64(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM (SELECT %s, COUNT(DISTINCT %s) AS cnty FROM %s WHERE %s GROUP BY %s) g WHERE cnty > 1",
		detList, depCol, from, notNull, detList))
	if err != nil {
		return models.FunctionalDependency{}, fmt.Errorf("count violating groups: %w", err)
	}

	violatingRows, err := d.fetchInt64(ctx, fmt.Sprintf(
		"SELECT SUM(cnt_group) FROM (SELECT COUNT(*) AS cnt_group, COUNT(DISTINCT %s) AS cnty FROM %s WHERE %s GROUP BY %s) g WHERE cnty > 1",
		depCol, from, notNull, detList))
	if err != nil {
		return models.FunctionalDependency{}, fmt.Errorf("count violating rows: %w", err)
	}

	f := models.FunctionalDependency{
		Determinant:     determinant,
		Dependent:       dependent,
		TestedRows:      testedRows,
		TotalGroups:     totalGroups,
		ViolatingGroups: violatingGroups,
		ViolatingRows:   violatingRows,
	}

	if rowCount > 0 {
		f.CoveragePct = float64(testedRows) / float64(rowCount) * 100
	}
	if totalGroups > 0 {
		f.ViolatingGroupPct = float64(violatingGroups) / float64(totalGroups) * 100
	}
	if testedRows > 0 {
		f.ViolatingRowPct = float64(violatingRows) / float64(testedRows) * 100
	}

	return f, nil
}

// collectEvidence fetches up to 5 sample violation rows for an FD that has
// at least one violating group. Failure here is a sample-collection error:
// the FD is still emitted, with SampleViolations left empty.
func (d *Discoverer) collectEvidence(ctx context.Context, from string, f *models.FunctionalDependency) {
	if f.ViolatingGroups == 0 {
		return
	}

	detList := sqlfrag.ColumnList(d.exec, f.Determinant)
	depCol := d.exec.QuoteIdentifier(f.Dependent)
	notNull := sqlfrag.NotNullClause(d.exec, append(append([]string{}, f.Determinant...), f.Dependent))

	result, err := d.exec.Execute(ctx, fmt.Sprintf(
		"SELECT %s, %s FROM %s WHERE %s ORDER BY %s",
		detList, depCol, from, notNull, detList))
	if err != nil {
		d.log.Warn("sample violation evidence query failed, leaving empty",
			zap.Strings("determinant", f.Determinant), zap.String("dependent", f.Dependent), zap.Error(err))
		return
	}

	f.SampleViolations = buildSampleViolations(result, f.Determinant, f.Dependent)
}

// buildSampleViolations groups the rows returned by collectEvidence's query
// by determinant value, keeps only groups with more than one distinct
// dependent value, and returns up to 5 of them with their dependent values
// sorted and ready to join.
func buildSampleViolations(result *datasource.QueryResult, determinant []string, dependent string) []models.SampleViolation {
	type group struct {
		detValues []models.CellValue
		dependent map[string]bool
		size      int64
	}

	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, row := range result.Rows {
		key := groupKey(row, determinant)
		g, ok := groups[key]
		if !ok {
			detValues := make([]models.CellValue, len(determinant))
			for i, col := range determinant {
				detValues[i] = models.NewCellValue(row[col])
			}
			g = &group{detValues: detValues, dependent: make(map[string]bool)}
			groups[key] = g
			order = append(order, key)
		}
		g.size++
		g.dependent[models.NewCellValue(row[dependent]).String()] = true
	}

	var violations []models.SampleViolation
	for _, key := range order {
		g := groups[key]
		if len(g.dependent) <= 1 {
			continue
		}
		values := make([]string, 0, len(g.dependent))
		for v := range g.dependent {
			values = append(values, v)
		}
		sort.Strings(values)
		violations = append(violations, models.SampleViolation{
			DeterminantValues: g.detValues,
			DependentValues:   values,
			GroupSize:         g.size,
		})
		if len(violations) >= 5 {
			break
		}
	}
	return violations
}

func groupKey(row map[string]any, determinant []string) string {
	parts := make([]string, len(determinant))
	for i, col := range determinant {
		parts[i] = models.NewCellValue(row[col]).String()
	}
	return strings.Join(parts, "\x00")
}

// Minimize discards non-strong FDs, sorts the rest by
// (|determinant| asc, determinant asc, dependent asc), and keeps only FDs
// whose determinant is not a superset of an already-accepted FD's
// determinant for the same dependent.
func (d *Discoverer) Minimize(all []models.FunctionalDependency) []models.FunctionalDependency {
	strong := make([]models.FunctionalDependency, 0, len(all))
	for _, f := range all {
		if d.IsStrong(f) {
			strong = append(strong, f)
		}
	}

	sort.SliceStable(strong, func(i, j int) bool {
		if len(strong[i].Determinant) != len(strong[j].Determinant) {
			return len(strong[i].Determinant) < len(strong[j].Determinant)
		}
		di, dj := strings.Join(strong[i].Determinant, ","), strings.Join(strong[j].Determinant, ",")
		if di != dj {
			return di < dj
		}
		return strong[i].Dependent < strong[j].Dependent
	})

	var accepted []models.FunctionalDependency
	for _, f := range strong {
		redundant := false
		for _, a := range accepted {
			if a.Dependent == f.Dependent && f.DeterminantIsSupersetOf(a.Determinant) {
				redundant = true
				break
			}
		}
		if !redundant {
			accepted = append(accepted, f)
		}
	}
	return accepted
}

func (d *Discoverer) fetchInt64(ctx context.Context, query string) (int64, error) {
	v, err := d.exec.FetchValue(ctx, query)
	if err != nil {
		return 0, err
	}
	return toInt64(v), nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

