package keys

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/dbaudit/sqlserver3nf/pkg/combin"
	"github.com/dbaudit/sqlserver3nf/pkg/datasource"
	"github.com/dbaudit/sqlserver3nf/pkg/models"
	"github.com/dbaudit/sqlserver3nf/pkg/sqlfrag"
)

// Executor is what the key finder needs from a data source.
type Executor interface {
	datasource.SQLExecutor
	sqlfrag.Quoter
}

// Finder enumerates and measures key candidates drawn from a determinant
// pool, one connection-bound table at a time.
type Finder struct {
	exec                   Executor
	maxDeterminantSize     int
	keyMaxDupRowPct        float64
	keyMaxNullRowPct       float64
	minRowsForConfident    int64
	log                    *zap.Logger
}

// NewFinder builds a Finder from the configured limits and thresholds.
func NewFinder(exec Executor, maxDeterminantSize int, keyMaxDupRowPct, keyMaxNullRowPct float64, minRowsForConfident int64, log *zap.Logger) *Finder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Finder{
		exec:                exec,
		maxDeterminantSize:  maxDeterminantSize,
		keyMaxDupRowPct:     keyMaxDupRowPct,
		keyMaxNullRowPct:    keyMaxNullRowPct,
		minRowsForConfident: minRowsForConfident,
		log:                 log,
	}
}

// FindKeys enumerates all combinations of the determinant pool at sizes
// 1..maxDeterminantSize, measures each, and returns them sorted by
// (dup_pct asc, null_pct asc, tuple_size asc). A per-combination measurement
// failure is logged and that combination is skipped.
func (f *Finder) FindKeys(ctx context.Context, schema, table, sampleClause string, pool []string) []models.KeyCandidate {
	from := sqlfrag.SampledFrom(f.exec, schema, table, sampleClause)

	var results []models.KeyCandidate
	for size := 1; size <= f.maxDeterminantSize; size++ {
		for _, combo := range combin.Combinations(pool, size) {
			k, err := f.measure(ctx, from, combo)
			if err != nil {
				f.log.Warn("key candidate measurement failed, skipping",
					zap.Strings("columns", combo), zap.Error(err))
				continue
			}
			results = append(results, k)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DuplicateRowPct != results[j].DuplicateRowPct {
			return results[i].DuplicateRowPct < results[j].DuplicateRowPct
		}
		if results[i].NullRowPct != results[j].NullRowPct {
			return results[i].NullRowPct < results[j].NullRowPct
		}
		return results[i].Size() < results[j].Size()
	})

	return results
}

// IsStrong applies the finder's configured thresholds to a measured
// candidate; a thin wrapper kept alongside the finder so callers need not
// thread thresholds through separately.
func (f *Finder) IsStrong(k models.KeyCandidate) bool {
	return k.IsStrong(f.keyMaxDupRowPct, f.keyMaxNullRowPct, f.minRowsForConfident)
}

func (f *Finder) measure(ctx context.Context, from string, columns []string) (models.KeyCandidate, error) {
	notNull := sqlfrag.NotNullClause(f.exec, columns)
	colList := sqlfrag.ColumnList(f.exec, columns)

	testedRows, err := f.fetchInt64(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s", from, notNull))
	if err != nil {
		return models.KeyCandidate{}, fmt.Errorf("count tested rows: %w", err)
	}

	dupExcess, err := f.fetchInt64(ctx, fmt.Sprintf(
		"SELECT SUM(cnt - 1) FROM (SELECT COUNT(*) AS cnt FROM %s WHERE %s GROUP BY %s) g",
		from, notNull, colList))
	if err != nil {
		return models.KeyCandidate{}, fmt.Errorf("count duplicate excess: %w", err)
	}

	anyNullClause := anyNullClause(f.exec, columns)
	nullRows, err := f.fetchInt64(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s", from, anyNullClause))
	if err != nil {
		return models.KeyCandidate{}, fmt.Errorf("count null rows: %w", err)
	}

	k := models.KeyCandidate{
		Columns:             columns,
		TestedRows:          testedRows,
		DuplicateExcessRows: dupExcess,
		NullRows:            nullRows,
	}

	if testedRows > 0 {
		k.DuplicateRowPct = float64(dupExcess) / float64(testedRows)
	} else {
		k.DuplicateRowPct = 1.0
	}

	denom := testedRows + nullRows
	if denom > 0 {
		k.NullRowPct = float64(nullRows) / float64(denom)
	}

	return k, nil
}

func (f *Finder) fetchInt64(ctx context.Context, query string) (int64, error) {
	v, err := f.exec.FetchValue(ctx, query)
	if err != nil {
		return 0, err
	}
	return toInt64(v), nil
}

func anyNullClause(q sqlfrag.Quoter, columns []string) string {
	if len(columns) == 1 {
		return q.QuoteIdentifier(columns[0]) + " IS NULL"
	}
	clause := ""
	for i, c := range columns {
		if i > 0 {
			clause += " OR "
		}
		clause += q.QuoteIdentifier(c) + " IS NULL"
	}
	return clause
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
	case nil:
		return 0
	default:
		return 0
	}
}
