// Package keys ranks a table's columns as candidate key determinants and
// enumerates/measures multi-column key candidates against the database.
package keys

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/dbaudit/sqlserver3nf/pkg/models"
)

// typeBonusColumns carries +0.20 toward a column's determinant score.
var typeBonusColumns = map[string]bool{
	"int": true, "bigint": true, "uniqueidentifier": true,
	"date": true, "datetime": true, "datetime2": true,
}

// nameBonusPattern matches column names that read like identifiers.
var nameBonusPattern = regexp.MustCompile(`(?i)(id|code|nr|key|number|uuid|guid)`)

// Selector scores columns and builds the bounded determinant pool every
// downstream stage (key finder, FD discoverer) draws from.
type Selector struct {
	etlExcludeRegex     *regexp.Regexp
	determinantPoolSize int
	isBlobType          func(dataTypeLower string) bool
}

// NewSelector builds a Selector. etlExcludePattern is the ETL/audit column
// exclusion regex (e.g. config.Config.ExcludeColumnsRegex); an empty pattern
// excludes nothing. isBlobType reports whether a lowercased dialect type is
// a blob type (see pkg/profiler.Profiler.IsBlobType).
func NewSelector(etlExcludePattern string, determinantPoolSize int, isBlobType func(string) bool) (*Selector, error) {
	var re *regexp.Regexp
	if etlExcludePattern != "" {
		compiled, err := regexp.Compile(etlExcludePattern)
		if err != nil {
			return nil, err
		}
		re = compiled
	}
	return &Selector{
		etlExcludeRegex:     re,
		determinantPoolSize: determinantPoolSize,
		isBlobType:          isBlobType,
	}, nil
}

// Score computes a column's determinant score from its profile and row
// count, writing it into the returned copy. rowCount is the table's profiled
// row count (not necessarily the sampled total), per spec.md §4.3's use of
// max(row_count, 1) as the ratio denominator.
func (s *Selector) Score(col models.ColumnProfile, rowCount int64) float64 {
	denom := math.Max(float64(rowCount), 1)
	nonNullRatio := 1 - float64(col.NullCount)/denom
	distinctRatio := float64(col.DistinctApprox) / denom

	score := 0.60*nonNullRatio + 0.60*math.Min(distinctRatio, 1.5)

	switch {
	case typeBonusColumns[col.DataTypeLower]:
		score += 0.20
	case isVarcharLike(col.DataTypeLower) && !s.isBlobType(col.DataTypeLower):
		score -= 0.05
	}

	if nameBonusPattern.MatchString(col.ColumnName) {
		score += 0.15
	}

	if s.isBlobType(col.DataTypeLower) {
		score -= 0.30
	}

	return score
}

func isVarcharLike(dataTypeLower string) bool {
	return strings.HasPrefix(dataTypeLower, "varchar") || strings.HasPrefix(dataTypeLower, "nvarchar")
}

// BuildPool scores every column, excludes ETL/audit columns, sorts
// descending by score (ties broken by original column order), and truncates
// to determinantPoolSize. It returns the pool of column names and writes
// each column's computed score back onto the TableProfile's Columns slice.
func (s *Selector) BuildPool(tp *models.TableProfile) []string {
	type scored struct {
		name  string
		score float64
		index int
	}

	candidates := make([]scored, 0, len(tp.Columns))
	for i := range tp.Columns {
		tp.Columns[i].Score = s.Score(tp.Columns[i], tp.RowCount)
		if s.etlExcludeRegex != nil && s.etlExcludeRegex.MatchString(tp.Columns[i].ColumnName) {
			continue
		}
		candidates = append(candidates, scored{
			name:  tp.Columns[i].ColumnName,
			score: tp.Columns[i].Score,
			index: i,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].index < candidates[j].index
	})

	limit := s.determinantPoolSize
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	pool := make([]string, limit)
	for i := 0; i < limit; i++ {
		pool[i] = candidates[i].name
	}
	tp.DeterminantPool = pool
	return pool
}
