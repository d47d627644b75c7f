// Package profiler measures a table's columns: null counts, approximate
// distinct counts, and min/max values, skipping the measurements blob types
// cannot meaningfully support. It issues SQL through a datasource.SQLExecutor
// against a single sampled view of the table so every column's measurements
// share the same basis.
package profiler

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dbaudit/sqlserver3nf/pkg/config"
	"github.com/dbaudit/sqlserver3nf/pkg/datasource"
	"github.com/dbaudit/sqlserver3nf/pkg/models"
	"github.com/dbaudit/sqlserver3nf/pkg/sampling"
	"github.com/dbaudit/sqlserver3nf/pkg/sqlfrag"
)

// blobTypeSet holds the lowercase dialect type names the profiler and
// selector must never treat as candidates for distinct/min/max measurement.
// Populated from config.BlobTypes when set, else this built-in default.
var defaultBlobTypes = []string{
	"xml", "image", "text", "ntext", "geography", "geometry",
	"hierarchyid", "sql_variant", "varbinary", "varchar(max)",
	"nvarchar(max)", "varbinary(max)",
}

// Executor is what the profiler needs from a data source: read-only query
// execution plus identifier quoting, so it can build its own FROM clauses
// via pkg/sqlfrag without depending on the mssql package directly.
type Executor interface {
	datasource.SQLExecutor
	sqlfrag.Quoter
}

// Profiler measures every column of a table against a fixed sample clause.
type Profiler struct {
	exec      Executor
	blobTypes map[string]bool
	log       *zap.Logger
}

// New builds a Profiler. blobTypes, if empty, defaults to the built-in list.
func New(exec Executor, blobTypes []string, log *zap.Logger) *Profiler {
	if len(blobTypes) == 0 {
		blobTypes = defaultBlobTypes
	}
	set := make(map[string]bool, len(blobTypes))
	for _, t := range blobTypes {
		set[strings.ToLower(t)] = true
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Profiler{exec: exec, blobTypes: set, log: log}
}

// IsBlobType reports whether a lowercased dialect type name is in the blob
// skip list.
func (p *Profiler) IsBlobType(dataTypeLower string) bool {
	return p.blobTypes[dataTypeLower]
}

// ProfileTable profiles every column of a table, given its metadata and the
// sampling config used to choose the table's sample clause. An error from
// this method fails the table (apperrors.ErrMetadata-class callers wrap the
// row-count/null-count failure); per-column distinct/min-max failures are
// swallowed per spec, leaving those fields empty on the column.
func (p *Profiler) ProfileTable(ctx context.Context, schema, table string, rowCount int64, columns []datasource.ColumnMetadata, samplingCfg config.SamplingConfig) (models.TableProfile, error) {
	sampleClause := sampling.Plan(samplingCfg, rowCount)
	from := sqlfrag.SampledFrom(p.exec, schema, table, sampleClause)

	sampledTotal, err := p.sampledRowTotal(ctx, from)
	if err != nil {
		return models.TableProfile{}, fmt.Errorf("count sampled rows for %s.%s: %w", schema, table, err)
	}

	profiled := make([]models.ColumnProfile, 0, len(columns))
	for _, col := range columns {
		cp, err := p.profileColumn(ctx, from, sampledTotal, col)
		if err != nil {
			return models.TableProfile{}, fmt.Errorf("count nulls for %s.%s.%s: %w", schema, table, col.ColumnName, err)
		}
		profiled = append(profiled, cp)
	}

	return models.TableProfile{
		SchemaName:   schema,
		TableName:    table,
		RowCount:     rowCount,
		SampleClause: sampleClause,
		Columns:      profiled,
	}, nil
}

func (p *Profiler) sampledRowTotal(ctx context.Context, from string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", from)
	v, err := p.exec.FetchValue(ctx, query)
	if err != nil {
		return 0, err
	}
	return toInt64(v), nil
}

func (p *Profiler) profileColumn(ctx context.Context, from string, sampledTotal int64, col datasource.ColumnMetadata) (models.ColumnProfile, error) {
	quotedCol := p.exec.QuoteIdentifier(col.ColumnName)

	cp := models.ColumnProfile{
		ColumnName:    col.ColumnName,
		DataTypeLower: col.DataTypeLower,
		Nullable:      col.Nullable,
		TestedRows:    sampledTotal,
	}

	nullCount, err := p.exec.FetchValue(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s IS NULL", from, quotedCol))
	if err != nil {
		return models.ColumnProfile{}, err
	}
	cp.NullCount = toInt64(nullCount)

	if p.IsBlobType(col.DataTypeLower) {
		return cp, nil
	}

	distinct, err := p.exec.FetchValue(ctx, fmt.Sprintf(
		"SELECT APPROX_COUNT_DISTINCT(%s) FROM %s", quotedCol, from))
	if err != nil {
		distinct, err = p.exec.FetchValue(ctx, fmt.Sprintf(
			"SELECT COUNT(DISTINCT %s) FROM %s", quotedCol, from))
	}
	if err == nil {
		cp.DistinctApprox = toInt64(distinct)
	} else {
		p.log.Warn("distinct count failed, leaving empty",
			zap.String("column", col.ColumnName), zap.Error(err))
	}

	minMax, err := p.exec.FetchValue(ctx, fmt.Sprintf(
		"SELECT MIN(%s) FROM %s", quotedCol, from))
	if err == nil {
		cp.Min = models.NewCellValue(minMax)
	} else {
		p.log.Warn("min() failed, leaving empty",
			zap.String("column", col.ColumnName), zap.Error(err))
	}

	maxVal, err := p.exec.FetchValue(ctx, fmt.Sprintf(
		"SELECT MAX(%s) FROM %s", quotedCol, from))
	if err == nil {
		cp.Max = models.NewCellValue(maxVal)
	} else {
		p.log.Warn("max() failed, leaving empty",
			zap.String("column", col.ColumnName), zap.Error(err))
	}

	return cp, nil
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
