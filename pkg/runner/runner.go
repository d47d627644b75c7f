// Package runner orchestrates the audit pipeline across configured sources:
// it enumerates tables, applies scope filters, drives each table through the
// profiler, key finder, FD discoverer, normalization analyzer and proposal
// builder in sequence, and hands the result to the writer.
package runner

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/dbaudit/sqlserver3nf/pkg/apperrors"
	"github.com/dbaudit/sqlserver3nf/pkg/config"
	"github.com/dbaudit/sqlserver3nf/pkg/datasource"
	"github.com/dbaudit/sqlserver3nf/pkg/fd"
	"github.com/dbaudit/sqlserver3nf/pkg/keys"
	"github.com/dbaudit/sqlserver3nf/pkg/normalize"
	"github.com/dbaudit/sqlserver3nf/pkg/profiler"
	"github.com/dbaudit/sqlserver3nf/pkg/proposal"
	"github.com/dbaudit/sqlserver3nf/pkg/writer"
)

// Executor is what the runner's per-table pipeline stages need from a data
// source: metadata discovery plus read-only query execution.
type Executor interface {
	datasource.MetadataReader
	datasource.SQLExecutor
	QuoteIdentifier(name string) string
}

// SourceConnector opens and closes the one connection a source's tables
// share for the duration of the run, per spec.md §5's resource model. The
// concrete implementation (pkg/datasource/mssql) wraps a *sql.DB pool behind
// this interface so the runner never imports the driver package directly.
type SourceConnector interface {
	Connect(ctx context.Context, source config.Source) (Executor, func() error, error)
}

// Runner drives the audit across every configured source.
type Runner struct {
	connector SourceConnector
	writer    *writer.Writer
	cfg       *config.Config
	log       *zap.Logger

	etlExclude *regexp.Regexp

	includeSchemas *regexp.Regexp
	includeTables  *regexp.Regexp
	excludeSchemas *regexp.Regexp
	excludeTables  *regexp.Regexp
}

// New builds a Runner. cfg's ExcludeColumnsRegex and scope filter regexes are
// compiled once here so a bad pattern is a configuration error raised before
// any table is touched, rather than a panic mid-run.
func New(connector SourceConnector, w *writer.Writer, cfg *config.Config, log *zap.Logger) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	etlExclude, err := compileOptional("exclude_columns_regex", cfg.ExcludeColumnsRegex)
	if err != nil {
		return nil, err
	}
	includeSchemas, err := compileOptional("scope.include_schemas", cfg.Scope.IncludeSchemas)
	if err != nil {
		return nil, err
	}
	includeTables, err := compileOptional("scope.include_tables", cfg.Scope.IncludeTables)
	if err != nil {
		return nil, err
	}
	excludeSchemas, err := compileOptional("scope.exclude_schemas", cfg.Scope.ExcludeSchemas)
	if err != nil {
		return nil, err
	}
	excludeTables, err := compileOptional("scope.exclude_tables", cfg.Scope.ExcludeTables)
	if err != nil {
		return nil, err
	}
	return &Runner{
		connector:      connector,
		writer:         w,
		cfg:            cfg,
		log:            log,
		etlExclude:     etlExclude,
		includeSchemas: includeSchemas,
		includeTables:  includeTables,
		excludeSchemas: excludeSchemas,
		excludeTables:  excludeTables,
	}, nil
}

// compileOptional compiles pattern, returning (nil, nil) when it is empty. A
// compile failure is wrapped as a configuration error naming the field.
func compileOptional(field, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrConfiguration, field, err)
	}
	return re, nil
}

// Run audits every configured source in turn. A connection error for one
// source is logged and that source is skipped; other sources proceed. The
// writer's manifest/summary are finalized once, after every source.
func (r *Runner) Run(ctx context.Context) error {
	for _, source := range r.cfg.Sources {
		if err := r.runSource(ctx, source); err != nil {
			r.log.Error("source failed, skipping remaining tables for it",
				zap.String("source", source.Name), zap.Error(err))
		}
	}
	if err := r.writer.Finalize(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrWriter, err)
	}
	return nil
}

func (r *Runner) runSource(ctx context.Context, source config.Source) error {
	r.log.Info("connecting to source", zap.String("source", source.Name))

	exec, closeFn, err := r.connector.Connect(ctx, source)
	if err != nil {
		return fmt.Errorf("%w: source %s: %v", apperrors.ErrConnection, source.Name, err)
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil {
			r.log.Warn("closing source connection failed", zap.String("source", source.Name), zap.Error(closeErr))
		}
	}()

	tables, err := exec.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("%w: list tables on source %s: %v", apperrors.ErrConnection, source.Name, err)
	}

	for _, t := range tables {
		if ctx.Err() != nil {
			r.writer.RecordFailure(writer.TableFailure{Source: source.Name, Schema: t.SchemaName, Table: t.TableName, Err: ctx.Err()})
			continue
		}
		if !r.inScope(t.SchemaName, t.TableName) {
			continue
		}

		r.log.Info("auditing table", zap.String("source", source.Name), zap.String("schema", t.SchemaName), zap.String("table", t.TableName))
		if err := r.runTable(ctx, source, exec, t); err != nil {
			r.log.Warn("table analysis failed, recorded in manifest",
				zap.String("schema", t.SchemaName), zap.String("table", t.TableName), zap.Error(err))
			r.writer.RecordFailure(writer.TableFailure{Source: source.Name, Schema: t.SchemaName, Table: t.TableName, Err: err})
		}
	}
	return nil
}

// inScope applies spec.md §4.8's scope filter: a table passes iff (no
// allowlist OR its FQN is listed) AND (no include-schema regex OR it
// matches) AND (no include-table regex OR it matches) AND (no
// exclude-schema regex OR it does NOT match) AND (no exclude-table regex OR
// it does NOT match).
func (r *Runner) inScope(schema, table string) bool {
	scope := r.cfg.Scope
	fq := schema + "." + table

	if len(scope.TableAllowlist) > 0 {
		allowed := false
		for _, a := range scope.TableAllowlist {
			if a == fq {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if !qualifies(r.includeSchemas, schema) {
		return false
	}
	if !qualifies(r.includeTables, table) {
		return false
	}
	if r.excludeSchemas != nil && r.excludeSchemas.MatchString(schema) {
		return false
	}
	if r.excludeTables != nil && r.excludeTables.MatchString(table) {
		return false
	}
	return true
}

// qualifies reports whether name matches re, or true when re is nil (an
// empty include filter excludes nothing).
func qualifies(re *regexp.Regexp, name string) bool {
	if re == nil {
		return true
	}
	return re.MatchString(name)
}

func (r *Runner) runTable(ctx context.Context, source config.Source, exec Executor, t datasource.TableMetadata) error {
	columns, err := exec.ListColumns(ctx, t.SchemaName, t.TableName)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMetadata, err)
	}

	prof := profiler.New(exec, r.cfg.BlobTypes, r.log)

	tableProfile, err := prof.ProfileTable(ctx, t.SchemaName, t.TableName, t.RowCount, columns, r.cfg.Sampling)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMetadata, err)
	}

	selector, err := keys.NewSelector(r.cfg.ExcludeColumnsRegex, r.cfg.Limits.DeterminantPoolSize, prof.IsBlobType)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}
	pool := selector.BuildPool(&tableProfile)

	minConfident := int64(r.cfg.Thresholds.MinRowsForConfidentResults)

	finder := keys.NewFinder(exec, r.cfg.Limits.MaxDeterminantSize,
		r.cfg.Thresholds.KeyMaxDupRowPct, r.cfg.Thresholds.KeyMaxNullRowPct, minConfident, r.log)
	keyCandidates := finder.FindKeys(ctx, t.SchemaName, t.TableName, tableProfile.SampleClause, pool)

	fq := t.SchemaName + "." + t.TableName
	forceInclude := toSet(r.cfg.Overrides.ForceIncludeColumns[fq])

	discoverer := fd.NewDiscoverer(exec, r.cfg.Limits.MaxDeterminantSize, r.cfg.Limits.MaxDependentsTested, fd.Thresholds{
		MinCoveragePct:       r.cfg.Thresholds.FDMinCoveragePct,
		MaxViolatingGroupPct: r.cfg.Thresholds.FDMaxViolatingGroupPct,
		MaxViolatingRowPct:   r.cfg.Thresholds.FDMaxViolatingRowPct,
		MinRowsForConfident:  minConfident,
	}, r.log)

	allMeasured := discoverer.Discover(ctx, t.SchemaName, t.TableName, tableProfile.SampleClause, t.RowCount, pool, columns, prof.IsBlobType, forceInclude)
	acceptedFDs := discoverer.Minimize(allMeasured)

	workingKey := normalize.WorkingKey(r.cfg.Overrides.ForceKey[fq], keyCandidates, pool)
	normResult := normalize.Analyze(workingKey, acceptedFDs)

	proposals := proposal.Build(normResult.Issues3NF, acceptedFDs)

	keyRecords := make([]writer.KeyCandidateRecord, len(keyCandidates))
	for i, k := range keyCandidates {
		keyRecords[i] = writer.KeyCandidateRecord{KeyCandidate: k, IsStrong: finder.IsStrong(k)}
	}
	fdRecords := make([]writer.FDRecord, len(acceptedFDs))
	for i, f := range acceptedFDs {
		fdRecords[i] = writer.FDRecord{FunctionalDependency: f, IsStrong: discoverer.IsStrong(f)}
	}

	result := writer.TableResult{
		Source:        source.Name,
		Schema:        t.SchemaName,
		Table:         t.TableName,
		RowCount:      t.RowCount,
		Cancelled:     ctx.Err() != nil,
		Profile:       tableProfile,
		KeyCandidates: keyRecords,
		FDs:           fdRecords,
		WorkingKey:    workingKey,
		Issues2NF:     normResult.Issues2NF,
		Issues3NF:     normResult.Issues3NF,
		Proposals:     proposals,
	}

	if err := r.writer.WriteTable(result); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrWriter, err)
	}
	return nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}
