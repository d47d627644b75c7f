// Package writer renders a table's analysis results to the filesystem and
// accumulates the run-wide manifest and summary that tie every table's
// output back to one audit run.
package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dbaudit/sqlserver3nf/pkg/models"
	"github.com/dbaudit/sqlserver3nf/pkg/normalize"
)

// KeyCandidateRecord pairs a measured key candidate with the strength
// verdict computed against the run's configured thresholds.
type KeyCandidateRecord struct {
	models.KeyCandidate
	IsStrong bool `json:"is_strong"`
}

// FDRecord pairs a measured functional dependency with its strength
// verdict. fds.json holds only the post-minimization accepted set, so in
// practice IsStrong is always true here, but the field is carried through
// for parity with key_candidates.json and so a reader need not assume it.
type FDRecord struct {
	models.FunctionalDependency
	IsStrong bool `json:"is_strong"`
}

// TableResult is everything one table's pipeline run produced, ready to be
// rendered to its output folder.
type TableResult struct {
	Source string
	Schema string
	Table  string

	RowCount  int64
	Cancelled bool

	Profile       models.TableProfile
	KeyCandidates []KeyCandidateRecord
	FDs           []FDRecord
	WorkingKey    []string
	Issues2NF     []normalize.Issue
	Issues3NF     []normalize.Issue
	Proposals     []models.Proposal
}

// TableFailure records a table that could not be analyzed at all (a
// metadata error, per spec.md §7): the table is skipped, but its failure is
// still surfaced in the manifest.
type TableFailure struct {
	Source string
	Schema string
	Table  string
	Err    error
}

type manifestEntry struct {
	Source    string `json:"source"`
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	RowCount  int64  `json:"row_count,omitempty"`
	Error     string `json:"error,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// Writer owns one run's output directory: per-table artifacts plus the
// run-root manifest and summary. Its manifest/summary-appending methods are
// safe for concurrent use by multiple table workers; see spec.md §5's
// locking requirement for parallel table processing.
type Writer struct {
	runRoot string

	mu       sync.Mutex
	manifest []manifestEntry
	summary  [][]string
}

// New creates the run-root directory under basePath, named
// "run_YYYYMMDD_HHMMSS" using runStamp (the caller supplies the timestamp
// so the Writer itself holds no wall-clock dependency).
func New(basePath, runStamp string) (*Writer, error) {
	runRoot := filepath.Join(basePath, "run_"+runStamp)
	if err := os.MkdirAll(runRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create run root %s: %w", runRoot, err)
	}
	return &Writer{runRoot: runRoot}, nil
}

// RunRoot returns the run's output directory.
func (w *Writer) RunRoot() string {
	return w.runRoot
}

// tableFolder returns "source_{source}/{schema}.{table}" under the run root.
func (w *Writer) tableFolder(source, schema, table string) string {
	return filepath.Join(w.runRoot, "source_"+source, schema+"."+table)
}

// WriteTable renders one table's full set of artifacts and records its
// manifest/summary entries. A failure here is a writer error (spec.md §7),
// fatal for the run.
func (w *Writer) WriteTable(r TableResult) error {
	folder := w.tableFolder(r.Source, r.Schema, r.Table)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("create table folder %s: %w", folder, err)
	}

	if err := writeJSON(filepath.Join(folder, "profile.json"), r.Profile); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(folder, "key_candidates.json"), nonNilRecords(r.KeyCandidates)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(folder, "fds.json"), nonNilRecords(r.FDs)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(folder, "proposals.json"), nonNilProposals(r.Proposals)); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(folder, "report.md"), []byte(renderReport(r)), 0o644); err != nil {
		return fmt.Errorf("write report.md: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.manifest = append(w.manifest, manifestEntry{
		Source:    r.Source,
		Schema:    r.Schema,
		Table:     r.Table,
		RowCount:  r.RowCount,
		Cancelled: r.Cancelled,
	})
	w.summary = append(w.summary, []string{
		r.Source, r.Schema, r.Table,
		fmt.Sprintf("%d", r.RowCount),
		strings.Join(r.WorkingKey, "+"),
		fmt.Sprintf("%d", len(r.FDs)),
	})
	return nil
}

// RecordFailure appends a manifest entry for a table that could not be
// analyzed; no summary row is written since there is no working key or
// accepted-FD count to report.
func (w *Writer) RecordFailure(f TableFailure) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.manifest = append(w.manifest, manifestEntry{
		Source: f.Source,
		Schema: f.Schema,
		Table:  f.Table,
		Error:  f.Err.Error(),
	})
}

// Finalize writes manifest.json and summary.csv at the run root from the
// entries accumulated so far. Call once after every table has been
// processed.
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := writeJSON(filepath.Join(w.runRoot, "manifest.json"), w.manifest); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(w.runRoot, "summary.csv"))
	if err != nil {
		return fmt.Errorf("create summary.csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"source", "schema", "table", "row_count", "working_key", "accepted_fds"}); err != nil {
		return fmt.Errorf("write summary.csv header: %w", err)
	}
	for _, row := range w.summary {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write summary.csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// nonNilRecords/nonNilProposals ensure an empty result serializes as `[]`
// rather than `null`, matching the original's json.dumps([...]) behavior for
// a writer contract readers can rely on.
func nonNilRecords[T any](records []T) []T {
	if records == nil {
		return []T{}
	}
	return records
}

func nonNilProposals(proposals []models.Proposal) []models.Proposal {
	if proposals == nil {
		return []models.Proposal{}
	}
	return proposals
}

func renderReport(r TableResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 3NF Audit Report: %s.%s\n\n", r.Schema, r.Table)
	b.WriteString("## Table Profile\n")
	fmt.Fprintf(&b, "- Row count: %d\n", r.Profile.RowCount)
	fmt.Fprintf(&b, "- Determinant pool: %s\n\n", strings.Join(r.Profile.DeterminantPool, ", "))

	b.WriteString("## Key Candidates\n")
	top := r.KeyCandidates
	if len(top) > 5 {
		top = top[:5]
	}
	for _, kc := range top {
		fmt.Fprintf(&b, "- %v: dup_pct=%.4f%%, null_pct=%.4f%%, tested_rows=%d\n",
			kc.Columns, kc.DuplicateRowPct*100, kc.NullRowPct*100, kc.TestedRows)
	}
	b.WriteString("\n")

	b.WriteString("## Accepted Functional Dependencies\n")
	for _, fd := range r.FDs {
		fmt.Fprintf(&b, "- %v -> %s | coverage=%.2f%% | viol_groups=%.2f%% | viol_rows=%.2f%%\n",
			fd.Determinant, fd.Dependent, fd.CoveragePct, fd.ViolatingGroupPct, fd.ViolatingRowPct)
	}
	b.WriteString("\n")

	b.WriteString("## Normalization Findings\n")
	fmt.Fprintf(&b, "- Working key: %v\n", r.WorkingKey)
	fmt.Fprintf(&b, "- 2NF issues: %d\n", len(r.Issues2NF))
	fmt.Fprintf(&b, "- 3NF issues: %d\n\n", len(r.Issues3NF))

	b.WriteString("## Decomposition Proposals\n")
	if len(r.Proposals) == 0 {
		b.WriteString("- No proposals. Table appears 3NF-compliant under tested constraints.\n")
	} else {
		for _, p := range r.Proposals {
			fmt.Fprintf(&b, "- New table T_%s with PK %v; move %s (confidence %.2f)\n",
				strings.Join(p.Determinant, "_"), p.Determinant, strings.Join(p.Dependents, ", "), p.Confidence)
			for _, note := range p.Notes {
				fmt.Fprintf(&b, "  - Note: %s\n", note)
			}
		}
	}

	return b.String()
}
