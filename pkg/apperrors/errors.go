// Package apperrors defines the sentinel error kinds the runner uses to
// decide what aborts a run versus what is captured in the manifest and left
// for the next table.
package apperrors

import "errors"

var (
	// ErrConfiguration signals a fatal problem discovered before any work
	// starts: an unparseable regex, a source with no host, and so on.
	ErrConfiguration = errors.New("configuration error")

	// ErrConnection signals a source's connection could not be established
	// or was lost. Fatal for that source; other sources proceed.
	ErrConnection = errors.New("connection error")

	// ErrMetadata signals list_tables/list_columns/get_rowcount failed.
	// Fatal for the table; recorded in the manifest.
	ErrMetadata = errors.New("metadata error")

	// ErrMeasurement signals a single key-combination or FD query failed
	// (e.g. a DISTINCT aggregate rejecting an incompatible type). Logged,
	// that measurement is skipped, the pipeline continues.
	ErrMeasurement = errors.New("measurement error")

	// ErrSampleCollection signals an evidence query for an FD's sample
	// violations failed. The FD is still emitted with empty SampleViolations.
	ErrSampleCollection = errors.New("sample collection error")

	// ErrWriter signals the artifact writer failed. Fatal for the run.
	ErrWriter = errors.New("writer error")
)
