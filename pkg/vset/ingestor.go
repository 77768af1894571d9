package vset

import "context"

// Ingestor is the main interface for executing ingestion runs.
// Implementations handle the full pipeline: metadata resolution, row
// validation, identifier generation and the per-file merge transaction.
type Ingestor interface {
	// Ingest executes an ingestion run using the provided configuration.
	// The returned report has one entry per attempted file; its Err()
	// carries the error the process should exit with. A non-nil error is
	// returned only when the run could not start at all (invalid config,
	// approval denied, unreadable directory).
	Ingest(ctx context.Context, config IngestConfig) (*BatchReport, error)
}

// Checker is the interface for the optional post-ingestion consistency
// pass over deprecation chains. Referential validity of deprecated_to is
// deliberately not enforced at ingestion time; this is the separate check.
type Checker interface {
	// Check scans every deprecated term and reports deprecated_to
	// entries whose target accession does not exist.
	Check(ctx context.Context, config CheckConfig) (*CheckReport, error)
}
