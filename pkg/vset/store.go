package vset

import "context"

// Store is the single storage-access interface shared by ingestion and the
// Query Layer. Implementations must support concurrent readers; writes go
// through explicit transactions obtained from Begin.
type Store interface {
	// GetTerm returns one term by its globally unique accession.
	// Returns an error wrapping ErrNotFound when the accession is unknown.
	GetTerm(ctx context.Context, accession string) (*Term, error)

	// ListValueSets returns the metadata of every ValueSet, terms
	// excluded, ordered by accession.
	ListValueSets(ctx context.Context) ([]ValueSetSummary, error)

	// GetValueSet returns one ValueSet with its terms in stored position
	// order. Terms with deprecated=true are filtered out unless
	// includeDeprecated is set.
	// Returns an error wrapping ErrNotFound when the accession is unknown.
	GetValueSet(ctx context.Context, accession string, includeDeprecated bool) (*ValueSet, error)

	// ListDeprecations returns, for every deprecated term, its accession,
	// owning ValueSet and deprecated_to targets. Used by the consistency
	// check.
	ListDeprecations(ctx context.Context) ([]Term, error)

	// TermExists reports whether a term accession exists.
	TermExists(ctx context.Context, accession string) (bool, error)

	// Begin opens a write transaction for one file's merge.
	Begin(ctx context.Context) (Tx, error)

	// LastSuccessfulRun returns the most recent succeeded ledger entry
	// for the given file name, or an error wrapping ErrNotFound.
	LastSuccessfulRun(ctx context.Context, fileName string) (*IngestionRun, error)

	// RecordRun appends one ledger entry. Called outside merge
	// transactions so failed attempts remain recorded.
	RecordRun(ctx context.Context, run IngestionRun) error

	// Health verifies the store is reachable.
	Health(ctx context.Context) error

	// Close releases the store's resources.
	Close()
}

// Tx is one file's merge transaction. Either Commit or Rollback must be
// called; Rollback after Commit is a no-op.
//
// Thread-Safety: NOT safe for concurrent use. One transaction per file,
// driven by a single goroutine.
type Tx interface {
	// UpsertValueSet creates the ValueSet or overwrites its metadata
	// (pURL, definition, full_definition) if it exists. Last write wins;
	// the accession itself is immutable.
	UpsertValueSet(ctx context.Context, set ValueSet) error

	// TermOwners returns the owning ValueSet accession for each of the
	// given term accessions that already exist. Missing accessions are
	// absent from the map. Used for the pre-flight conflict pass.
	TermOwners(ctx context.Context, accessions []string) (map[string]string, error)

	// UpsertTerm inserts the term at the end of its ValueSet's order, or
	// overwrites every field of an existing term while keeping its
	// position.
	UpsertTerm(ctx context.Context, term Term) error

	// PruneTerms deletes stored terms of the ValueSet whose accessions
	// are not in keep, returning the number deleted.
	PruneTerms(ctx context.Context, valueset string, keep []string) (int64, error)

	// Commit makes the file's writes durable.
	Commit(ctx context.Context) error

	// Rollback discards the file's writes.
	Rollback(ctx context.Context) error
}
