package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/vset/pkg/vset"
)

const termColumns = `accession, valueset, purl, label, value, definition, full_definition,
	deprecated, identical_terms, similar_terms, deprecated_to, additional`

// Store implements vset.Store on a pgx connection pool.
// Safe for concurrent readers; writes go through Begin.
type Store struct {
	pool *pgxpool.Pool
}

var _ vset.Store = (*Store)(nil)

// New wraps a connection pool. The caller keeps ownership of pool
// configuration; Close closes the pool.
//
// Panics if pool is nil (programmer error, fail at construction).
func New(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("pool cannot be nil")
	}
	return &Store{pool: pool}
}

// GetTerm returns one term by its globally unique accession.
func (s *Store) GetTerm(ctx context.Context, accession string) (*vset.Term, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+termColumns+` FROM valueset_values WHERE accession = $1`, accession)

	term, err := scanTerm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("term %q: %w", accession, vset.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch term %q: %w", accession, err)
	}
	return &term, nil
}

// ListValueSets returns every ValueSet summary, ordered by accession.
func (s *Store) ListValueSets(ctx context.Context) ([]vset.ValueSetSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.accession, v.purl, v.definition, v.full_definition, count(t.accession)
		FROM valuesets v
		LEFT JOIN valueset_values t ON t.valueset = v.accession
		GROUP BY v.accession, v.purl, v.definition, v.full_definition
		ORDER BY v.accession`)
	if err != nil {
		return nil, fmt.Errorf("failed to list valuesets: %w", err)
	}
	defer rows.Close()

	var summaries []vset.ValueSetSummary
	for rows.Next() {
		var sum vset.ValueSetSummary
		if err := rows.Scan(&sum.Accession, &sum.PURL, &sum.Definition, &sum.FullDefinition, &sum.ValueCount); err != nil {
			return nil, fmt.Errorf("failed to scan valueset summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list valuesets: %w", err)
	}
	return summaries, nil
}

// GetValueSet returns one ValueSet with its terms in stored position order.
func (s *Store) GetValueSet(ctx context.Context, accession string, includeDeprecated bool) (*vset.ValueSet, error) {
	var set vset.ValueSet
	err := s.pool.QueryRow(ctx,
		`SELECT accession, purl, definition, full_definition FROM valuesets WHERE accession = $1`,
		accession).Scan(&set.Accession, &set.PURL, &set.Definition, &set.FullDefinition)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("valueset %q: %w", accession, vset.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch valueset %q: %w", accession, err)
	}

	query := `SELECT ` + termColumns + ` FROM valueset_values WHERE valueset = $1`
	if !includeDeprecated {
		query += ` AND NOT deprecated`
	}
	query += ` ORDER BY position`

	rows, err := s.pool.Query(ctx, query, accession)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch terms of valueset %q: %w", accession, err)
	}
	defer rows.Close()

	set.Values = []vset.Term{}
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan term of valueset %q: %w", accession, err)
		}
		set.Values = append(set.Values, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch terms of valueset %q: %w", accession, err)
	}
	return &set, nil
}

// ListDeprecations returns every deprecated term, ordered by accession.
func (s *Store) ListDeprecations(ctx context.Context) ([]vset.Term, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+termColumns+` FROM valueset_values WHERE deprecated ORDER BY accession`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deprecated terms: %w", err)
	}
	defer rows.Close()

	var terms []vset.Term
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deprecated term: %w", err)
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list deprecated terms: %w", err)
	}
	return terms, nil
}

// TermExists reports whether a term accession exists.
func (s *Store) TermExists(ctx context.Context, accession string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM valueset_values WHERE accession = $1)`, accession).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check term %q: %w", accession, err)
	}
	return exists, nil
}

// Begin opens one file's merge transaction.
func (s *Store) Begin(ctx context.Context) (vset.Tx, error) {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &tx{tx: pgtx}, nil
}

// LastSuccessfulRun returns the most recent succeeded ledger entry for the file.
func (s *Store) LastSuccessfulRun(ctx context.Context, fileName string) (*vset.IngestionRun, error) {
	var run vset.IngestionRun
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT id, file_name, checksum, valueset, status,
		       created_terms, updated_terms, pruned_terms, error, started_at, finished_at
		FROM ingestion_runs
		WHERE file_name = $1 AND status = $2
		ORDER BY finished_at DESC
		LIMIT 1`,
		fileName, vset.StatusSucceeded.String(),
	).Scan(&id, &run.FileName, &run.Checksum, &run.ValueSet, &run.Status,
		&run.CreatedTerms, &run.UpdatedTerms, &run.PrunedTerms, &run.Error,
		&run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no successful run for %q: %w", fileName, vset.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch last run for %q: %w", fileName, err)
	}

	run.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	return &run, nil
}

// RecordRun appends one ledger entry.
func (s *Store) RecordRun(ctx context.Context, run vset.IngestionRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingestion_runs (
			id, file_name, checksum, valueset, status,
			created_terms, updated_terms, pruned_terms, error, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID.String(), run.FileName, run.Checksum, run.ValueSet, run.Status,
		run.CreatedTerms, run.UpdatedTerms, run.PrunedTerms, run.Error,
		run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record ingestion run: %w", err)
	}
	return nil
}

// Health verifies the store is reachable.
func (s *Store) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// scanTerm scans one valueset_values row. jsonb columns decode through
// pgx's JSON codec directly into the term's slices and map.
func scanTerm(row pgx.Row) (vset.Term, error) {
	var t vset.Term
	err := row.Scan(&t.Accession, &t.ValueSet, &t.PURL, &t.Label, &t.Value,
		&t.Definition, &t.FullDefinition, &t.Deprecated,
		&t.IdenticalTerms, &t.SimilarTerms, &t.DeprecatedTo, &t.Additional)
	if err != nil {
		return vset.Term{}, err
	}
	if t.IdenticalTerms == nil {
		t.IdenticalTerms = []string{}
	}
	if t.SimilarTerms == nil {
		t.SimilarTerms = []string{}
	}
	if t.DeprecatedTo == nil {
		t.DeprecatedTo = []string{}
	}
	if t.Additional == nil {
		t.Additional = map[string]any{}
	}
	return t, nil
}
