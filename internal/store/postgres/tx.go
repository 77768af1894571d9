package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/vset/pkg/vset"
)

// tx implements vset.Tx on a pgx transaction.
type tx struct {
	tx pgx.Tx
}

var _ vset.Tx = (*tx)(nil)

func (t *tx) UpsertValueSet(ctx context.Context, set vset.ValueSet) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO valuesets (accession, purl, definition, full_definition)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (accession) DO UPDATE SET
			purl            = EXCLUDED.purl,
			definition      = EXCLUDED.definition,
			full_definition = EXCLUDED.full_definition,
			updated_at      = now()`,
		set.Accession, set.PURL, set.Definition, set.FullDefinition)
	if err != nil {
		return fmt.Errorf("failed to upsert valueset %q: %w", set.Accession, err)
	}
	return nil
}

func (t *tx) TermOwners(ctx context.Context, accessions []string) (map[string]string, error) {
	owners := make(map[string]string)
	if len(accessions) == 0 {
		return owners, nil
	}

	rows, err := t.tx.Query(ctx,
		`SELECT accession, valueset FROM valueset_values WHERE accession = ANY($1)`, accessions)
	if err != nil {
		return nil, fmt.Errorf("failed to query term owners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accession, valueset string
		if err := rows.Scan(&accession, &valueset); err != nil {
			return nil, fmt.Errorf("failed to scan term owner: %w", err)
		}
		owners[accession] = valueset
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query term owners: %w", err)
	}
	return owners, nil
}

func (t *tx) UpsertTerm(ctx context.Context, term vset.Term) error {
	// New terms append at max(position)+1; ON CONFLICT leaves position
	// untouched so updated terms keep their place in the display order.
	_, err := t.tx.Exec(ctx, `
		INSERT INTO valueset_values (
			accession, valueset, position, purl, label, value,
			definition, full_definition, deprecated,
			identical_terms, similar_terms, deprecated_to, additional
		) VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM valueset_values WHERE valueset = $2),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		ON CONFLICT (accession) DO UPDATE SET
			valueset        = EXCLUDED.valueset,
			purl            = EXCLUDED.purl,
			label           = EXCLUDED.label,
			value           = EXCLUDED.value,
			definition      = EXCLUDED.definition,
			full_definition = EXCLUDED.full_definition,
			deprecated      = EXCLUDED.deprecated,
			identical_terms = EXCLUDED.identical_terms,
			similar_terms   = EXCLUDED.similar_terms,
			deprecated_to   = EXCLUDED.deprecated_to,
			additional      = EXCLUDED.additional,
			updated_at      = now()`,
		term.Accession, term.ValueSet, term.PURL, term.Label, term.Value,
		term.Definition, term.FullDefinition, term.Deprecated,
		term.IdenticalTerms, term.SimilarTerms, term.DeprecatedTo, term.Additional)
	if err != nil {
		return fmt.Errorf("failed to upsert term %q: %w", term.Accession, err)
	}
	return nil
}

func (t *tx) PruneTerms(ctx context.Context, valueset string, keep []string) (int64, error) {
	if keep == nil {
		keep = []string{}
	}
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM valueset_values WHERE valueset = $1 AND NOT (accession = ANY($2))`,
		valueset, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune terms of valueset %q: %w", valueset, err)
	}
	return tag.RowsAffected(), nil
}

func (t *tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}
