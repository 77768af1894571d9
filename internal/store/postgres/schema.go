package postgres

import (
	"context"
	"fmt"

	"github.com/vvka-141/vset/internal/contract"
)

// schemaDDL is idempotent: every statement is IF NOT EXISTS, so ingest and
// serve can both run it unconditionally at startup. The original system did
// the equivalent with its ORM's create_all on connect.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS valuesets (
    accession       text PRIMARY KEY,
    purl            text NOT NULL DEFAULT '',
    definition      text NOT NULL DEFAULT '',
    full_definition text NOT NULL DEFAULT '',
    created_at      timestamptz NOT NULL DEFAULT now(),
    updated_at      timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS valueset_values (
    accession       text PRIMARY KEY,
    valueset        text NOT NULL REFERENCES valuesets(accession),
    position        bigint NOT NULL,
    purl            text NOT NULL DEFAULT '',
    label           text NOT NULL,
    value           text NOT NULL,
    definition      text NOT NULL DEFAULT '',
    full_definition text NOT NULL DEFAULT '',
    deprecated      boolean NOT NULL DEFAULT false,
    identical_terms jsonb NOT NULL DEFAULT '[]'::jsonb,
    similar_terms   jsonb NOT NULL DEFAULT '[]'::jsonb,
    deprecated_to   jsonb NOT NULL DEFAULT '[]'::jsonb,
    additional      jsonb NOT NULL DEFAULT '{}'::jsonb,
    created_at      timestamptz NOT NULL DEFAULT now(),
    updated_at      timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS valueset_values_valueset_position_idx
    ON valueset_values (valueset, position);

CREATE INDEX IF NOT EXISTS valueset_values_deprecated_idx
    ON valueset_values (valueset) WHERE deprecated;

CREATE TABLE IF NOT EXISTS ingestion_runs (
    id            uuid PRIMARY KEY,
    file_name     text NOT NULL,
    checksum      text NOT NULL DEFAULT '',
    valueset      text NOT NULL DEFAULT '',
    status        text NOT NULL,
    created_terms integer NOT NULL DEFAULT 0,
    updated_terms integer NOT NULL DEFAULT 0,
    pruned_terms  integer NOT NULL DEFAULT 0,
    error         text NOT NULL DEFAULT '',
    started_at    timestamptz NOT NULL,
    finished_at   timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS ingestion_runs_file_finished_idx
    ON ingestion_runs (file_name, finished_at DESC);
`

// EnsureSchema creates the vset tables and indexes if they do not exist,
// then applies the current read API views on top of them.
func (s *Store) EnsureSchema(ctx context.Context) error {
	// Exec without arguments uses the simple protocol, so the whole DDL
	// batch runs in one round trip.
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	if _, err := contract.Apply(ctx, s.pool, ""); err != nil {
		return err
	}
	return nil
}
