// Package postgres implements vset.Store on PostgreSQL via pgx.
//
// Three tables: valuesets (metadata), valueset_values (the global term
// index, position-ordered per ValueSet) and ingestion_runs (the ledger).
// The schema is fixed and bootstrapped with idempotent DDL at connection
// time; list and map fields of a term are stored as jsonb.
//
// Writes go through vset.Tx, one transaction per ingested file. Reads run
// directly on the pool and may proceed concurrently with ingestion; they
// observe fully pre- or fully post-file state.
package postgres
