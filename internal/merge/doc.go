// Package merge reconciles one validated (ValueSet, terms) pair against
// existing storage inside a single transaction.
//
// The write sequence per file: pre-flight ownership pass over every incoming
// term accession, ValueSet metadata upsert (last write wins), term upserts in
// file order, optional prune of absent accessions, commit. Any failure rolls
// the whole file back, so ingestion of a single file is all-or-nothing.
//
// Merge is additive: terms stored for the same ValueSet but absent from the
// incoming file survive unless prune mode is explicitly requested.
package merge
