// Package server implements the read-only HTTP lookup service.
//
// The service exposes the stored ValueSets over four endpoints: a health
// probe, a global term lookup by accession, a ValueSet listing, and a
// single-ValueSet read with optional inclusion of deprecated terms. All
// responses are JSON. The service never writes to the store.
package server
