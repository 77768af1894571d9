// Package services wires the ingestion pipeline together.
//
// IngestionService is the batch orchestrator: it resolves ValueSet metadata,
// validates CSV rows, derives permanent URLs and drives the merge engine,
// one transaction per file. A failing file is recorded and reported but
// never stops the rest of a directory batch. Every attempt, including skips
// and failures, leaves an entry in the ingestion ledger.
//
// CheckService is the deferred referential pass over deprecation chains:
// deprecated_to targets are opaque strings at ingestion time and only this
// check reports the dangling ones.
package services
