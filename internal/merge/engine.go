package merge

import (
	"context"
	"fmt"

	"github.com/vvka-141/vset/pkg/vset"
)

// Engine merges resolved ValueSet metadata and validated terms into a store.
// Stateless; safe for concurrent use with distinct transactions.
type Engine struct {
	logger vset.Logger
}

// NewEngine creates an Engine.
//
// Panics if logger is nil (programmer error, fail at construction).
func NewEngine(logger vset.Logger) *Engine {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Engine{logger: logger}
}

// Merge writes one file's ValueSet and terms inside a single transaction.
// When prune is set, stored terms of the ValueSet absent from terms are
// deleted. Returns the counts of created, updated and pruned terms.
//
// Ingesting the same input twice yields identical store state; a failure at
// any step leaves the store at its pre-file state.
func (e *Engine) Merge(ctx context.Context, store vset.Store, set vset.ValueSet, terms []vset.Term, prune bool) (vset.MergeStats, error) {
	tx, err := store.Begin(ctx)
	if err != nil {
		return vset.MergeStats{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	accessions := make([]string, len(terms))
	for i, t := range terms {
		accessions[i] = t.Accession
	}

	// Pre-flight: every incoming accession must be new or already owned by
	// this ValueSet. Runs before any write so a conflict costs nothing.
	owners, err := tx.TermOwners(ctx, accessions)
	if err != nil {
		return vset.MergeStats{}, fmt.Errorf("failed to look up term owners: %w", err)
	}
	for _, acc := range accessions {
		if owner, ok := owners[acc]; ok && owner != set.Accession {
			return vset.MergeStats{}, &vset.ConflictError{
				TermAccession: acc,
				Owner:         owner,
				Incoming:      set.Accession,
			}
		}
	}

	if err := tx.UpsertValueSet(ctx, set); err != nil {
		return vset.MergeStats{}, fmt.Errorf("failed to upsert valueset %q: %w", set.Accession, err)
	}

	var stats vset.MergeStats
	for _, term := range terms {
		if err := tx.UpsertTerm(ctx, term); err != nil {
			return vset.MergeStats{}, fmt.Errorf("failed to upsert term %q: %w", term.Accession, err)
		}
		if _, existed := owners[term.Accession]; existed {
			stats.Updated++
		} else {
			stats.Created++
		}
	}

	if prune {
		pruned, err := tx.PruneTerms(ctx, set.Accession, accessions)
		if err != nil {
			return vset.MergeStats{}, fmt.Errorf("failed to prune terms of valueset %q: %w", set.Accession, err)
		}
		stats.Pruned = int(pruned)
		if pruned > 0 {
			e.logger.Verbose("Pruned %d term(s) absent from the incoming file for valueset '%s'", pruned, set.Accession)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return vset.MergeStats{}, fmt.Errorf("failed to commit: %w", err)
	}

	e.logger.Verbose("Merged valueset '%s': %d created, %d updated, %d pruned",
		set.Accession, stats.Created, stats.Updated, stats.Pruned)
	return stats, nil
}
