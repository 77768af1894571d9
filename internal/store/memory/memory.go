// Package memory provides an in-memory vset.Store used by unit tests and
// the merge-engine test suites. Transactions work on a deep copy of the
// state and swap it in on commit, so a rolled-back merge leaves the store
// byte-identical to its pre-transaction state.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vvka-141/vset/pkg/vset"
)

type state struct {
	// sets holds ValueSet metadata only; terms live in the global index.
	sets map[string]vset.ValueSet

	// terms is the global term index keyed by accession.
	terms map[string]vset.Term

	// order maps a ValueSet accession to its term accessions in stored
	// position order.
	order map[string][]string

	// runs is the ingestion ledger, append-only, in recording order.
	runs []vset.IngestionRun
}

func newState() state {
	return state{
		sets:  map[string]vset.ValueSet{},
		terms: map[string]vset.Term{},
		order: map[string][]string{},
	}
}

func cloneState(s state) state {
	c := state{
		sets:  make(map[string]vset.ValueSet, len(s.sets)),
		terms: make(map[string]vset.Term, len(s.terms)),
		order: make(map[string][]string, len(s.order)),
		runs:  append([]vset.IngestionRun(nil), s.runs...),
	}
	for k, v := range s.sets {
		c.sets[k] = v
	}
	for k, v := range s.terms {
		c.terms[k] = cloneTerm(v)
	}
	for k, v := range s.order {
		c.order[k] = append([]string(nil), v...)
	}
	return c
}

func cloneTerm(t vset.Term) vset.Term {
	c := t
	c.IdenticalTerms = append([]string(nil), t.IdenticalTerms...)
	c.SimilarTerms = append([]string(nil), t.SimilarTerms...)
	c.DeprecatedTo = append([]string(nil), t.DeprecatedTo...)
	if t.Additional != nil {
		c.Additional = make(map[string]any, len(t.Additional))
		for k, v := range t.Additional {
			c.Additional[k] = v
		}
	}
	return c
}

// Store is an in-memory implementation of vset.Store.
// Safe for concurrent use; reads see either fully pre- or fully
// post-transaction state.
type Store struct {
	mu    sync.RWMutex
	state state
}

var _ vset.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{state: newState()}
}

// GetTerm returns one term by accession.
func (s *Store) GetTerm(_ context.Context, accession string) (*vset.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.state.terms[accession]
	if !ok {
		return nil, fmt.Errorf("term %q: %w", accession, vset.ErrNotFound)
	}
	c := cloneTerm(t)
	return &c, nil
}

// ListValueSets returns every ValueSet summary, ordered by accession.
func (s *Store) ListValueSets(_ context.Context) ([]vset.ValueSetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]vset.ValueSetSummary, 0, len(s.state.sets))
	for acc, set := range s.state.sets {
		summaries = append(summaries, vset.ValueSetSummary{
			Accession:      set.Accession,
			PURL:           set.PURL,
			Definition:     set.Definition,
			FullDefinition: set.FullDefinition,
			ValueCount:     len(s.state.order[acc]),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Accession < summaries[j].Accession })
	return summaries, nil
}

// GetValueSet returns one ValueSet with its terms in position order.
func (s *Store) GetValueSet(_ context.Context, accession string, includeDeprecated bool) (*vset.ValueSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.state.sets[accession]
	if !ok {
		return nil, fmt.Errorf("valueset %q: %w", accession, vset.ErrNotFound)
	}

	result := set
	result.Values = []vset.Term{}
	for _, acc := range s.state.order[accession] {
		t := s.state.terms[acc]
		if t.Deprecated && !includeDeprecated {
			continue
		}
		result.Values = append(result.Values, cloneTerm(t))
	}
	return &result, nil
}

// ListDeprecations returns every deprecated term, ordered by accession.
func (s *Store) ListDeprecations(_ context.Context) ([]vset.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []vset.Term
	for _, t := range s.state.terms {
		if t.Deprecated {
			out = append(out, cloneTerm(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Accession < out[j].Accession })
	return out, nil
}

// TermExists reports whether a term accession exists.
func (s *Store) TermExists(_ context.Context, accession string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.state.terms[accession]
	return ok, nil
}

// Begin opens a transaction working on a deep copy of the current state.
func (s *Store) Begin(_ context.Context) (vset.Tx, error) {
	s.mu.RLock()
	working := cloneState(s.state)
	s.mu.RUnlock()

	return &tx{store: s, working: working}, nil
}

// LastSuccessfulRun returns the most recent succeeded ledger entry for the file.
func (s *Store) LastSuccessfulRun(_ context.Context, fileName string) (*vset.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.state.runs) - 1; i >= 0; i-- {
		run := s.state.runs[i]
		if run.FileName == fileName && run.Status == vset.StatusSucceeded.String() {
			return &run, nil
		}
	}
	return nil, fmt.Errorf("no successful run for %q: %w", fileName, vset.ErrNotFound)
}

// RecordRun appends one ledger entry.
func (s *Store) RecordRun(_ context.Context, run vset.IngestionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.runs = append(s.state.runs, run)
	return nil
}

// Runs returns a copy of the ledger, in recording order. Test helper.
func (s *Store) Runs() []vset.IngestionRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]vset.IngestionRun(nil), s.state.runs...)
}

// Health always succeeds.
func (s *Store) Health(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// tx mutates a working copy and swaps it in on commit.
type tx struct {
	store   *Store
	working state
	done    bool
}

var _ vset.Tx = (*tx)(nil)

func (t *tx) UpsertValueSet(_ context.Context, set vset.ValueSet) error {
	set.Values = nil
	t.working.sets[set.Accession] = set
	if _, ok := t.working.order[set.Accession]; !ok {
		t.working.order[set.Accession] = []string{}
	}
	return nil
}

func (t *tx) TermOwners(_ context.Context, accessions []string) (map[string]string, error) {
	owners := make(map[string]string)
	for _, acc := range accessions {
		if existing, ok := t.working.terms[acc]; ok {
			owners[acc] = existing.ValueSet
		}
	}
	return owners, nil
}

func (t *tx) UpsertTerm(_ context.Context, term vset.Term) error {
	if _, exists := t.working.terms[term.Accession]; !exists {
		t.working.order[term.ValueSet] = append(t.working.order[term.ValueSet], term.Accession)
	}
	t.working.terms[term.Accession] = cloneTerm(term)
	return nil
}

func (t *tx) PruneTerms(_ context.Context, valueset string, keep []string) (int64, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, acc := range keep {
		keepSet[acc] = struct{}{}
	}

	var pruned int64
	var remaining []string
	for _, acc := range t.working.order[valueset] {
		if _, ok := keepSet[acc]; ok {
			remaining = append(remaining, acc)
			continue
		}
		delete(t.working.terms, acc)
		pruned++
	}
	t.working.order[valueset] = remaining
	return pruned, nil
}

func (t *tx) Commit(context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true

	t.store.mu.Lock()
	t.store.state = t.working
	t.store.mu.Unlock()
	return nil
}

func (t *tx) Rollback(context.Context) error {
	// Rollback after Commit is a no-op per the vset.Tx contract.
	t.done = true
	return nil
}
