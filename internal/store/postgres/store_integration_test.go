package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/vset/internal/store/postgres"
	vsettesting "github.com/vvka-141/vset/internal/testing"
	"github.com/vvka-141/vset/pkg/vset"
)

func newTestStore(t *testing.T) (*postgres.Store, *pgxpool.Pool) {
	t.Helper()

	connString := vsettesting.RequireDatabase(t)
	dbName := fmt.Sprintf("vset_store_test_%d", time.Now().UnixNano())

	cleanup := vsettesting.CreateTestDB(t, connString, dbName)
	t.Cleanup(cleanup)

	pool := vsettesting.GetTestPool(t, connString, dbName)
	store := postgres.New(pool)

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return store, pool
}

func ingestFixture(t *testing.T, store *postgres.Store) {
	t.Helper()
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	set := vset.ValueSet{
		Accession:  "appris",
		PURL:       "http://localhost:8080/valuesets/appris",
		Definition: "APPRIS principal isoform annotation",
	}
	if err := tx.UpsertValueSet(ctx, set); err != nil {
		t.Fatalf("UpsertValueSet() error = %v", err)
	}

	terms := []vset.Term{
		{
			Accession:      "appris.principal_1",
			ValueSet:       "appris",
			PURL:           "http://localhost:8080/terms/appris.principal_1",
			Label:          "PRINCIPAL:1",
			Value:          "principal_1",
			IdenticalTerms: []string{},
			SimilarTerms:   []string{},
			DeprecatedTo:   []string{},
			Additional:     map[string]any{"rank": "1"},
		},
		{
			Accession:      "appris.candidate",
			ValueSet:       "appris",
			PURL:           "http://localhost:8080/terms/appris.candidate",
			Label:          "CANDIDATE",
			Value:          "candidate",
			Deprecated:     true,
			IdenticalTerms: []string{},
			SimilarTerms:   []string{},
			DeprecatedTo:   []string{"appris.principal_1"},
			Additional:     map[string]any{},
		},
	}
	for _, term := range terms {
		if err := tx.UpsertTerm(ctx, term); err != nil {
			t.Fatalf("UpsertTerm(%s) error = %v", term.Accession, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ingestFixture(t, store)

	t.Run("Health", func(t *testing.T) {
		if err := store.Health(ctx); err != nil {
			t.Errorf("Health() error = %v", err)
		}
	})

	t.Run("GetTerm", func(t *testing.T) {
		term, err := store.GetTerm(ctx, "appris.candidate")
		if err != nil {
			t.Fatalf("GetTerm() error = %v", err)
		}
		if !term.Deprecated {
			t.Error("term should be deprecated")
		}
		if len(term.DeprecatedTo) != 1 || term.DeprecatedTo[0] != "appris.principal_1" {
			t.Errorf("DeprecatedTo = %v, want [appris.principal_1]", term.DeprecatedTo)
		}
	})

	t.Run("GetTerm not found", func(t *testing.T) {
		_, err := store.GetTerm(ctx, "appris.missing")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("GetValueSet excludes deprecated by default", func(t *testing.T) {
		set, err := store.GetValueSet(ctx, "appris", false)
		if err != nil {
			t.Fatalf("GetValueSet() error = %v", err)
		}
		if len(set.Values) != 1 {
			t.Fatalf("got %d terms, want 1", len(set.Values))
		}
		if set.Values[0].Accession != "appris.principal_1" {
			t.Errorf("term = %s, want appris.principal_1", set.Values[0].Accession)
		}
	})

	t.Run("GetValueSet includes deprecated on request", func(t *testing.T) {
		set, err := store.GetValueSet(ctx, "appris", true)
		if err != nil {
			t.Fatalf("GetValueSet() error = %v", err)
		}
		if len(set.Values) != 2 {
			t.Errorf("got %d terms, want 2", len(set.Values))
		}
	})

	t.Run("ListValueSets counts terms", func(t *testing.T) {
		summaries, err := store.ListValueSets(ctx)
		if err != nil {
			t.Fatalf("ListValueSets() error = %v", err)
		}
		if len(summaries) != 1 {
			t.Fatalf("got %d summaries, want 1", len(summaries))
		}
		if summaries[0].Accession != "appris" || summaries[0].ValueCount != 2 {
			t.Errorf("summary = %+v, want appris with 2 values", summaries[0])
		}
	})

	t.Run("ListDeprecations", func(t *testing.T) {
		terms, err := store.ListDeprecations(ctx)
		if err != nil {
			t.Fatalf("ListDeprecations() error = %v", err)
		}
		if len(terms) != 1 || terms[0].Accession != "appris.candidate" {
			t.Errorf("deprecations = %v, want only appris.candidate", terms)
		}
	})

	t.Run("TermExists", func(t *testing.T) {
		exists, err := store.TermExists(ctx, "appris.principal_1")
		if err != nil {
			t.Fatalf("TermExists() error = %v", err)
		}
		if !exists {
			t.Error("appris.principal_1 should exist")
		}
		exists, err = store.TermExists(ctx, "nope")
		if err != nil {
			t.Fatalf("TermExists() error = %v", err)
		}
		if exists {
			t.Error("nope should not exist")
		}
	})
}

func TestStore_TermOwners(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ingestFixture(t, store)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	owners, err := tx.TermOwners(ctx, []string{"appris.principal_1", "appris.missing"})
	if err != nil {
		t.Fatalf("TermOwners() error = %v", err)
	}
	if len(owners) != 1 {
		t.Fatalf("got %d owners, want 1", len(owners))
	}
	if owners["appris.principal_1"] != "appris" {
		t.Errorf("owner = %q, want appris", owners["appris.principal_1"])
	}
}

func TestStore_PruneTerms(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ingestFixture(t, store)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	pruned, err := tx.PruneTerms(ctx, "appris", []string{"appris.principal_1"})
	if err != nil {
		t.Fatalf("PruneTerms() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	set, err := store.GetValueSet(ctx, "appris", true)
	if err != nil {
		t.Fatalf("GetValueSet() error = %v", err)
	}
	if len(set.Values) != 1 {
		t.Errorf("got %d terms after prune, want 1", len(set.Values))
	}
}

func TestStore_RollbackDiscardsMerge(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := tx.UpsertValueSet(ctx, vset.ValueSet{Accession: "ghost"}); err != nil {
		t.Fatalf("UpsertValueSet() error = %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	_, err = store.GetValueSet(ctx, "ghost", true)
	if err == nil {
		t.Error("rolled-back valueset should not exist")
	}
}

func TestStore_IngestionLedger(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Millisecond)
	runs := []vset.IngestionRun{
		{
			ID:         uuid.New(),
			FileName:   "appris.csv",
			Checksum:   "aaa",
			ValueSet:   "appris",
			Status:     vset.StatusFailed.String(),
			Error:      "row 3: missing label",
			StartedAt:  started,
			FinishedAt: started.Add(time.Second),
		},
		{
			ID:           uuid.New(),
			FileName:     "appris.csv",
			Checksum:     "bbb",
			ValueSet:     "appris",
			Status:       vset.StatusSucceeded.String(),
			CreatedTerms: 5,
			StartedAt:    started.Add(2 * time.Second),
			FinishedAt:   started.Add(3 * time.Second),
		},
	}
	for _, run := range runs {
		if err := store.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	last, err := store.LastSuccessfulRun(ctx, "appris.csv")
	if err != nil {
		t.Fatalf("LastSuccessfulRun() error = %v", err)
	}
	if last.Checksum != "bbb" {
		t.Errorf("Checksum = %q, want the succeeded run's checksum", last.Checksum)
	}
	if last.CreatedTerms != 5 {
		t.Errorf("CreatedTerms = %d, want 5", last.CreatedTerms)
	}

	_, err = store.LastSuccessfulRun(ctx, "other.csv")
	if err == nil {
		t.Error("expected not-found error for file without runs")
	}
}

func TestStore_ReadAPIViews(t *testing.T) {
	store, pool := newTestStore(t)
	ctx := context.Background()
	ingestFixture(t, store)

	var count int
	if err := pool.QueryRow(ctx,
		`SELECT value_count FROM vset_valuesets_v1 WHERE accession = 'appris'`).Scan(&count); err != nil {
		t.Fatalf("query vset_valuesets_v1: %v", err)
	}
	if count != 2 {
		t.Errorf("value_count = %d, want 2", count)
	}

	var active int
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM vset_active_terms_v1 WHERE valueset = 'appris'`).Scan(&active); err != nil {
		t.Fatalf("query vset_active_terms_v1: %v", err)
	}
	if active != 1 {
		t.Errorf("active terms = %d, want 1", active)
	}

	var dangling int
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM vset_dangling_deprecations_v1`).Scan(&dangling); err != nil {
		t.Fatalf("query vset_dangling_deprecations_v1: %v", err)
	}
	if dangling != 0 {
		t.Errorf("dangling = %d, want 0: deprecation target exists", dangling)
	}
}
