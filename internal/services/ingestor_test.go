package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/vset/internal/logging"
	"github.com/vvka-141/vset/internal/store/memory"
	"github.com/vvka-141/vset/pkg/vset"
)

const testConnStr = "postgresql://vset@localhost:5432/vset"

type stubApprover struct {
	approve  bool
	requests []string
}

func (a *stubApprover) RequestApproval(_ context.Context, scope string) (bool, error) {
	a.requests = append(a.requests, scope)
	return a.approve, nil
}

func stubConnectorFactory(*vset.ConnectionConfig) (vset.Connector, error) {
	return nil, errors.New("unit tests must not open real connections")
}

// newTestService wires an IngestionService onto an in-memory store.
func newTestService(store *memory.Store, approver vset.Approver) *IngestionService {
	svc := NewIngestionService(stubConnectorFactory, approver, logging.NewNullLogger())
	svc.openStore = func(context.Context, string, func(*vset.ConnectionConfig)) (vset.Store, func(), error) {
		return store, func() {}, nil
	}
	return svc
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const apprisCSV = `accession,label,value,definition,full_definition,identical_terms,deprecated
appris.principal1,PRINCIPAL:1,principal1,Principal isoform,Long principal text,"[""http://example.org/p1""]",
appris.principal2,PRINCIPAL:2,principal2,Second principal,Long second text,,false
appris.alternative1,ALTERNATIVE:1,alternative1,Alternative isoform,Long alternative text,,true
`

func ingestConfig(path string) vset.IngestConfig {
	return vset.IngestConfig{
		SourcePath:       path,
		BaseURL:          "https://api.example.com",
		ConnectionString: testConnStr,
	}
}

func TestIngest_SingleFile(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	path := writeCSV(t, t.TempDir(), "appris.csv", apprisCSV)

	report, err := svc.Ingest(context.Background(), ingestConfig(path))
	require.NoError(t, err)
	require.NoError(t, report.Err())

	require.Len(t, report.Files, 1)
	fr := report.Files[0]
	assert.Equal(t, vset.StatusSucceeded, fr.Status)
	assert.Equal(t, "appris", fr.ValueSet)
	assert.Equal(t, vset.MergeStats{Created: 3}, fr.Stats)

	term, err := store.GetTerm(context.Background(), "appris.principal1")
	require.NoError(t, err)
	assert.Equal(t, "PRINCIPAL:1", term.Label)
	assert.Equal(t, "https://api.example.com/terms/appris.principal1", term.PURL)
	assert.Equal(t, []string{"http://example.org/p1"}, term.IdenticalTerms)

	// Deprecated terms are stored but filtered from default reads.
	set, err := store.GetValueSet(context.Background(), "appris", false)
	require.NoError(t, err)
	assert.Len(t, set.Values, 2)
	set, err = store.GetValueSet(context.Background(), "appris", true)
	require.NoError(t, err)
	assert.Len(t, set.Values, 3)
}

func TestIngest_MalformedJSONFailsFileAndWritesNothing(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})

	// Row 5 carries a malformed additional cell; header is row 1.
	csv := `accession,label,value,definition,full_definition,additional
tsl.1,TSL 1,1,def,full def,
tsl.2,TSL 2,2,def,full def,"{""ok"":true}"
tsl.3,TSL 3,3,def,full def,
tsl.4,TSL 4,4,def,full def,"{not json"
`
	path := writeCSV(t, t.TempDir(), "tsl.csv", csv)

	report, err := svc.Ingest(context.Background(), ingestConfig(path))
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	fr := report.Files[0]
	assert.Equal(t, vset.StatusFailed, fr.Status)

	var schemaErr *vset.SchemaError
	require.True(t, errors.As(fr.Err, &schemaErr))
	assert.Equal(t, 5, schemaErr.Row)
	assert.Equal(t, "additional", schemaErr.Column)
	assert.ErrorIs(t, report.Err(), vset.ErrSchema)

	// All-or-nothing: valid rows of the failed file were not written.
	exists, err := store.TermExists(context.Background(), "tsl.1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIngest_DirectoryIsolatesFailures(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	dir := t.TempDir()

	writeCSV(t, dir, "appris.csv", apprisCSV)
	writeCSV(t, dir, "broken.csv", "accession,label\nx,y\n")
	writeCSV(t, dir, "tsl.csv", `accession,label,value,definition,full_definition
tsl.1,TSL 1,1,def,full def
`)

	cfg := vset.IngestConfig{
		DirectoryPath:    dir,
		BaseURL:          "https://api.example.com",
		ConnectionString: testConnStr,
	}
	report, err := svc.Ingest(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, report.Files, 3)
	assert.Equal(t, vset.StatusSucceeded, report.Files[0].Status) // appris.csv
	assert.Equal(t, vset.StatusFailed, report.Files[1].Status)    // broken.csv
	assert.Equal(t, vset.StatusSucceeded, report.Files[2].Status) // tsl.csv
	assert.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Err(), vset.ErrBatchFailed)

	exists, err := store.TermExists(context.Background(), "tsl.1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIngest_SkipUnchanged(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	path := writeCSV(t, t.TempDir(), "appris.csv", apprisCSV)

	cfg := ingestConfig(path)
	cfg.SkipUnchanged = true

	report, err := svc.Ingest(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, vset.StatusSucceeded, report.Files[0].Status)

	report, err = svc.Ingest(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, vset.StatusSkipped, report.Files[0].Status)
	require.NoError(t, report.Err())

	// A content change defeats the skip.
	writeCSV(t, filepath.Dir(path), "appris.csv", apprisCSV+"appris.minor1,MINOR,minor1,Minor isoform,Long minor text,,\n")
	report, err = svc.Ingest(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, vset.StatusSucceeded, report.Files[0].Status)
	assert.Equal(t, 1, report.Files[0].Stats.Created)
}

func TestIngest_LedgerRecordsEveryAttempt(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	dir := t.TempDir()
	path := writeCSV(t, dir, "appris.csv", apprisCSV)
	broken := writeCSV(t, dir, "broken.csv", "accession,label\nx,y\n")

	cfg := ingestConfig(path)
	cfg.SkipUnchanged = true
	_, err := svc.Ingest(context.Background(), cfg)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), cfg)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), ingestConfig(broken))
	require.NoError(t, err)

	runs := store.Runs()
	require.Len(t, runs, 3)
	assert.Equal(t, "succeeded", runs[0].Status)
	assert.Equal(t, 3, runs[0].CreatedTerms)
	assert.Equal(t, "skipped", runs[1].Status)
	assert.Equal(t, "failed", runs[2].Status)
	assert.NotEmpty(t, runs[2].Error)
	for _, run := range runs {
		assert.NotEmpty(t, run.Checksum)
		assert.False(t, run.FinishedAt.Before(run.StartedAt))
	}
}

func TestIngest_MetadataPrecedence(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	dir := t.TempDir()
	path := writeCSV(t, dir, "appris.csv", apprisCSV)

	metaPath := filepath.Join(dir, "valuesets.yaml")
	require.NoError(t, os.WriteFile(metaPath, []byte("appris:\n  definition: Y\n  full_definition: from yaml\n"), 0644))

	cfg := ingestConfig(path)
	cfg.MetadataFile = metaPath
	cfg.Overrides = vset.MetadataOverrides{Definition: "X"}

	_, err := svc.Ingest(context.Background(), cfg)
	require.NoError(t, err)

	set, err := store.GetValueSet(context.Background(), "appris", true)
	require.NoError(t, err)
	assert.Equal(t, "X", set.Definition)           // override beats YAML
	assert.Equal(t, "from yaml", set.FullDefinition) // YAML fills what overrides left
}

func TestIngest_PruneRequiresApproval(t *testing.T) {
	store := memory.New()
	approver := &stubApprover{approve: false}
	svc := newTestService(store, approver)
	path := writeCSV(t, t.TempDir(), "appris.csv", apprisCSV)

	cfg := ingestConfig(path)
	cfg.Prune = true

	_, err := svc.Ingest(context.Background(), cfg)
	assert.ErrorIs(t, err, vset.ErrApprovalDenied)
	assert.Equal(t, []string{"appris"}, approver.requests)

	exists, err := store.TermExists(context.Background(), "appris.principal1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIngest_PruneReconcilesDeletions(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	dir := t.TempDir()
	path := writeCSV(t, dir, "appris.csv", apprisCSV)

	_, err := svc.Ingest(context.Background(), ingestConfig(path))
	require.NoError(t, err)

	writeCSV(t, dir, "appris.csv", `accession,label,value,definition,full_definition
appris.principal1,PRINCIPAL:1,principal1,Principal isoform,Long principal text
`)
	cfg := ingestConfig(path)
	cfg.Prune = true
	report, err := svc.Ingest(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, vset.MergeStats{Updated: 1, Pruned: 2}, report.Files[0].Stats)

	set, err := store.GetValueSet(context.Background(), "appris", true)
	require.NoError(t, err)
	assert.Len(t, set.Values, 1)
}

func TestIngest_CrossValueSetConflict(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	dir := t.TempDir()

	first := writeCSV(t, dir, "appris.csv", apprisCSV)
	_, err := svc.Ingest(context.Background(), ingestConfig(first))
	require.NoError(t, err)

	// tsl.csv tries to claim a term accession appris already owns.
	second := writeCSV(t, dir, "tsl.csv", `accession,label,value,definition,full_definition
appris.principal1,stolen,stolen,def,full def
`)
	report, err := svc.Ingest(context.Background(), ingestConfig(second))
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, vset.StatusFailed, report.Files[0].Status)
	assert.ErrorIs(t, report.Err(), vset.ErrConflict)

	// The original owner is untouched.
	term, err := store.GetTerm(context.Background(), "appris.principal1")
	require.NoError(t, err)
	assert.Equal(t, "appris", term.ValueSet)
	assert.Equal(t, "PRINCIPAL:1", term.Label)
}

func TestIngest_UnresolvableAccessionFailsFile(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	// A stem with whitespace cannot serve as an accession.
	path := writeCSV(t, t.TempDir(), "my export.csv", apprisCSV)

	report, err := svc.Ingest(context.Background(), ingestConfig(path))
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, vset.StatusFailed, report.Files[0].Status)
	assert.ErrorIs(t, report.Err(), vset.ErrConfiguration)
}

func TestIngest_InvalidConfig(t *testing.T) {
	svc := newTestService(memory.New(), &stubApprover{approve: true})

	_, err := svc.Ingest(context.Background(), vset.IngestConfig{})
	assert.ErrorIs(t, err, vset.ErrInvalidConfig)

	_, err = svc.Ingest(context.Background(), vset.IngestConfig{
		SourcePath:       "a.csv",
		DirectoryPath:    "dir",
		BaseURL:          "https://api.example.com",
		ConnectionString: testConnStr,
	})
	assert.ErrorIs(t, err, vset.ErrInvalidConfig)
}

func TestIngest_CancelledContextStopsBatch(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &stubApprover{approve: true})
	dir := t.TempDir()
	writeCSV(t, dir, "appris.csv", apprisCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := vset.IngestConfig{
		DirectoryPath:    dir,
		BaseURL:          "https://api.example.com",
		ConnectionString: testConnStr,
	}
	report, err := svc.Ingest(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Files)
}
