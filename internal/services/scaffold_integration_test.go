package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/vset/internal/scaffold"
	"github.com/vvka-141/vset/internal/store/memory"
	"github.com/vvka-141/vset/pkg/vset"
)

// TestIngest_ScaffoldedProject runs a freshly scaffolded starter project
// through a full ingestion, proving that `vset init` output works with
// `vset ingest` out of the box.
func TestIngest_ScaffoldedProject(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), "starter")
	require.NoError(t, scaffold.NewScaffolder(false).CreateProject("starter", "basic", projectDir))

	store := memory.New()
	svc := newTestService(store, &stubApprover{})

	report, err := svc.Ingest(context.Background(), vset.IngestConfig{
		SourcePath:       filepath.Join(projectDir, "data", "example.csv"),
		MetadataFile:     filepath.Join(projectDir, "valuesets.yaml"),
		BaseURL:          "http://localhost:8080",
		ConnectionString: testConnStr,
	})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	require.NoError(t, report.Files[0].Err)
	assert.Equal(t, vset.StatusSucceeded, report.Files[0].Status)
	assert.Equal(t, "example", report.Files[0].ValueSet)
	assert.Equal(t, 3, report.Files[0].Stats.Created)

	// Side-file metadata must land on the stored ValueSet.
	set, err := store.GetValueSet(context.Background(), "example", true)
	require.NoError(t, err)
	assert.Equal(t, "Example controlled vocabulary", set.Definition)
	assert.NotEmpty(t, set.FullDefinition)
	assert.Len(t, set.Values, 3)

	// The deprecated starter term points at its replacement.
	term, err := store.GetTerm(context.Background(), "example.zero")
	require.NoError(t, err)
	assert.True(t, term.Deprecated)
	assert.Equal(t, []string{"example.one"}, term.DeprecatedTo)
}
