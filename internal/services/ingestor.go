package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/vset/internal/checksum"
	"github.com/vvka-141/vset/internal/files/scanner"
	"github.com/vvka-141/vset/internal/merge"
	"github.com/vvka-141/vset/internal/metadata"
	"github.com/vvka-141/vset/internal/rows"
	"github.com/vvka-141/vset/pkg/vset"
)

// IngestionService implements the Ingestor interface.
// Thread-Safety: NOT safe for concurrent Ingest() calls on the same
// instance. Create separate instances for concurrent runs.
type IngestionService struct {
	approver   vset.Approver
	logger     vset.Logger
	engine     *merge.Engine
	scanner    *scanner.Scanner
	calculator checksum.Calculator
	openStore  storeOpener
}

var _ vset.Ingestor = (*IngestionService)(nil)

// NewIngestionService creates an IngestionService with all dependencies
// injected.
//
// Panics on nil dependencies: those are programmer errors that should fail
// loudly at startup, not surface as nil dereferences mid-run.
func NewIngestionService(
	connectorFactory func(*vset.ConnectionConfig) (vset.Connector, error),
	approver vset.Approver,
	logger vset.Logger,
) *IngestionService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &IngestionService{
		approver:   approver,
		logger:     logger,
		engine:     merge.NewEngine(logger),
		scanner:    scanner.NewScanner(),
		calculator: checksum.New(),
		openStore:  newPostgresOpener(connectorFactory, logger),
	}
}

// Ingest executes one ingestion run. The returned report has one entry per
// attempted file; a non-nil error means the run could not start at all.
func (s *IngestionService) Ingest(ctx context.Context, config vset.IngestConfig) (*vset.BatchReport, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	files, scope, err := s.collectFiles(config)
	if err != nil {
		return nil, err
	}

	if config.Prune {
		if err := s.requestPruneApproval(ctx, scope, config.Force); err != nil {
			return nil, err
		}
	}

	var sideFile metadata.SideFile
	if config.MetadataFile != "" {
		sideFile, err = metadata.LoadSideFile(config.MetadataFile)
		if err != nil {
			return nil, err
		}
		s.logger.Verbose("Loaded metadata for %d valueset(s) from %s", len(sideFile), config.MetadataFile)
	}
	resolver := metadata.NewResolver(sideFile, config.BaseURL)

	store, cleanup, err := s.openStore(ctx, config.ConnectionString, func(cc *vset.ConnectionConfig) {
		applyAuth(cc, config.AuthMethod, config.AzureTenantID, config.AzureClientID,
			config.AzureClientSecret, config.AWSRegion, config.GoogleInstance)
	})
	if err != nil {
		return nil, err
	}
	defer cleanup()

	report := &vset.BatchReport{}
	for _, file := range files {
		// A cancelled run finishes rolling back the in-flight file and
		// leaves the rest unattempted; re-running is safe by idempotence.
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		fr := s.ingestFile(ctx, store, resolver, file, config)
		report.Files = append(report.Files, fr)
		s.logFileOutcome(fr)
	}

	return report, nil
}

// collectFiles returns the files to process and the human-readable scope
// used for prune approval.
func (s *IngestionService) collectFiles(config vset.IngestConfig) ([]string, string, error) {
	if config.SourcePath != "" {
		stem := strings.TrimSuffix(filepath.Base(config.SourcePath), filepath.Ext(config.SourcePath))
		return []string{config.SourcePath}, stem, nil
	}

	files, err := s.scanner.ScanDirectory(config.DirectoryPath)
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("no CSV files found in %s: %w", config.DirectoryPath, vset.ErrInvalidConfig)
	}
	s.logger.Verbose("Found %d CSV file(s) in %s", len(files), config.DirectoryPath)
	return files, filepath.Base(config.DirectoryPath), nil
}

// requestPruneApproval runs the destructive-operation approval workflow
// before any file is touched. Denial aborts the whole run.
func (s *IngestionService) requestPruneApproval(ctx context.Context, scope string, force bool) error {
	s.logger.Verbose("Prune mode enabled, requesting approval for '%s'", scope)

	approved, err := s.approver.RequestApproval(ctx, scope)
	if err != nil {
		return fmt.Errorf("approval request failed: %w", err)
	}
	if !approved {
		return vset.ErrApprovalDenied
	}
	if force {
		s.logger.Verbose("Prune approval forced")
	}
	return nil
}

// ingestFile runs the full pipeline for one file and records the ledger
// entry. All failures are captured in the report, never propagated.
func (s *IngestionService) ingestFile(ctx context.Context, store vset.Store, resolver *metadata.Resolver, file string, config vset.IngestConfig) vset.FileReport {
	started := time.Now()

	fr := s.processFile(ctx, store, resolver, file, config)

	run := vset.IngestionRun{
		ID:           uuid.New(),
		FileName:     filepath.Base(file),
		Checksum:     fr.checksum,
		ValueSet:     fr.report.ValueSet,
		Status:       fr.report.Status.String(),
		CreatedTerms: fr.report.Stats.Created,
		UpdatedTerms: fr.report.Stats.Updated,
		PrunedTerms:  fr.report.Stats.Pruned,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if fr.report.Err != nil {
		run.Error = fr.report.Err.Error()
	}

	// The ledger write runs outside the merge transaction so failed
	// attempts stay visible. A ledger failure must not flip a merged
	// file's outcome, so it is only logged.
	if err := store.RecordRun(ctx, run); err != nil {
		s.logger.Error("Failed to record ingestion run for %s: %v", file, err)
	}

	return fr.report
}

// fileResult pairs a report with the checksum computed on the way.
type fileResult struct {
	report   vset.FileReport
	checksum string
}

func (s *IngestionService) processFile(ctx context.Context, store vset.Store, resolver *metadata.Resolver, file string, config vset.IngestConfig) fileResult {
	failed := func(sum string, valueset string, err error) fileResult {
		return fileResult{
			checksum: sum,
			report:   vset.FileReport{File: file, ValueSet: valueset, Status: vset.StatusFailed, Err: err},
		}
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return failed("", "", fmt.Errorf("failed to read %s: %w", file, err))
	}
	sum := s.calculator.CalculateNormalized(content)

	overrides := config.Overrides
	set, err := resolver.Resolve(file, overrides)
	if err != nil {
		return failed(sum, "", err)
	}

	if config.SkipUnchanged {
		last, err := store.LastSuccessfulRun(ctx, filepath.Base(file))
		if err == nil && last.Checksum == sum {
			return fileResult{
				checksum: sum,
				report:   vset.FileReport{File: file, ValueSet: set.Accession, Status: vset.StatusSkipped},
			}
		}
		if err != nil && !errors.Is(err, vset.ErrNotFound) {
			return failed(sum, set.Accession, err)
		}
	}

	parsed, err := rows.Read(file, content)
	if err != nil {
		return failed(sum, set.Accession, err)
	}

	validator := rows.NewValidator(set.Accession, config.BaseURL)
	terms, err := validator.ValidateAll(parsed)
	if err != nil {
		return failed(sum, set.Accession, err)
	}

	stats, err := s.engine.Merge(ctx, store, set, terms, config.Prune)
	if err != nil {
		return failed(sum, set.Accession, err)
	}

	return fileResult{
		checksum: sum,
		report: vset.FileReport{
			File:     file,
			ValueSet: set.Accession,
			Status:   vset.StatusSucceeded,
			Stats:    stats,
		},
	}
}

func (s *IngestionService) logFileOutcome(fr vset.FileReport) {
	switch fr.Status {
	case vset.StatusSucceeded:
		s.logger.Info("✓ %s (%s): %d created, %d updated, %d pruned",
			fr.File, fr.ValueSet, fr.Stats.Created, fr.Stats.Updated, fr.Stats.Pruned)
	case vset.StatusSkipped:
		s.logger.Info("- %s (%s): unchanged, skipped", fr.File, fr.ValueSet)
	case vset.StatusFailed:
		s.logger.Error("✗ %s: %v", fr.File, fr.Err)
	}
}
