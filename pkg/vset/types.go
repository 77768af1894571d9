package vset

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValueSet is a named collection of controlled-vocabulary terms.
// The accession is the namespace key and is immutable once created;
// re-ingestion under the same accession updates metadata in place.
type ValueSet struct {
	// Accession is the globally unique ValueSet identifier (e.g. "appris").
	Accession string `json:"accession"`

	// PURL is the permanent URL for this ValueSet. Either user-supplied
	// or derived as {base_url}/valuesets/{accession}.
	PURL string `json:"purl"`

	// Definition is a short human-readable description. May be empty.
	Definition string `json:"definition"`

	// FullDefinition is the long-form description. May be empty.
	FullDefinition string `json:"full_definition"`

	// Values holds the terms of this ValueSet in stored position order.
	// Populated only by reads that request terms.
	Values []Term `json:"values,omitempty"`
}

// Term is one entry in a ValueSet (a "ValueSetValue").
// Term accessions are globally unique across all ValueSets, by convention
// {valueset_accession}.{local_id}.
type Term struct {
	// Accession is the globally unique term identifier.
	Accession string `json:"accession"`

	// ValueSet is the accession of the owning ValueSet.
	ValueSet string `json:"valueset"`

	// PURL is the permanent URL for this term. Either supplied verbatim
	// by the source row or derived as {base_url}/terms/{accession}.
	PURL string `json:"purl"`

	// Label is the required human-readable display name.
	Label string `json:"label"`

	// Value is the required machine-facing value.
	Value string `json:"value"`

	// Definition and FullDefinition are required source columns but may
	// legitimately be stored empty by later metadata updates.
	Definition     string `json:"definition"`
	FullDefinition string `json:"full_definition"`

	// IdenticalTerms and SimilarTerms hold external URI cross-references.
	// Pure references, never resolved or validated at ingestion time.
	IdenticalTerms []string `json:"identical_terms"`
	SimilarTerms   []string `json:"similar_terms"`

	// Deprecated marks a term that should be filtered from default reads.
	Deprecated bool `json:"deprecated"`

	// DeprecatedTo lists replacement term accessions in preference order.
	// Forward references to not-yet-ingested accessions are allowed.
	DeprecatedTo []string `json:"deprecated_to"`

	// Additional carries extension fields outside the core schema.
	// Validated only for JSON well-formedness, never against a schema.
	Additional map[string]any `json:"additional"`
}

// ValueSetSummary is the terms-free projection returned by list reads.
type ValueSetSummary struct {
	Accession      string `json:"accession"`
	PURL           string `json:"purl"`
	Definition     string `json:"definition"`
	FullDefinition string `json:"full_definition"`

	// ValueCount is the number of stored terms, deprecated included.
	ValueCount int `json:"value_count"`
}

// MetadataOverrides carries per-invocation ValueSet metadata overrides.
// An empty string means "not provided"; overrides never blank a field.
type MetadataOverrides struct {
	Accession      string
	Definition     string
	FullDefinition string
	PURL           string
}

// IsZero reports whether no override was provided.
func (o MetadataOverrides) IsZero() bool {
	return o.Accession == "" && o.Definition == "" && o.FullDefinition == "" && o.PURL == ""
}

// IngestConfig contains all parameters needed for an ingestion run.
type IngestConfig struct {
	// SourcePath is the single CSV file to ingest.
	// Exactly one of SourcePath and DirectoryPath must be set.
	SourcePath string

	// DirectoryPath is a directory whose *.csv files are each ingested
	// independently.
	DirectoryPath string

	// MetadataFile is an optional YAML side-file mapping ValueSet
	// accessions to metadata (definition, full_definition, purl).
	MetadataFile string

	// Overrides are direct metadata overrides. They outrank the metadata
	// file and apply to single-file ingestion only.
	Overrides MetadataOverrides

	// BaseURL is the prefix used to derive permanent URLs.
	BaseURL string

	// ConnectionString is the PostgreSQL connection string for the store.
	ConnectionString string

	// Prune enables deletion reconciliation: stored terms of the target
	// ValueSet that are absent from the incoming file are removed.
	// Destructive, so it requires approval.
	Prune bool

	// Force bypasses interactive approval when used with Prune.
	Force bool

	// SkipUnchanged skips files whose checksum matches the most recent
	// successful run recorded for the same file name.
	SkipUnchanged bool

	// Timeout is the global timeout for the entire ingestion run.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is the RDS region for AWS IAM token minting. Optional;
	// the AWS SDK falls back to its own region resolution.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance), required for Google IAM auth.
	GoogleInstance string
}

// Validate checks if the IngestConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *IngestConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" && c.DirectoryPath == "" {
		errs = append(errs, fmt.Errorf("either a source file or a directory is required: %w", ErrInvalidConfig))
	}

	if c.SourcePath != "" && c.DirectoryPath != "" {
		errs = append(errs, fmt.Errorf("source file and directory are mutually exclusive: %w", ErrInvalidConfig))
	}

	if c.DirectoryPath != "" && !c.Overrides.IsZero() {
		errs = append(errs, fmt.Errorf("metadata overrides apply to single-file ingestion only: %w", ErrInvalidConfig))
	}

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.BaseURL == "" {
		errs = append(errs, fmt.Errorf("BaseURL is required: %w", ErrInvalidConfig))
	}

	// Force requires Prune to be set
	if c.Force && !c.Prune {
		errs = append(errs, fmt.Errorf("force flag requires prune to be enabled: %w", ErrInvalidConfig))
	}

	// Validate timeout if set
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ServeConfig contains all parameters needed to run the lookup service.
type ServeConfig struct {
	// ConnectionString is the PostgreSQL connection string for the store.
	ConnectionString string

	// Listen is the address the HTTP server binds to (e.g. ":8080").
	Listen string

	// Verbose enables detailed logging.
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion and GoogleInstance carry cloud connection parameters for
	// the matching AuthMethod, as in IngestConfig.
	AWSRegion      string
	GoogleInstance string
}

// Validate checks if the ServeConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ServeConfig) Validate() error {
	var errs []error

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.Listen == "" {
		errs = append(errs, fmt.Errorf("Listen address is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// CheckConfig contains all parameters needed for the post-ingestion
// deprecation-chain consistency check.
type CheckConfig struct {
	// ConnectionString is the PostgreSQL connection string for the store.
	ConnectionString string

	// Verbose enables detailed logging.
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion and GoogleInstance carry cloud connection parameters for
	// the matching AuthMethod, as in IngestConfig.
	AWSRegion      string
	GoogleInstance string
}

// Validate checks if the CheckConfig has all required fields.
func (c *CheckConfig) Validate() error {
	var errs []error

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is used for AWS IAM token minting (AuthMethodAWSIAM).
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance) used with AuthMethodGoogleIAM.
	GoogleInstance string
}

// DeepCopy returns a copy of the ConnectionConfig with its own
// AdditionalParams map, so callers can mutate the copy (e.g. injecting a
// freshly minted IAM token as the password) without affecting the original.
func (c ConnectionConfig) DeepCopy() ConnectionConfig {
	cp := c
	if c.AdditionalParams != nil {
		cp.AdditionalParams = make(map[string]string, len(c.AdditionalParams))
		for k, v := range c.AdditionalParams {
			cp.AdditionalParams[k] = v
		}
	}
	return cp
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard    AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                        // AWS IAM Database Authentication
	AuthMethodGoogleIAM                     // Google Cloud SQL IAM
	AuthMethodAzureEntraID                  // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// MergeStats summarizes what one merged file changed in the store.
type MergeStats struct {
	// Created is the number of terms inserted.
	Created int

	// Updated is the number of existing terms overwritten.
	Updated int

	// Pruned is the number of terms removed. Always zero unless the
	// merge ran with deletion reconciliation enabled.
	Pruned int
}

// FileStatus classifies the outcome of one file in a batch.
type FileStatus int

const (
	StatusSucceeded FileStatus = iota // File merged into the store
	StatusFailed                      // File rejected; store unchanged for this file
	StatusSkipped                     // Checksum unchanged since last successful run
)

// String returns a human-readable string representation of the FileStatus.
func (s FileStatus) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// FileReport is the outcome of one file in an ingestion run.
type FileReport struct {
	// File is the path as given to the orchestrator.
	File string

	// ValueSet is the resolved ValueSet accession. Empty when resolution
	// itself failed.
	ValueSet string

	// Status classifies the outcome.
	Status FileStatus

	// Stats holds merge counts for succeeded files.
	Stats MergeStats

	// Err holds the failure for failed files, nil otherwise.
	Err error
}

// BatchReport is the complete outcome of an ingestion run, one entry per
// attempted file, in processing order.
type BatchReport struct {
	Files []FileReport
}

// Failed returns the number of failed files.
func (r *BatchReport) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Err returns the error the run should surface: nil when every file
// succeeded or was skipped, the file's own error for a single-file run,
// and ErrBatchFailed when any file of a multi-file run failed.
func (r *BatchReport) Err() error {
	failed := r.Failed()
	if failed == 0 {
		return nil
	}
	if len(r.Files) == 1 {
		return r.Files[0].Err
	}
	return fmt.Errorf("%d of %d files failed: %w", failed, len(r.Files), ErrBatchFailed)
}

// IngestionRun is one ledger entry recording a file ingestion attempt.
// Runs are recorded for successes, failures and skips alike, outside the
// file's merge transaction so failed attempts remain visible.
type IngestionRun struct {
	// ID is the unique identifier of this attempt.
	ID uuid.UUID

	// FileName is the base name of the ingested file.
	FileName string

	// Checksum is the SHA-256 checksum of the file content.
	Checksum string

	// ValueSet is the resolved ValueSet accession, empty if unresolved.
	ValueSet string

	// Status is the FileStatus string of the outcome.
	Status string

	// CreatedTerms, UpdatedTerms and PrunedTerms are the merge counts.
	CreatedTerms int
	UpdatedTerms int
	PrunedTerms  int

	// Error is the failure message for failed runs, empty otherwise.
	Error string

	// StartedAt and FinishedAt bound the attempt.
	StartedAt  time.Time
	FinishedAt time.Time
}

// DanglingReference is one deprecated_to entry whose target accession does
// not exist in the store.
type DanglingReference struct {
	// ValueSet is the accession of the ValueSet owning the source term.
	ValueSet string

	// Term is the accession of the term carrying the reference.
	Term string

	// Target is the missing replacement accession.
	Target string
}

// CheckReport is the outcome of a deprecation-chain consistency check.
type CheckReport struct {
	// TermsChecked is the number of deprecated terms examined.
	TermsChecked int

	// Dangling lists every reference to a missing accession, ordered by
	// (valueset, term, target).
	Dangling []DanglingReference
}

// Err returns ErrCheckFailed when the report contains dangling references.
func (r *CheckReport) Err() error {
	if len(r.Dangling) == 0 {
		return nil
	}
	return fmt.Errorf("%d dangling deprecation reference(s): %w", len(r.Dangling), ErrCheckFailed)
}
