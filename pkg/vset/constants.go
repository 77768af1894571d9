package vset

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or unresolvable ValueSet identity
	ExitConnectionError = 11 // Failed to connect to the store
	ExitApprovalDenied  = 12 // User denied prune approval
	ExitSchemaError     = 13 // Row failed required-field or type validation
	ExitConflictError   = 14 // Term accession owned by a different ValueSet
	ExitBatchError      = 15 // Directory run completed with at least one failed file
	ExitCheckError      = 16 // Consistency check found dangling deprecation references
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultBaseURL is the permanent-URL prefix used when neither flags,
	// environment nor config file provide one. Suitable for local work;
	// published ValueSets should configure a stable resolver base.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultListen is the default bind address of the lookup service.
	DefaultListen = ":8080"

	// DefaultIngestTimeout is the global timeout applied to an ingestion
	// run when none is configured. Zero would mean no timeout.
	DefaultIngestTimeout = 10 * time.Minute

	// DefaultMetadataFile is the side-file consulted for ValueSet
	// metadata when it exists and no explicit path was given.
	DefaultMetadataFile = "valuesets.yaml"

	// DefaultConfigFile is the per-project configuration file name.
	DefaultConfigFile = "vset.yaml"
)
