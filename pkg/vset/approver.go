package vset

import "context"

// Approver handles user interaction for approval workflows, particularly
// for destructive operations like pruning terms absent from a re-ingested
// file.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the target scope for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before a prune run removes
	// stored terms.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - scope: Human-readable description of what will be pruned
	//     (file stem or directory name)
	//
	// Returns:
	//   - bool: true if approved, false if denied
	//   - error: Any error that occurred during the approval process
	RequestApproval(ctx context.Context, scope string) (bool, error)
}
