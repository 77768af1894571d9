package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/vset/pkg/vset"
)

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval. It displays a countdown and automatically approves after the countdown,
// used when the --force flag is provided.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) vset.Approver {
	return &ForcedApprover{
		verbose: verbose,
		output:  os.Stderr,
		sleepFn: time.Sleep,
	}
}

// RequestApproval displays a countdown and automatically approves after the countdown.
func (a *ForcedApprover) RequestApproval(ctx context.Context, scope string) (bool, error) {
	fmt.Fprintln(a.output)
	fmt.Fprintln(a.output, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(a.output, "║                         !! DANGER !!                         ║")
	fmt.Fprintln(a.output, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintf(a.output, "Pruning '%s': stored terms absent from the incoming file(s) will be DELETED.\n", scope)
	fmt.Fprintln(a.output)

	countdownSeconds := int(vset.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.output, "\rPruning in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleepFn(1 * time.Second)
		}
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with prune...                              \n")
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ vset.Approver = (*ForcedApprover)(nil)
