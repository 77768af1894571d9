package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/vset/pkg/vset"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the prune scope
// (the ValueSet accession, or the directory name for batch runs) to
// confirm destructive operations.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover reading from
// stdin and writing to stderr.
func NewInteractiveApprover(verbose bool) vset.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
	}
}

// RequestApproval prompts the user to type the scope name to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, scope string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠️  WARNING: Pruning '%s' will permanently delete stored terms absent from the incoming file(s)\n", scope)
	fmt.Fprintln(a.output, "Deleted terms cannot be recovered from the store!")
	fmt.Fprintf(a.output, "\nTo confirm, type '%s' and press Enter: ", scope)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == scope {
			fmt.Fprintln(a.output, "✓ Confirmed. Proceeding with prune...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match '%s'. Operation cancelled.\n", input, scope)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ vset.Approver = (*InteractiveApprover)(nil)
