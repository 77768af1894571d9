package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireSourceArg validates that at most one source argument is provided
// and that either the argument or the --directory flag names a source.
func RequireSourceArg(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("accepts at most 1 arg(s), received %d", len(args))
	}
	dir, _ := cmd.Flags().GetString("directory")
	if len(args) == 0 && dir == "" {
		return fmt.Errorf(`missing required argument: <file.csv>

Usage: %s <file.csv>
   or: %s --directory <dir>

Example:
  %s ./appris.csv -d vocab`, cmd.UseLine(), cmd.CommandPath(), cmd.CommandPath())
	}
	if len(args) == 1 && dir != "" {
		return fmt.Errorf("provide either <file.csv> or --directory, not both")
	}
	return nil
}

// RequireTargetPath validates that exactly one target_path argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireTargetPath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <target_path>

Usage: %s <target_path>

Example:
  %s ./myvocab`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
