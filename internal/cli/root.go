package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `
     _  _  ___  ___  _____
 \  / || |/ __|/ _ \|_   _|
  \/  || |\__ \  __/  | |
   \_/ |_||___/\___|  |_|
`

var rootCmd = &cobra.Command{
	Use:   "vset",
	Short: "Controlled-vocabulary ingestion for PostgreSQL",
	Long: asciiLogo + `

vset validates CSV-shaped controlled vocabularies (ValueSets) and merges
them additively into a PostgreSQL store. Every term gets a permanent URL,
every ingestion attempt lands in a ledger, and a read-only HTTP service
resolves terms and ValueSets back out.

Re-running the same file is always safe: merges are idempotent, deletions
happen only with explicit --prune approval.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or unresolvable ValueSet identity
  11 - Database connection failed
  12 - User denied prune approval
  13 - Row failed schema validation
  14 - Term accession owned by a different ValueSet
  15 - Directory run finished with at least one failed file
  16 - Consistency check found dangling deprecation references`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for vset")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
