package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/vset/internal/db"
	"github.com/vvka-141/vset/internal/logging"
	"github.com/vvka-141/vset/internal/services"
	"github.com/vvka-141/vset/pkg/vset"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify deprecation chains across the store",
	Long: `Check scans every deprecated term and reports deprecated_to references
whose target accession does not exist anywhere in the store.

Forward references are legal at ingestion time, so a reference can dangle
when its target was never ingested or was pruned later. Run check after a
batch to catch those.

Exits 16 when dangling references are found.

Examples:
  vset check -d vocab
  vset check --connection "postgresql://user@host/vocab"`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var checkFlags connectionFlags

func init() {
	rootCmd.AddCommand(checkCmd)
	registerConnectionFlags(checkCmd, &checkFlags)
}

// buildCheckConfig builds a CheckConfig from CLI flags, environment and vset.yaml.
func buildCheckConfig(verbose bool) (vset.CheckConfig, error) {
	projectCfg, err := loadProjectConfig(".", checkFlags.envFile)
	if err != nil {
		return vset.CheckConfig{}, err
	}

	connConfig, err := resolveConnectionFromFlags(checkFlags, projectCfg)
	if err != nil {
		return vset.CheckConfig{}, err
	}

	if verbose {
		logConnectionVerbose(connConfig)
	}

	return vset.CheckConfig{
		ConnectionString:  db.BuildConnectionString(connConfig),
		Verbose:           verbose,
		AuthMethod:        connConfig.AuthMethod,
		AzureTenantID:     connConfig.AzureTenantID,
		AzureClientID:     connConfig.AzureClientID,
		AzureClientSecret: connConfig.AzureClientSecret,
		AWSRegion:         connConfig.AWSRegion,
		GoogleInstance:    connConfig.GoogleInstance,
	}, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	config, err := buildCheckConfig(verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	checker := services.NewCheckService(db.NewConnector, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling check...")
		cancel()
	}()

	report, err := checker.Check(ctx, config)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	for _, d := range report.Dangling {
		fmt.Fprintf(os.Stderr, "✗ %s: %s references missing accession '%s'\n",
			d.ValueSet, d.Term, d.Target)
	}
	if len(report.Dangling) == 0 {
		fmt.Fprintf(os.Stderr, "✓ %d deprecated term(s) checked, no dangling references\n",
			report.TermsChecked)
	}

	return report.Err()
}
