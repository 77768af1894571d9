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

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only term lookup service",
	Long: `Serve runs an HTTP service resolving terms and ValueSets out of the store.

Endpoints:
  GET /health                      Store connectivity probe
  GET /term/{accession}            One term, deprecated included
  GET /list/valuesets              All ValueSet summaries
  GET /list/valuesets/{accession}  One ValueSet with its terms
                                   (?include_deprecated=true to include retired terms)

The service never writes. Run it against the same database your ingestion
pipeline targets.

Examples:
  vset serve -d vocab
  vset serve -d vocab --listen :9090
  VSET_LISTEN=:9090 vset serve -d vocab`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

type serveFlagValues struct {
	conn   connectionFlags
	listen string
}

var serveFlags serveFlagValues

func init() {
	rootCmd.AddCommand(serveCmd)

	registerConnectionFlags(serveCmd, &serveFlags.conn)

	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", "",
		"Bind address of the HTTP server\n"+
			"Precedence: --listen > $VSET_LISTEN > vset.yaml > "+vset.DefaultListen)
}

// buildServeConfig builds a ServeConfig from CLI flags, environment and vset.yaml.
func buildServeConfig(verbose bool) (vset.ServeConfig, error) {
	projectCfg, err := loadProjectConfig(".", serveFlags.conn.envFile)
	if err != nil {
		return vset.ServeConfig{}, err
	}

	connConfig, err := resolveConnectionFromFlags(serveFlags.conn, projectCfg)
	if err != nil {
		return vset.ServeConfig{}, err
	}

	if verbose {
		logConnectionVerbose(connConfig)
	}

	listen := serveFlags.listen
	if listen == "" {
		listen = os.Getenv("VSET_LISTEN")
	}
	if listen == "" && projectCfg != nil {
		listen = projectCfg.Listen
	}
	if listen == "" {
		listen = vset.DefaultListen
	}

	return vset.ServeConfig{
		ConnectionString:  db.BuildConnectionString(connConfig),
		Listen:            listen,
		Verbose:           verbose,
		AuthMethod:        connConfig.AuthMethod,
		AzureTenantID:     connConfig.AzureTenantID,
		AzureClientID:     connConfig.AzureClientID,
		AzureClientSecret: connConfig.AzureClientSecret,
		AWSRegion:         connConfig.AWSRegion,
		GoogleInstance:    connConfig.GoogleInstance,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	config, err := buildServeConfig(verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	service := services.NewServeService(db.NewConnector, logger)

	// SIGINT/SIGTERM trigger graceful shutdown via context cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, shutting down...")
		cancel()
	}()

	if err := service.Serve(ctx, config); err != nil {
		return fmt.Errorf("serve failed: %w", err)
	}
	return nil
}
