package cli

import (
	"os"

	"github.com/vvka-141/vset/internal/config"
	"github.com/vvka-141/vset/internal/db"
	"github.com/vvka-141/vset/pkg/vset"
)

// connectionStringFromEnv returns the first non-empty connection string from
// VSET_CONN or DATABASE_URL environment variables.
func connectionStringFromEnv() string {
	if s := os.Getenv("VSET_CONN"); s != "" {
		return s
	}
	return os.Getenv("DATABASE_URL")
}

// hasEnvConnectionSource returns true if environment variables provide enough
// connection info to skip the interactive wizard.
func hasEnvConnectionSource() bool {
	if connectionStringFromEnv() != "" {
		return true
	}
	return os.Getenv("PGHOST") != "" && os.Getenv("PGDATABASE") != ""
}

// resolveConnection consolidates connection resolution for the ingest, serve
// and check commands. It handles the connection string flag, granular flags,
// cloud auth flags and environment variables.
func resolveConnection(
	connStringFlag string,
	granularFlags *db.GranularConnFlags,
	azureFlags *db.AzureFlags,
	cloudFlags *db.CloudFlags,
	projectConfig *config.ProjectConfig,
) (*vset.ConnectionConfig, error) {
	envVars := db.LoadFromEnvironment()

	return db.ResolveConnectionParams(
		connStringFlag,
		granularFlags,
		azureFlags,
		cloudFlags,
		envVars,
		projectConfig,
	)
}
