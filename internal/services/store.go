package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/vset/internal/db"
	"github.com/vvka-141/vset/internal/store/postgres"
	"github.com/vvka-141/vset/pkg/vset"
)

// connectorFactory builds a Connector for a resolved connection config.
// Injected so tests can substitute the whole connection path.
type connectorFactory func(*vset.ConnectionConfig) (vset.Connector, error)

// storeOpener opens the store a run writes to, returning a cleanup func.
// The default implementation connects to PostgreSQL and ensures the schema;
// unit tests swap in an in-memory store.
type storeOpener func(ctx context.Context, connStr string, apply func(*vset.ConnectionConfig)) (vset.Store, func(), error)

// newPostgresOpener builds the production storeOpener on top of the db
// connector architecture.
func newPostgresOpener(factory connectorFactory, logger vset.Logger) storeOpener {
	return func(ctx context.Context, connStr string, apply func(*vset.ConnectionConfig)) (vset.Store, func(), error) {
		connConfig, err := db.ParseConnectionString(connStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse connection string: %w", err)
		}
		if connConfig.AppName == "" {
			connConfig.AppName = "vset"
		}
		if apply != nil {
			apply(connConfig)
		}

		connector, err := factory(connConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connector: %w", err)
		}

		pool, err := connector.Connect(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", vset.ErrConnectionFailed, err)
		}

		store := postgres.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}

		logger.Verbose("Connected to store at %s:%d/%s", connConfig.Host, connConfig.Port, connConfig.Database)
		return store, store.Close, nil
	}
}

// applyAuth copies the auth-related fields of an ingest/serve/check config
// onto the parsed connection config.
func applyAuth(cc *vset.ConnectionConfig, method vset.AuthMethod, tenantID, clientID, clientSecret, awsRegion, googleInstance string) {
	cc.AuthMethod = method
	cc.AzureTenantID = tenantID
	cc.AzureClientID = clientID
	cc.AzureClientSecret = clientSecret
	cc.AWSRegion = awsRegion
	cc.GoogleInstance = googleInstance
}
