package services

import (
	"context"
	"time"

	"github.com/vvka-141/vset/internal/server"
	"github.com/vvka-141/vset/pkg/vset"
)

// shutdownGrace bounds how long in-flight requests may run after the serve
// context is cancelled.
const shutdownGrace = 10 * time.Second

// ServeService runs the HTTP lookup service against a connected store.
type ServeService struct {
	logger    vset.Logger
	openStore storeOpener
}

// NewServeService creates a ServeService.
//
// Panics if connectorFactory or logger is nil (programmer error).
func NewServeService(connectorFactory connectorFactory, logger vset.Logger) *ServeService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ServeService{
		logger:    logger,
		openStore: newPostgresOpener(connectorFactory, logger),
	}
}

// Serve connects to the store and serves lookups until ctx is cancelled.
func (s *ServeService) Serve(ctx context.Context, config vset.ServeConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	store, closeStore, err := s.openStore(ctx, config.ConnectionString, func(cc *vset.ConnectionConfig) {
		applyAuth(cc, config.AuthMethod, config.AzureTenantID, config.AzureClientID,
			config.AzureClientSecret, config.AWSRegion, config.GoogleInstance)
	})
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.NewServer(store, s.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(config.Listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
