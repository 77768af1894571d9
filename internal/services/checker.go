package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/vset/pkg/vset"
)

// CheckService implements the Checker interface: the optional
// post-ingestion pass over deprecation chains.
type CheckService struct {
	logger    vset.Logger
	openStore storeOpener
}

var _ vset.Checker = (*CheckService)(nil)

// NewCheckService creates a CheckService.
//
// Panics on nil dependencies, matching the other services.
func NewCheckService(
	connectorFactory func(*vset.ConnectionConfig) (vset.Connector, error),
	logger vset.Logger,
) *CheckService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &CheckService{
		logger:    logger,
		openStore: newPostgresOpener(connectorFactory, logger),
	}
}

// Check scans every deprecated term and reports deprecated_to entries whose
// target accession does not exist in the store.
func (c *CheckService) Check(ctx context.Context, config vset.CheckConfig) (*vset.CheckReport, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, cleanup, err := c.openStore(ctx, config.ConnectionString, func(cc *vset.ConnectionConfig) {
		applyAuth(cc, config.AuthMethod, config.AzureTenantID, config.AzureClientID,
			config.AzureClientSecret, config.AWSRegion, config.GoogleInstance)
	})
	if err != nil {
		return nil, err
	}
	defer cleanup()

	deprecated, err := store.ListDeprecations(ctx)
	if err != nil {
		return nil, err
	}

	report := &vset.CheckReport{TermsChecked: len(deprecated)}
	// Terms arrive ordered by accession and targets keep file order, so
	// the report is deterministic without an extra sort.
	for _, term := range deprecated {
		for _, target := range term.DeprecatedTo {
			exists, err := store.TermExists(ctx, target)
			if err != nil {
				return nil, err
			}
			if !exists {
				report.Dangling = append(report.Dangling, vset.DanglingReference{
					ValueSet: term.ValueSet,
					Term:     term.Accession,
					Target:   target,
				})
			}
		}
	}

	c.logger.Verbose("Checked %d deprecated term(s), %d dangling reference(s)",
		report.TermsChecked, len(report.Dangling))
	return report, nil
}
