package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/vset/internal/config"
	"github.com/vvka-141/vset/pkg/vset"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use one of these methods instead:
//  1. $PGPASSWORD environment variable
//  2. .pgpass file (PostgreSQL standard)
//  3. Connection string with embedded password
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided by the user.
// Note: Database flag is excluded from this check because it can be used to override
// the database specified in a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// AzureFlags represents Azure Entra ID CLI flags.
// These override the corresponding AZURE_* environment variables.
// Note: Client secret is NOT included as a CLI flag for security reasons.
// Use AZURE_CLIENT_SECRET environment variable instead.
type AzureFlags struct {
	TenantID string // Overrides AZURE_TENANT_ID
	ClientID string // Overrides AZURE_CLIENT_ID
}

// IsEmpty returns true if no Azure flags were provided.
func (a *AzureFlags) IsEmpty() bool {
	return a == nil || (a.TenantID == "" && a.ClientID == "")
}

// CloudFlags carries the cloud IAM auth selection from CLI flags.
type CloudFlags struct {
	// AuthMethod is the explicitly requested method. AuthMethodStandard
	// means "not requested"; Azure credentials may still switch it.
	AuthMethod vset.AuthMethod

	AWSRegion      string // Overrides vset.yaml aws_region
	GoogleInstance string // Overrides vset.yaml google_instance
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string // PostgreSQL server host
	PGPORT       string // PostgreSQL server port
	PGUSER       string // PostgreSQL username
	PGPASSWORD   string // PostgreSQL password (discouraged, use .pgpass instead)
	PGDATABASE   string // Default database name
	PGSSLMODE    string // SSL mode
	DATABASE_URL string // Full connection string (Heroku/Rails convention)
	VSET_CONN    string // Full connection string, vset-specific; outranks DATABASE_URL

	// Azure Entra ID environment variables (Azure SDK standard names)
	AZURE_TENANT_ID     string // Azure AD tenant/directory ID
	AZURE_CLIENT_ID     string // Azure AD application/client ID
	AZURE_CLIENT_SECRET string // Azure AD client secret (for Service Principal auth)
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
// This follows standard PostgreSQL client behavior and Azure SDK conventions.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		VSET_CONN:           os.Getenv("VSET_CONN"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// ConnectionString returns the connection string from the environment,
// preferring VSET_CONN over DATABASE_URL.
func (e *EnvVars) ConnectionString() string {
	if e.VSET_CONN != "" {
		return e.VSET_CONN
	}
	return e.DATABASE_URL
}

// ParseAuthMethod maps a vset.yaml auth_method string to an AuthMethod.
func ParseAuthMethod(s string) (vset.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return vset.AuthMethodStandard, nil
	case "aws-iam", "aws":
		return vset.AuthMethodAWSIAM, nil
	case "google-iam", "google":
		return vset.AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id":
		return vset.AuthMethodAzureEntraID, nil
	default:
		return vset.AuthMethodStandard, fmt.Errorf("unknown auth_method %q: %w", s, vset.ErrUnsupportedAuthMethod)
	}
}

// ResolveConnectionParams resolves connection parameters using PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection) - if provided, parse and use directly
//  2. Granular flags (-h, -p, -U, -d) - if any provided, build config from flags
//  3. Environment variables (PGHOST, PGPORT, etc.) - fallback if no flags
//  4. VSET_CONN / DATABASE_URL environment variable - fallback if no granular params
//  5. vset.yaml connection section
//  6. Defaults (localhost:5432, prefer SSL)
//
// Azure Entra ID Authentication:
// If azureFlags are provided OR Azure environment variables are set (AZURE_TENANT_ID, etc.),
// the AuthMethod is set to AzureEntraID and credentials are attached to the config.
// CLI flags take precedence over environment variables.
//
// Conflict Detection:
// Returns error if BOTH --connection flag AND granular flags are provided.
// This prevents ambiguity and ensures clear user intent.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	azureFlags *AzureFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*vset.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if azureFlags == nil {
		azureFlags = &AzureFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	// Check for conflicts: connection string XOR granular flags
	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n" +
				"Choose one approach:\n" +
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/vset\"\n" +
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d mydb\n" +
				"  3. Environment variables: export VSET_CONN=postgresql://user@localhost:5432/vset",
		)
	}

	var cfg *vset.ConnectionConfig
	var err error

	if connStringFlag != "" {
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	} else if granularFlags.IsEmpty() && envVars.ConnectionString() != "" {
		cfg, err = resolveFromConnectionString(envVars.ConnectionString(), envVars)
	} else {
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	if err := applyAuthSelection(cfg, azureFlags, cloudFlags, envVars, projectConfig); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyAuthSelection settles the auth method and its parameters.
// Explicit CLI selection wins, then Azure credentials, then vset.yaml.
func applyAuthSelection(
	cfg *vset.ConnectionConfig,
	azureFlags *AzureFlags,
	cloudFlags *CloudFlags,
	env *EnvVars,
	projectConfig *config.ProjectConfig,
) error {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	// Cloud parameters: flag > vset.yaml
	cfg.AWSRegion = cloudFlags.AWSRegion
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = pc.AWSRegion
	}
	cfg.GoogleInstance = cloudFlags.GoogleInstance
	if cfg.GoogleInstance == "" {
		cfg.GoogleInstance = pc.GoogleInstance
	}

	if cloudFlags.AuthMethod != vset.AuthMethodStandard {
		cfg.AuthMethod = cloudFlags.AuthMethod
		if cfg.AuthMethod == vset.AuthMethodAzureEntraID {
			applyAzureCredentials(cfg, azureFlags, env)
		}
		return nil
	}

	// Azure credentials via flags or environment imply Azure auth.
	tenantID := azureFlags.TenantID
	if tenantID == "" {
		tenantID = env.AZURE_TENANT_ID
	}
	clientID := azureFlags.ClientID
	if clientID == "" {
		clientID = env.AZURE_CLIENT_ID
	}
	if tenantID != "" || clientID != "" {
		cfg.AuthMethod = vset.AuthMethodAzureEntraID
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
		return nil
	}

	// Finally vset.yaml auth_method.
	if pc.AuthMethod != "" {
		method, err := ParseAuthMethod(pc.AuthMethod)
		if err != nil {
			return err
		}
		cfg.AuthMethod = method
		if method == vset.AuthMethodAzureEntraID {
			cfg.AzureTenantID = pc.AzureTenantID
			cfg.AzureClientID = pc.AzureClientID
			cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
		}
	}
	return nil
}

// applyAzureCredentials attaches Azure credentials, flags over environment.
func applyAzureCredentials(cfg *vset.ConnectionConfig, flags *AzureFlags, env *EnvVars) {
	cfg.AzureTenantID = flags.TenantID
	if cfg.AzureTenantID == "" {
		cfg.AzureTenantID = env.AZURE_TENANT_ID
	}
	cfg.AzureClientID = flags.ClientID
	if cfg.AzureClientID == "" {
		cfg.AzureClientID = env.AZURE_CLIENT_ID
	}
	cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
}

// resolveFromConnectionString parses a connection string.
//
// Environment variables are applied as fallbacks for parameters not specified
// in the connection string (following PostgreSQL standard behavior).
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*vset.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	// Apply PGSSLMODE from environment if not specified in connection string.
	// This follows PostgreSQL's libpq behavior where environment variables
	// serve as fallbacks for connection string parameters.
	if cfg.SSLMode == "" && envVars != nil && envVars.PGSSLMODE != "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}

	return cfg, nil
}

// resolveFromGranularParams builds ConnectionConfig from granular flags,
// environment variables and vset.yaml.
//
// Precedence for each parameter (following PostgreSQL standards):
//  1. CLI flag (highest priority)
//  2. Environment variable
//  3. vset.yaml connection section
//  4. Default value (lowest priority)
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*vset.ConnectionConfig, error) {
	cfg := &vset.ConnectionConfig{
		AuthMethod:       vset.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	// Host: flag > PGHOST > vset.yaml > default
	cfg.Host = flags.Host
	if cfg.Host == "" {
		cfg.Host = envVars.PGHOST
	}
	if cfg.Host == "" {
		cfg.Host = pc.Host
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}

	// Port: flag > PGPORT > vset.yaml > default
	if flags.Port != 0 {
		cfg.Port = flags.Port
	} else if envVars.PGPORT != "" {
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer", envVars.PGPORT)
		}
		cfg.Port = port
	} else if pc.Port != 0 {
		cfg.Port = pc.Port
	} else {
		cfg.Port = 5432
	}

	// Username: flag > PGUSER > vset.yaml > current OS user
	cfg.Username = flags.Username
	if cfg.Username == "" {
		cfg.Username = envVars.PGUSER
	}
	if cfg.Username == "" {
		cfg.Username = pc.Username
	}
	if cfg.Username == "" {
		if currentUser := os.Getenv("USER"); currentUser != "" {
			cfg.Username = currentUser
		} else if currentUser := os.Getenv("USERNAME"); currentUser != "" {
			cfg.Username = currentUser
		}
	}

	cfg.Password = envVars.PGPASSWORD

	// Database: flag > PGDATABASE > vset.yaml
	cfg.Database = flags.Database
	if cfg.Database == "" {
		cfg.Database = envVars.PGDATABASE
	}
	if cfg.Database == "" {
		cfg.Database = pc.Database
	}

	// SSLMode: flag > PGSSLMODE > vset.yaml > default
	cfg.SSLMode = flags.SSLMode
	if cfg.SSLMode == "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = pc.SSLMode
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}

	return cfg, nil
}
