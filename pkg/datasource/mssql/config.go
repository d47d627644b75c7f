package mssql

import (
	"fmt"
)

// Config contains SQL Server-specific connection options for a single source.
// Populated from config.Source (see pkg/config) rather than a generic map,
// since the engine's source list is itself a typed YAML/env structure.
type Config struct {
	Host     string
	Port     int
	Database string

	// AuthMethod determines which authentication to use.
	// One of "sql", "service_principal", "managed_identity".
	AuthMethod string

	// SQL Authentication fields.
	Username string
	Password string

	// Service Principal (Azure AD) fields.
	TenantID     string
	ClientID     string
	ClientSecret string

	// Managed Identity - pre-acquired Azure AD access token, either supplied
	// directly or obtained at connect time via azidentity (see azureauth.go).
	AzureAccessToken string

	// Connection options.
	Encrypt                bool
	TrustServerCertificate bool
	ConnectionTimeoutSecs  int
}

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeoutSecs returns the default connection timeout in seconds.
func DefaultConnectionTimeoutSecs() int {
	return 30
}

// Validate checks that the config has all fields required by its auth method.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.AuthMethod {
	case "sql":
		if c.Username == "" {
			return fmt.Errorf("username is required for sql authentication")
		}
	case "service_principal":
		if c.TenantID == "" {
			return fmt.Errorf("tenant_id is required for service_principal authentication")
		}
		if c.ClientID == "" {
			return fmt.Errorf("client_id is required for service_principal authentication")
		}
		if c.ClientSecret == "" {
			return fmt.Errorf("client_secret is required for service_principal authentication")
		}
	case "managed_identity":
		// AzureAccessToken may still be empty here: NewAdapter acquires it via
		// azidentity before Validate is called, unless the caller supplied one.
	default:
		return fmt.Errorf("invalid auth method: %s (must be sql, service_principal, or managed_identity)", c.AuthMethod)
	}

	return nil
}
