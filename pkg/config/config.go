package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the frozen configuration record for a run: where to connect, what
// to include, and the thresholds that turn raw measurements into accept/reject
// decisions. It is read once at startup from config.yaml with environment
// variable overrides for the handful of scalar fields that support both;
// connection secrets must come from the environment only.
type Config struct {
	// Sources lists the named connections to audit. Keyed by name so the
	// manifest and per-table output folders (source_{name}/...) can refer
	// back to a source without repeating its connection string.
	Sources []Source `yaml:"sources"`

	// Env selects the logging posture: "local" gets zap's human-readable
	// development encoder, anything else gets the JSON production encoder.
	Env string `yaml:"env" env:"AUDIT_ENV" env-default:"local"`

	Scope      ScopeConfig      `yaml:"scope"`
	Overrides  OverridesConfig  `yaml:"overrides"`
	Limits     LimitsConfig     `yaml:"limits"`
	Sampling   SamplingConfig   `yaml:"sampling"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Output     OutputConfig     `yaml:"output"`

	// ExcludeColumnsRegex matches ETL/audit columns (created_at, etl_*, ...)
	// that must never become a determinant or dependent.
	ExcludeColumnsRegex string `yaml:"exclude_columns_regex" env-default:"(?i)^(created|createdon|created_at|updated|updatedon|updated_at|load_.*|etl_.*|dw_.*|hash_.*|rowversion|timestamp)$"`

	// BlobTypes are lowercase dialect type names the profiler and selector
	// must never treat as candidate determinants or dependents.
	BlobTypes []string `yaml:"blob_types"`
}

// Source names one SQL Server connection to audit.
type Source struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" env-default:"1433"`
	Database string `yaml:"database"`

	// AuthMethod is one of "sql", "service_principal", "managed_identity".
	AuthMethod string `yaml:"auth_method" env-default:"sql"`
	Username   string `yaml:"username"`
	Password   string `yaml:"-" env:"MSSQL_PASSWORD"`

	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"-" env:"MSSQL_CLIENT_SECRET"`

	Encrypt                bool `yaml:"encrypt" env-default:"true"`
	TrustServerCertificate bool `yaml:"trust_server_certificate" env-default:"false"`
	ConnectionTimeoutSecs  int  `yaml:"connection_timeout_secs" env-default:"30"`
}

// ScopeConfig filters which (schema, table) pairs are audited.
type ScopeConfig struct {
	IncludeSchemas string   `yaml:"include_schemas"`
	ExcludeSchemas string   `yaml:"exclude_schemas"`
	IncludeTables  string   `yaml:"include_tables"`
	ExcludeTables  string   `yaml:"exclude_tables"`
	TableAllowlist []string `yaml:"table_allowlist"`
}

// OverridesConfig holds per-table manual corrections, keyed by "schema.table".
type OverridesConfig struct {
	ForceKey            map[string][]string `yaml:"force_key"`
	ForceIncludeColumns map[string][]string `yaml:"force_include_columns"`
	IgnoreColumns       map[string][]string `yaml:"ignore_columns"`
}

// LimitsConfig bounds the combinatorial work the key finder and FD discoverer
// may do per table.
type LimitsConfig struct {
	MaxDeterminantSize      int `yaml:"max_determinant_size" env-default:"3"`
	DeterminantPoolSize     int `yaml:"determinant_pool_size" env-default:"15"`
	MaxDependentsTested     int `yaml:"max_dependents_tested" env-default:"60"`
	ConfirmTopNKeys         int `yaml:"confirm_top_n_keys" env-default:"5"`
	ConfirmTopNFDsPerTable  int `yaml:"confirm_top_n_fds_per_table" env-default:"50"`
}

// SamplingConfig parameterizes the sampling planner (see pkg/sampling).
type SamplingConfig struct {
	FullScanMaxRows int     `yaml:"full_scan_max_rows" env-default:"500000"`
	SampleTargetRows int    `yaml:"sample_target_rows" env-default:"200000"`
	SampleMinPct    float64 `yaml:"sample_min_pct" env-default:"1.0"`
	SampleMaxPct    float64 `yaml:"sample_max_pct" env-default:"2.0"`
}

// ThresholdsConfig holds the accept/reject cutoffs for keys and FDs.
type ThresholdsConfig struct {
	KeyMaxDupRowPct            float64 `yaml:"key_max_dup_row_pct" env-default:"0.01"`
	KeyMaxNullRowPct           float64 `yaml:"key_max_null_row_pct" env-default:"0.01"`
	FDMinCoveragePct           float64 `yaml:"fd_min_coverage_pct" env-default:"80.0"`
	FDMaxViolatingGroupPct     float64 `yaml:"fd_max_violating_group_pct" env-default:"1.0"`
	FDMaxViolatingRowPct       float64 `yaml:"fd_max_violating_row_pct" env-default:"1.0"`
	MinRowsForConfidentResults int     `yaml:"min_rows_for_confident_results" env-default:"200"`
}

// OutputConfig controls where the writer places run artifacts.
type OutputConfig struct {
	BasePath string `yaml:"base_path" env:"AUDIT_OUTPUT_BASE_PATH" env-default:"./audit-runs"`
}

// Load reads configuration from config.yaml with environment variable
// overrides for connection secrets and output path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the options the runner cannot safely default: at least one
// source, and every source carrying a name and host.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("source missing name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name: %s", s.Name)
		}
		seen[s.Name] = true
		if s.Host == "" {
			return fmt.Errorf("source %s: host is required", s.Name)
		}
		if s.Database == "" {
			return fmt.Errorf("source %s: database is required", s.Name)
		}
	}
	return nil
}

// TestSources returns a single local demo source, used when the CLI's `test`
// positional argument is given instead of the configured source list.
func TestSources() []Source {
	return []Source{
		{
			Name:       "test",
			Host:       "localhost",
			Port:       1433,
			Database:   "audit_demo",
			AuthMethod: "sql",
			Username:   "sa",
			Password:   "AuditDemo!2024",
			Encrypt:    false,
		},
	}
}
