package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig creates config.yaml in a temp directory with the given
// contents and returns its path.
func writeConfig(t *testing.T, yamlContent string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_MinimalSource(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: primary
    host: db.example.com
    database: analytics
    username: audit_reader
`)
	os.Unsetenv("MSSQL_PASSWORD")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(cfg.Sources))
	}
	src := cfg.Sources[0]
	if src.Host != "db.example.com" {
		t.Errorf("expected host db.example.com, got %s", src.Host)
	}
	if src.Port != 1433 {
		t.Errorf("expected default port 1433, got %d", src.Port)
	}
	if src.AuthMethod != "sql" {
		t.Errorf("expected default auth method sql, got %s", src.AuthMethod)
	}
}

func TestLoad_PasswordFromEnvOnly(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: primary
    host: db.example.com
    database: analytics
    username: audit_reader
`)
	t.Setenv("MSSQL_PASSWORD", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Sources[0].Password != "s3cret" {
		t.Errorf("expected password from env, got %q", cfg.Sources[0].Password)
	}
}

func TestLoad_LimitsDefaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: primary
    host: db.example.com
    database: analytics
    username: audit_reader
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Limits.MaxDeterminantSize != 3 {
		t.Errorf("expected MaxDeterminantSize=3, got %d", cfg.Limits.MaxDeterminantSize)
	}
	if cfg.Limits.DeterminantPoolSize != 15 {
		t.Errorf("expected DeterminantPoolSize=15, got %d", cfg.Limits.DeterminantPoolSize)
	}
	if cfg.Limits.MaxDependentsTested != 60 {
		t.Errorf("expected MaxDependentsTested=60, got %d", cfg.Limits.MaxDependentsTested)
	}
	if cfg.Thresholds.MinRowsForConfidentResults != 200 {
		t.Errorf("expected MinRowsForConfidentResults=200, got %d", cfg.Thresholds.MinRowsForConfidentResults)
	}
}

func TestLoad_ScopeAndOverridesFromYAML(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: primary
    host: db.example.com
    database: analytics
    username: audit_reader
scope:
  include_schemas: "^dbo$"
  table_allowlist: ["dbo.Orders", "dbo.OrderLines"]
overrides:
  force_key:
    "dbo.Orders": ["OrderID"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Scope.IncludeSchemas != "^dbo$" {
		t.Errorf("expected include_schemas ^dbo$, got %s", cfg.Scope.IncludeSchemas)
	}
	if len(cfg.Scope.TableAllowlist) != 2 {
		t.Errorf("expected 2 allowlist entries, got %d", len(cfg.Scope.TableAllowlist))
	}
	key, ok := cfg.Overrides.ForceKey["dbo.Orders"]
	if !ok || len(key) != 1 || key[0] != "OrderID" {
		t.Errorf("expected force_key dbo.Orders=[OrderID], got %v", cfg.Overrides.ForceKey)
	}
}

func TestLoad_RejectsEmptySources(t *testing.T) {
	path := writeConfig(t, `
sources: []
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for empty sources, got nil")
	}
	if !strings.Contains(err.Error(), "at least one source") {
		t.Errorf("expected 'at least one source' in error, got: %v", err)
	}
}

func TestLoad_RejectsDuplicateSourceNames(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: primary
    host: a.example.com
    database: d1
  - name: primary
    host: b.example.com
    database: d2
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for duplicate source names, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate source name") {
		t.Errorf("expected 'duplicate source name' in error, got: %v", err)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected error when config file is missing")
	}
}

func TestTestSources_ReturnsSingleLocalDemoSource(t *testing.T) {
	sources := TestSources()
	if len(sources) != 1 {
		t.Fatalf("expected 1 test source, got %d", len(sources))
	}
	if sources[0].Database != "audit_demo" {
		t.Errorf("expected database audit_demo, got %s", sources[0].Database)
	}
}
