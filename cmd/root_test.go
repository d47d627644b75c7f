package cmd

import (
	"testing"

	"github.com/dbaudit/sqlserver3nf/pkg/config"
)

func TestRootCommand_Structure(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}
	if rootCmd.Use != "sqlserver3nf [test]" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "sqlserver3nf [test]")
	}
	if err := rootCmd.Args(rootCmd, []string{"test", "extra"}); err == nil {
		t.Error("expected more than one positional argument to be rejected")
	}
}

func TestSourcesForArgs_TestArgumentSwapsToDemoSource(t *testing.T) {
	configured := &config.Config{Sources: []config.Source{{Name: "prod"}}}

	got := sourcesForArgs(configured, []string{"test"})
	if len(got) != 1 || got[0].Name != "test" {
		t.Errorf("expected the demo test source, got %+v", got)
	}
}

func TestSourcesForArgs_NoArgumentsUsesConfiguredSources(t *testing.T) {
	configured := &config.Config{Sources: []config.Source{{Name: "prod"}}}

	got := sourcesForArgs(configured, nil)
	if len(got) != 1 || got[0].Name != "prod" {
		t.Errorf("expected the configured source, got %+v", got)
	}
}
