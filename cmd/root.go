// Package cmd wires the cobra CLI surface: a single root command that loads
// configuration, stands up logging, and runs the audit.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dbaudit/sqlserver3nf/pkg/apperrors"
	"github.com/dbaudit/sqlserver3nf/pkg/config"
	"github.com/dbaudit/sqlserver3nf/pkg/runner"
	"github.com/dbaudit/sqlserver3nf/pkg/writer"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sqlserver3nf [test]",
	Short: "Audit SQL Server tables for 2NF/3NF readiness",
	Long: `sqlserver3nf profiles the configured tables, ranks candidate keys and
functional dependencies from measured evidence, and proposes 2NF/3NF
decompositions backed by that evidence. No DDL is ever issued against the
source database.

Pass "test" as the sole argument to run against a local demo database
instead of the sources in the configuration file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		runCfg := *cfg
		runCfg.Sources = sourcesForArgs(cfg, args)
		return runAudit(c.Context(), &runCfg)
	},
}

// sourcesForArgs returns the demo test source when the CLI's sole
// positional argument is "test", else the configured source list.
func sourcesForArgs(cfg *config.Config, args []string) []config.Source {
	if len(args) == 1 && args[0] == "test" {
		return config.TestSources()
	}
	return cfg.Sources
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the audit configuration file")
	cobra.OnInitialize(initConfig)
}

// initConfig loads configuration and stands up logging before the command
// runs. A configuration error here is unrecoverable and before any analysis
// begins, so it exits non-zero immediately (spec.md §6's CLI exit-code
// contract).
func initConfig() {
	loaded, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", apperrors.ErrConfiguration, err)
		os.Exit(1)
	}
	cfg = loaded

	var logErr error
	if cfg.Env == "local" {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", logErr)
		os.Exit(1)
	}
}

// Execute runs the root command. Exit code 0 covers completion including
// per-table failures recorded in the manifest; non-zero is reserved for
// configuration/connectivity errors raised before analysis begins.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func runAudit(ctx context.Context, runCfg *config.Config) error {
	runID := uuid.NewString()
	runLog := logger.With(zap.String("run_id", runID))

	w, err := writer.New(runCfg.Output.BasePath, time.Now().UTC().Format("20060102_150405"))
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}

	r, err := runner.New(runner.NewMSSQLConnector(), w, runCfg, runLog)
	if err != nil {
		return err
	}

	if err := r.Run(ctx); err != nil {
		return err
	}
	runLog.Info("audit run complete", zap.String("output", w.RunRoot()))
	return nil
}
