package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"taskdash/internal/config"
	apierrors "taskdash/internal/errors"
	"taskdash/internal/infrastructure"
	"taskdash/pkg/contracts"
)

// cli carries the persistent flags and what PersistentPreRunE derives from them
type cli struct {
	configFile string
	dataDir    string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "taskdash",
		Short: "Marketing task analytics dashboard",
		Long: `taskdash loads the marketing task tables (tasks, projects, team members,
content types, messages) from a data directory and serves the dashboard API.

Run without a subcommand to start the HTTP server.`,
		Version:           contracts.GetVersionInfo().String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runServe,
	}

	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "YAML config file (default: $TASKDASH_CONFIG or ./config.yaml)")
	root.PersistentFlags().StringVarP(&c.dataDir, "data-dir", "d", "", "directory holding the input files")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newServeCmd(c),
		newReportCmd(c),
		newExportCmd(c),
		newSetupCmd(c),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the logger.
// Commands other than serve write their result to stdout, so their logs go to
// stderr.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if c.configFile != "" {
		cfg, err = config.LoadFrom(c.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return apierrors.NewConfigError("load configuration", err)
	}

	if c.dataDir != "" {
		cfg.Data.Dir = c.dataDir
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if !servesHTTP(cmd) && cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return apierrors.NewConfigError("initialize logger", err)
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}

func servesHTTP(cmd *cobra.Command) bool {
	return cmd.Name() == "serve" || !cmd.HasParent()
}

// usageError marks a bad flag value so the process exits with the usage code
func usageError(format string, args ...interface{}) error {
	return apierrors.NewAppValidationError(fmt.Sprintf(format, args...))
}
