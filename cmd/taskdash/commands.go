package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"taskdash/internal/app"
	"taskdash/internal/dataprocessing"
	apierrors "taskdash/internal/errors"
	"taskdash/internal/files"
	taskmw "taskdash/internal/middleware"
	"taskdash/internal/services"
	"taskdash/pkg/contracts/domain"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				c.cfg.Server.Port = port
			}
			return c.runServe(cmd, args)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides the config)")
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	application, err := app.New(c.cfg, c.logger, app.Options{})
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	return application.Run(cmd.Context())
}

// filterFlags binds the dashboard filter to command line flags
type filterFlags struct {
	filter domain.TaskFilter
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.filter.Project, "project", "", "only tasks of this project")
	fs.StringVar(&f.filter.ContentType, "content-type", "", "only tasks of this content type")
	fs.StringVar(&f.filter.AssignedTo, "assigned-to", "", "only tasks assigned to this member")
	fs.StringVar(&f.filter.Status, "status", "", "only tasks with this status")
	fs.StringVar(&f.filter.From, "from", "", "first task date, YYYY-MM-DD")
	fs.StringVar(&f.filter.To, "to", "", "last task date, YYYY-MM-DD")
}

func (f *filterFlags) validate(c *cli) error {
	if err := taskmw.NewValidationMiddleware(c.logger, nil).ValidateStruct(f.filter); err != nil {
		return usageError("invalid filter: %v", err)
	}
	return nil
}

// dashboard builds the service stack without HTTP or telemetry
func (c *cli) dashboard() *services.DashboardService {
	loader := dataprocessing.NewLoader(c.cfg.Data.Files(), c.logger)
	return services.NewDashboardService(services.NewDatasetCache(loader, nil, c.logger), nil, c.logger)
}

// cliError converts service errors to exit-code aware errors
func cliError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrInvalidFilter), errors.Is(err, services.ErrUnsupportedFormat):
		return usageError("%v", err)
	case errors.Is(err, services.ErrTableNotFound), errors.Is(err, services.ErrTaskNotFound):
		return apierrors.NewAppError(apierrors.ErrTypeNotFound, err.Error(), err)
	case errors.Is(err, services.ErrDatasetUnavailable):
		return apierrors.NewStorageError("load dataset", err)
	default:
		return err
	}
}

// report is the JSON document printed by the report command
type report struct {
	Dataset           services.DatasetInfo         `json:"dataset"`
	Filter            domain.TaskFilter            `json:"filter"`
	Summary           domain.SummaryMetrics        `json:"summary"`
	CompletionBuckets domain.CompletionBucketTable `json:"completion_buckets"`
}

func newReportCmd(c *cli) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print summary metrics and completion buckets as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(c); err != nil {
				return err
			}
			ctx := cmd.Context()
			dashboard := c.dashboard()

			info, err := dashboard.Info(ctx)
			if err != nil {
				return cliError(err)
			}
			summary, err := dashboard.Summary(ctx, flags.filter)
			if err != nil {
				return cliError(err)
			}
			buckets, err := dashboard.CompletionBuckets(ctx, flags.filter)
			if err != nil {
				return cliError(err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report{
				Dataset:           info,
				Filter:            flags.filter,
				Summary:           summary,
				CompletionBuckets: buckets,
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		flags  filterFlags
		format string
		output string
		trend  domain.TrendParams
	)
	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Write a table or the summary workbook to CSV or XLSX",
		Long: `Writes one input table (tasks, projects, team_members, content_types,
messages) or the dashboard summary workbook (summary, xlsx only).

Raw tables are exported verbatim. The task filter flags narrow the tasks
table and the summary workbook.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != domain.FormatCSV && format != domain.FormatXLSX {
				return usageError("format must be csv or xlsx, got %q", format)
			}
			if err := flags.validate(c); err != nil {
				return err
			}
			if trend.Granularity == "" {
				trend.Granularity = c.cfg.Dashboard.TrendGranularity
			}
			if trend.Window <= 0 {
				trend.Window = c.cfg.Dashboard.RollingWindow
			}

			ctx := cmd.Context()
			dashboard := c.dashboard()
			result, err := services.NewExportService(dashboard, nil, c.logger).
				Export(ctx, args[0], format, flags.filter, trend)
			if err != nil {
				return cliError(err)
			}

			path := output
			if path == "" {
				path = result.FileName
			}
			manager := files.NewManager(c.cfg.Data.Files(), "", c.logger)
			if err := manager.WriteFile(path, result.Data); err != nil {
				return apierrors.NewStorageError("write export", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", result.Rows, filepath.Clean(path))
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", domain.FormatCSV, "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <table>.<format> in the working directory)")
	cmd.Flags().StringVar(&trend.Granularity, "granularity", "", "efficiency trend granularity for the summary, month or quarter")
	cmd.Flags().IntVar(&trend.Window, "window", 0, "rolling mean window for the summary")
	return cmd
}

func newSetupCmd(c *cli) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the data directory and any missing input files",
		Long: `Ensures every configured input file exists. A missing file is copied from
the source directory, extracted from the first csv code block of <name>.md
there, or written as an empty placeholder. Existing files are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := files.NewManager(c.cfg.Data.Files(), source, c.logger).Setup(cmd.Context())
			if err != nil {
				return apierrors.NewStorageError("set up data directory", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tACTION\tSOURCE")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Path, r.Action, r.Source)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "directory to copy missing files from")
	return cmd
}
