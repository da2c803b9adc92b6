package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"taskdash/internal/dataprocessing"
	apierrors "taskdash/internal/errors"
	"taskdash/internal/exporter"
	"taskdash/internal/infrastructure"
	"taskdash/pkg/contracts/domain"
)

// SummaryTable is the pseudo table name of the dashboard summary workbook
const SummaryTable = "summary"

// ExportResult is a rendered export ready to be served or saved
type ExportResult struct {
	FileName    string
	ContentType string
	Rows        int
	Data        []byte
}

// ExportService renders tables as CSV or XLSX
type ExportService struct {
	dashboard *DashboardService
	csv       *exporter.CSVWriter
	xlsx      *exporter.XLSXWriter
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewExportService creates an export service on top of the dashboard service
func NewExportService(dashboard *DashboardService, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		dashboard: dashboard,
		csv:       exporter.NewCSVWriter(logger),
		xlsx:      exporter.NewXLSXWriter(logger),
		metrics:   metrics,
		logger:    logger.With(slog.String("service", "export")),
	}
}

// Tables lists the exportable raw tables
func (s *ExportService) Tables(ctx context.Context) ([]domain.TableInfo, error) {
	ds, err := s.dashboard.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.TableInfos(), nil
}

// Table returns a raw table as read from disk
func (s *ExportService) Table(ctx context.Context, name string) (domain.Table, error) {
	ds, err := s.dashboard.Dataset(ctx)
	if err != nil {
		return domain.Table{}, err
	}
	table, ok := ds.RawTable(name)
	if !ok {
		return domain.Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return table, nil
}

// Export renders a table. Raw tables are written verbatim; the tasks table
// follows the filter when one is set, and "summary" produces the dashboard
// workbook (XLSX only).
func (s *ExportService) Export(ctx context.Context, name, format string, filter domain.TaskFilter, params domain.TrendParams) (ExportResult, error) {
	contentType, err := exporter.ContentType(format)
	if err != nil {
		return ExportResult{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	var tables []domain.Table
	switch {
	case dataprocessing.Slug(name) == SummaryTable:
		if format != domain.FormatXLSX {
			return ExportResult{}, fmt.Errorf("%w: summary is only available as %s", ErrUnsupportedFormat, domain.FormatXLSX)
		}
		tables, err = s.summaryTables(ctx, filter, params)
	case dataprocessing.Slug(name) == dataprocessing.TableTasks && !filter.Empty():
		var table domain.TaskTable
		table, err = s.dashboard.Tasks(ctx, filter)
		tables = []domain.Table{exporter.TaskTable("Tasks", table.Tasks)}
	default:
		var table domain.Table
		table, err = s.Table(ctx, name)
		tables = []domain.Table{table}
	}
	if err != nil {
		return ExportResult{}, err
	}

	var buf bytes.Buffer
	if format == domain.FormatCSV {
		err = s.csv.WriteTable(&buf, tables[0], exporter.WriteOptions{BOMPrefix: tables[0].BOM, UseCRLF: tables[0].CRLF})
	} else {
		err = s.xlsx.WriteTables(&buf, tables...)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "export failed",
			slog.String("table", name),
			slog.String("format", format),
			slog.String("error", err.Error()))
		return ExportResult{}, apierrors.NewExportError(fmt.Sprintf("export %s as %s", name, format), err)
	}

	rows := 0
	for _, t := range tables {
		rows += len(t.Rows)
	}
	infrastructure.RecordExport(ctx, s.metrics, dataprocessing.Slug(name), format)
	s.logger.InfoContext(ctx, "table exported",
		slog.String("table", name),
		slog.String("format", format),
		slog.Int("rows", rows),
		slog.Int("bytes", buf.Len()))

	displayName := tables[0].Name
	if len(tables) > 1 {
		displayName = "Dashboard Summary"
	}
	return ExportResult{
		FileName:    exporter.FileName(displayName, format),
		ContentType: contentType,
		Rows:        rows,
		Data:        buf.Bytes(),
	}, nil
}

func (s *ExportService) summaryTables(ctx context.Context, filter domain.TaskFilter, params domain.TrendParams) ([]domain.Table, error) {
	view, err := s.dashboard.View(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	table, err := s.dashboard.Tasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	return exporter.SummaryTables(view, dataprocessing.TasksByID(table.Tasks)), nil
}
