package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"taskdash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	UseCRLF   bool
}

// WriteTable writes the header and rows of a table unchanged
func (c *CSVWriter) WriteTable(w io.Writer, table domain.Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	writer.UseCRLF = options.UseCRLF

	if len(table.Header) > 0 {
		if err := writer.Write(table.Header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range table.Rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	c.logger.Debug("table written",
		slog.String("table", table.Name),
		slog.Int("rows", len(table.Rows)))
	return nil
}
