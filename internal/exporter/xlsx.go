package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"taskdash/pkg/contracts/domain"
)

const (
	maxSheetName   = 31
	maxColumnWidth = 60
)

// XLSXWriter writes tables into an Excel workbook, one sheet per table
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new XLSX writer instance
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger.With(slog.String("component", "xlsx_writer"))}
}

// WriteTables writes the tables as sheets of a single workbook. Cell values
// are written as text so the content matches the CSV export.
func (x *XLSXWriter) WriteTables(w io.Writer, tables ...domain.Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool, len(tables))
	for i, table := range tables {
		sheet := uniqueSheetName(table.Name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		if err := x.writeSheet(f, sheet, table, headerStyle); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (x *XLSXWriter) writeSheet(f *excelize.File, sheet string, table domain.Table, headerStyle int) error {
	widths := make([]int, len(table.Header))

	row := 1
	if len(table.Header) > 0 {
		if err := setRow(f, sheet, row, table.Header, widths); err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(table.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
		row++
	}

	for _, record := range table.Rows {
		if err := setRow(f, sheet, row, record, widths); err != nil {
			return err
		}
		row++
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(min(width+2, maxColumnWidth))); err != nil {
			return err
		}
	}

	x.logger.Debug("sheet written",
		slog.String("sheet", sheet),
		slog.Int("rows", len(table.Rows)))
	return nil
}

// setRow writes values as strings, growing widths for the columns it sees
func setRow(f *excelize.File, sheet string, row int, values []string, widths []int) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
		if i < len(widths) {
			widths[i] = max(widths[i], utf8.RuneCountInString(v))
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

// uniqueSheetName trims a table name to Excel's sheet name rules
func uniqueSheetName(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Sheet"
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}

	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		runes := []rune(name)
		if len(runes)+len(suffix) > maxSheetName {
			runes = runes[:maxSheetName-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
