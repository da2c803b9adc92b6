// Package exporter writes dashboard tables to CSV and XLSX.
//
// CSVWriter re-serializes a raw table verbatim: the header and rows are
// written exactly as they were read, with the source's BOM and line endings
// reproduced through WriteOptions.
//
// XLSXWriter writes one or more tables into a workbook with one sheet per
// table, using excelize. SummaryTables turns a dashboard view into the
// tables of the summary workbook.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter(logger)
//	err := csvWriter.WriteTable(w, table, exporter.WriteOptions{BOMPrefix: table.BOM, UseCRLF: table.CRLF})
//
//	xlsxWriter := exporter.NewXLSXWriter(logger)
//	err = xlsxWriter.WriteTables(w, exporter.SummaryTables(view, tasks)...)
package exporter
