package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taskdash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseTable reads CSV content into a raw table. Files that contain nothing
// but '#' comment lines are placeholders and yield an empty table; in any
// other file a leading '#' is data.
func parseTable(name string, content []byte) (domain.Table, error) {
	table := domain.Table{Name: name, Header: []string{}, Rows: [][]string{}}

	table.BOM = bytes.HasPrefix(content, utf8BOM)
	content = bytes.TrimPrefix(content, utf8BOM)
	if isPlaceholder(content) {
		return table, nil
	}
	table.CRLF = bytes.Contains(content, []byte("\r\n"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return table, nil
	}
	if err != nil {
		return table, fmt.Errorf("read header: %w", err)
	}
	table.Header = header

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table, fmt.Errorf("read row %d: %w", len(table.Rows)+2, err)
		}
		if isBlankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

func isPlaceholder(content []byte) bool {
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 && line[0] != '#' {
			return false
		}
	}
	return true
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// columnIndex resolves header names, ignoring case, surrounding whitespace,
// BOMs and zero-width characters.
type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, col := range header {
		key := normalizeColumn(col)
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func normalizeColumn(col string) string {
	col = strings.TrimSpace(col)
	col = strings.TrimLeft(col, "\u200B\u200C\u200D\u2060\uFEFF")
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(col)
}

// has reports whether any of the aliases is present
func (c columnIndex) has(aliases ...string) bool {
	for _, alias := range aliases {
		if _, ok := c[alias]; ok {
			return true
		}
	}
	return false
}

// get returns the trimmed value of the first alias present in the header
func (c columnIndex) get(record []string, aliases ...string) string {
	for _, alias := range aliases {
		i, ok := c[alias]
		if !ok {
			continue
		}
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	return ""
}

// parseInt accepts integers and integral floats such as "3.0"
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// splitList splits a comma separated cell into trimmed non-empty items
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
