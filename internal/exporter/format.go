package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"taskdash/pkg/contracts/domain"
)

// FileName builds the download name of a table: lower case, spaces replaced
// by underscores, plus the format extension ("Team Members" → "team_members.csv")
func FileName(name, format string) string {
	base := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if base == "" {
		base = "export"
	}
	return base + "." + format
}

// ContentType returns the MIME type of an export format
func ContentType(format string) (string, error) {
	switch format {
	case domain.FormatCSV:
		return "text/csv; charset=utf-8", nil
	case domain.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatOptionalFloat renders nil as an empty cell
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func formatOptionalInt(i *int) string {
	if i == nil {
		return ""
	}
	return formatInt(*i)
}
