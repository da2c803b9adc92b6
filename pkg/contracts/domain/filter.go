package domain

import (
	"fmt"
	"strings"
	"time"
)

// FilterAll is the sentinel selection meaning "do not filter on this field"
const FilterAll = "All"

// TaskFilter is the set of selections applied to the task table before any
// aggregation. Empty or "All" fields are ignored. Dates use YYYY-MM-DD and
// both ends are inclusive.
type TaskFilter struct {
	Project     string `json:"project,omitempty" query:"project" validate:"omitempty,max=200"`
	ContentType string `json:"content_type,omitempty" query:"content_type" validate:"omitempty,max=200"`
	AssignedTo  string `json:"assigned_to,omitempty" query:"assigned_to" validate:"omitempty,max=200"`
	Status      string `json:"status,omitempty" query:"status" validate:"omitempty,max=50"`
	From        string `json:"from,omitempty" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string `json:"to,omitempty" query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// IsSet reports whether a selection value constrains the result
func IsSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, FilterAll)
}

// Empty reports whether the filter selects every task
func (f TaskFilter) Empty() bool {
	return !IsSet(f.Project) && !IsSet(f.ContentType) && !IsSet(f.AssignedTo) &&
		!IsSet(f.Status) && f.From == "" && f.To == ""
}

// DateRange parses From and To. Missing ends are returned as zero dates.
func (f TaskFilter) DateRange() (from, to Date, err error) {
	if f.From != "" {
		t, perr := time.Parse(DateLayout, f.From)
		if perr != nil {
			return Date{}, Date{}, fmt.Errorf("invalid from date %q: %w", f.From, perr)
		}
		from = NewDate(t)
	}
	if f.To != "" {
		t, perr := time.Parse(DateLayout, f.To)
		if perr != nil {
			return Date{}, Date{}, fmt.Errorf("invalid to date %q: %w", f.To, perr)
		}
		to = NewDate(t)
	}
	if from.Valid() && to.Valid() && to.Before(from.Time) {
		return Date{}, Date{}, fmt.Errorf("date range end %s is before start %s", f.To, f.From)
	}
	return from, to, nil
}

// TrendParams selects the bucketing of the efficiency trend
type TrendParams struct {
	Granularity string `json:"granularity" query:"granularity" validate:"omitempty,oneof=month quarter"`
	Window      int    `json:"window" query:"window" validate:"omitempty,min=1,max=24"`
}

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportParams selects the output format of a table export
type ExportParams struct {
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}
