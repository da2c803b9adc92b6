package dataprocessing

import (
	"strings"
	"time"

	"taskdash/pkg/contracts/domain"
)

// dateLayouts are tried in order. Slash dates are read month first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2006",
	"January 2006",
}

// parseDate parses a cell in any supported layout. Empty and unparsable cells
// return a missing date and false.
func parseDate(s string) (domain.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return domain.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.NewDate(t), true
		}
	}
	return domain.Date{}, false
}

// monthKey returns a sortable key and a display label for the month of d
func monthKey(d domain.Date) (key, label string) {
	return d.Format("2006-01"), d.Format("Jan 2006")
}

// quarterKey returns labels such as "2024Q3", which also sort chronologically
func quarterKey(d domain.Date) string {
	q := (int(d.Month())-1)/3 + 1
	return d.Format("2006") + "Q" + string(rune('0'+q))
}
