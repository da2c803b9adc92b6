package dataprocessing

import (
	"sort"

	"taskdash/pkg/contracts/domain"
)

// counter accumulates counts per name, skipping blank names
type counter map[string]int

func (c counter) add(name string, n int) {
	if name == "" {
		return
	}
	c[name] += n
}

// entries returns the counts by descending count, then name
func (c counter) entries() []domain.CountEntry {
	out := make([]domain.CountEntry, 0, len(c))
	for name, count := range c {
		out = append(out, domain.CountEntry{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// mean accumulates a running average
type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

func (m mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

// ptr returns nil for an empty mean
func (m mean) ptr() *float64 {
	if m.count == 0 {
		return nil
	}
	v := m.value()
	return &v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// finishedDays reports the completion days of a completed task
func finishedDays(t domain.Task) (int, bool) {
	if !t.Status.IsCompleted() || t.CompletionDays == nil {
		return 0, false
	}
	return *t.CompletionDays, true
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// labelOrUnspecified names a blank grouping value
func labelOrUnspecified(s string) string {
	if s == "" {
		return Unspecified
	}
	return s
}
