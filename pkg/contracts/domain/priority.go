package domain

import (
	"sort"
	"strings"
)

// PriorityLevel is the coarse urgency category of a content type
type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "Critical"
	PriorityHigh     PriorityLevel = "High"
	PriorityMedium   PriorityLevel = "Medium"
	PriorityLow      PriorityLevel = "Low"
	PriorityUnknown  PriorityLevel = "Unknown"
)

// PriorityLevels returns the mapped levels from most to least urgent
func PriorityLevels() []PriorityLevel {
	return []PriorityLevel{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// priorityPrefixes maps lower-case leading phrases to a level. The longest
// matching prefix wins, so "medium-high" is High and "low-medium" is Medium.
var priorityPrefixes = map[string]PriorityLevel{
	"critical":    PriorityCritical,
	"urgent":      PriorityCritical,
	"very high":   PriorityCritical,
	"highest":     PriorityCritical,
	"high":        PriorityHigh,
	"medium-high": PriorityHigh,
	"medium high": PriorityHigh,
	"medium":      PriorityMedium,
	"moderate":    PriorityMedium,
	"normal":      PriorityMedium,
	"low-medium":  PriorityMedium,
	"medium-low":  PriorityMedium,
	"low medium":  PriorityMedium,
	"low":         PriorityLow,
	"lowest":      PriorityLow,
}

// prefixesByLength is priorityPrefixes' keys, longest first
var prefixesByLength = func() []string {
	keys := make([]string, 0, len(priorityPrefixes))
	for k := range priorityPrefixes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ParsePriority maps free text such as "High - launch critical" to a level.
// ok is false when no prefix matches; the level is then PriorityUnknown.
func ParsePriority(text string) (level PriorityLevel, ok bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return PriorityUnknown, false
	}
	for _, prefix := range prefixesByLength {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		// the prefix must end on a word boundary ("lowest" is not "low" + "est")
		if len(s) > len(prefix) && isWordChar(s[len(prefix)]) {
			continue
		}
		return priorityPrefixes[prefix], true
	}
	return PriorityUnknown, false
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
