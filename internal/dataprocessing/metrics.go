package dataprocessing

import (
	"sort"

	"taskdash/pkg/contracts/domain"
)

// Summary computes the headline metrics. The average covers completed tasks
// with a known duration.
func Summary(tasks []domain.Task) domain.SummaryMetrics {
	var completed int
	var days mean
	projects := map[string]struct{}{}
	assignees := map[string]struct{}{}

	for _, t := range tasks {
		if t.Status.IsCompleted() {
			completed++
		}
		if d, ok := finishedDays(t); ok {
			days.add(float64(d))
		}
		if t.Project != "" {
			projects[t.Project] = struct{}{}
		}
		if t.AssignedTo != "" {
			assignees[t.AssignedTo] = struct{}{}
		}
	}

	return domain.SummaryMetrics{
		TotalTasks:        len(tasks),
		CompletedTasks:    completed,
		CompletionRate:    percent(completed, len(tasks)),
		AvgCompletionDays: days.ptr(),
		ActiveProjects:    len(projects),
		ActiveAssignees:   len(assignees),
	}
}

// Assignments counts tasks per assigner and per assignee
func Assignments(tasks []domain.Task) domain.AssignmentDistribution {
	by, to := counter{}, counter{}
	for _, t := range tasks {
		by.add(t.AssignedBy, 1)
		to.add(t.AssignedTo, 1)
	}
	return domain.AssignmentDistribution{
		AssignedBy: by.entries(),
		AssignedTo: to.entries(),
	}
}

// StatusDistribution counts tasks per status. The seven lifecycle statuses are
// always present, in lifecycle order; any other values follow by name.
func StatusDistribution(tasks []domain.Task) []domain.CountEntry {
	counts := map[domain.TaskStatus]int{}
	for _, t := range tasks {
		counts[t.Status]++
	}

	out := make([]domain.CountEntry, 0, len(counts)+len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		out = append(out, domain.CountEntry{Name: string(s), Count: counts[s]})
		delete(counts, s)
	}

	var others []domain.CountEntry
	for s, n := range counts {
		name := string(s)
		if name == "" {
			name = "unknown"
		}
		others = append(others, domain.CountEntry{Name: name, Count: n})
	}
	sort.Slice(others, func(i, j int) bool { return others[i].Name < others[j].Name })

	return append(out, others...)
}

// MessageTypes counts messages per type, most frequent first
func MessageTypes(messages []domain.Message) []domain.CountEntry {
	c := counter{}
	for _, m := range messages {
		c.add(string(m.Type), 1)
	}
	return c.entries()
}
