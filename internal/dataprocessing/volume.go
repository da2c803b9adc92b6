package dataprocessing

import (
	"sort"

	"taskdash/pkg/contracts/domain"
)

// MonthlyVolume counts tasks per calendar month and project. Months are in
// chronological order whatever the input order; tasks without a date are
// left out and a blank project is counted as Unspecified.
func MonthlyVolume(tasks []domain.Task) domain.MonthlyVolume {
	type cell struct{ month, project string }

	counts := map[cell]int{}
	labels := map[string]string{}
	projects := map[string]struct{}{}

	for _, t := range tasks {
		if !t.Date.Valid() {
			continue
		}
		key, label := monthKey(t.Date)
		project := labelOrUnspecified(t.Project)
		labels[key] = label
		projects[project] = struct{}{}
		counts[cell{key, project}]++
	}

	result := domain.MonthlyVolume{
		Months:   make([]string, 0, len(labels)),
		Projects: sortedKeys(projects),
		Rows:     make([]domain.MonthlyVolumeRow, 0, len(counts)),
	}
	for _, key := range sortedKeys(labels) {
		result.Months = append(result.Months, labels[key])
	}

	for c, n := range counts {
		result.Rows = append(result.Rows, domain.MonthlyVolumeRow{
			Month:    labels[c.month],
			MonthKey: c.month,
			Project:  c.project,
			Count:    n,
		})
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.MonthKey != b.MonthKey {
			return a.MonthKey < b.MonthKey
		}
		return a.Project < b.Project
	})

	return result
}

// ContentByProject counts tasks per (project, content type)
func ContentByProject(tasks []domain.Task) []domain.ProjectContentCount {
	type cell struct{ project, contentType string }

	counts := map[cell]int{}
	for _, t := range tasks {
		counts[cell{t.Project, t.ContentType}]++
	}

	out := make([]domain.ProjectContentCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, domain.ProjectContentCount{Project: c.project, ContentType: c.contentType, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Project != out[j].Project {
			return out[i].Project < out[j].Project
		}
		return out[i].ContentType < out[j].ContentType
	})
	return out
}

// WorkloadHeatmap pivots task counts with assignees as rows and months as
// columns, zero-filled. Tasks without a date or an assignee are left out.
func WorkloadHeatmap(tasks []domain.Task) domain.Matrix {
	labels := map[string]string{}
	members := map[string]struct{}{}
	for _, t := range tasks {
		if !t.Date.Valid() || t.AssignedTo == "" {
			continue
		}
		key, label := monthKey(t.Date)
		labels[key] = label
		members[t.AssignedTo] = struct{}{}
	}

	monthKeys := sortedKeys(labels)
	columns := make([]string, len(monthKeys))
	for i, k := range monthKeys {
		columns[i] = labels[k]
	}

	return pivot(tasks, sortedKeys(members), monthKeys, columns, func(t domain.Task) (string, string, bool) {
		if !t.Date.Valid() || t.AssignedTo == "" {
			return "", "", false
		}
		key, _ := monthKey(t.Date)
		return t.AssignedTo, key, true
	})
}

// pivot counts tasks into a rows × columnKeys grid. columns holds the display
// label of each column key.
func pivot(tasks []domain.Task, rows, columnKeys, columns []string, cellOf func(domain.Task) (string, string, bool)) domain.Matrix {
	rowIndex := make(map[string]int, len(rows))
	for i, r := range rows {
		rowIndex[r] = i
	}
	colIndex := make(map[string]int, len(columnKeys))
	for j, c := range columnKeys {
		colIndex[c] = j
	}

	values := make([][]int, len(rows))
	for i := range values {
		values[i] = make([]int, len(columnKeys))
	}

	for _, t := range tasks {
		r, c, ok := cellOf(t)
		if !ok {
			continue
		}
		i, okRow := rowIndex[r]
		j, okCol := colIndex[c]
		if okRow && okCol {
			values[i][j]++
		}
	}

	return domain.Matrix{Rows: rows, Columns: columns, Values: values}
}
