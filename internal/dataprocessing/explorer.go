package dataprocessing

import (
	"fmt"
	"sort"

	"taskdash/pkg/contracts/domain"
)

// FilterOptions lists the selectable values of each filter, sorted, and the
// task date range.
func FilterOptions(tasks []domain.Task) domain.FilterOptions {
	projects := map[string]struct{}{}
	types := map[string]struct{}{}
	assignees := map[string]struct{}{}
	statuses := map[string]struct{}{}
	var minDate, maxDate domain.Date

	for _, t := range tasks {
		add(projects, t.Project)
		add(types, t.ContentType)
		add(assignees, t.AssignedTo)
		add(statuses, string(t.Status))
		if !t.Date.Valid() {
			continue
		}
		if !minDate.Valid() || t.Date.Before(minDate.Time) {
			minDate = t.Date
		}
		if !maxDate.Valid() || t.Date.After(maxDate.Time) {
			maxDate = t.Date
		}
	}

	return domain.FilterOptions{
		Projects:     sortedKeys(projects),
		ContentTypes: sortedKeys(types),
		Assignees:    sortedKeys(assignees),
		Statuses:     sortedKeys(statuses),
		MinDate:      minDate,
		MaxDate:      maxDate,
	}
}

func add(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

// TaskTable returns the filtered tasks in file order with the
// "Showing X of Y tasks" caption.
func TaskTable(filtered []domain.Task, total int) domain.TaskTable {
	if filtered == nil {
		filtered = []domain.Task{}
	}
	return domain.TaskTable{
		Tasks:   filtered,
		Shown:   len(filtered),
		Total:   total,
		Caption: fmt.Sprintf("Showing %d of %d tasks", len(filtered), total),
	}
}

// FindTask looks a task up by id
func FindTask(tasks []domain.Task, id int) (domain.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// TaskDetail assembles the single-task view
func TaskDetail(task domain.Task, messages []domain.Message) domain.TaskDetail {
	return domain.TaskDetail{
		Task:              task,
		CompletionMessage: CompletionMessage(task),
		History:           CommunicationHistory(messages, task.ID),
	}
}

// CompletionMessage renders "Completed in N day(s)" for delivered tasks
func CompletionMessage(t domain.Task) string {
	if !t.Delivered() || t.CompletionDays == nil {
		return ""
	}
	days := *t.CompletionDays
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("Completed in %d %s", days, unit)
}

// TasksByID returns the tasks sorted by id, used by exports that need a
// stable order independent of file order
func TasksByID(tasks []domain.Task) []domain.Task {
	out := append([]domain.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
