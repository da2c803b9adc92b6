package dataprocessing

import (
	"strings"

	"taskdash/pkg/contracts/domain"
)

// TaskPredicate selects tasks
type TaskPredicate func(domain.Task) bool

// Predicates builds one predicate per constrained filter field. The result is
// empty for an empty filter.
func Predicates(f domain.TaskFilter) ([]TaskPredicate, error) {
	var preds []TaskPredicate

	if domain.IsSet(f.Project) {
		want := strings.TrimSpace(f.Project)
		preds = append(preds, func(t domain.Task) bool { return strings.EqualFold(t.Project, want) })
	}
	if domain.IsSet(f.ContentType) {
		want := strings.TrimSpace(f.ContentType)
		preds = append(preds, func(t domain.Task) bool { return strings.EqualFold(t.ContentType, want) })
	}
	if domain.IsSet(f.AssignedTo) {
		want := strings.TrimSpace(f.AssignedTo)
		preds = append(preds, func(t domain.Task) bool { return strings.EqualFold(t.AssignedTo, want) })
	}
	if domain.IsSet(f.Status) {
		want := domain.ParseTaskStatus(f.Status)
		preds = append(preds, func(t domain.Task) bool { return t.Status == want })
	}

	from, to, err := f.DateRange()
	if err != nil {
		return nil, err
	}
	// tasks without a date cannot satisfy a range
	if from.Valid() {
		preds = append(preds, func(t domain.Task) bool { return t.Date.Valid() && !t.Date.Before(from.Time) })
	}
	if to.Valid() {
		preds = append(preds, func(t domain.Task) bool { return t.Date.Valid() && !t.Date.After(to.Time) })
	}

	return preds, nil
}

// ApplyFilter returns the tasks matching every constrained field, preserving
// input order. An unknown value simply selects nothing.
func ApplyFilter(tasks []domain.Task, f domain.TaskFilter) ([]domain.Task, error) {
	preds, err := Predicates(f)
	if err != nil {
		return nil, err
	}
	return Select(tasks, preds...), nil
}

// Select keeps the tasks that satisfy all predicates
func Select(tasks []domain.Task, preds ...TaskPredicate) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesAll(t, preds) {
			out = append(out, t)
		}
	}
	return out
}

func matchesAll(t domain.Task, preds []TaskPredicate) bool {
	for _, p := range preds {
		if !p(t) {
			return false
		}
	}
	return true
}
