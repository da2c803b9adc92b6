package dataprocessing

import (
	"taskdash/pkg/contracts/domain"
)

// Unspecified labels tasks with a blank grouping field
const Unspecified = "Unspecified"

// Trend granularities
const (
	GranularityMonth   = "month"
	GranularityQuarter = "quarter"
)

// CompletionBuckets classifies completed tasks by completion days and content
// type. Every bucket is present in every row so chart axes stay stable.
func CompletionBuckets(tasks []domain.Task) domain.CompletionBucketTable {
	buckets := domain.CompletionBuckets()
	position := make(map[domain.CompletionBucket]int, len(buckets))
	for i, b := range buckets {
		position[b] = i
	}

	byType := map[string][]int{}
	table := domain.CompletionBucketTable{
		Buckets: buckets,
		Rows:    []domain.CompletionBucketRow{},
		Totals:  make([]int, len(buckets)),
	}

	for _, t := range tasks {
		if !t.Status.IsCompleted() {
			continue
		}
		days, ok := finishedDays(t)
		if !ok {
			table.Unclassified++
			continue
		}
		name := labelOrUnspecified(t.ContentType)
		counts, exists := byType[name]
		if !exists {
			counts = make([]int, len(buckets))
			byType[name] = counts
		}
		i := position[domain.BucketFor(days)]
		counts[i]++
		table.Totals[i]++
		table.Total++
	}

	for _, name := range sortedKeys(byType) {
		counts := byType[name]
		total := 0
		for _, n := range counts {
			total += n
		}
		table.Rows = append(table.Rows, domain.CompletionBucketRow{ContentType: name, Counts: counts, Total: total})
	}

	return table
}

// EfficiencyTrend averages completion days of completed tasks per month or
// quarter of the task date, in chronological order, with a trailing rolling
// mean over up to window periods.
func EfficiencyTrend(tasks []domain.Task, granularity string, window int) domain.EfficiencyTrend {
	if granularity != GranularityMonth {
		granularity = GranularityQuarter
	}
	if window < 1 {
		window = 1
	}

	periods := map[string]*mean{}
	for _, t := range tasks {
		days, ok := finishedDays(t)
		if !ok || !t.Date.Valid() {
			continue
		}
		key := quarterKey(t.Date)
		if granularity == GranularityMonth {
			key, _ = monthKey(t.Date)
		}
		m, exists := periods[key]
		if !exists {
			m = &mean{}
			periods[key] = m
		}
		m.add(float64(days))
	}

	trend := domain.EfficiencyTrend{
		Granularity: granularity,
		Window:      window,
		Points:      make([]domain.TrendPoint, 0, len(periods)),
	}
	for _, key := range sortedKeys(periods) {
		trend.Points = append(trend.Points, domain.TrendPoint{
			Period:            key,
			TaskCount:         periods[key].count,
			AvgCompletionDays: periods[key].value(),
		})
	}

	for i := range trend.Points {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var rolling mean
		for _, p := range trend.Points[start : i+1] {
			rolling.add(p.AvgCompletionDays)
		}
		trend.Points[i].RollingAvg = rolling.value()
	}

	return trend
}

// RevisionBenchmarks compares each content type's observed completion days
// and revision cycles with the averages recorded in the content type table.
// Content types appear if they have tasks or a table entry.
func RevisionBenchmarks(tasks []domain.Task, contentTypes []domain.ContentType) []domain.RevisionBenchmark {
	type acc struct {
		tasks, completed int
		days, revisions  mean
	}

	stats := map[string]*acc{}
	get := func(name string) *acc {
		a, ok := stats[name]
		if !ok {
			a = &acc{}
			stats[name] = a
		}
		return a
	}

	for _, t := range tasks {
		if t.ContentType == "" {
			continue
		}
		a := get(t.ContentType)
		a.tasks++
		a.revisions.add(float64(t.RevisionCycles))
		if t.Status.IsCompleted() {
			a.completed++
		}
		if d, ok := finishedDays(t); ok {
			a.days.add(float64(d))
		}
	}

	expected := map[string]domain.ContentType{}
	for _, ct := range contentTypes {
		expected[ct.Name] = ct
		get(ct.Name)
	}

	out := make([]domain.RevisionBenchmark, 0, len(stats))
	for _, name := range sortedKeys(stats) {
		a := stats[name]
		b := domain.RevisionBenchmark{
			ContentType:        name,
			TaskCount:          a.tasks,
			CompletedCount:     a.completed,
			ActualAvgDays:      a.days.ptr(),
			ActualAvgRevisions: a.revisions.value(),
		}
		if ct, ok := expected[name]; ok {
			days, revisions := ct.AvgCompletionDays, ct.AvgRevisionCycles
			b.ExpectedAvgDays = &days
			b.ExpectedAvgRevisions = &revisions
			if b.ActualAvgDays != nil {
				delta := *b.ActualAvgDays - days
				b.DaysDelta = &delta
			}
		}
		out = append(out, b)
	}
	return out
}
