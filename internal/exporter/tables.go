package exporter

import (
	"strings"

	"taskdash/pkg/contracts/domain"
)

var taskHeader = []string{
	"task_id", "date", "task_name", "project", "content_type", "work_scope",
	"assigned_by", "assigned_to", "assigned_on", "delivered_on",
	"update_status", "revision_cycles", "completion_days", "issues_faced",
}

// TaskTable renders parsed tasks as a table, used when the export follows
// the dashboard filter rather than the raw file
func TaskTable(name string, tasks []domain.Task) domain.Table {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			formatInt(t.ID),
			t.Date.String(),
			t.Name,
			t.Project,
			t.ContentType,
			t.WorkScope,
			t.AssignedBy,
			t.AssignedTo,
			t.AssignedOn.String(),
			t.DeliveredOn.String(),
			string(t.Status),
			formatInt(t.RevisionCycles),
			formatOptionalInt(t.CompletionDays),
			t.IssuesFaced,
		})
	}
	return domain.Table{Name: name, Header: append([]string(nil), taskHeader...), Rows: rows}
}

// SummaryTables lays the dashboard view out as the sheets of the summary
// workbook, followed by the tasks it was computed from
func SummaryTables(view domain.DashboardView, tasks []domain.Task) []domain.Table {
	tables := []domain.Table{
		summaryTable(view),
		monthlyVolumeTable(view.MonthlyVolume),
		bucketTable(view.CompletionBuckets),
		assignmentTable(view.Assignments),
		contentByProjectTable(view.ContentByProject),
		trendTable(view.EfficiencyTrend),
		countTable("Statuses", "status", view.Statuses),
	}
	return append(tables, TaskTable("Tasks", tasks))
}

func summaryTable(view domain.DashboardView) domain.Table {
	s := view.Summary
	rows := [][]string{
		{"Total Tasks", formatInt(s.TotalTasks)},
		{"Completed Tasks", formatInt(s.CompletedTasks)},
		{"Completion Rate (%)", formatFloat(s.CompletionRate)},
		{"Avg Completion Days", formatOptionalFloat(s.AvgCompletionDays)},
		{"Active Projects", formatInt(s.ActiveProjects)},
		{"Active Assignees", formatInt(s.ActiveAssignees)},
	}

	f := view.Filter
	for _, sel := range []struct{ label, value string }{
		{"Filter: Project", f.Project},
		{"Filter: Content Type", f.ContentType},
		{"Filter: Assigned To", f.AssignedTo},
		{"Filter: Status", f.Status},
		{"Filter: From", f.From},
		{"Filter: To", f.To},
	} {
		if strings.TrimSpace(sel.value) != "" {
			rows = append(rows, []string{sel.label, sel.value})
		}
	}
	if !view.GeneratedAt.IsZero() {
		rows = append(rows, []string{"Generated At", view.GeneratedAt.UTC().Format("2006-01-02 15:04:05")})
	}

	return domain.Table{Name: "Summary", Header: []string{"metric", "value"}, Rows: rows}
}

// monthlyVolumeTable pivots months into rows and projects into columns
func monthlyVolumeTable(mv domain.MonthlyVolume) domain.Table {
	header := append([]string{"month"}, mv.Projects...)

	col := make(map[string]int, len(mv.Projects))
	for i, p := range mv.Projects {
		col[p] = i + 1
	}
	index := make(map[string]int, len(mv.Months))
	rows := make([][]string, len(mv.Months))
	for i, m := range mv.Months {
		index[m] = i
		row := make([]string, len(header))
		row[0] = m
		for j := 1; j < len(row); j++ {
			row[j] = "0"
		}
		rows[i] = row
	}
	for _, r := range mv.Rows {
		i, ok := index[r.Month]
		j, found := col[r.Project]
		if ok && found {
			rows[i][j] = formatInt(r.Count)
		}
	}

	return domain.Table{Name: "Monthly Volume", Header: header, Rows: rows}
}

func bucketTable(bt domain.CompletionBucketTable) domain.Table {
	header := []string{"content_type"}
	for _, b := range bt.Buckets {
		header = append(header, string(b))
	}
	header = append(header, "total")

	rows := make([][]string, 0, len(bt.Rows)+2)
	for _, r := range bt.Rows {
		row := []string{r.ContentType}
		for _, c := range r.Counts {
			row = append(row, formatInt(c))
		}
		rows = append(rows, append(row, formatInt(r.Total)))
	}

	totals := []string{"Total"}
	for _, c := range bt.Totals {
		totals = append(totals, formatInt(c))
	}
	rows = append(rows, append(totals, formatInt(bt.Total)))
	if bt.Unclassified > 0 {
		rows = append(rows, []string{"Unclassified", formatInt(bt.Unclassified)})
	}

	return domain.Table{Name: "Completion Buckets", Header: header, Rows: rows}
}

func assignmentTable(ad domain.AssignmentDistribution) domain.Table {
	rows := make([][]string, 0, len(ad.AssignedBy)+len(ad.AssignedTo))
	for _, e := range ad.AssignedBy {
		rows = append(rows, []string{"assigned_by", e.Name, formatInt(e.Count)})
	}
	for _, e := range ad.AssignedTo {
		rows = append(rows, []string{"assigned_to", e.Name, formatInt(e.Count)})
	}
	return domain.Table{Name: "Assignments", Header: []string{"role", "name", "count"}, Rows: rows}
}

func contentByProjectTable(counts []domain.ProjectContentCount) domain.Table {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Project, c.ContentType, formatInt(c.Count)})
	}
	return domain.Table{Name: "Content by Project", Header: []string{"project", "content_type", "count"}, Rows: rows}
}

func trendTable(trend domain.EfficiencyTrend) domain.Table {
	rows := make([][]string, 0, len(trend.Points))
	for _, p := range trend.Points {
		rows = append(rows, []string{p.Period, formatInt(p.TaskCount), formatFloat(p.AvgCompletionDays), formatFloat(p.RollingAvg)})
	}
	return domain.Table{
		Name:   "Efficiency Trend",
		Header: []string{"period", "task_count", "avg_completion_days", "rolling_avg"},
		Rows:   rows,
	}
}

func countTable(name, label string, entries []domain.CountEntry) domain.Table {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, formatInt(e.Count)})
	}
	return domain.Table{Name: name, Header: []string{label, "count"}, Rows: rows}
}
