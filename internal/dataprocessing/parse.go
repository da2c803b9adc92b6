package dataprocessing

import (
	"fmt"
	"strings"
	"time"

	"taskdash/pkg/contracts/domain"
)

// Column aliases, first match wins
var (
	colTaskID         = []string{"task_id", "id"}
	colDate           = []string{"date", "created_on", "created"}
	colTaskName       = []string{"task_name", "name", "task"}
	colProject        = []string{"project", "project_name"}
	colContentType    = []string{"content_type", "type"}
	colWorkScope      = []string{"work_scope", "scope"}
	colAssignedBy     = []string{"assigned_by"}
	colAssignedTo     = []string{"assigned_to", "assignee"}
	colAssignedOn     = []string{"assigned_on"}
	colDeliveredOn    = []string{"delivered_on"}
	colStatus         = []string{"update_status", "status"}
	colRevisionCycles = []string{"revision_cycles", "revisions"}
	colCompletionDays = []string{"completion_days"}
	colIssuesFaced    = []string{"issues_faced", "issues"}
)

// parseTasks converts the raw task table. completion_days is derived from
// assigned_on and delivered_on (or now when undelivered); the file's own
// completion_days column is only used when assigned_on is missing.
func parseTasks(table domain.Table, file string, now time.Time) ([]domain.Task, []Warning) {
	tasks := make([]domain.Task, 0, len(table.Rows))
	if len(table.Header) == 0 {
		return tasks, nil
	}

	var warnings []Warning
	idx := newColumnIndex(table.Header)
	hasID := idx.has(colTaskID...)
	if !hasID {
		warnings = append(warnings, Warning{
			Kind:    WarningMissingColumns,
			File:    file,
			Message: "task_id column missing, using row numbers",
		})
	}

	today := domain.NewDate(now)
	for i, row := range table.Rows {
		id := i + 1
		if hasID {
			n, ok := parseInt(idx.get(row, colTaskID...))
			if !ok {
				warnings = append(warnings, Warning{
					Kind:    WarningInvalidRow,
					File:    file,
					Message: fmt.Sprintf("row %d: invalid task_id %q, row skipped", i+2, idx.get(row, colTaskID...)),
				})
				continue
			}
			id = n
		}

		date, _ := parseDate(idx.get(row, colDate...))
		assignedOn, _ := parseDate(idx.get(row, colAssignedOn...))
		deliveredOn, _ := parseDate(idx.get(row, colDeliveredOn...))
		revisions, _ := parseInt(idx.get(row, colRevisionCycles...))
		if revisions < 0 {
			revisions = 0
		}

		task := domain.Task{
			ID:             id,
			Date:           date,
			Name:           idx.get(row, colTaskName...),
			Project:        idx.get(row, colProject...),
			ContentType:    idx.get(row, colContentType...),
			WorkScope:      idx.get(row, colWorkScope...),
			AssignedBy:     idx.get(row, colAssignedBy...),
			AssignedTo:     idx.get(row, colAssignedTo...),
			AssignedOn:     assignedOn,
			DeliveredOn:    deliveredOn,
			Status:         domain.ParseTaskStatus(idx.get(row, colStatus...)),
			RevisionCycles: revisions,
			IssuesFaced:    idx.get(row, colIssuesFaced...),
		}
		task.CompletionDays = completionDays(task, idx.get(row, colCompletionDays...), today)

		tasks = append(tasks, task)
	}

	return tasks, warnings
}

// completionDays returns whole days from assignment to delivery, or to today
// while undelivered. Negative spans are treated as undefined.
func completionDays(t domain.Task, fileValue string, today domain.Date) *int {
	if t.AssignedOn.Valid() {
		end := today
		if t.DeliveredOn.Valid() {
			end = t.DeliveredOn
		}
		days := t.AssignedOn.DaysUntil(end)
		if days < 0 {
			return nil
		}
		return &days
	}
	if n, ok := parseInt(fileValue); ok && n >= 0 {
		return &n
	}
	return nil
}

func parseProjects(table domain.Table, file string) ([]domain.Project, []Warning) {
	projects := make([]domain.Project, 0, len(table.Rows))
	if len(table.Header) == 0 {
		return projects, nil
	}

	var warnings []Warning
	idx := newColumnIndex(table.Header)
	for i, row := range table.Rows {
		name := idx.get(row, "name", "project", "project_name")
		if name == "" {
			continue
		}
		start, _ := parseDate(idx.get(row, "start_date", "start"))
		end, _ := parseDate(idx.get(row, "end_date", "end"))
		if start.Valid() && end.Valid() && end.Before(start.Time) {
			warnings = append(warnings, Warning{
				Kind:    WarningInvalidRow,
				File:    file,
				Message: fmt.Sprintf("row %d: project %q ends before it starts, end date ignored", i+2, name),
			})
			end = domain.Date{}
		}
		projects = append(projects, domain.Project{
			Name:        name,
			Phase:       idx.get(row, "phase"),
			Type:        idx.get(row, "type", "project_type"),
			Description: idx.get(row, "description"),
			StartDate:   start,
			EndDate:     end,
		})
	}
	return projects, warnings
}

func parseTeamMembers(table domain.Table) []domain.TeamMember {
	members := make([]domain.TeamMember, 0, len(table.Rows))
	if len(table.Header) == 0 {
		return members
	}

	idx := newColumnIndex(table.Header)
	for _, row := range table.Rows {
		name := idx.get(row, "name", "member", "team_member")
		if name == "" {
			continue
		}
		joined, _ := parseDate(idx.get(row, "joined_date", "joined", "join_date"))
		members = append(members, domain.TeamMember{
			Name:           name,
			Role:           idx.get(row, "role"),
			Team:           idx.get(row, "team", "department"),
			Specialization: idx.get(row, "specialization"),
			JoinedDate:     joined,
			Email:          idx.get(row, "email"),
		})
	}
	return members
}

// parseContentTypes resolves each free-text priority to a level. Text that
// maps to no level is kept as the note and reported as a warning.
func parseContentTypes(table domain.Table, file string) ([]domain.ContentType, []Warning) {
	types := make([]domain.ContentType, 0, len(table.Rows))
	if len(table.Header) == 0 {
		return types, nil
	}

	var warnings []Warning
	idx := newColumnIndex(table.Header)
	for _, row := range table.Rows {
		name := idx.get(row, "name", "content_type", "type")
		if name == "" {
			continue
		}

		priorityText := idx.get(row, "priority_level", "priority")
		level, ok := domain.ParsePriority(priorityText)
		if !ok && priorityText != "" {
			warnings = append(warnings, Warning{
				Kind:    WarningUnmappedPriority,
				File:    file,
				Message: fmt.Sprintf("content type %q: priority %q matches no level", name, priorityText),
			})
		}
		note := idx.get(row, "priority_note")
		if note == "" {
			note = priorityText
		}

		avgDays, _ := parseFloat(idx.get(row, "avg_completion_days"))
		avgRevisions, _ := parseFloat(idx.get(row, "avg_revision_cycles"))

		types = append(types, domain.ContentType{
			Name:              name,
			Description:       idx.get(row, "description"),
			AvgCompletionDays: avgDays,
			AvgRevisionCycles: avgRevisions,
			Priority:          level,
			PriorityNote:      note,
			TypicalAssignedTo: idx.get(row, "typical_assigned_to"),
			TypicalTools:      splitList(idx.get(row, "typical_tools", "tools")),
			FileFormats:       idx.get(row, "file_formats"),
			BestPractices:     idx.get(row, "best_practices"),
		})
	}
	return types, warnings
}

func parseMessages(table domain.Table, file string) ([]domain.Message, []Warning) {
	messages := make([]domain.Message, 0, len(table.Rows))
	if len(table.Header) == 0 {
		return messages, nil
	}

	var warnings []Warning
	idx := newColumnIndex(table.Header)
	for i, row := range table.Rows {
		taskID, ok := parseInt(idx.get(row, "task_id"))
		if !ok {
			warnings = append(warnings, Warning{
				Kind:    WarningInvalidRow,
				File:    file,
				Message: fmt.Sprintf("row %d: invalid task_id, message skipped", i+2),
			})
			continue
		}
		date, _ := parseDate(idx.get(row, "date", "sent_on"))
		messages = append(messages, domain.Message{
			TaskID:     taskID,
			Date:       date,
			Sender:     idx.get(row, "sender", "from"),
			Recipient:  idx.get(row, "recipient", "to"),
			Content:    idx.get(row, "content", "message", "body"),
			Attachment: idx.get(row, "attachment"),
			Type:       domain.MessageType(strings.ToLower(idx.get(row, "message_type", "type"))),
		})
	}
	return messages, warnings
}
