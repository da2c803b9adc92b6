package domain

import "strings"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	StatusAssigned          TaskStatus = "assigned"
	StatusInProgress        TaskStatus = "in-progress"
	StatusFeedbackReceived  TaskStatus = "feedback-received"
	StatusMultipleRevisions TaskStatus = "multiple-revisions"
	StatusCompleted         TaskStatus = "completed"
	StatusSent              TaskStatus = "sent"
	StatusNotPrioritized    TaskStatus = "not-prioritized"
)

// AllStatuses returns every known status in lifecycle order
func AllStatuses() []TaskStatus {
	return []TaskStatus{
		StatusAssigned,
		StatusInProgress,
		StatusFeedbackReceived,
		StatusMultipleRevisions,
		StatusCompleted,
		StatusSent,
		StatusNotPrioritized,
	}
}

// ParseTaskStatus normalizes free text ("In Progress", "in_progress") into a
// status. Unknown values are returned lower-cased and hyphenated so they can
// still be counted.
func ParseTaskStatus(s string) TaskStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	return TaskStatus(s)
}

// Known reports whether s is one of the seven lifecycle statuses
func (s TaskStatus) Known() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsCompleted reports whether the task counts as done
func (s TaskStatus) IsCompleted() bool {
	return s == StatusCompleted || s == StatusSent
}

// IsActive reports whether the task is still being worked on
func (s TaskStatus) IsActive() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusFeedbackReceived, StatusMultipleRevisions:
		return true
	}
	return false
}

// Task is one marketing deliverable tracked from assignment to delivery
type Task struct {
	ID             int        `json:"task_id"`
	Date           Date       `json:"date"`
	Name           string     `json:"task_name"`
	Project        string     `json:"project"`
	ContentType    string     `json:"content_type"`
	WorkScope      string     `json:"work_scope,omitempty"`
	AssignedBy     string     `json:"assigned_by"`
	AssignedTo     string     `json:"assigned_to"`
	AssignedOn     Date       `json:"assigned_on"`
	DeliveredOn    Date       `json:"delivered_on"`
	Status         TaskStatus `json:"update_status"`
	RevisionCycles int        `json:"revision_cycles"`
	// CompletionDays is nil until the task has been assigned
	CompletionDays *int   `json:"completion_days"`
	IssuesFaced    string `json:"issues_faced,omitempty"`
}

// Delivered reports whether the task has a delivery date
func (t Task) Delivered() bool {
	return t.DeliveredOn.Valid()
}

// Project is a real-estate project that tasks are produced for
type Project struct {
	Name        string `json:"name"`
	Phase       string `json:"phase,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
}

// TeamMember is a person who assigns or executes tasks
type TeamMember struct {
	Name           string `json:"name"`
	Role           string `json:"role,omitempty"`
	Team           string `json:"team,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	JoinedDate     Date   `json:"joined_date"`
	Email          string `json:"email,omitempty"`
}

// ContentType is the media category of a task together with its benchmarks
type ContentType struct {
	Name              string        `json:"name"`
	Description       string        `json:"description,omitempty"`
	AvgCompletionDays float64       `json:"avg_completion_days"`
	AvgRevisionCycles float64       `json:"avg_revision_cycles"`
	Priority          PriorityLevel `json:"priority"`
	// PriorityNote keeps the original free-text priority description
	PriorityNote      string   `json:"priority_note,omitempty"`
	TypicalAssignedTo string   `json:"typical_assigned_to,omitempty"`
	TypicalTools      []string `json:"typical_tools,omitempty"`
	FileFormats       string   `json:"file_formats,omitempty"`
	BestPractices     string   `json:"best_practices,omitempty"`
}

// MessageType categorizes a message exchanged about a task
type MessageType string

const (
	MessageFeedback     MessageType = "feedback"
	MessageRevision     MessageType = "revision"
	MessageApproval     MessageType = "approval"
	MessageConfirmation MessageType = "confirmation"
	MessageUrgency      MessageType = "urgency"
)

// Message is a single communication about a task
type Message struct {
	TaskID     int         `json:"task_id"`
	Date       Date        `json:"date"`
	Sender     string      `json:"sender"`
	Recipient  string      `json:"recipient"`
	Content    string      `json:"content"`
	Attachment string      `json:"attachment,omitempty"`
	Type       MessageType `json:"message_type"`
}
