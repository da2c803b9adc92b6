package domain

import "time"

// CompletionBucket labels a range of completion days
type CompletionBucket string

const (
	BucketSameDay     CompletionBucket = "Same Day"
	BucketOneToThree  CompletionBucket = "1-3 Days"
	BucketFourToSeven CompletionBucket = "4-7 Days"
	BucketOverSeven   CompletionBucket = "7+ Days"
)

// CompletionBuckets returns the bucket labels in axis order
func CompletionBuckets() []CompletionBucket {
	return []CompletionBucket{BucketSameDay, BucketOneToThree, BucketFourToSeven, BucketOverSeven}
}

// BucketFor classifies a non-negative day count. Only zero days is Same Day;
// a one-day task falls in 1-3 Days.
func BucketFor(days int) CompletionBucket {
	switch {
	case days <= 0:
		return BucketSameDay
	case days <= 3:
		return BucketOneToThree
	case days <= 7:
		return BucketFourToSeven
	default:
		return BucketOverSeven
	}
}

// SummaryMetrics is the headline row of the dashboard
type SummaryMetrics struct {
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate"` // percentage, 0 when there are no tasks
	// AvgCompletionDays is nil when no task has a defined duration
	AvgCompletionDays *float64 `json:"avg_completion_days"`
	ActiveProjects    int      `json:"active_projects"`
	ActiveAssignees   int      `json:"active_assignees"`
}

// CountEntry is one labelled count of a distribution
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthlyVolumeRow counts the tasks of one project in one month
type MonthlyVolumeRow struct {
	Month    string `json:"month"`     // display label, e.g. "Jul 2024"
	MonthKey string `json:"month_key"` // sortable key, e.g. "2024-07"
	Project  string `json:"project"`
	Count    int    `json:"count"`
}

// MonthlyVolume is the month × project task count series
type MonthlyVolume struct {
	Months   []string           `json:"months"`
	Projects []string           `json:"projects"`
	Rows     []MonthlyVolumeRow `json:"rows"`
}

// AssignmentDistribution counts tasks by who assigned and who executed them
type AssignmentDistribution struct {
	AssignedBy []CountEntry `json:"assigned_by"`
	AssignedTo []CountEntry `json:"assigned_to"`
}

// CompletionBucketRow holds the bucket counts of one content type.
// Counts is aligned with CompletionBucketTable.Buckets.
type CompletionBucketRow struct {
	ContentType string `json:"content_type"`
	Counts      []int  `json:"counts"`
	Total       int    `json:"total"`
}

// CompletionBucketTable is the content type × completion bucket pivot over
// completed tasks. Completed tasks without a known duration are counted in
// Unclassified, so Total + Unclassified is the number of completed tasks.
type CompletionBucketTable struct {
	Buckets      []CompletionBucket    `json:"buckets"`
	Rows         []CompletionBucketRow `json:"rows"`
	Totals       []int                 `json:"totals"`
	Total        int                   `json:"total"`
	Unclassified int                   `json:"unclassified"`
}

// ProjectContentCount counts tasks of one content type within one project
type ProjectContentCount struct {
	Project     string `json:"project"`
	ContentType string `json:"content_type"`
	Count       int    `json:"count"`
}

// TrendPoint is one period of the efficiency trend
type TrendPoint struct {
	Period            string  `json:"period"`
	TaskCount         int     `json:"task_count"`
	AvgCompletionDays float64 `json:"avg_completion_days"`
	RollingAvg        float64 `json:"rolling_avg"`
}

// EfficiencyTrend is the chronological series of mean completion days
type EfficiencyTrend struct {
	Granularity string       `json:"granularity"`
	Window      int          `json:"window"`
	Points      []TrendPoint `json:"points"`
}

// Matrix is a zero-filled pivot of counts. Values[i][j] belongs to Rows[i]
// and Columns[j].
type Matrix struct {
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
	Values  [][]int  `json:"values"`
}

// PriorityAssignment records the level resolved for one content type
type PriorityAssignment struct {
	ContentType string        `json:"content_type"`
	Priority    PriorityLevel `json:"priority"`
	Note        string        `json:"note,omitempty"`
}

// PriorityDistribution counts content types per priority level. Content types
// whose free-text priority could not be mapped are listed in Unmapped rather
// than counted.
type PriorityDistribution struct {
	Levels       []CountEntry         `json:"levels"`
	ContentTypes []PriorityAssignment `json:"content_types"`
	Unmapped     []string             `json:"unmapped"`
}

// NetworkNode is a participant of the communication network
type NetworkNode struct {
	Name     string `json:"name"`
	Sent     int    `json:"sent"`
	Received int    `json:"received"`
}

// NetworkEdge is a weighted directed sender → recipient edge
type NetworkEdge struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Weight    int    `json:"weight"`
}

// CommunicationNetwork is the directed message graph
type CommunicationNetwork struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
}

// NoHistoryNotice is reported when a task has no messages
const NoHistoryNotice = "no communication history"

// CommunicationHistory lists the messages of one task in date order
type CommunicationHistory struct {
	TaskID     int       `json:"task_id"`
	HasHistory bool      `json:"has_history"`
	Notice     string    `json:"notice,omitempty"`
	Messages   []Message `json:"messages"`
}

// RevisionBenchmark compares observed delivery against a content type's expectations
type RevisionBenchmark struct {
	ContentType          string   `json:"content_type"`
	TaskCount            int      `json:"task_count"`
	CompletedCount       int      `json:"completed_count"`
	ActualAvgDays        *float64 `json:"actual_avg_days"`
	ExpectedAvgDays      *float64 `json:"expected_avg_days"`
	DaysDelta            *float64 `json:"days_delta"`
	ActualAvgRevisions   float64  `json:"actual_avg_revisions"`
	ExpectedAvgRevisions *float64 `json:"expected_avg_revisions"`
}

// MemberWorkload summarizes the tasks executed by one team member
type MemberWorkload struct {
	Member            string   `json:"member"`
	Role              string   `json:"role,omitempty"`
	Team              string   `json:"team,omitempty"`
	Total             int      `json:"total"`
	Completed         int      `json:"completed"`
	Active            int      `json:"active"`
	AvgCompletionDays *float64 `json:"avg_completion_days"`
}

// ProjectTimeline is one bar of the project Gantt view
type ProjectTimeline struct {
	Project        string  `json:"project"`
	Phase          string  `json:"phase,omitempty"`
	Type           string  `json:"type,omitempty"`
	Start          Date    `json:"start"`
	End            Date    `json:"end"`
	TaskCount      int     `json:"task_count"`
	CompletedCount int     `json:"completed_count"`
	CompletionRate float64 `json:"completion_rate"`
}

// FilterOptions are the selectable values of each filter
type FilterOptions struct {
	Projects     []string `json:"projects"`
	ContentTypes []string `json:"content_types"`
	Assignees    []string `json:"assignees"`
	Statuses     []string `json:"statuses"`
	MinDate      Date     `json:"min_date"`
	MaxDate      Date     `json:"max_date"`
}

// TaskTable is the filtered task list
type TaskTable struct {
	Tasks   []Task `json:"tasks"`
	Shown   int    `json:"shown"`
	Total   int    `json:"total"`
	Caption string `json:"caption"` // "Showing X of Y tasks"
}

// TaskDetail is the single-task view
type TaskDetail struct {
	Task              Task                 `json:"task"`
	CompletionMessage string               `json:"completion_message,omitempty"`
	History           CommunicationHistory `json:"history"`
}

// DashboardView bundles every chart of the dashboard page
type DashboardView struct {
	Filter            TaskFilter             `json:"filter"`
	Summary           SummaryMetrics         `json:"summary"`
	MonthlyVolume     MonthlyVolume          `json:"monthly_volume"`
	Assignments       AssignmentDistribution `json:"assignments"`
	CompletionBuckets CompletionBucketTable  `json:"completion_buckets"`
	ContentByProject  []ProjectContentCount  `json:"content_by_project"`
	EfficiencyTrend   EfficiencyTrend        `json:"efficiency_trend"`
	Statuses          []CountEntry           `json:"statuses"`
	GeneratedAt       time.Time              `json:"generated_at"`
}

// Table is a raw input table kept verbatim for display and export
type Table struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`

	// how the source file was encoded, so a CSV export can reproduce it
	BOM  bool `json:"-"`
	CRLF bool `json:"-"`
}

// TableInfo describes a raw table without its rows
type TableInfo struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Columns  int    `json:"columns"`
	RowCount int    `json:"row_count"`
	Present  bool   `json:"present"`
}
