package http

import (
	"context"

	"taskdash/internal/services"
	"taskdash/pkg/contracts/domain"
	"taskdash/pkg/contracts/events"
)

// DashboardServiceInterface defines the dashboard views served over HTTP
type DashboardServiceInterface interface {
	Info(ctx context.Context) (services.DatasetInfo, error)
	Reload(ctx context.Context) (services.DatasetInfo, error)

	Summary(ctx context.Context, filter domain.TaskFilter) (domain.SummaryMetrics, error)
	MonthlyVolume(ctx context.Context, filter domain.TaskFilter) (domain.MonthlyVolume, error)
	Assignments(ctx context.Context, filter domain.TaskFilter) (domain.AssignmentDistribution, error)
	CompletionBuckets(ctx context.Context, filter domain.TaskFilter) (domain.CompletionBucketTable, error)
	ContentByProject(ctx context.Context, filter domain.TaskFilter) ([]domain.ProjectContentCount, error)
	EfficiencyTrend(ctx context.Context, filter domain.TaskFilter, params domain.TrendParams) (domain.EfficiencyTrend, error)
	Specialization(ctx context.Context, filter domain.TaskFilter) (domain.Matrix, error)
	Priorities(ctx context.Context) (domain.PriorityDistribution, error)
	CommunicationNetwork(ctx context.Context, filter domain.TaskFilter) (domain.CommunicationNetwork, error)
	MessageTypes(ctx context.Context, filter domain.TaskFilter) ([]domain.CountEntry, error)
	RevisionBenchmarks(ctx context.Context, filter domain.TaskFilter) ([]domain.RevisionBenchmark, error)
	Statuses(ctx context.Context, filter domain.TaskFilter) ([]domain.CountEntry, error)
	WorkloadHeatmap(ctx context.Context, filter domain.TaskFilter) (domain.Matrix, error)
	MemberWorkloads(ctx context.Context, filter domain.TaskFilter) ([]domain.MemberWorkload, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
	View(ctx context.Context, filter domain.TaskFilter, params domain.TrendParams) (domain.DashboardView, error)

	Tasks(ctx context.Context, filter domain.TaskFilter) (domain.TaskTable, error)
	Task(ctx context.Context, id int) (domain.TaskDetail, error)
	TaskMessages(ctx context.Context, id int) (domain.CommunicationHistory, error)

	ProjectTimelines(ctx context.Context, filter domain.TaskFilter) ([]domain.ProjectTimeline, error)
	Timelines(ctx context.Context) (services.TimelinesDocument, error)
}

// ExportServiceInterface defines raw table access and file export
type ExportServiceInterface interface {
	Tables(ctx context.Context) ([]domain.TableInfo, error)
	Table(ctx context.Context, name string) (domain.Table, error)
	Export(ctx context.Context, name, format string, filter domain.TaskFilter, params domain.TrendParams) (services.ExportResult, error)
}

// HealthServiceInterface defines the health probes
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
	DataStatus(ctx context.Context) services.DataStatus
}

// ReloadNotifier is told about every successful reload
type ReloadNotifier interface {
	BroadcastDatasetReloaded(ctx context.Context, payload events.DatasetReloaded) error
}
