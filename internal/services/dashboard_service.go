package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"taskdash/internal/dataprocessing"
	"taskdash/internal/infrastructure"
	"taskdash/pkg/contracts/domain"
)

var tracer = otel.Tracer("taskdash.services")

// DatasetInfo describes the snapshot currently served
type DatasetInfo struct {
	Version  string                   `json:"version"`
	LoadedAt time.Time                `json:"loaded_at"`
	Warnings []dataprocessing.Warning `json:"warnings"`
	Tables   []domain.TableInfo       `json:"tables"`
}

// TimelinesDocument is the project timelines markdown and its HTML rendering
type TimelinesDocument struct {
	Found    bool   `json:"found"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// DashboardService computes every dashboard view from the cached dataset
type DashboardService struct {
	source  DatasetSource
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewDashboardService creates a dashboard service. metrics may be nil.
func NewDashboardService(source DatasetSource, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		source:  source,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "dashboard")),
		now:     time.Now,
	}
}

// Dataset returns the current snapshot, loading it on first use or after the
// input files changed
func (s *DashboardService) Dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	ds, err := s.source.Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset load failed", slog.String("error", err.Error()))
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	return ds, nil
}

// Info describes the current snapshot
func (s *DashboardService) Info(ctx context.Context) (DatasetInfo, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return DatasetInfo{}, err
	}
	return datasetInfo(ds), nil
}

// Reload drops the cached snapshot and loads the files again
func (s *DashboardService) Reload(ctx context.Context) (DatasetInfo, error) {
	s.source.Invalidate()
	ds, err := s.Dataset(ctx)
	if err != nil {
		return DatasetInfo{}, err
	}
	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.String("version", ds.Version),
		slog.Int("warnings", len(ds.Warnings)))
	return datasetInfo(ds), nil
}

func datasetInfo(ds *dataprocessing.Dataset) DatasetInfo {
	warnings := ds.Warnings
	if warnings == nil {
		warnings = []dataprocessing.Warning{}
	}
	return DatasetInfo{
		Version:  ds.Version,
		LoadedAt: ds.LoadedAt,
		Warnings: warnings,
		Tables:   ds.TableInfos(),
	}
}

// filtered loads the dataset and applies the filter. Every task view starts here.
func (s *DashboardService) filtered(ctx context.Context, filter domain.TaskFilter) (*dataprocessing.Dataset, []domain.Task, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := dataprocessing.ApplyFilter(ds.Tasks, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return ds, tasks, nil
}

// compute runs one aggregation inside a span and records its latency
func compute[T any](ctx context.Context, s *DashboardService, name string, rows int, fn func() T) T {
	ctx, span := tracer.Start(ctx, "aggregate."+name,
		trace.WithAttributes(attribute.Int("input_rows", rows)))
	defer span.End()

	start := time.Now()
	result := fn()
	infrastructure.RecordAggregation(ctx, s.metrics, name, time.Since(start), rows)
	return result
}

// Summary returns the headline metrics
func (s *DashboardService) Summary(ctx context.Context, filter domain.TaskFilter) (domain.SummaryMetrics, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.SummaryMetrics{}, err
	}
	return compute(ctx, s, "summary", len(tasks), func() domain.SummaryMetrics {
		return dataprocessing.Summary(tasks)
	}), nil
}

// MonthlyVolume returns the month × project task counts
func (s *DashboardService) MonthlyVolume(ctx context.Context, filter domain.TaskFilter) (domain.MonthlyVolume, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.MonthlyVolume{}, err
	}
	return compute(ctx, s, "monthly_volume", len(tasks), func() domain.MonthlyVolume {
		return dataprocessing.MonthlyVolume(tasks)
	}), nil
}

// Assignments returns the assigned-by and assigned-to distributions
func (s *DashboardService) Assignments(ctx context.Context, filter domain.TaskFilter) (domain.AssignmentDistribution, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.AssignmentDistribution{}, err
	}
	return compute(ctx, s, "assignments", len(tasks), func() domain.AssignmentDistribution {
		return dataprocessing.Assignments(tasks)
	}), nil
}

// CompletionBuckets returns the content type × completion bucket pivot
func (s *DashboardService) CompletionBuckets(ctx context.Context, filter domain.TaskFilter) (domain.CompletionBucketTable, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.CompletionBucketTable{}, err
	}
	return compute(ctx, s, "completion_buckets", len(tasks), func() domain.CompletionBucketTable {
		return dataprocessing.CompletionBuckets(tasks)
	}), nil
}

// ContentByProject returns task counts per project and content type
func (s *DashboardService) ContentByProject(ctx context.Context, filter domain.TaskFilter) ([]domain.ProjectContentCount, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return compute(ctx, s, "content_by_project", len(tasks), func() []domain.ProjectContentCount {
		return dataprocessing.ContentByProject(tasks)
	}), nil
}

// EfficiencyTrend returns mean completion days per period with a rolling mean
func (s *DashboardService) EfficiencyTrend(ctx context.Context, filter domain.TaskFilter, params domain.TrendParams) (domain.EfficiencyTrend, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.EfficiencyTrend{}, err
	}
	return compute(ctx, s, "efficiency_trend", len(tasks), func() domain.EfficiencyTrend {
		return dataprocessing.EfficiencyTrend(tasks, params.Granularity, params.Window)
	}), nil
}

// Specialization returns the assignee × content type matrix
func (s *DashboardService) Specialization(ctx context.Context, filter domain.TaskFilter) (domain.Matrix, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.Matrix{}, err
	}
	return compute(ctx, s, "specialization", len(tasks), func() domain.Matrix {
		return dataprocessing.SpecializationMatrix(tasks)
	}), nil
}

// Priorities returns the content type priority distribution. It describes
// the content type table, so the task filter does not apply.
func (s *DashboardService) Priorities(ctx context.Context) (domain.PriorityDistribution, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.PriorityDistribution{}, err
	}
	return compute(ctx, s, "priorities", len(ds.ContentTypes), func() domain.PriorityDistribution {
		return dataprocessing.Priorities(ds.ContentTypes)
	}), nil
}

// CommunicationNetwork returns the message graph of the filtered tasks
func (s *DashboardService) CommunicationNetwork(ctx context.Context, filter domain.TaskFilter) (domain.CommunicationNetwork, error) {
	ds, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.CommunicationNetwork{}, err
	}
	messages := messagesFor(ds, tasks, filter)
	return compute(ctx, s, "communication_network", len(messages), func() domain.CommunicationNetwork {
		return dataprocessing.CommunicationNetwork(messages)
	}), nil
}

// MessageTypes returns the message type distribution of the filtered tasks
func (s *DashboardService) MessageTypes(ctx context.Context, filter domain.TaskFilter) ([]domain.CountEntry, error) {
	ds, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	messages := messagesFor(ds, tasks, filter)
	return compute(ctx, s, "message_types", len(messages), func() []domain.CountEntry {
		return dataprocessing.MessageTypes(messages)
	}), nil
}

// messagesFor keeps the messages of the filtered tasks. An empty filter keeps
// every message, including those referring to unknown tasks.
func messagesFor(ds *dataprocessing.Dataset, tasks []domain.Task, filter domain.TaskFilter) []domain.Message {
	if filter.Empty() {
		return ds.Messages
	}
	ids := make(map[int]struct{}, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = struct{}{}
	}
	out := make([]domain.Message, 0, len(ds.Messages))
	for _, m := range ds.Messages {
		if _, ok := ids[m.TaskID]; ok {
			out = append(out, m)
		}
	}
	return out
}

// RevisionBenchmarks compares actual completion against content type expectations
func (s *DashboardService) RevisionBenchmarks(ctx context.Context, filter domain.TaskFilter) ([]domain.RevisionBenchmark, error) {
	ds, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return compute(ctx, s, "revision_benchmarks", len(tasks), func() []domain.RevisionBenchmark {
		return dataprocessing.RevisionBenchmarks(tasks, ds.ContentTypes)
	}), nil
}

// Statuses returns the status distribution
func (s *DashboardService) Statuses(ctx context.Context, filter domain.TaskFilter) ([]domain.CountEntry, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return compute(ctx, s, "statuses", len(tasks), func() []domain.CountEntry {
		return dataprocessing.StatusDistribution(tasks)
	}), nil
}

// WorkloadHeatmap returns the member × month task counts
func (s *DashboardService) WorkloadHeatmap(ctx context.Context, filter domain.TaskFilter) (domain.Matrix, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.Matrix{}, err
	}
	return compute(ctx, s, "workload_heatmap", len(tasks), func() domain.Matrix {
		return dataprocessing.WorkloadHeatmap(tasks)
	}), nil
}

// MemberWorkloads returns per-assignee totals
func (s *DashboardService) MemberWorkloads(ctx context.Context, filter domain.TaskFilter) ([]domain.MemberWorkload, error) {
	ds, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return compute(ctx, s, "member_workloads", len(tasks), func() []domain.MemberWorkload {
		return dataprocessing.MemberWorkloads(tasks, ds.TeamMembers)
	}), nil
}

// FilterOptions lists the selectable filter values. Options always come from
// the full task table so a selection never hides its alternatives.
func (s *DashboardService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return compute(ctx, s, "filter_options", len(ds.Tasks), func() domain.FilterOptions {
		return dataprocessing.FilterOptions(ds.Tasks)
	}), nil
}

// Tasks returns the filtered task table with its caption
func (s *DashboardService) Tasks(ctx context.Context, filter domain.TaskFilter) (domain.TaskTable, error) {
	ds, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.TaskTable{}, err
	}
	return dataprocessing.TaskTable(tasks, len(ds.Tasks)), nil
}

// Task returns the detail view of one task
func (s *DashboardService) Task(ctx context.Context, id int) (domain.TaskDetail, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	task, ok := dataprocessing.FindTask(ds.Tasks, id)
	if !ok {
		return domain.TaskDetail{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return dataprocessing.TaskDetail(task, ds.Messages), nil
}

// TaskMessages returns the communication history of one task
func (s *DashboardService) TaskMessages(ctx context.Context, id int) (domain.CommunicationHistory, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.CommunicationHistory{}, err
	}
	if _, ok := dataprocessing.FindTask(ds.Tasks, id); !ok {
		return domain.CommunicationHistory{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return dataprocessing.CommunicationHistory(ds.Messages, id), nil
}

// ProjectTimelines returns one Gantt bar per project of the filtered tasks
func (s *DashboardService) ProjectTimelines(ctx context.Context, filter domain.TaskFilter) ([]domain.ProjectTimeline, error) {
	ds, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	projects := ds.Projects
	if domain.IsSet(filter.Project) {
		projects = projectsNamed(ds.Projects, filter.Project)
	}
	return compute(ctx, s, "project_timelines", len(tasks), func() []domain.ProjectTimeline {
		return dataprocessing.ProjectTimelines(projects, tasks)
	}), nil
}

func projectsNamed(projects []domain.Project, name string) []domain.Project {
	var out []domain.Project
	for _, p := range projects {
		if strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name)) {
			out = append(out, p)
		}
	}
	return out
}

// Timelines returns the timelines document rendered to HTML
func (s *DashboardService) Timelines(ctx context.Context) (TimelinesDocument, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return TimelinesDocument{}, err
	}
	html, err := dataprocessing.RenderMarkdown(ds.Timelines)
	if err != nil {
		return TimelinesDocument{}, err
	}
	return TimelinesDocument{Found: ds.TimelinesFound, Markdown: ds.Timelines, HTML: html}, nil
}

// View assembles the main dashboard page in one call
func (s *DashboardService) View(ctx context.Context, filter domain.TaskFilter, params domain.TrendParams) (domain.DashboardView, error) {
	_, tasks, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.DashboardView{}, err
	}

	return compute(ctx, s, "dashboard_view", len(tasks), func() domain.DashboardView {
		return domain.DashboardView{
			Filter:            filter,
			Summary:           dataprocessing.Summary(tasks),
			MonthlyVolume:     dataprocessing.MonthlyVolume(tasks),
			Assignments:       dataprocessing.Assignments(tasks),
			CompletionBuckets: dataprocessing.CompletionBuckets(tasks),
			ContentByProject:  dataprocessing.ContentByProject(tasks),
			EfficiencyTrend:   dataprocessing.EfficiencyTrend(tasks, params.Granularity, params.Window),
			Statuses:          dataprocessing.StatusDistribution(tasks),
			GeneratedAt:       s.now(),
		}
	}), nil
}
