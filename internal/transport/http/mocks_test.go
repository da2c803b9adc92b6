package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "taskdash/internal/errors"
	taskmw "taskdash/internal/middleware"
	"taskdash/internal/services"
	"taskdash/internal/shared/testutil"
	"taskdash/pkg/contracts/domain"
	"taskdash/pkg/contracts/events"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Info(ctx context.Context) (services.DatasetInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.DatasetInfo), args.Error(1)
}

func (m *MockDashboardService) Reload(ctx context.Context) (services.DatasetInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.DatasetInfo), args.Error(1)
}

func (m *MockDashboardService) Summary(ctx context.Context, filter domain.TaskFilter) (domain.SummaryMetrics, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.SummaryMetrics), args.Error(1)
}

func (m *MockDashboardService) MonthlyVolume(ctx context.Context, filter domain.TaskFilter) (domain.MonthlyVolume, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.MonthlyVolume), args.Error(1)
}

func (m *MockDashboardService) Assignments(ctx context.Context, filter domain.TaskFilter) (domain.AssignmentDistribution, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.AssignmentDistribution), args.Error(1)
}

func (m *MockDashboardService) CompletionBuckets(ctx context.Context, filter domain.TaskFilter) (domain.CompletionBucketTable, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.CompletionBucketTable), args.Error(1)
}

func (m *MockDashboardService) ContentByProject(ctx context.Context, filter domain.TaskFilter) ([]domain.ProjectContentCount, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ProjectContentCount), args.Error(1)
}

func (m *MockDashboardService) EfficiencyTrend(ctx context.Context, filter domain.TaskFilter, params domain.TrendParams) (domain.EfficiencyTrend, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).(domain.EfficiencyTrend), args.Error(1)
}

func (m *MockDashboardService) Specialization(ctx context.Context, filter domain.TaskFilter) (domain.Matrix, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.Matrix), args.Error(1)
}

func (m *MockDashboardService) Priorities(ctx context.Context) (domain.PriorityDistribution, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.PriorityDistribution), args.Error(1)
}

func (m *MockDashboardService) CommunicationNetwork(ctx context.Context, filter domain.TaskFilter) (domain.CommunicationNetwork, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.CommunicationNetwork), args.Error(1)
}

func (m *MockDashboardService) MessageTypes(ctx context.Context, filter domain.TaskFilter) ([]domain.CountEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.CountEntry), args.Error(1)
}

func (m *MockDashboardService) RevisionBenchmarks(ctx context.Context, filter domain.TaskFilter) ([]domain.RevisionBenchmark, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.RevisionBenchmark), args.Error(1)
}

func (m *MockDashboardService) Statuses(ctx context.Context, filter domain.TaskFilter) ([]domain.CountEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.CountEntry), args.Error(1)
}

func (m *MockDashboardService) WorkloadHeatmap(ctx context.Context, filter domain.TaskFilter) (domain.Matrix, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.Matrix), args.Error(1)
}

func (m *MockDashboardService) MemberWorkloads(ctx context.Context, filter domain.TaskFilter) ([]domain.MemberWorkload, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.MemberWorkload), args.Error(1)
}

func (m *MockDashboardService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.FilterOptions), args.Error(1)
}

func (m *MockDashboardService) View(ctx context.Context, filter domain.TaskFilter, params domain.TrendParams) (domain.DashboardView, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).(domain.DashboardView), args.Error(1)
}

func (m *MockDashboardService) Tasks(ctx context.Context, filter domain.TaskFilter) (domain.TaskTable, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.TaskTable), args.Error(1)
}

func (m *MockDashboardService) Task(ctx context.Context, id int) (domain.TaskDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.TaskDetail), args.Error(1)
}

func (m *MockDashboardService) TaskMessages(ctx context.Context, id int) (domain.CommunicationHistory, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CommunicationHistory), args.Error(1)
}

func (m *MockDashboardService) ProjectTimelines(ctx context.Context, filter domain.TaskFilter) ([]domain.ProjectTimeline, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ProjectTimeline), args.Error(1)
}

func (m *MockDashboardService) Timelines(ctx context.Context) (services.TimelinesDocument, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.TimelinesDocument), args.Error(1)
}

// MockExportService is a mock implementation of ExportServiceInterface
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Tables(ctx context.Context) ([]domain.TableInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TableInfo), args.Error(1)
}

func (m *MockExportService) Table(ctx context.Context, name string) (domain.Table, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Table), args.Error(1)
}

func (m *MockExportService) Export(ctx context.Context, name, format string, filter domain.TaskFilter, params domain.TrendParams) (services.ExportResult, error) {
	args := m.Called(ctx, name, format, filter, params)
	return args.Get(0).(services.ExportResult), args.Error(1)
}

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func (m *MockHealthService) DataStatus(ctx context.Context) services.DataStatus {
	return m.Called(ctx).Get(0).(services.DataStatus)
}

// MockNotifier is a mock implementation of ReloadNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BroadcastDatasetReloaded(ctx context.Context, payload events.DatasetReloaded) error {
	return m.Called(ctx, payload).Error(0)
}

type testDeps struct {
	logger       *slog.Logger
	logs         *testutil.BufferedSlogHandler
	errorHandler *apierrors.ErrorHandler
	validation   *taskmw.ValidationMiddleware
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return testDeps{
		logger:       logger,
		logs:         logs,
		errorHandler: errorHandler,
		validation:   taskmw.NewValidationMiddleware(logger, errorHandler),
	}
}

func decodeBody(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	code, _ := decodeBody(t, body)["error_code"].(string)
	return code
}

var anyCtx = mock.Anything
