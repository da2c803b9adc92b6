package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "taskdash/internal/errors"
	taskmw "taskdash/internal/middleware"
	"taskdash/pkg/contracts/domain"
)

// DashboardHandler serves one endpoint per dashboard chart. Every endpoint
// accepts the task filter as query parameters.
type DashboardHandler struct {
	service      DashboardServiceInterface
	validation   *taskmw.ValidationMiddleware
	trend        domain.TrendParams
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler. trend supplies the
// efficiency trend granularity and window when a request omits them.
func NewDashboardHandler(service DashboardServiceInterface, validation *taskmw.ValidationMiddleware, trend domain.TrendParams, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validation:   validation,
		trend:        trend,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetView)
	r.Get("/summary", serveFiltered(h, "summary", h.service.Summary))
	r.Get("/monthly-volume", serveFiltered(h, "monthly_volume", h.service.MonthlyVolume))
	r.Get("/assignments", serveFiltered(h, "assignments", h.service.Assignments))
	r.Get("/completion-buckets", serveFiltered(h, "completion_buckets", h.service.CompletionBuckets))
	r.Get("/content-by-project", serveFiltered(h, "content_by_project", h.service.ContentByProject))
	r.Get("/efficiency-trend", h.GetEfficiencyTrend)
	r.Get("/specialization", serveFiltered(h, "specialization", h.service.Specialization))
	r.Get("/priorities", serveUnfiltered(h, "priorities", h.service.Priorities))
	r.Get("/communication-network", serveFiltered(h, "communication_network", h.service.CommunicationNetwork))
	r.Get("/message-types", serveFiltered(h, "message_types", h.service.MessageTypes))
	r.Get("/revisions", serveFiltered(h, "revisions", h.service.RevisionBenchmarks))
	r.Get("/statuses", serveFiltered(h, "statuses", h.service.Statuses))
	r.Get("/workload-heatmap", serveFiltered(h, "workload_heatmap", h.service.WorkloadHeatmap))
	r.Get("/workload", serveFiltered(h, "workload", h.service.MemberWorkloads))
	r.Get("/filters", serveUnfiltered(h, "filters", h.service.FilterOptions))

	return r
}

// serveFiltered binds the task filter, runs one view and renders the result
func serveFiltered[T any](h *DashboardHandler, view string, fn func(context.Context, domain.TaskFilter) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := h.validation.ParseTaskFilter(r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		result, err := fn(r.Context(), filter)
		if err != nil {
			h.fail(w, r, view, err)
			return
		}
		render.JSON(w, r, map[string]interface{}{
			"status": "success",
			"view":   view,
			"filter": filter,
			"data":   result,
		})
	}
}

// serveUnfiltered renders a view that ignores the task filter
func serveUnfiltered[T any](h *DashboardHandler, view string, fn func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := fn(r.Context())
		if err != nil {
			h.fail(w, r, view, err)
			return
		}
		render.JSON(w, r, map[string]interface{}{
			"status": "success",
			"view":   view,
			"data":   result,
		})
	}
}

// GetEfficiencyTrend handles GET /api/dashboard/efficiency-trend
func (h *DashboardHandler) GetEfficiencyTrend(w http.ResponseWriter, r *http.Request) {
	filter, params, ok := h.bindTrend(w, r)
	if !ok {
		return
	}
	trend, err := h.service.EfficiencyTrend(r.Context(), filter, params)
	if err != nil {
		h.fail(w, r, "efficiency_trend", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"view":   "efficiency_trend",
		"filter": filter,
		"data":   trend,
	})
}

// GetView handles GET /api/dashboard, the main page in one payload
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	filter, params, ok := h.bindTrend(w, r)
	if !ok {
		return
	}
	view, err := h.service.View(r.Context(), filter, params)
	if err != nil {
		h.fail(w, r, "dashboard", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"view":   "dashboard",
		"data":   view,
	})
}

func (h *DashboardHandler) bindTrend(w http.ResponseWriter, r *http.Request) (domain.TaskFilter, domain.TrendParams, bool) {
	filter, err := h.validation.ParseTaskFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.TaskFilter{}, domain.TrendParams{}, false
	}
	params, err := h.validation.ParseTrendParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.TaskFilter{}, domain.TrendParams{}, false
	}
	if params.Granularity == "" {
		params.Granularity = h.trend.Granularity
	}
	if params.Window == 0 {
		params.Window = h.trend.Window
	}
	return filter, params, true
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, view string, err error) {
	h.logger.ErrorContext(r.Context(), "dashboard view failed",
		slog.String("view", view),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}
