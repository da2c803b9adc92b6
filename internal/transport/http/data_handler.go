package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "taskdash/internal/errors"
	taskmw "taskdash/internal/middleware"
	"taskdash/internal/websocket"
	"taskdash/pkg/contracts/events"
)

type tableKey struct{}

// DataHandler exposes the raw tables, their export and the reload trigger
type DataHandler struct {
	export       ExportServiceInterface
	dashboard    DashboardServiceInterface
	notifier     ReloadNotifier
	validation   *taskmw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a data handler. notifier may be nil.
func NewDataHandler(export ExportServiceInterface, dashboard DashboardServiceInterface, notifier ReloadNotifier, validation *taskmw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		export:       export,
		dashboard:    dashboard,
		notifier:     notifier,
		validation:   validation,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.ListTables)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/info", h.GetInfo)
	r.With(taskmw.AuditLog(h.logger)).Post("/reload", h.Reload)

	r.Route("/{table}", func(r chi.Router) {
		r.Use(h.TableCtx)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetTable)
		r.Get("/export", h.ExportTable)
	})
	return r
}

// TableCtx validates the table path parameter
func (h *DataHandler) TableCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "table")
		if err := h.validation.ValidateTableName(name); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), tableKey{}, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ListTables handles GET /api/data
func (h *DataHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.export.Tables(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list tables", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tables,
		"count":  len(tables),
	})
}

// GetInfo handles GET /api/data/info
func (h *DataHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.dashboard.Info(r.Context())
	if err != nil {
		h.fail(w, r, "failed to describe dataset", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

// GetTable handles GET /api/data/{table}
func (h *DataHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := r.Context().Value(tableKey{}).(string)

	table, err := h.export.Table(r.Context(), name)
	if err != nil {
		h.fail(w, r, "failed to get table", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   table,
		"count":  len(table.Rows),
	})
}

// ExportTable handles GET /api/data/{table}/export?format=csv|xlsx. The task
// filter and trend parameters apply to the tasks table and the summary workbook.
func (h *DataHandler) ExportTable(w http.ResponseWriter, r *http.Request) {
	name := r.Context().Value(tableKey{}).(string)

	params, err := h.validation.ParseExportParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	filter, err := h.validation.ParseTaskFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	trend, err := h.validation.ParseTrendParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.export.Export(r.Context(), name, params.Format, filter, trend)
	if err != nil {
		h.fail(w, r, "failed to export table", err)
		return
	}

	h.logger.InfoContext(r.Context(), "table download",
		slog.String("table", name),
		slog.String("format", params.Format),
		slog.Int("rows", result.Rows),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Export-Rows", strconv.Itoa(result.Rows))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// Reload handles POST /api/data/reload: drop the cached dataset, load the
// files again and tell connected clients.
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	info, err := h.dashboard.Reload(r.Context())
	if err != nil {
		h.fail(w, r, "failed to reload dataset", err)
		return
	}

	if h.notifier != nil {
		err := h.notifier.BroadcastDatasetReloaded(r.Context(), events.DatasetReloaded{
			Version:  info.Version,
			LoadedAt: info.LoadedAt,
			Warnings: len(info.Warnings),
			Reason:   "manual",
		})
		if err != nil && !errors.Is(err, websocket.ErrHubStopped) {
			h.logger.WarnContext(r.Context(), "reload notification failed",
				slog.String("error", err.Error()))
		}
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

func (h *DataHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}
