package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "taskdash/internal/errors"
	taskmw "taskdash/internal/middleware"
)

type taskIDKey struct{}

// TaskHandler serves the task table and per-task detail
type TaskHandler struct {
	service      DashboardServiceInterface
	validation   *taskmw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTaskHandler creates a task handler
func NewTaskHandler(service DashboardServiceInterface, validation *taskmw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TaskHandler {
	return &TaskHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "task_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the task routes
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListTasks)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.TaskCtx)
		r.Get("/", h.GetTask)
		r.Get("/messages", h.GetTaskMessages)
	})
	return r
}

// TaskCtx validates the task id path parameter
func (h *TaskHandler) TaskCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || id <= 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "id must be a positive integer"))
			return
		}
		ctx := context.WithValue(r.Context(), taskIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ListTasks handles GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := h.validation.ParseTaskFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	table, err := h.service.Tasks(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "failed to list tasks", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"filter":  filter,
		"data":    table.Tasks,
		"count":   table.Shown,
		"total":   table.Total,
		"caption": table.Caption,
	})
}

// GetTask handles GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(taskIDKey{}).(int)

	detail, err := h.service.Task(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to get task", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   detail,
	})
}

// GetTaskMessages handles GET /api/tasks/{id}/messages
func (h *TaskHandler) GetTaskMessages(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(taskIDKey{}).(int)

	history, err := h.service.TaskMessages(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to get task messages", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   history,
	})
}

func (h *TaskHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}
