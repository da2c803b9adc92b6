package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "taskdash/internal/errors"
	taskmw "taskdash/internal/middleware"
)

// ProjectHandler serves the project Gantt data and the timelines document
type ProjectHandler struct {
	service      DashboardServiceInterface
	validation   *taskmw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewProjectHandler creates a project handler
func NewProjectHandler(service DashboardServiceInterface, validation *taskmw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ProjectHandler {
	return &ProjectHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "project_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the project routes
func (h *ProjectHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/timeline", h.GetTimeline)
	r.Get("/timelines.md", h.GetTimelinesDocument)
	return r
}

// GetTimeline handles GET /api/projects/timeline
func (h *ProjectHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	filter, err := h.validation.ParseTaskFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	timelines, err := h.service.ProjectTimelines(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build project timelines",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"filter": filter,
		"data":   timelines,
		"count":  len(timelines),
	})
}

// GetTimelinesDocument handles GET /api/projects/timelines.md. The document
// is rendered to HTML unless ?format=raw asks for the markdown source.
func (h *ProjectHandler) GetTimelinesDocument(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "html" && format != "raw" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be one of: html, raw"))
		return
	}

	doc, err := h.service.Timelines(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render timelines document",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	if !doc.Found {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("project timelines document"))
		return
	}

	if format == "raw" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(doc.Markdown))
		return
	}
	render.HTML(w, r, doc.HTML)
}
