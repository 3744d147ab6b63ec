package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pavelanni/zipreport/internal/handler/views"
	"github.com/pavelanni/zipreport/internal/i18n"
	"github.com/pavelanni/zipreport/internal/metrics"
	"github.com/pavelanni/zipreport/internal/model"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	config  model.ServerConfig
	metrics *metrics.Metrics
}

// New creates a new Handler. A nil m gets a private metrics registry.
func New(cfg model.ServerConfig, m *metrics.Metrics) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New()
	}
	return &Handler{config: cfg, metrics: m}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(i18n.Middleware(h.config.Report.Lang))
		r.Use(h.limitUpload)
		r.Use(h.csrfMiddleware)
		r.Get("/", h.handleIndex)
		r.Post("/report", h.handleReport)
	})
}

// BasePathMiddleware stores the configured URL prefix in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	return h.path("/")
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	formats := []model.Format{model.FormatHTML, model.FormatXLSX, model.FormatJSON}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.UploadPage(formats, h.config.Report.Format).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, render.M{"status": "ok"})
}

// errorResponse is the JSON body of every failed report request.
type errorResponse struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, resp errorResponse) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "status", status, "error", resp.Error)
	} else {
		slog.Warn("request rejected", "path", r.URL.Path, "status", status, "error", resp.Error)
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

func (h *Handler) errorf(w http.ResponseWriter, r *http.Request, status int, format string, args ...any) {
	h.writeError(w, r, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}
