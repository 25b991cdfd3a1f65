// Package httphandler assembles the HTTP router: shared middleware, the
// health endpoint and the routes of the web adapter.
package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ericfisherdev/autoreview/internal/application"
)

// HealthPath is the liveness endpoint probed by cmd/healthcheck.
const HealthPath = "/healthz"

// Handler serves the operational endpoints.
type Handler struct {
	healthSvc *application.HealthService
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(healthSvc *application.HealthService) *Handler {
	return &Handler{healthSvc: healthSvc}
}

// NewRouter creates the application router. Every request passes through
// request ID, real IP, logging and recovery middleware; mount registers the
// page routes on the same router.
func NewRouter(h *Handler, logger *slog.Logger, mount func(chi.Router)) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(loggingMiddleware(logger))
	// Recovery innermost so panics are caught before logging.
	r.Use(recoveryMiddleware(logger))

	r.Get(HealthPath, h.Health)
	mount(r)

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toHealthResponse(h.healthSvc.Status()))
}
