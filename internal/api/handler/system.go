package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/oxgrid/tictactoe/internal/api/apierr"
	"github.com/oxgrid/tictactoe/internal/api/response"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves service metadata and health
type SystemHandler struct {
	store  Pinger
	errors *apierr.Writer
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(store Pinger, errors *apierr.Writer) *SystemHandler {
	return &SystemHandler{store: store, errors: errors}
}

// Root handles GET / for JSON clients
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.RootResponse{
		Message: response.ServiceName,
		Version: response.ServiceVersion,
		Status:  "running",
	})
}

// Health handles GET /api/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.errors.WriteError(w, r, apierr.NewUnavailableError("Storage unavailable"))
		return
	}
	response.JSON(w, http.StatusOK, response.HealthResponse{Success: true, Status: "ok"})
}

// NotFound answers unmatched routes and methods
func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.errors.WriteError(w, r, apierr.NewRouteNotFoundError())
}
