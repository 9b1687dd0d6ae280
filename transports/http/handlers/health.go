package handlers

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/langboard/langboard/schemas"
)

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	version string
	logger  schemas.Logger
}

// NewHealthHandler creates a new health handler instance.
func NewHealthHandler(version string, logger schemas.Logger) *HealthHandler {
	return &HealthHandler{version: version, logger: logger}
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(r *router.Router) {
	r.GET("/api/v1/health", h.Health)
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
}

// Health handles GET /api/v1/health requests.
func (h *HealthHandler) Health(ctx *fasthttp.RequestCtx) {
	SendJSON(ctx, HealthResponse{OK: true, Version: h.version}, h.logger)
}
