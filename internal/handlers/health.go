package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/npcforge/dialogue-engine/internal/services"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	components map[string]services.HealthChecker
	logger     *slog.Logger
}

// NewHealthHandler creates a health handler over named components
// (session store, memory store, providers).
func NewHealthHandler(components map[string]services.HealthChecker, log *slog.Logger) *HealthHandler {
	return &HealthHandler{
		components: components,
		logger:     log,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.components))
	overall := "healthy"
	for name, c := range h.components {
		if err := c.Ping(ctx); err != nil {
			h.logger.Warn("Component health check failed", "component", name, "error", err)
			status[name] = "unhealthy"
			overall = "degraded"
		} else {
			status[name] = "healthy"
		}
	}

	response := HealthResponse{
		Status:     overall,
		Timestamp:  time.Now(),
		Service:    "dialogue-engine",
		Components: status,
	}

	code := http.StatusOK
	if overall != "healthy" {
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response", "error", err)
	}
}
