package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const healthCheckTimeout = 2 * time.Second

// Check is one dependency probed by the health endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler reports whether the service and its dependencies are up.
type HealthHandler struct {
	checks []Check
	logger zerolog.Logger
}

// NewHealthHandler creates a health handler that runs checks on every request.
func NewHealthHandler(logger zerolog.Logger, checks ...Check) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger.With().Str("handler", "health").Logger(),
	}
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "healthy"}

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Error().Err(err).Str("dependency", check.Name).Msg("health check failed")
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body[check.Name] = "down"
			continue
		}
		body[check.Name] = "up"
	}

	writeJSON(w, status, body)
}
