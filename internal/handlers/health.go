package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"bookbot/internal/contextutil"
)

// Checker probes one dependency.
type Checker func(ctx context.Context) error

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	checks             map[string]Checker
	required           map[string]bool
	healthCheckTimeout time.Duration
	now                func() time.Time
}

// NewHealthHandler creates a new HealthHandler with no checks.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checks:             make(map[string]Checker),
		required:           make(map[string]bool),
		healthCheckTimeout: 5 * time.Second,
		now:                time.Now,
	}
}

// WithCheck registers a dependency probe. A failing required check makes the
// service unhealthy, any other failing check makes it degraded.
func (h *HealthHandler) WithCheck(name string, required bool, check Checker) *HealthHandler {
	h.checks[name] = check
	h.required[name] = required
	return h
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP returns 200 when healthy or degraded and 503 when unhealthy.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	var issues []string
	status := "healthy"
	for _, name := range names {
		if err := h.checks[name](checkCtx); err != nil {
			logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			checks[name] = "error"
			issues = append(issues, name+"_unavailable")
			if h.required[name] {
				status = "unhealthy"
			} else if status == "healthy" {
				status = "degraded"
			}
			continue
		}
		checks[name] = "ok"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
