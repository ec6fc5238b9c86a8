package handler

import (
	"context"
	"net/http"
	"time"

	"tavola-rest-api/pkg/response"
)

// StartTime tracks when the server started for uptime calculation
var StartTime = time.Now()

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness checks.
type HealthHandler struct {
	version string
	db      Pinger
	cache   Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string, db, cache Pinger) *HealthHandler {
	return &HealthHandler{version: version, db: db, cache: cache}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Uptime:    time.Since(StartTime).Round(time.Second).String(),
	}
	response.OK(w, resp)
}

// Check represents an individual readiness check.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Ready handles GET /api/v1/ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := []Check{
		h.check(ctx, "database", h.db),
		h.check(ctx, "cache", h.cache),
	}

	allReady := true
	for _, c := range checks {
		if c.Status == "unreachable" {
			allReady = false
		}
	}

	resp := ReadyResponse{
		Ready:     allReady,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}

	status := http.StatusOK
	if !allReady {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, resp)
}

func (h *HealthHandler) check(ctx context.Context, name string, p Pinger) Check {
	c := Check{Name: name, Status: "ok"}
	if p == nil {
		c.Status = "skipped"
		return c
	}
	if err := p.Ping(ctx); err != nil {
		c.Status = "unreachable"
	}
	return c
}
