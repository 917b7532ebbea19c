package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	store     Pinger
	redis     Pinger
	logger    Logger
	startTime time.Time
}

// NewSystemHandler builds the liveness and readiness handler. redis may be nil
// when rate limiting is disabled.
func NewSystemHandler(store, redis Pinger, log Logger) *SystemHandler {
	return &SystemHandler{
		store:     store,
		redis:     redis,
		logger:    log,
		startTime: time.Now(),
	}
}

type DependencyStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"` // operational, degraded, outage
	LatencyMs int64  `json:"latency_ms"`
}

type ReadinessResponse struct {
	Status       string             `json:"status"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// Health handles GET /health. It only proves the process is serving.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// Ready handles GET /ready. The store must answer a ping; a Redis outage
// degrades but does not fail readiness since rate limiting fails open.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := ReadinessResponse{Status: "ready"}
	status := http.StatusOK

	store := h.check(ctx, "store", h.store)
	resp.Dependencies = append(resp.Dependencies, store)
	if store.Status == "outage" {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		redis := h.check(ctx, "redis", h.redis)
		resp.Dependencies = append(resp.Dependencies, redis)
		if redis.Status == "outage" && resp.Status == "ready" {
			resp.Status = "degraded"
		}
	}

	respondJSON(w, status, resp)
}

func (h *SystemHandler) check(ctx context.Context, name string, p Pinger) DependencyStatus {
	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		h.logger.Error("Dependency ping failed", map[string]interface{}{
			"dependency": name,
			"error":      err.Error(),
		})
		return DependencyStatus{Name: name, Status: "outage", LatencyMs: latency}
	}
	// Slow pings (> 200ms) are degraded.
	if latency > 200 {
		return DependencyStatus{Name: name, Status: "degraded", LatencyMs: latency}
	}
	return DependencyStatus{Name: name, Status: "operational", LatencyMs: latency}
}
