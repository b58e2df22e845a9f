package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of the generator.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Response is the body served on /health.
type Response struct {
	Status    Status            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	LastRun   *RunStatus        `json:"last_run,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RunStatus summarizes the most recent pipeline run.
type RunStatus struct {
	At       time.Time `json:"at"`
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	Hosts    int       `json:"hosts"`
	Checks   int       `json:"checks"`
	Warnings int       `json:"warnings"`
}

// Handler serves health and readiness state for watch mode. A run that
// failed validation marks the generator unhealthy until a clean run
// replaces it.
type Handler struct {
	mu       sync.RWMutex
	metadata map[string]string
	lastRun  *RunStatus
	ready    bool
}

// NewHandler creates a new health handler.
func NewHandler() *Handler {
	return &Handler{metadata: make(map[string]string)}
}

// SetMetadata sets metadata for the health response.
func (h *Handler) SetMetadata(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.metadata[key] = value
}

// SetReady marks the generator as ready.
func (h *Handler) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// RecordRun stores the outcome of a pipeline run.
func (h *Handler) RecordRun(rs RunStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = &rs
}

// HealthHandler handles health check requests.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	metadata := make(map[string]string, len(h.metadata))
	for k, v := range h.metadata {
		metadata[k] = v
	}
	lastRun := h.lastRun
	h.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		LastRun:   lastRun,
		Metadata:  metadata,
	}
	statusCode := http.StatusOK
	if lastRun != nil && !lastRun.OK {
		response.Status = StatusUnhealthy
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// ReadinessHandler handles readiness check requests.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	ready := h.ready
	h.mu.RUnlock()

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now(),
	})
}

// LivenessHandler always returns OK while the process is running.
func (h *Handler) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now(),
	})
}
