package handlers

import (
	"net/http"
	"time"
)

// ReadyHandler answers the orchestrator readiness probe. It turns 503 once
// draining reports true so no new audits are routed here during shutdown.
type ReadyHandler struct {
	draining func() bool
}

func NewReadyHandler(draining func() bool) *ReadyHandler {
	return &ReadyHandler{draining: draining}
}

func (h *ReadyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.draining != nil && h.draining() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("DRAINING"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type HealthResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type HealthHandler struct {
	now func() time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Success:   true,
		Status:    "healthy",
		Timestamp: h.now().UTC(),
	})
}
