package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// healthHandler answers liveness probes on the HTTP transport.
type healthHandler struct {
	startTime time.Time
}

func newHealthHandler() *healthHandler {
	return &healthHandler{
		startTime: time.Now(),
	}
}

// ServeHTTP handles GET /health
func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
