package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// LivenessResponse represents the response for the liveness check.
type LivenessResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the response for the readiness check.
type ReadinessResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks,omitempty"`
	LastChanged time.Time         `json:"last_changed"`
}

// LivenessHandler handles GET /health requests.
// Returns 200 OK if the process is running.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(LivenessResponse{Status: "healthy"})
}

// ReadinessHandler handles GET /ready requests.
// Returns 200 OK only while the remote mission service is REACHABLE.
func (m *ReachabilityMonitor) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	signal := m.Signal()
	resp := ReadinessResponse{
		Status: "ready",
		Checks: map[string]string{
			"remote": signal.String(),
		},
		LastChanged: m.LastChange().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	if signal != model.ReachabilityReachable {
		resp.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(resp)
}
