package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/autoreview/internal/application"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// HealthResponse is the JSON representation of the health report.
type HealthResponse struct {
	Status        string `json:"status"`
	Store         string `json:"store"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	MountedBoards int    `json:"mounted_boards"`
}

func toHealthResponse(s application.HealthStatus) HealthResponse {
	return HealthResponse{
		Status:        s.Status,
		Store:         s.Store,
		UptimeSeconds: int64(s.Uptime.Seconds()),
		MountedBoards: s.MountedBoards,
	}
}
