// Handler for miscellaneous endpoints such as health check

package handler

import (
	"net/http"
	"time"
)

// Version is reported by the health check; set by the serve command.
var Version = "dev"

type HealthResponse struct {
	Health     string    `json:"health"`
	Version    string    `json:"version"`
	ActiveJobs int       `json:"active_jobs"`
	Timestamp  time.Time `json:"timestamp"`
}

func (app *AppContext) HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Health:     "ok",
		Version:    Version,
		ActiveJobs: app.Jobs.Active(),
		Timestamp:  time.Now(),
	}

	writeJSON(w, http.StatusOK, response)

}
