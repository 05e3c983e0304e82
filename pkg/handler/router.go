package handler

import "net/http"

// NewRouter wires every route of the service.
func NewRouter(app *AppContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Pages
	mux.HandleFunc("GET /jobs/{job_id}", app.JobPage)

	// API routes
	mux.HandleFunc("GET /api/v1/health", app.HealthCheck)
	mux.HandleFunc("POST /api/v1/align", app.AlignHandler)
	mux.HandleFunc("POST /api/v1/jobs", app.CreateJobHandler)
	mux.HandleFunc("GET /api/v1/jobs/{job_id}", app.GetJobHandler)

	return mux
}
