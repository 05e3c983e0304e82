package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yumyai/sangercheck/logger"
	"github.com/yumyai/sangercheck/pkg/handler/request"
	"github.com/yumyai/sangercheck/pkg/model"
	"github.com/yumyai/sangercheck/pkg/render"
)

const jobRefreshSeconds = 3

type JobCreatedResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
	URL    string    `json:"url"`
}

type JobResponse struct {
	JobID     string               `json:"job_id"`
	Status    JobStatus            `json:"status"`
	Pairs     []model.Pair         `json:"pairs"`
	Error     string               `json:"error,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Outcomes  []render.OutcomeJSON `json:"outcomes,omitempty"`
	Summary   *model.Summary       `json:"summary,omitempty"`
}

// CreateJobHandler queues a batch comparison and answers 202 with the job ID.
func (app *AppContext) CreateJobHandler(w http.ResponseWriter, r *http.Request) {

	var req request.JobRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pairs, err := app.jobPairs(r.Context(), req.Pairs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := app.Jobs.NewJob(pairs)
	logger.Info("Queued comparison job", zap.String("job_id", job.ID), zap.Int("pairs", len(pairs)))

	go app.runJob(job.ID, pairs)

	url := "/api/v1/jobs/" + job.ID
	w.Header().Set("Location", url)
	writeJSON(w, http.StatusAccepted, JobCreatedResponse{JobID: job.ID, Status: job.Status, URL: url})
}

// jobPairs picks the pairs of a job: the request's own, else the sample
// sheet, else the built-in set. Request pairs must stay inside DataDir.
func (app *AppContext) jobPairs(ctx context.Context, pairs []model.Pair) ([]model.Pair, error) {
	if len(pairs) > 0 {
		for _, p := range pairs {
			if p.Read == "" || p.Reference == "" {
				return nil, fmt.Errorf("pair %q needs both read and reference", p.String())
			}
			if !filepath.IsLocal(p.Read) || !filepath.IsLocal(p.Reference) {
				return nil, fmt.Errorf("pair %q must use paths relative to the data directory", p.String())
			}
		}
		return model.ResolvePairs(app.DataDir, pairs), nil
	}

	if app.Samples != nil {
		sheet, err := app.Samples.Pairs(ctx)
		if err != nil {
			return nil, err
		}
		if len(sheet) > 0 {
			return model.ResolvePairs(app.DataDir, sheet), nil
		}
	}
	return model.ResolvePairs(app.DataDir, model.DefaultPairs), nil
}

func (app *AppContext) runJob(jobID string, pairs []model.Pair) {
	app.Jobs.SetRunning(jobID)

	outcomes, err := app.Runner.Run(context.Background(), pairs)
	if err != nil {
		logger.Error("Comparison job failed", zap.String("job_id", jobID), zap.Error(err))
		app.Jobs.FailJob(jobID, err)
		return
	}

	summary := model.Summarize(outcomes)
	logger.Info("Comparison job finished",
		zap.String("job_id", jobID),
		zap.Int("aligned", summary.Aligned),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	app.Jobs.CompleteJob(jobID, outcomes)
}

// GetJobHandler returns the job state, with outcomes once it completed.
func (app *AppContext) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := app.Jobs.GetJob(r.PathValue("job_id"))
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	response := JobResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Pairs:     job.Pairs,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Status == JobCompleted {
		summary := model.Summarize(job.Outcomes)
		response.Outcomes = render.NewJSONOutcomes(job.Outcomes)
		response.Summary = &summary
	}

	writeJSON(w, http.StatusOK, response)
}

// JobPage shows the job as HTML and keeps refreshing until it is done.
func (app *AppContext) JobPage(w http.ResponseWriter, r *http.Request) {
	job, ok := app.Jobs.GetJob(r.PathValue("job_id"))
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	data := render.JobPageData{
		JobID:                  job.ID,
		Status:                 string(job.Status),
		Pairs:                  len(job.Pairs),
		ErrorMessage:           job.Error,
		ShouldRefresh:          !job.Done(),
		RefreshIntervalSeconds: jobRefreshSeconds,
	}

	if job.Status == JobCompleted {
		show, _ := strconv.ParseBool(r.URL.Query().Get("show_alignment"))
		var report bytes.Buffer
		err := render.RenderReport(&report, render.ReportData{
			Outcomes:      job.Outcomes,
			Scheme:        app.Runner.Aligner.Scheme(),
			ShowAlignment: show,
		})
		if err != nil {
			logger.Error("Render report", zap.Error(err))
			http.Error(w, "Failed to render report", http.StatusInternalServerError)
			return
		}
		data.Report = report.String()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderJobPage(w, data); err != nil {
		logger.Error("Render job page", zap.Error(err))
	}
}
