package api

import (
	"bytes"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/output"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/internal/web/jobs"
	"github.com/go-chi/chi/v5"
)

// Handlers holds dependencies for the REST API handlers.
type Handlers struct {
	Manager  *jobs.Manager
	Registry *scan.Registry
	// Defaults seeds every job's configuration before the request is applied.
	Defaults config.Config
}

// NewHandlers creates API handlers with the given dependencies.
func NewHandlers(manager *jobs.Manager, registry *scan.Registry, defaults config.Config) *Handlers {
	return &Handlers{Manager: manager, Registry: registry, Defaults: defaults}
}

// CreateScan handles POST /api/v1/scans.
func (h *Handlers) CreateScan(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateScanRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := scan.CategoryGeneral
	if req.Category != "" {
		category = scan.Category(req.Category)
	}
	if !slices.Contains(h.Registry.Categories(), category) {
		writeError(w, http.StatusBadRequest, "unknown category: "+string(category))
		return
	}

	cfg, err := req.apply(h.Defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := h.Manager.Create(cfg, category)
	if err := h.Manager.Start(job.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start scan: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     job.ID,
		"status": jobs.StatusRunning,
	})
}

type scanSummary struct {
	ID           string         `json:"id"`
	Target       string         `json:"target"`
	Category     string         `json:"category"`
	Status       jobs.JobStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	FindingCount int            `json:"finding_count"`
}

// ListScans handles GET /api/v1/scans.
func (h *Handlers) ListScans(w http.ResponseWriter, r *http.Request) {
	jobList := h.Manager.List()

	summaries := make([]scanSummary, len(jobList))
	for i, j := range jobList {
		summaries[i] = scanSummary{
			ID:           j.ID,
			Target:       j.Target,
			Category:     j.Category,
			Status:       j.Status,
			CreatedAt:    j.CreatedAt,
			FindingCount: j.FindingCount(),
		}
	}

	writeJSON(w, http.StatusOK, summaries)
}

// GetScan handles GET /api/v1/scans/{id}.
func (h *Handlers) GetScan(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

var reportContentTypes = map[string]string{
	"html":     "text/html; charset=utf-8",
	"json":     "application/json",
	"markdown": "text/markdown; charset=utf-8",
	"table":    "text/plain; charset=utf-8",
}

// GetScanReport handles GET /api/v1/scans/{id}/report. The format query
// parameter selects the formatter and defaults to html.
func (h *Handlers) GetScanReport(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if job.Report == nil {
		writeError(w, http.StatusConflict, "scan has no report (status "+string(job.Status)+")")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	formatter, err := output.GetFormatter(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, job.Report); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render report: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", reportContentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// DeleteScan handles DELETE /api/v1/scans/{id}.
func (h *Handlers) DeleteScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Manager.Delete(id); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moduleInfo struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListModules handles GET /api/v1/modules.
func (h *Handlers) ListModules(w http.ResponseWriter, r *http.Request) {
	mods := []moduleInfo{}
	for _, c := range h.Registry.Categories() {
		for _, d := range h.Registry.Descriptors(c) {
			mods = append(mods, moduleInfo{Category: string(c), Name: d.Name, Description: d.Description})
		}
	}
	writeJSON(w, http.StatusOK, mods)
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (jobs.Job, bool) {
	job, err := h.Manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return job, false
	}
	return job, true
}

func statusFor(err error) int {
	if errors.Is(err, jobs.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
