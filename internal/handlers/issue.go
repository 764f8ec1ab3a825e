package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/civicpulse/civic-server/internal/auth"
	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/services"
)

// IssueHandler handles the issue lifecycle endpoints
type IssueHandler struct {
	svc       *services.IssueService
	maxUpload int64
	errs      errorResponder
	logger    *zap.SugaredLogger
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(svc *services.IssueService, maxUpload int64, exposeInternal bool, logger *zap.SugaredLogger) *IssueHandler {
	return &IssueHandler{
		svc:       svc,
		maxUpload: maxUpload,
		errs:      errorResponder{logger: logger, exposeInternal: exposeInternal},
		logger:    logger,
	}
}

type analysisResponse struct {
	IssueType   models.IssueType  `json:"issue_type"`
	Severity    models.Severity   `json:"severity"`
	Department  models.Department `json:"department"`
	Description string            `json:"description"`
	Source      string            `json:"source"`
	Degraded    bool              `json:"degraded"`
	Reason      string            `json:"reason,omitempty"`
}

// AnalyzeImage handles POST /api/analyze_image
func (h *IssueHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUpload); err != nil {
		h.errs.fail(w, err, "Failed to read upload")
		return
	}
	img, err := readImage(r, "image", h.maxUpload)
	if err != nil {
		h.errs.fail(w, err, "Failed to read image")
		return
	}

	out, err := h.svc.Suggest(r.Context(), img)
	if err != nil {
		h.errs.fail(w, err, "Failed to analyze image")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"suggestions": out.Value,
		"degraded":    out.Degraded,
	})
}

// ReportIssue handles POST /api/report_issue
func (h *IssueHandler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUpload); err != nil {
		h.errs.fail(w, err, "Failed to read upload")
		return
	}
	img, err := readImage(r, "image", h.maxUpload)
	if err != nil {
		h.errs.fail(w, err, "Failed to read image")
		return
	}
	geo, err := parseGeo(r)
	if err != nil {
		h.errs.fail(w, err, "Failed to read location")
		return
	}

	reporter := strings.TrimSpace(r.FormValue("reporter_id"))
	if reporter == "" {
		if p, ok := auth.FromContext(r.Context()); ok {
			reporter = p.Identity
		}
	}

	res, err := h.svc.SubmitReport(r.Context(), services.ReportInput{
		Image:      img,
		ReporterID: reporter,
		Manual: services.ManualClassification{
			IssueType:  r.FormValue("issue_type"),
			Department: r.FormValue("department"),
			Severity:   r.FormValue("severity"),
		},
		TitleHint:   r.FormValue("issue_title"),
		Description: r.FormValue("description"),
		Geo:         geo,
	})
	if err != nil {
		h.errs.fail(w, err, "Failed to submit report")
		return
	}

	c := res.Analysis.Value
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"issue":   res.Issue,
		"analysis": analysisResponse{
			IssueType:   c.IssueType,
			Severity:    c.Severity,
			Department:  c.Department,
			Description: c.Description,
			Source:      res.Source,
			Degraded:    res.Analysis.Degraded,
			Reason:      res.Analysis.Reason,
		},
	})
}

// ResolveIssue handles POST /api/resolve_issue
func (h *IssueHandler) ResolveIssue(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUpload); err != nil {
		h.errs.fail(w, err, "Failed to read upload")
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("issue_id")), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "issue_id is required")
		return
	}
	img, err := readImage(r, "image_after", h.maxUpload)
	if err != nil {
		h.errs.fail(w, err, "Failed to read image")
		return
	}

	var actor string
	if p, ok := auth.FromContext(r.Context()); ok {
		actor = p.Identity
	}

	res, err := h.svc.ResolveIssue(r.Context(), id, img, actor)
	if err != nil {
		h.errs.fail(w, err, "Failed to resolve issue")
		return
	}

	if res.Resolved {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"resolved":    true,
			"message":     "Issue verified as resolved",
			"issue":       res.Issue,
			"explanation": res.Explanation,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"resolved":    false,
		"message":     "Resolution could not be verified",
		"explanation": res.Explanation,
	})
}

// List handles GET /api/issues
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var status *models.IssueStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s, ok := models.ParseStatus(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(raw))
			return
		}
		status = &s
	}

	issues, err := h.svc.ListIssues(r.Context(), p, status)
	if err != nil {
		h.errs.fail(w, err, "Failed to list issues")
		return
	}
	respondJSON(w, http.StatusOK, issues)
}

func issueID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid issue id")
		return 0, false
	}
	return id, true
}

// Get handles GET /api/issues/{id}
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := issueID(w, r)
	if !ok {
		return
	}

	issue, err := h.svc.GetIssue(r.Context(), p, id)
	if err != nil {
		h.errs.fail(w, err, "Failed to fetch issue")
		return
	}
	respondJSON(w, http.StatusOK, issue)
}

// Activity handles GET /api/issues/{id}/activity
func (h *IssueHandler) Activity(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := issueID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.svc.Activity(r.Context(), p, id, limit)
	if err != nil {
		h.errs.fail(w, err, "Failed to fetch activity")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

type assignRequest struct {
	IssueID     int64  `json:"issueId"`
	WorkerEmail string `json:"workerEmail"`
}

// Assign handles POST /api/issues/assign
func (h *IssueHandler) Assign(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IssueID <= 0 {
		respondError(w, http.StatusBadRequest, "issueId is required")
		return
	}

	issue, err := h.svc.AssignWorker(r.Context(), req.IssueID, req.WorkerEmail, p)
	if err != nil {
		h.errs.fail(w, err, "Failed to assign worker")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "issue": issue})
}

type reclassifyRequest struct {
	IssueType  string `json:"issueType"`
	Severity   string `json:"severity"`
	Department string `json:"department"`
}

// Reclassify handles PATCH /api/issues/{id}/classification
func (h *IssueHandler) Reclassify(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := issueID(w, r)
	if !ok {
		return
	}

	var req reclassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	issue, err := h.svc.Reclassify(r.Context(), p, id, services.ManualClassification{
		IssueType:  req.IssueType,
		Department: req.Department,
		Severity:   req.Severity,
	})
	if err != nil {
		h.errs.fail(w, err, "Failed to reclassify issue")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "issue": issue})
}

// Workers handles GET /api/workers
func (h *IssueHandler) Workers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	workers, err := h.svc.ListWorkers(r.Context(), p)
	if err != nil {
		h.errs.fail(w, err, "Failed to list workers")
		return
	}
	respondJSON(w, http.StatusOK, workers)
}

// Summary handles GET /api/analytics/summary
func (h *IssueHandler) Summary(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(r.Context(), p)
	if err != nil {
		h.errs.fail(w, err, "Failed to summarize issues")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
