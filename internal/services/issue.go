package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civicpulse/civic-server/internal/access"
	"github.com/civicpulse/civic-server/internal/blob"
	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/oracle"
	"github.com/civicpulse/civic-server/internal/sla"
	"github.com/civicpulse/civic-server/internal/store"
	"go.uber.org/zap"
)

const maxSuggestions = 4

// Policy holds the configurable lifecycle decisions.
type Policy struct {
	// RequireSameDepartment rejects assigning a worker from another department.
	RequireSameDepartment bool
	// RecomputeSLAOnReclassify moves the deadline when severity is corrected.
	RecomputeSLAOnReclassify bool
}

// ManualClassification is the caller-supplied triple as raw labels.
type ManualClassification struct {
	IssueType  string `json:"issue_type"`
	Department string `json:"department"`
	Severity   string `json:"severity"`
}

// complete reports whether all three labels are present.
func (m ManualClassification) complete() bool {
	return strings.TrimSpace(m.IssueType) != "" &&
		strings.TrimSpace(m.Department) != "" &&
		strings.TrimSpace(m.Severity) != ""
}

// parse validates a complete triple against the domain enums.
func (m ManualClassification) parse() (models.Classification, error) {
	t, ok := models.ParseIssueType(m.IssueType)
	if !ok {
		return models.Classification{}, fmt.Errorf("%w: unknown issue_type %q", ErrValidation, m.IssueType)
	}
	d, ok := models.ParseDepartment(m.Department)
	if !ok {
		return models.Classification{}, fmt.Errorf("%w: unknown department %q", ErrValidation, m.Department)
	}
	s, ok := models.ParseSeverity(m.Severity)
	if !ok {
		return models.Classification{}, fmt.Errorf("%w: unknown severity %q", ErrValidation, m.Severity)
	}
	return models.Classification{IssueType: t, Department: d, Severity: s}, nil
}

// ReportInput is everything a citizen submits with a report.
type ReportInput struct {
	Image       models.Image
	ReporterID  string
	Manual      ManualClassification
	TitleHint   string
	Description string
	Geo         *models.GeoPoint
}

// Classification sources reported back to the caller.
const (
	SourceManual   = "manual"
	SourceOracle   = "oracle"
	SourceFallback = "fallback"
)

// ReportResult is the persisted issue plus the classification actually used.
type ReportResult struct {
	Issue    *models.Issue
	Analysis Outcome[models.Classification]
	Source   string
}

// Resolution is the outcome of a resolution attempt.
type Resolution struct {
	Resolved    bool
	Issue       *models.Issue
	Explanation string
	Confidence  float64
	Degraded    bool
}

// IssueService is the issue lifecycle orchestrator.
type IssueService struct {
	store    store.Store
	blobs    blob.Store
	oracle   oracle.Oracle
	activity *ActivityService
	policy   Policy
	now      func() time.Time
	logger   *zap.SugaredLogger
}

// NewIssueService creates a new issue service
func NewIssueService(st store.Store, blobs blob.Store, orc oracle.Oracle, activity *ActivityService, policy Policy, logger *zap.SugaredLogger) *IssueService {
	return &IssueService{
		store:    st,
		blobs:    blobs,
		oracle:   orc,
		activity: activity,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// SetClock replaces the time source.
func (s *IssueService) SetClock(now func() time.Time) {
	s.now = now
}

// fallbackClassification is recorded when the oracle cannot classify.
func fallbackClassification(reason string) models.Classification {
	return models.Classification{
		IssueType:   models.IssueTypeUnknown,
		Severity:    models.SeverityMedium,
		Department:  models.DepartmentAdmin,
		Description: "classification unavailable: " + reason,
	}
}

// normalize maps raw oracle labels onto the domain enums. Unrecognized
// labels take the same defaults as the fallback classification.
func normalize(raw *oracle.RawClassification) models.Classification {
	c := models.Classification{
		IssueType:   models.IssueTypeUnknown,
		Severity:    models.SeverityMedium,
		Department:  models.DepartmentAdmin,
		Description: strings.TrimSpace(raw.Description),
	}
	if t, ok := models.ParseIssueType(raw.IssueType); ok {
		c.IssueType = t
	}
	if sv, ok := models.ParseSeverity(raw.Severity); ok {
		c.Severity = sv
	}
	if d, ok := models.ParseDepartment(raw.Department); ok {
		c.Department = d
	}
	return c
}

func (s *IssueService) classify(ctx context.Context, img models.Image, hint string) Outcome[models.Classification] {
	raw, err := s.oracle.Classify(ctx, img, hint)
	if err != nil {
		s.logger.Warnw("Classification degraded", "error", err)
		return Degrade(fallbackClassification(err.Error()), err.Error())
	}
	return Ok(normalize(raw))
}

// SubmitReport stores the image, classifies it and creates the issue.
// Oracle failures never fail the submission.
func (s *IssueService) SubmitReport(ctx context.Context, in ReportInput) (*ReportResult, error) {
	if len(in.Image.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}

	var (
		analysis Outcome[models.Classification]
		source   string
	)
	if in.Manual.complete() {
		c, err := in.Manual.parse()
		if err != nil {
			return nil, err
		}
		analysis, source = Ok(c), SourceManual
	}

	// A blob orphaned by a later failure is an accepted leak.
	ref, err := s.blobs.Put(ctx, in.Image.Data, in.Image.MIME)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	if source == "" {
		analysis = s.classify(ctx, in.Image, in.TitleHint)
		source = SourceOracle
		if analysis.Degraded {
			source = SourceFallback
		}
	}

	c := analysis.Value
	description := strings.TrimSpace(in.Description)
	switch {
	case description == "":
		description = c.Description
	case analysis.Degraded:
		description = description + "; " + c.Description
	}

	reporter := strings.TrimSpace(in.ReporterID)
	if reporter == "" {
		reporter = "anonymous"
	}

	now := s.now()
	issue, err := s.store.CreateIssue(ctx, models.NewIssue{
		ReporterID:     reporter,
		Classification: c,
		ImageURLBefore: ref,
		SLADueAt:       sla.DueAt(now, c.Severity),
		Description:    description,
		Latitude:       geoLat(in.Geo),
		Longitude:      geoLng(in.Geo),
		CreatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLogEntry{
		IssueID:      issue.ID,
		ActivityType: models.ActivitySubmitted,
		Description:  fmt.Sprintf("Reported as %s (%s severity), routed to %s via %s classification", c.IssueType, c.Severity, c.Department, source),
		Actor:        reporter,
	})

	s.logger.Infow("Issue reported",
		"issue_id", issue.ID,
		"issue_type", issue.IssueType,
		"severity", issue.Severity,
		"department", issue.DepartmentAssigned,
		"source", source,
		"has_geo", in.Geo != nil,
	)

	return &ReportResult{Issue: issue, Analysis: analysis, Source: source}, nil
}

func geoLat(g *models.GeoPoint) *float64 {
	if g == nil {
		return nil
	}
	v := g.Latitude
	return &v
}

func geoLng(g *models.GeoPoint) *float64 {
	if g == nil {
		return nil
	}
	v := g.Longitude
	return &v
}

// Suggest returns up to four candidate classifications for a photo. An
// oracle failure yields an empty list.
func (s *IssueService) Suggest(ctx context.Context, img models.Image) (Outcome[[]oracle.Suggestion], error) {
	if len(img.Data) == 0 {
		return Outcome[[]oracle.Suggestion]{}, fmt.Errorf("%w: image is required", ErrValidation)
	}

	suggestions, err := s.oracle.Suggest(ctx, img)
	if err != nil {
		s.logger.Warnw("Suggestion degraded", "error", err)
		return Degrade([]oracle.Suggestion{}, err.Error()), nil
	}
	if suggestions == nil {
		suggestions = []oracle.Suggestion{}
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return Ok(suggestions), nil
}

// ResolveIssue verifies a claimed repair against the before photo and, if
// the oracle agrees, marks the issue Resolved. Verification failures are
// reported as resolved=false.
func (s *IssueService) ResolveIssue(ctx context.Context, id int64, after models.Image, actor string) (*Resolution, error) {
	if len(after.Data) == 0 {
		return nil, fmt.Errorf("%w: image_after is required", ErrValidation)
	}

	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: issue %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get issue: %w", err)
	}

	if issue.Status == models.StatusResolved {
		return &Resolution{Resolved: true, Issue: issue, Explanation: "issue is already resolved"}, nil
	}

	before := after
	data, mime, err := s.blobs.Get(ctx, issue.ImageURLBefore)
	if err != nil {
		s.logger.Warnw("Before image unavailable, comparing after image with itself",
			"issue_id", id,
			"ref", issue.ImageURLBefore,
			"error", err,
		)
	} else {
		before = models.Image{Data: data, MIME: mime}
	}

	verdict, err := s.oracle.Verify(ctx, before, after)
	if err != nil {
		s.logger.Warnw("Verification degraded", "issue_id", id, "error", err)
		explanation := "verification service failed: " + err.Error()
		s.recordRejection(ctx, id, explanation, actor)
		return &Resolution{Explanation: explanation, Degraded: true}, nil
	}

	if !verdict.Resolved {
		s.recordRejection(ctx, id, verdict.Explanation, actor)
		return &Resolution{Explanation: verdict.Explanation, Confidence: verdict.Confidence}, nil
	}

	ref, err := s.blobs.Put(ctx, after.Data, after.MIME)
	if err != nil {
		return nil, fmt.Errorf("store after image: %w", err)
	}

	updated, changed, err := s.store.ResolveIssue(ctx, id, ref, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: issue %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("resolve issue: %w", err)
	}

	if changed {
		s.activity.Record(ctx, models.ActivityLogEntry{
			IssueID:      id,
			ActivityType: models.ActivityResolved,
			Description:  verdict.Explanation,
			Actor:        actorOr(actor),
		})
		s.logger.Infow("Issue resolved", "issue_id", id, "confidence", verdict.Confidence)
	}

	return &Resolution{
		Resolved:    true,
		Issue:       updated,
		Explanation: verdict.Explanation,
		Confidence:  verdict.Confidence,
	}, nil
}

func (s *IssueService) recordRejection(ctx context.Context, id int64, explanation, actor string) {
	s.activity.Record(ctx, models.ActivityLogEntry{
		IssueID:      id,
		ActivityType: models.ActivityVerificationRejected,
		Description:  explanation,
		Actor:        actorOr(actor),
	})
}

func actorOr(actor string) string {
	if actor == "" {
		return "SYSTEM"
	}
	return actor
}

// AssignWorker hands an issue to a field worker. Only the two admin roles
// may assign.
func (s *IssueService) AssignWorker(ctx context.Context, id int64, worker string, p models.Principal) (*models.Issue, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: role %q may not assign workers", ErrForbidden, p.Role)
	}
	worker = strings.TrimSpace(worker)
	if worker == "" {
		return nil, fmt.Errorf("%w: worker email is required", ErrValidation)
	}

	if s.policy.RequireSameDepartment {
		if err := s.checkWorkerDepartment(ctx, id, worker); err != nil {
			return nil, err
		}
	}

	issue, err := s.store.AssignIssue(ctx, id, worker, s.now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("%w: issue %d", ErrNotFound, id)
		case errors.Is(err, store.ErrAlreadyResolved):
			return nil, fmt.Errorf("%w: issue %d is already resolved", ErrConflict, id)
		}
		return nil, fmt.Errorf("assign issue: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLogEntry{
		IssueID:      id,
		ActivityType: models.ActivityAssigned,
		Description:  "Assigned to " + worker,
		Actor:        p.Identity,
	})

	s.logger.Infow("Issue assigned", "issue_id", id, "worker", worker, "by", p.Identity)
	return issue, nil
}

func (s *IssueService) checkWorkerDepartment(ctx context.Context, id int64, worker string) error {
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: issue %d", ErrNotFound, id)
		}
		return fmt.Errorf("get issue: %w", err)
	}

	u, err := s.store.GetUserByEmail(ctx, worker)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown worker %q", ErrValidation, worker)
		}
		return fmt.Errorf("get worker: %w", err)
	}
	if u.Role != models.RoleWorker {
		return fmt.Errorf("%w: %q is not a worker", ErrValidation, worker)
	}
	if u.Department == nil || *u.Department != issue.DepartmentAssigned {
		return fmt.Errorf("%w: worker %q is not in department %s", ErrForbidden, worker, issue.DepartmentAssigned)
	}
	return nil
}

func scopeFor(p models.Principal) (store.IssueFilter, error) {
	filter, err := access.Scope(p)
	if err != nil {
		return store.IssueFilter{}, fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	return filter, nil
}

// ListIssues returns the issues visible to p, optionally narrowed by status.
func (s *IssueService) ListIssues(ctx context.Context, p models.Principal, status *models.IssueStatus) ([]models.Issue, error) {
	filter, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	filter.Status = status

	issues, err := s.store.ListIssues(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	return issues, nil
}

// GetIssue returns one issue if it is visible to p. Out of scope issues
// are reported as not found.
func (s *IssueService) GetIssue(ctx context.Context, p models.Principal, id int64) (*models.Issue, error) {
	filter, err := scopeFor(p)
	if err != nil {
		return nil, err
	}

	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: issue %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get issue: %w", err)
	}
	if !filter.Matches(issue) {
		return nil, fmt.Errorf("%w: issue %d", ErrNotFound, id)
	}
	return issue, nil
}

// Reclassify corrects an issue's classification. The SLA deadline only
// moves when the recompute policy is on, and is then measured from the
// issue's creation time.
func (s *IssueService) Reclassify(ctx context.Context, p models.Principal, id int64, m ManualClassification) (*models.Issue, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: role %q may not reclassify issues", ErrForbidden, p.Role)
	}
	if !m.complete() {
		return nil, fmt.Errorf("%w: issue_type, department and severity are required", ErrValidation)
	}
	c, err := m.parse()
	if err != nil {
		return nil, err
	}

	current, err := s.GetIssue(ctx, p, id)
	if err != nil {
		return nil, err
	}

	var due *time.Time
	if s.policy.RecomputeSLAOnReclassify {
		d := sla.DueAt(current.CreatedAt, c.Severity)
		due = &d
	}

	issue, err := s.store.ReclassifyIssue(ctx, id, c, due, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: issue %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reclassify issue: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLogEntry{
		IssueID:      id,
		ActivityType: models.ActivityReclassified,
		Description: fmt.Sprintf("%s/%s/%s changed to %s/%s/%s",
			current.IssueType, current.Severity, current.DepartmentAssigned,
			c.IssueType, c.Severity, c.Department),
		Actor: p.Identity,
	})
	return issue, nil
}

// ListWorkers returns the workers an admin may assign.
func (s *IssueService) ListWorkers(ctx context.Context, p models.Principal) ([]models.Worker, error) {
	dept, matchNone, err := access.WorkerScope(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	if matchNone {
		return []models.Worker{}, nil
	}

	workers, err := s.store.ListWorkers(ctx, dept)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	if workers == nil {
		workers = []models.Worker{}
	}
	return workers, nil
}

// Summary aggregates the issues visible to p.
func (s *IssueService) Summary(ctx context.Context, p models.Principal) (*models.IssueSummary, error) {
	filter, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	summary, err := s.store.SummarizeIssues(ctx, filter, s.now())
	if err != nil {
		return nil, fmt.Errorf("summarize issues: %w", err)
	}
	return summary, nil
}

// Activity returns the lifecycle log of an issue visible to p.
func (s *IssueService) Activity(ctx context.Context, p models.Principal, id int64, limit int) ([]models.ActivityLog, error) {
	if _, err := s.GetIssue(ctx, p, id); err != nil {
		return nil, err
	}
	return s.activity.ForIssue(ctx, id, limit)
}
