package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicpulse/civic-server/internal/auth"
	"github.com/civicpulse/civic-server/internal/blob"
	"github.com/civicpulse/civic-server/internal/middleware"
	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/oracle"
	"github.com/civicpulse/civic-server/internal/oracle/oracletest"
	"github.com/civicpulse/civic-server/internal/services"
	"github.com/civicpulse/civic-server/internal/store"
)

const testSecret = "handler-test-secret"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testServer struct {
	handler http.Handler
	store   *store.MemoryStore
	oracle  *oracletest.Fake
}

func newTestServer(t *testing.T, limiter *middleware.Limiter) *testServer {
	t.Helper()
	logger := zap.NewNop()
	sugar := logger.Sugar()

	st := store.NewMemoryStore()
	dir := t.TempDir()
	blobs, err := blob.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	fake := &oracletest.Fake{
		Classification: &oracle.RawClassification{IssueType: "Pothole", Severity: "High", Department: "PWD", Description: "Deep pothole"},
		Verdict:        &oracle.Verdict{Resolved: true, Confidence: 0.9, Explanation: "repaired"},
		Reply:          "Potholes are handled by PWD.",
	}

	issues := services.NewIssueService(st, blobs, fake, services.NewActivityService(st, sugar), services.Policy{}, sugar)
	chat := services.NewChatService(fake, 20, sugar)

	h := NewRouter(RouterConfig{
		Issues:          NewIssueHandler(issues, 1<<20, false, sugar),
		Chat:            NewChatHandler(chat, false, sugar),
		Health:          NewHealthHandler(st, sugar),
		JWTSecret:       testSecret,
		Limiter:         limiter,
		UploadDir:       dir,
		UploadURLPrefix: "/uploads",
		Logger:          logger,
	})
	return &testServer{handler: h, store: st, oracle: fake}
}

func token(t *testing.T, role models.Role, email string, dept *models.Department) string {
	t.Helper()
	tok, err := auth.NewToken(&models.User{Email: email, Role: role, Department: dept}, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func deptPtr(d models.Department) *models.Department { return &d }

func (s *testServer) do(t *testing.T, req *http.Request, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, path, fileField string, file []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(fileField, "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, path string, v interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type reportResponse struct {
	Success  bool             `json:"success"`
	Issue    models.Issue     `json:"issue"`
	Analysis analysisResponse `json:"analysis"`
}

func (s *testServer) report(t *testing.T, fields map[string]string) models.Issue {
	t.Helper()
	rec := s.do(t, multipartRequest(t, "/api/report_issue", "image", pngBytes, fields), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp reportResponse
	decode(t, rec, &resp)
	return resp.Issue
}

// --- Report submission ---

func TestReportIssue_Classified(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, multipartRequest(t, "/api/report_issue", "image", pngBytes, map[string]string{
		"reporter_id":   "citizen@example.com",
		"issue_title":   "Deep Pothole",
		"geo_latitude":  "26.85",
		"geo_longitude": "80.95",
	}), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp reportResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, models.StatusReported, resp.Issue.Status)
	assert.Equal(t, models.DepartmentPWD, resp.Issue.DepartmentAssigned)
	assert.Equal(t, "citizen@example.com", resp.Issue.ReporterID)
	assert.True(t, resp.Issue.SLADueAt.Equal(resp.Issue.CreatedAt.Add(24*time.Hour)))
	assert.Equal(t, services.SourceOracle, resp.Analysis.Source)
	assert.False(t, resp.Analysis.Degraded)
	require.NotNil(t, resp.Issue.Latitude)
	assert.InDelta(t, 26.85, *resp.Issue.Latitude, 1e-9)
	assert.True(t, strings.HasPrefix(resp.Issue.ImageURLBefore, "/uploads/"))

	// the stored image is served back
	img := s.do(t, httptest.NewRequest(http.MethodGet, resp.Issue.ImageURLBefore, nil), "")
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, pngBytes, img.Body.Bytes())
}

func TestReportIssue_ManualSkipsOracle(t *testing.T) {
	s := newTestServer(t, nil)

	issue := s.report(t, map[string]string{
		"reporter_id": "c@x.com",
		"issue_type":  "Garbage Overflow",
		"department":  "Nagar Nigam",
		"severity":    "Low",
	})
	assert.Equal(t, 0, s.oracle.Calls("Classify"))
	assert.Equal(t, models.IssueTypeGarbageOverflow, issue.IssueType)
	assert.Equal(t, models.DepartmentNagarNigam, issue.DepartmentAssigned)
	assert.Equal(t, models.SeverityLow, issue.Severity)
}

func TestReportIssue_OracleOutageStillAccepted(t *testing.T) {
	s := newTestServer(t, nil)
	s.oracle.ClassifyErr = errors.New("upstream 529 overloaded")

	rec := s.do(t, multipartRequest(t, "/api/report_issue", "image", pngBytes, map[string]string{"reporter_id": "c@x.com"}), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp reportResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Analysis.Degraded)
	assert.Equal(t, services.SourceFallback, resp.Analysis.Source)
	assert.Equal(t, models.IssueTypeUnknown, resp.Issue.IssueType)
	assert.Equal(t, models.DepartmentAdmin, resp.Issue.DepartmentAssigned)
	assert.Contains(t, resp.Issue.Description, "overloaded")
}

func TestReportIssue_ReporterFromToken(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, models.RoleCitizen, "token@x.com", nil)

	rec := s.do(t, multipartRequest(t, "/api/report_issue", "image", pngBytes, nil), tok)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp reportResponse
	decode(t, rec, &resp)
	assert.Equal(t, "token@x.com", resp.Issue.ReporterID)
}

func TestReportIssue_BadUploads(t *testing.T) {
	s := newTestServer(t, nil)

	cases := map[string]*http.Request{
		"missing image": multipartRequest(t, "/api/report_issue", "image", nil, map[string]string{"reporter_id": "c@x.com"}),
		"not an image":  multipartRequest(t, "/api/report_issue", "image", []byte("just some text"), nil),
		"too large":     multipartRequest(t, "/api/report_issue", "image", append(append([]byte{}, pngBytes...), make([]byte, 2<<20)...), nil),
		"half geo":      multipartRequest(t, "/api/report_issue", "image", pngBytes, map[string]string{"geo_latitude": "26.8"}),
		"bad severity": multipartRequest(t, "/api/report_issue", "image", pngBytes, map[string]string{
			"issue_type": "Pothole", "department": "PWD", "severity": "Extreme",
		}),
	}
	for name, req := range cases {
		rec := s.do(t, req, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	issues, err := s.store.ListIssues(context.Background(), store.IssueFilter{})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// --- Suggestions ---

func TestAnalyzeImage(t *testing.T) {
	s := newTestServer(t, nil)
	s.oracle.Suggestions = []oracle.Suggestion{
		{Title: "Deep Pothole", IssueType: "Pothole", Department: "PWD", Severity: "High", Confidence: "High"},
		{Title: "Garbage Dump", IssueType: "Garbage Overflow", Department: "Nagar Nigam", Severity: "Medium", Confidence: "Low"},
	}

	rec := s.do(t, multipartRequest(t, "/api/analyze_image", "image", pngBytes, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success     bool                `json:"success"`
		Suggestions []oracle.Suggestion `json:"suggestions"`
		Degraded    bool                `json:"degraded"`
	}
	decode(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Suggestions, 2)

	s.oracle.SuggestErr = errors.New("down")
	rec = s.do(t, multipartRequest(t, "/api/analyze_image", "image", pngBytes, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"suggestions":[]`)
	assert.Contains(t, rec.Body.String(), `"degraded":true`)

	issues, err := s.store.ListIssues(context.Background(), store.IssueFilter{})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// --- Resolution ---

func TestResolveIssue(t *testing.T) {
	s := newTestServer(t, nil)
	issue := s.report(t, map[string]string{"reporter_id": "c@x.com"})
	id := fmt.Sprint(issue.ID)

	s.oracle.Verdict = &oracle.Verdict{Resolved: false, Explanation: "garbage still present"}
	rec := s.do(t, multipartRequest(t, "/api/resolve_issue", "image_after", pngBytes, map[string]string{"issue_id": id}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rejected map[string]interface{}
	decode(t, rec, &rejected)
	assert.Equal(t, false, rejected["resolved"])
	assert.Equal(t, "garbage still present", rejected["explanation"])
	assert.NotContains(t, rejected, "issue")

	s.oracle.Verdict = &oracle.Verdict{Resolved: true, Explanation: "cleared"}
	rec = s.do(t, multipartRequest(t, "/api/resolve_issue", "image_after", pngBytes, map[string]string{"issue_id": id}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var accepted struct {
		Resolved bool         `json:"resolved"`
		Issue    models.Issue `json:"issue"`
	}
	decode(t, rec, &accepted)
	assert.True(t, accepted.Resolved)
	assert.Equal(t, models.StatusResolved, accepted.Issue.Status)
	require.NotNil(t, accepted.Issue.ImageURLAfter)
}

func TestResolveIssue_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, multipartRequest(t, "/api/resolve_issue", "image_after", pngBytes, map[string]string{"issue_id": "abc"}), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, multipartRequest(t, "/api/resolve_issue", "image_after", pngBytes, map[string]string{"issue_id": "99"}), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	issue := s.report(t, nil)
	rec = s.do(t, multipartRequest(t, "/api/resolve_issue", "image_after", nil, map[string]string{"issue_id": fmt.Sprint(issue.ID)}), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Dashboard ---

func TestListIssues_Scoping(t *testing.T) {
	s := newTestServer(t, nil)
	s.report(t, map[string]string{"reporter_id": "alice@x.com"})
	s.report(t, map[string]string{"reporter_id": "bob@x.com"})

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues", nil), token(t, "AUDITOR", "a@x.com", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues", nil), token(t, models.RoleDeptAdmin, "lost@city.gov", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues", nil), token(t, models.RoleCitizen, "alice@x.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var issues []models.Issue
	decode(t, rec, &issues)
	require.Len(t, issues, 1)
	assert.Equal(t, "alice@x.com", issues[0].ReporterID)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues?status=in_progress", nil), token(t, models.RoleSuperAdmin, "root@city.gov", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues?status=closed", nil), token(t, models.RoleSuperAdmin, "root@city.gov", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssign(t *testing.T) {
	s := newTestServer(t, nil)
	issue := s.report(t, map[string]string{"reporter_id": "c@x.com"})
	body := map[string]interface{}{"issueId": issue.ID, "workerEmail": "w@x.com"}

	rec := s.do(t, jsonRequest(t, http.MethodPost, "/api/issues/assign", body), token(t, models.RoleCitizen, "c@x.com", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := token(t, models.RoleDeptAdmin, "admin@city.gov", deptPtr(models.DepartmentPWD))
	rec = s.do(t, jsonRequest(t, http.MethodPost, "/api/issues/assign", body), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Success bool         `json:"success"`
		Issue   models.Issue `json:"issue"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, models.StatusInProgress, resp.Issue.Status)
	require.NotNil(t, resp.Issue.AssignedWorker)
	assert.Equal(t, "w@x.com", *resp.Issue.AssignedWorker)

	// the worker now sees it
	rec = s.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/issues/%d", issue.ID), nil), token(t, models.RoleWorker, "w@x.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, jsonRequest(t, http.MethodPost, "/api/issues/assign", map[string]interface{}{"issueId": 999, "workerEmail": "w@x.com"}), admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, jsonRequest(t, http.MethodPost, "/api/issues/assign", map[string]interface{}{"issueId": issue.ID}), admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, multipartRequest(t, "/api/resolve_issue", "image_after", pngBytes, map[string]string{"issue_id": fmt.Sprint(issue.ID)}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, jsonRequest(t, http.MethodPost, "/api/issues/assign", body), admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetIssueAndActivity(t *testing.T) {
	s := newTestServer(t, nil)
	issue := s.report(t, map[string]string{"reporter_id": "alice@x.com"})
	path := fmt.Sprintf("/api/issues/%d", issue.ID)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, path, nil), token(t, models.RoleCitizen, "alice@x.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, path, nil), token(t, models.RoleCitizen, "bob@x.com", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues/nope", nil), token(t, models.RoleCitizen, "alice@x.com", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, path+"/activity", nil), token(t, models.RoleCitizen, "alice@x.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []models.ActivityLog
	decode(t, rec, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivitySubmitted, logs[0].ActivityType)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, path+"/activity", nil), token(t, models.RoleWorker, "w@x.com", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReclassify(t *testing.T) {
	s := newTestServer(t, nil)
	issue := s.report(t, map[string]string{"reporter_id": "c@x.com"})
	path := fmt.Sprintf("/api/issues/%d/classification", issue.ID)
	body := map[string]string{"issueType": "Water Leakage", "severity": "Low", "department": "PHED"}

	rec := s.do(t, jsonRequest(t, http.MethodPatch, path, body), token(t, models.RoleWorker, "w@x.com", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, jsonRequest(t, http.MethodPatch, path, body), token(t, models.RoleSuperAdmin, "root@city.gov", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Issue models.Issue `json:"issue"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, models.DepartmentPHED, resp.Issue.DepartmentAssigned)
	assert.True(t, resp.Issue.SLADueAt.Equal(issue.SLADueAt))

	rec = s.do(t, jsonRequest(t, http.MethodPatch, path, map[string]string{"issueType": "Pothole"}), token(t, models.RoleSuperAdmin, "root@city.gov", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkers(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	pwd := models.DepartmentPWD
	_, err := s.store.CreateUser(ctx, &models.User{Name: "Ravi", Email: "ravi@city.gov", Role: models.RoleWorker, Department: &pwd})
	require.NoError(t, err)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/workers", nil), token(t, models.RoleWorker, "ravi@city.gov", &pwd))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/workers", nil), token(t, models.RoleDeptAdmin, "admin@city.gov", &pwd))
	require.Equal(t, http.StatusOK, rec.Code)
	var workers []models.Worker
	decode(t, rec, &workers)
	require.Len(t, workers, 1)
	assert.Equal(t, "ravi@city.gov", workers[0].Email)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/workers", nil), token(t, models.RoleDeptAdmin, "lost@city.gov", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, nil)
	s.report(t, map[string]string{"reporter_id": "c@x.com"})
	s.report(t, map[string]string{"reporter_id": "c@x.com", "issue_type": "Water Leakage", "department": "PHED", "severity": "Low"})

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil), token(t, models.RoleDeptAdmin, "admin@city.gov", deptPtr(models.DepartmentPHED)))
	require.Equal(t, http.StatusOK, rec.Code)
	var sum models.IssueSummary
	decode(t, rec, &sum)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.ByDepartment[models.DepartmentPHED])
	assert.Equal(t, 0, sum.Overdue)
}

// --- Chat ---

func TestChat(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, jsonRequest(t, http.MethodPost, "/api/chat", map[string]interface{}{
		"message": "Who fixes potholes?",
		"history": []map[string]string{{"role": "assistant", "message": "Hi!"}},
	}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"reply":"Potholes are handled by PWD."}`, rec.Body.String())
	require.Len(t, s.oracle.LastHistory, 1)
	assert.Equal(t, oracle.ChatRoleAssistant, s.oracle.LastHistory[0].Role)

	s.oracle.ChatErr = errors.New("timeout")
	rec = s.do(t, jsonRequest(t, http.MethodPost, "/api/chat", map[string]string{"message": "hello"}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool   `json:"success"`
		Reply   string `json:"reply"`
	}
	decode(t, rec, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, services.ChatApology, resp.Reply)

	rec = s.do(t, jsonRequest(t, http.MethodPost, "/api/chat", map[string]string{"message": " "}), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_RateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := newTestServer(t, middleware.NewLimiter(rdb, 1, time.Minute))

	rec := s.do(t, jsonRequest(t, http.MethodPost, "/api/chat", map[string]string{"message": "hello"}), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, jsonRequest(t, http.MethodPost, "/api/chat", map[string]string{"message": "hello again"}), "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "retry_after")
	assert.Equal(t, 1, s.oracle.Calls("Chat"))

	// dashboard routes are not limited
	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/issues", nil), token(t, models.RoleSuperAdmin, "root@city.gov", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- Health ---

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"connected"`)

	h := NewHealthHandler(failingPinger{}, zap.NewNop().Sugar())
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), "disconnected")
}
