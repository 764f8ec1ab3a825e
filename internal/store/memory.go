package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/civicpulse/civic-server/internal/models"
)

// MemoryStore implements Store in process memory. It backs development
// runs without DATABASE_URL and the service and handler tests.
type MemoryStore struct {
	mu       sync.Mutex
	issues   map[int64]*models.Issue
	users    map[string]*models.User
	activity []models.ActivityLog
	nextID   int64
	nextUser int64
	nextLog  int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		issues: make(map[int64]*models.Issue),
		users:  make(map[string]*models.User),
	}
}

func cloneIssue(i *models.Issue) *models.Issue {
	c := *i
	if i.AssignedWorker != nil {
		w := *i.AssignedWorker
		c.AssignedWorker = &w
	}
	if i.ImageURLAfter != nil {
		a := *i.ImageURLAfter
		c.ImageURLAfter = &a
	}
	if i.Latitude != nil {
		v := *i.Latitude
		c.Latitude = &v
	}
	if i.Longitude != nil {
		v := *i.Longitude
		c.Longitude = &v
	}
	return &c
}

// --- Issues ---

func (s *MemoryStore) CreateIssue(ctx context.Context, in models.NewIssue) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	issue := &models.Issue{
		ID:                 s.nextID,
		ReporterID:         in.ReporterID,
		IssueType:          in.Classification.IssueType,
		Severity:           in.Classification.Severity,
		Status:             models.StatusReported,
		DepartmentAssigned: in.Classification.Department,
		ImageURLBefore:     in.ImageURLBefore,
		SLADueAt:           in.SLADueAt,
		Description:        in.Description,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		CreatedAt:          created,
		UpdatedAt:          created,
	}
	s.issues[issue.ID] = issue
	return cloneIssue(issue), nil
}

func (s *MemoryStore) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %d: %w", id, ErrNotFound)
	}
	return cloneIssue(issue), nil
}

func (s *MemoryStore) ListIssues(ctx context.Context, filter IssueFilter) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Issue, 0)
	for _, issue := range s.issues {
		if filter.Matches(issue) {
			out = append(out, *cloneIssue(issue))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) AssignIssue(ctx context.Context, id int64, worker string, at time.Time) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %d: %w", id, ErrNotFound)
	}
	if issue.Status == models.StatusResolved {
		return nil, fmt.Errorf("issue %d: %w", id, ErrAlreadyResolved)
	}
	issue.AssignedWorker = &worker
	issue.Status = models.StatusInProgress
	issue.UpdatedAt = at
	return cloneIssue(issue), nil
}

func (s *MemoryStore) ResolveIssue(ctx context.Context, id int64, imageURLAfter string, at time.Time) (*models.Issue, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, false, fmt.Errorf("issue %d: %w", id, ErrNotFound)
	}
	if issue.Status == models.StatusResolved {
		return cloneIssue(issue), false, nil
	}
	issue.Status = models.StatusResolved
	issue.ImageURLAfter = &imageURLAfter
	issue.UpdatedAt = at
	return cloneIssue(issue), true, nil
}

func (s *MemoryStore) ReclassifyIssue(ctx context.Context, id int64, c models.Classification, slaDueAt *time.Time, at time.Time) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %d: %w", id, ErrNotFound)
	}
	issue.IssueType = c.IssueType
	issue.Severity = c.Severity
	issue.DepartmentAssigned = c.Department
	if slaDueAt != nil {
		issue.SLADueAt = *slaDueAt
	}
	issue.UpdatedAt = at
	return cloneIssue(issue), nil
}

func (s *MemoryStore) SummarizeIssues(ctx context.Context, filter IssueFilter, now time.Time) (*models.IssueSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := newSummary()
	for _, issue := range s.issues {
		if !filter.Matches(issue) {
			continue
		}
		sum.Total++
		sum.ByStatus[issue.Status]++
		sum.ByDepartment[issue.DepartmentAssigned]++
		if issue.Overdue(now) {
			sum.Overdue++
		}
	}
	return sum, nil
}

// --- Users ---

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := s.users[key]; exists {
		return false, nil
	}
	s.nextUser++
	u.ID = s.nextUser
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	c := *u
	s.users[key] = &c
	return true, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (s *MemoryStore) ListWorkers(ctx context.Context, department *models.Department) ([]models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers := make([]models.Worker, 0)
	for _, u := range s.users {
		if u.Role != models.RoleWorker {
			continue
		}
		if department != nil && (u.Department == nil || *u.Department != *department) {
			continue
		}
		workers = append(workers, models.Worker{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department})
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].Name < workers[j].Name })
	return workers, nil
}

// --- Activity ---

func (s *MemoryStore) LogActivity(ctx context.Context, entry models.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLog++
	s.activity = append(s.activity, models.ActivityLog{
		ID:           s.nextLog,
		IssueID:      entry.IssueID,
		ActivityType: entry.ActivityType,
		Description:  entry.Description,
		Actor:        entry.Actor,
		CreatedAt:    time.Now().UTC(),
	})
	return nil
}

func (s *MemoryStore) ListActivity(ctx context.Context, issueID int64, limit int) ([]models.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]models.ActivityLog, 0)
	for i := len(s.activity) - 1; i >= 0 && (limit <= 0 || len(logs) < limit); i-- {
		if s.activity[i].IssueID == issueID {
			logs = append(logs, s.activity[i])
		}
	}
	return logs, nil
}

// --- Lifecycle ---

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() {}
