// Package store is the relational system of record for issues, users and
// issue activity.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/civicpulse/civic-server/internal/models"
)

var (
	// ErrNotFound is returned when a row keyed by id or email does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyResolved is returned when a mutation targets a Resolved issue.
	ErrAlreadyResolved = errors.New("issue already resolved")
)

// IssueFilter is a conjunction of equality predicates over issues.
// MatchNone short-circuits to the empty result.
type IssueFilter struct {
	ReporterID     *string
	AssignedWorker *string
	Department     *models.Department
	Status         *models.IssueStatus
	MatchNone      bool
}

// Matches evaluates the filter against a single issue.
func (f IssueFilter) Matches(i *models.Issue) bool {
	if f.MatchNone {
		return false
	}
	if f.ReporterID != nil && i.ReporterID != *f.ReporterID {
		return false
	}
	if f.AssignedWorker != nil && (i.AssignedWorker == nil || *i.AssignedWorker != *f.AssignedWorker) {
		return false
	}
	if f.Department != nil && i.DepartmentAssigned != *f.Department {
		return false
	}
	if f.Status != nil && i.Status != *f.Status {
		return false
	}
	return true
}

// Store defines the persistence interface for the civic server.
// Every mutation of an existing issue is a single atomic row update keyed
// by issue id.
type Store interface {
	// Issues
	CreateIssue(ctx context.Context, in models.NewIssue) (*models.Issue, error)
	GetIssue(ctx context.Context, id int64) (*models.Issue, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]models.Issue, error)
	// AssignIssue sets the worker and moves Reported to In Progress.
	// Returns ErrAlreadyResolved for resolved issues.
	AssignIssue(ctx context.Context, id int64, worker string, at time.Time) (*models.Issue, error)
	// ResolveIssue transitions a non-resolved issue to Resolved. The bool
	// is false when the issue was already resolved and nothing changed.
	ResolveIssue(ctx context.Context, id int64, imageURLAfter string, at time.Time) (*models.Issue, bool, error)
	// ReclassifyIssue replaces the classification; a nil slaDueAt keeps the deadline.
	ReclassifyIssue(ctx context.Context, id int64, c models.Classification, slaDueAt *time.Time, at time.Time) (*models.Issue, error)
	SummarizeIssues(ctx context.Context, filter IssueFilter, now time.Time) (*models.IssueSummary, error)

	// Users
	CreateUser(ctx context.Context, u *models.User) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListWorkers(ctx context.Context, department *models.Department) ([]models.Worker, error)

	// Activity
	LogActivity(ctx context.Context, entry models.ActivityLogEntry) error
	ListActivity(ctx context.Context, issueID int64, limit int) ([]models.ActivityLog, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close()
}

func newSummary() *models.IssueSummary {
	return &models.IssueSummary{
		ByStatus:     make(map[models.IssueStatus]int),
		ByDepartment: make(map[models.Department]int),
	}
}
