package services

import (
	"context"
	"fmt"

	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/store"
	"go.uber.org/zap"
)

// ActivityService records lifecycle events against issues.
type ActivityService struct {
	store  store.Store
	logger *zap.SugaredLogger
}

// NewActivityService creates a new activity service
func NewActivityService(st store.Store, logger *zap.SugaredLogger) *ActivityService {
	return &ActivityService{store: st, logger: logger}
}

// Record appends an activity entry. Failures are logged and swallowed so
// that the lifecycle operation that produced the event still succeeds.
func (s *ActivityService) Record(ctx context.Context, entry models.ActivityLogEntry) {
	if err := s.store.LogActivity(ctx, entry); err != nil {
		s.logger.Errorw("Failed to record activity",
			"issue_id", entry.IssueID,
			"type", entry.ActivityType,
			"error", err,
		)
		return
	}

	s.logger.Infow("Activity logged",
		"issue_id", entry.IssueID,
		"type", entry.ActivityType,
		"actor", entry.Actor,
	)
}

// ForIssue returns the newest activity for an issue, newest first.
func (s *ActivityService) ForIssue(ctx context.Context, issueID int64, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	logs, err := s.store.ListActivity(ctx, issueID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}
	return logs, nil
}
