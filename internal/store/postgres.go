package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/civicpulse/civic-server/internal/models"
)

const issueColumns = `issue_id, reporter_id, issue_type, severity, status, department_assigned,
	assigned_worker_id, image_url_before, image_url_after, sla_due_date, description,
	geo_latitude, geo_longitude, created_at, updated_at`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

// NewPostgresStore creates a store over an established pool.
func NewPostgresStore(db *pgxpool.Pool, logger *zap.SugaredLogger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var i models.Issue
	err := row.Scan(&i.ID, &i.ReporterID, &i.IssueType, &i.Severity, &i.Status, &i.DepartmentAssigned,
		&i.AssignedWorker, &i.ImageURLBefore, &i.ImageURLAfter, &i.SLADueAt, &i.Description,
		&i.Latitude, &i.Longitude, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// issueWhere renders the filter as a WHERE clause with positional args
// starting at $start.
func issueWhere(f IssueFilter, start int) (string, []any) {
	if f.MatchNone {
		return " WHERE FALSE", nil
	}

	var (
		conds []string
		args  []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, start+len(args)-1))
	}
	if f.ReporterID != nil {
		add("reporter_id", *f.ReporterID)
	}
	if f.AssignedWorker != nil {
		add("assigned_worker_id", *f.AssignedWorker)
	}
	if f.Department != nil {
		add("department_assigned", string(*f.Department))
	}
	if f.Status != nil {
		add("status", string(*f.Status))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// --- Issues ---

func (s *PostgresStore) CreateIssue(ctx context.Context, in models.NewIssue) (*models.Issue, error) {
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	query := `
		INSERT INTO issues (reporter_id, issue_type, severity, status, department_assigned,
			image_url_before, sla_due_date, description, geo_latitude, geo_longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING ` + issueColumns

	issue, err := scanIssue(s.db.QueryRow(ctx, query,
		in.ReporterID,
		string(in.Classification.IssueType),
		string(in.Classification.Severity),
		string(models.StatusReported),
		string(in.Classification.Department),
		in.ImageURLBefore,
		in.SLADueAt,
		in.Description,
		in.Latitude,
		in.Longitude,
		created,
	))
	if err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}
	return issue, nil
}

func (s *PostgresStore) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE issue_id = $1`

	issue, err := scanIssue(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("issue %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	return issue, nil
}

func (s *PostgresStore) ListIssues(ctx context.Context, filter IssueFilter) ([]models.Issue, error) {
	issues := make([]models.Issue, 0)
	if filter.MatchNone {
		return issues, nil
	}

	where, args := issueWhere(filter, 1)
	query := `SELECT ` + issueColumns + ` FROM issues` + where + ` ORDER BY created_at DESC, issue_id DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// missingOrResolved distinguishes the two reasons a guarded update matched no row.
func (s *PostgresStore) missingOrResolved(ctx context.Context, id int64) error {
	var status string
	err := s.db.QueryRow(ctx, `SELECT status FROM issues WHERE issue_id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("issue %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get issue status: %w", err)
	}
	return fmt.Errorf("issue %d: %w", id, ErrAlreadyResolved)
}

func (s *PostgresStore) AssignIssue(ctx context.Context, id int64, worker string, at time.Time) (*models.Issue, error) {
	query := `
		UPDATE issues
		SET assigned_worker_id = $1,
			status = $2,
			updated_at = $3
		WHERE issue_id = $4 AND status <> $5
		RETURNING ` + issueColumns

	issue, err := scanIssue(s.db.QueryRow(ctx, query,
		worker, string(models.StatusInProgress), at, id, string(models.StatusResolved)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.missingOrResolved(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("assign issue: %w", err)
	}
	return issue, nil
}

func (s *PostgresStore) ResolveIssue(ctx context.Context, id int64, imageURLAfter string, at time.Time) (*models.Issue, bool, error) {
	query := `
		UPDATE issues
		SET status = $1,
			image_url_after = $2,
			updated_at = $3
		WHERE issue_id = $4 AND status <> $1
		RETURNING ` + issueColumns

	issue, err := scanIssue(s.db.QueryRow(ctx, query, string(models.StatusResolved), imageURLAfter, at, id))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either missing or resolved by a concurrent request.
		existing, getErr := s.GetIssue(ctx, id)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resolve issue: %w", err)
	}
	return issue, true, nil
}

func (s *PostgresStore) ReclassifyIssue(ctx context.Context, id int64, c models.Classification, slaDueAt *time.Time, at time.Time) (*models.Issue, error) {
	query := `
		UPDATE issues
		SET issue_type = $1,
			severity = $2,
			department_assigned = $3,
			sla_due_date = COALESCE($4, sla_due_date),
			updated_at = $5
		WHERE issue_id = $6
		RETURNING ` + issueColumns

	issue, err := scanIssue(s.db.QueryRow(ctx, query,
		string(c.IssueType), string(c.Severity), string(c.Department), slaDueAt, at, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("issue %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reclassify issue: %w", err)
	}
	return issue, nil
}

func (s *PostgresStore) SummarizeIssues(ctx context.Context, filter IssueFilter, now time.Time) (*models.IssueSummary, error) {
	sum := newSummary()
	if filter.MatchNone {
		return sum, nil
	}

	where, args := issueWhere(filter, 3)
	query := `
		SELECT status, department_assigned, COUNT(*),
			COUNT(*) FILTER (WHERE status <> $1 AND sla_due_date < $2)
		FROM issues` + where + `
		GROUP BY status, department_assigned`

	rows, err := s.db.Query(ctx, query, append([]any{string(models.StatusResolved), now}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("summarize issues: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status         models.IssueStatus
			dept           models.Department
			count, overdue int
		)
		if err := rows.Scan(&status, &dept, &count, &overdue); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.Total += count
		sum.ByStatus[status] += count
		sum.ByDepartment[dept] += count
		sum.Overdue += overdue
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summarize issues: %w", err)
	}
	return sum, nil
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) (bool, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, department)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at
	`

	err := s.db.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Department).
		Scan(&u.ID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, role, department, created_at FROM users WHERE LOWER(email) = LOWER($1)`

	var u models.User
	err := s.db.QueryRow(ctx, query, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) ListWorkers(ctx context.Context, department *models.Department) ([]models.Worker, error) {
	query := `SELECT id, name, email, department FROM users WHERE role = $1`
	args := []any{string(models.RoleWorker)}
	if department != nil {
		query += ` AND department = $2`
		args = append(args, string(*department))
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	workers := make([]models.Worker, 0)
	for rows.Next() {
		var w models.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Email, &w.Department); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// --- Activity ---

func (s *PostgresStore) LogActivity(ctx context.Context, entry models.ActivityLogEntry) error {
	query := `
		INSERT INTO issue_activity (issue_id, activity_type, description, actor)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.Exec(ctx, query,
		entry.IssueID,
		string(entry.ActivityType),
		entry.Description,
		entry.Actor,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}

	s.logger.Debugw("Activity logged",
		"issue_id", entry.IssueID,
		"type", entry.ActivityType,
		"actor", entry.Actor,
	)
	return nil
}

func (s *PostgresStore) ListActivity(ctx context.Context, issueID int64, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, issue_id, activity_type, description, actor, created_at
		FROM issue_activity
		WHERE issue_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, issueID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	logs := make([]models.ActivityLog, 0)
	for rows.Next() {
		var log models.ActivityLog
		if err := rows.Scan(&log.ID, &log.IssueID, &log.ActivityType, &log.Description,
			&log.Actor, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// --- Lifecycle ---

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
