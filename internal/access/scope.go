// Package access maps an authenticated principal to the set of issues it
// may see.
package access

import (
	"errors"

	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/store"
)

// ErrDenied is returned for roles that have no issue visibility at all.
var ErrDenied = errors.New("role not authorized for issue access")

// Scope returns the row filter for p. Unrecognized roles are denied and
// never fall through to an unfiltered result.
func Scope(p models.Principal) (store.IssueFilter, error) {
	identity := p.Identity

	switch p.Role {
	case models.RoleCitizen:
		return store.IssueFilter{ReporterID: &identity}, nil
	case models.RoleWorker:
		return store.IssueFilter{AssignedWorker: &identity}, nil
	case models.RoleDeptAdmin:
		// A department admin without a department sees nothing.
		if p.Department == nil || *p.Department == "" {
			return store.IssueFilter{MatchNone: true}, nil
		}
		dept := *p.Department
		return store.IssueFilter{Department: &dept}, nil
	case models.RoleSuperAdmin:
		return store.IssueFilter{}, nil
	default:
		return store.IssueFilter{}, ErrDenied
	}
}

// WorkerScope returns the department filter applied when listing workers.
// A nil department means all workers. Roles other than the two admin roles
// get ErrDenied.
func WorkerScope(p models.Principal) (department *models.Department, matchNone bool, err error) {
	switch p.Role {
	case models.RoleSuperAdmin:
		return nil, false, nil
	case models.RoleDeptAdmin:
		if p.Department == nil || *p.Department == "" {
			return nil, true, nil
		}
		dept := *p.Department
		return &dept, false, nil
	default:
		return nil, false, ErrDenied
	}
}
