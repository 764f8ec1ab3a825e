// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema in internal/database/schema.sql.
package models

import (
	"strings"
	"time"
)

// IssueType is the civic problem category assigned by the oracle or the citizen.
type IssueType string

const (
	IssueTypePothole           IssueType = "Pothole"
	IssueTypeGarbageOverflow   IssueType = "Garbage Overflow"
	IssueTypeBrokenStreetlight IssueType = "Broken Streetlight"
	IssueTypeWaterLeakage      IssueType = "Water Leakage"
	IssueTypeOther             IssueType = "Other"
	IssueTypeUnknown           IssueType = "Unknown"
)

// Severity drives the SLA deadline.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Department is the municipal body responsible for an issue.
type Department string

const (
	DepartmentPWD         Department = "PWD"
	DepartmentNagarNigam  Department = "Nagar Nigam"
	DepartmentPHED        Department = "PHED"
	DepartmentElectricity Department = "Electricity"
	DepartmentAdmin       Department = "Admin"
	DepartmentOther       Department = "Other"
)

// IssueStatus is the lifecycle state of an issue.
type IssueStatus string

const (
	StatusReported   IssueStatus = "Reported"
	StatusInProgress IssueStatus = "In Progress"
	StatusResolved   IssueStatus = "Resolved"
)

var issueTypes = []IssueType{
	IssueTypePothole, IssueTypeGarbageOverflow, IssueTypeBrokenStreetlight,
	IssueTypeWaterLeakage, IssueTypeOther, IssueTypeUnknown,
}

var severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

var departments = []Department{
	DepartmentPWD, DepartmentNagarNigam, DepartmentPHED,
	DepartmentElectricity, DepartmentAdmin, DepartmentOther,
}

var statuses = []IssueStatus{StatusReported, StatusInProgress, StatusResolved}

// fold normalizes a label for lenient matching ("garbage_overflow" == "Garbage Overflow").
func fold(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// ParseIssueType matches s against the known issue types, ignoring case and separators.
func ParseIssueType(s string) (IssueType, bool) {
	for _, t := range issueTypes {
		if fold(string(t)) == fold(s) {
			return t, true
		}
	}
	return "", false
}

// ParseSeverity matches s against the known severities, ignoring case.
func ParseSeverity(s string) (Severity, bool) {
	for _, v := range severities {
		if fold(string(v)) == fold(s) {
			return v, true
		}
	}
	return "", false
}

// ParseDepartment matches s against the known departments, ignoring case and separators.
func ParseDepartment(s string) (Department, bool) {
	for _, d := range departments {
		if fold(string(d)) == fold(s) {
			return d, true
		}
	}
	return "", false
}

// ParseStatus matches s against the lifecycle states, ignoring case and separators.
func ParseStatus(s string) (IssueStatus, bool) {
	for _, v := range statuses {
		if fold(string(v)) == fold(s) {
			return v, true
		}
	}
	return "", false
}

// Issue is one reported civic problem.
type Issue struct {
	ID                 int64       `json:"issue_id"`
	ReporterID         string      `json:"reporter_id"`
	IssueType          IssueType   `json:"issue_type"`
	Severity           Severity    `json:"severity"`
	Status             IssueStatus `json:"status"`
	DepartmentAssigned Department  `json:"department_assigned"`
	AssignedWorker     *string     `json:"assigned_worker_id"`
	ImageURLBefore     string      `json:"image_url_before"`
	ImageURLAfter      *string     `json:"image_url_after"`
	SLADueAt           time.Time   `json:"sla_due_date"`
	Description        string      `json:"description"`
	Latitude           *float64    `json:"geo_latitude"`
	Longitude          *float64    `json:"geo_longitude"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Overdue reports whether an unresolved issue has passed its SLA deadline.
func (i *Issue) Overdue(now time.Time) bool {
	return i.Status != StatusResolved && now.After(i.SLADueAt)
}

// Classification is the triple (plus description) that routes an issue.
type Classification struct {
	IssueType   IssueType  `json:"issue_type"`
	Severity    Severity   `json:"severity"`
	Department  Department `json:"department"`
	Description string     `json:"description,omitempty"`
}

// NewIssue is the input for creating an issue row.
type NewIssue struct {
	ReporterID     string
	Classification Classification
	ImageURLBefore string
	SLADueAt       time.Time
	Description    string
	Latitude       *float64
	Longitude      *float64
	CreatedAt      time.Time
}

// GeoPoint is an optional citizen-supplied location.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Image is an uploaded photo held in memory for the duration of a request.
type Image struct {
	Data []byte
	MIME string
}

// Role is the authorization role of a principal.
type Role string

const (
	RoleCitizen    Role = "CITIZEN"
	RoleWorker     Role = "WORKER"
	RoleDeptAdmin  Role = "DEPT_ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Principal is an authenticated actor presented to the core per request.
type Principal struct {
	Role       Role        `json:"role"`
	Identity   string      `json:"identity"`
	Department *Department `json:"department,omitempty"`
}

// IsAdmin reports whether the principal may manage assignments.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleDeptAdmin || p.Role == RoleSuperAdmin
}

// User is a platform account row.
type User struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	Department   *Department `json:"department,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Worker is the public view of a field worker.
type Worker struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Department *Department `json:"department,omitempty"`
}

// ActivityType enumerates lifecycle events.
type ActivityType string

const (
	ActivitySubmitted            ActivityType = "submitted"
	ActivityAssigned             ActivityType = "assigned"
	ActivityResolved             ActivityType = "resolved"
	ActivityVerificationRejected ActivityType = "verification_rejected"
	ActivityReclassified         ActivityType = "reclassified"
)

// ActivityLog is one lifecycle event recorded against an issue.
type ActivityLog struct {
	ID           int64        `json:"id"`
	IssueID      int64        `json:"issue_id"`
	ActivityType ActivityType `json:"activity_type"`
	Description  string       `json:"description"`
	Actor        string       `json:"actor"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ActivityLogEntry is the input for recording an activity.
type ActivityLogEntry struct {
	IssueID      int64
	ActivityType ActivityType
	Description  string
	Actor        string
}

// IssueSummary aggregates issues for dashboards.
type IssueSummary struct {
	Total        int                 `json:"total"`
	ByStatus     map[IssueStatus]int `json:"by_status"`
	ByDepartment map[Department]int  `json:"by_department"`
	Overdue      int                 `json:"overdue"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime,omitempty"`
	Database string `json:"database,omitempty"`
}
