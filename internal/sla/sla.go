// Package sla derives service-level deadlines from issue severity.
package sla

import (
	"time"

	"github.com/civicpulse/civic-server/internal/models"
)

const (
	highWindow    = 24 * time.Hour
	mediumWindow  = 48 * time.Hour
	defaultWindow = 7 * 24 * time.Hour
)

// Window returns the resolution window for a severity. Low and any
// unrecognized severity get the longest window.
func Window(severity models.Severity) time.Duration {
	switch severity {
	case models.SeverityHigh:
		return highWindow
	case models.SeverityMedium:
		return mediumWindow
	default:
		return defaultWindow
	}
}

// DueAt returns the deadline for an issue of the given severity created at now.
// It is evaluated once at creation; later severity changes do not move it.
func DueAt(now time.Time, severity models.Severity) time.Time {
	return now.Add(Window(severity))
}
