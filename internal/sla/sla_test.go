package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/civicpulse/civic-server/internal/models"
)

func TestDueAt(t *testing.T) {
	now := time.Date(2026, 1, 10, 8, 30, 0, 0, time.UTC)

	assert.Equal(t, now.Add(24*time.Hour), DueAt(now, models.SeverityHigh))
	assert.Equal(t, now.Add(48*time.Hour), DueAt(now, models.SeverityMedium))
	assert.Equal(t, now.Add(7*24*time.Hour), DueAt(now, models.SeverityLow))
	assert.Equal(t, now.Add(7*24*time.Hour), DueAt(now, models.Severity("Unknown")))
	assert.Equal(t, now.Add(7*24*time.Hour), DueAt(now, ""))
}

func TestDueAtOrdering(t *testing.T) {
	now := time.Now()
	high := DueAt(now, models.SeverityHigh)
	medium := DueAt(now, models.SeverityMedium)
	low := DueAt(now, models.SeverityLow)

	assert.True(t, high.Before(medium))
	assert.True(t, medium.Before(low))

	for _, s := range []models.Severity{models.SeverityHigh, models.SeverityMedium, models.SeverityLow, "bogus"} {
		assert.True(t, DueAt(now, s).After(now), s)
	}
}

func TestDueAtDeterministic(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.Equal(t, DueAt(now, models.SeverityMedium), DueAt(now, models.SeverityMedium))
}
