package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("ASSIGN_REQUIRE_SAME_DEPARTMENT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 60*time.Second, cfg.OracleTimeout)
	assert.False(t, cfg.AssignRequireSameDepartment)
	assert.False(t, cfg.RecomputeSLAOnReclassify)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ORACLE_TIMEOUT", "15s")
	t.Setenv("UPLOAD_URL_PREFIX", "/media/")
	t.Setenv("ASSIGN_REQUIRE_SAME_DEPARTMENT", "true")
	t.Setenv("SLA_RECOMPUTE_ON_RECLASSIFY", "1")
	t.Setenv("CHAT_HISTORY_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.OracleTimeout)
	assert.Equal(t, "/media", cfg.UploadURLPrefix)
	assert.True(t, cfg.AssignRequireSameDepartment)
	assert.True(t, cfg.RecomputeSLAOnReclassify)
	assert.Equal(t, 20, cfg.ChatHistoryLimit, "invalid ints fall back to defaults")
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/civic")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = Load()
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_RejectsNonPositiveUpload(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("MAX_UPLOAD_MB", "0")
	_, err := Load()
	assert.Error(t, err)
}
