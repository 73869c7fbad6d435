package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Valid(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.DDLTimeout)
	assert.Equal(t, int32(5), cfg.PoolMaxConns)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("DDL_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POLICY_FILE", "/tmp/policy.yaml")
	t.Setenv("AUDIT_LOG", "/tmp/audit.jsonl")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("POOL_MAX_CONNS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.DDLTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/tmp/policy.yaml", cfg.PolicyFile)
	assert.Equal(t, "/tmp/audit.jsonl", cfg.AuditLog)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, int32(10), cfg.PoolMaxConns)
}

func TestLoad_InvalidDDLTimeout(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("DDL_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DDL_TIMEOUT")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("LOG_LEVEL", "invalid")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_InvalidOTelEnabled(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("OTEL_ENABLED", "nope")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_ENABLED")
}

func TestLoad_PoolBounds(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("POOL_MIN_CONNS", "8")
	t.Setenv("POOL_MAX_CONNS", "4")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POOL_MIN_CONNS")
}
