package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "./data/clubgate.db", cfg.DBPath)
	assert.Equal(t, "Ixelles", cfg.DefaultLocation)
	assert.Equal(t, int64(4000), cfg.InsuranceFeeCents)
	assert.Equal(t, "Assurance annuelle", cfg.InsuranceNote)
	assert.Equal(t, 3*time.Second, cfg.ScanTimeout)
	assert.Zero(t, cfg.DuplicateWindow)
	assert.False(t, cfg.UseRedisLock())
	assert.Equal(t, "*", cfg.CORSOrigin)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CLUBGATE_ENV", "PROD")
	t.Setenv("CLUBGATE_HTTP_ADDR", ":9999")
	t.Setenv("CLUBGATE_SCAN_TIMEOUT", "1500ms")
	t.Setenv("CLUBGATE_DUPLICATE_WINDOW", "2m")
	t.Setenv("CLUBGATE_TIMEZONE", "UTC")
	t.Setenv("CLUBGATE_REDIS_ADDR", "localhost:6379")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 1500*time.Millisecond, cfg.ScanTimeout)
	assert.Equal(t, 2*time.Minute, cfg.DuplicateWindow)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.True(t, cfg.UseRedisLock())
}

func TestFromEnv_ParseError(t *testing.T) {
	t.Setenv("CLUBGATE_INSURANCE_FEE_CENTS", "forty")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestFromEnv_ValidationErrors(t *testing.T) {
	t.Setenv("CLUBGATE_ENV", "staging")
	t.Setenv("CLUBGATE_TIMEZONE", "Mars/Olympus_Mons")
	t.Setenv("CLUBGATE_INSURANCE_FEE_CENTS", "-1")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLUBGATE_ENV")
	assert.Contains(t, err.Error(), "CLUBGATE_TIMEZONE")
	assert.Contains(t, err.Error(), "CLUBGATE_INSURANCE_FEE_CENTS")
}

func TestLocation_BeforeValidate(t *testing.T) {
	var cfg Config
	assert.Equal(t, time.UTC, cfg.Location())
}
