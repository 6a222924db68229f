package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, 5*time.Minute, cfg.Jobs.RequestSweepInterval)
	assert.Equal(t, 5*time.Second, cfg.Submission.CheckTimeout)
	assert.True(t, cfg.Submission.CheckReachability)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENV", "production")
	t.Setenv("STORE", "memory")
	t.Setenv("POLL_SWEEP_INTERVAL", "30s")
	t.Setenv("URL_CHECK_TIMEOUT", "not-a-duration")
	t.Setenv("URL_CHECK_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 30*time.Second, cfg.Jobs.PollSweepInterval)
	assert.Equal(t, 5*time.Second, cfg.Submission.CheckTimeout)
	assert.False(t, cfg.Submission.CheckReachability)
}

func TestLoad_MissingSecretPanics(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	assert.Panics(t, func() { _, _ = Load() })
}
