package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.RESTEndpoint)
	assert.Equal(t, "127.0.0.1:50051", c.HealthAddr)
	assert.Equal(t, TierMemory, c.EphemeralTier)
	assert.Equal(t, 30*24*time.Hour, c.SessionTTL)
	assert.Equal(t, 10*time.Minute, c.RefreshInterval)
	assert.Equal(t, 5*time.Minute, c.ActivityThreshold)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.True(t, c.OptimisticRestore)
	assert.Equal(t, "text", c.LogBackend)
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	cfg := LoadConfig(nil)

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}

func TestSessionConfig(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.RefreshInterval = time.Minute
	c.OptimisticRestore = false

	sc := c.SessionConfig()

	assert.Equal(t, 30*24*time.Hour, sc.SessionTTL)
	assert.Equal(t, time.Minute, sc.RefreshInterval)
	assert.Equal(t, 5*time.Minute, sc.ActivityThreshold)
	assert.False(t, sc.OptimisticRestore)
}
