package sipfnode

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sakura", cfg.APN)
	assert.Equal(t, 115200, cfg.ConsoleBaud)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AuthDisableSSL)
	assert.Empty(t, cfg.LockPLMN)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SIPF_APN", "example.apn")
	t.Setenv("LTE_LOCK_PLMN_STRING", "44010")
	t.Setenv("SIPF_AUTH_DISABLE_SSL", "true")
	t.Setenv("SIPF_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "example.apn", cfg.APN)
	assert.Equal(t, "44010", cfg.LockPLMN)
	assert.True(t, cfg.AuthDisableSSL)
	assert.Equal(t, logrus.DebugLevel, cfg.LogrusLevel())
}

func TestLogrusLevelFallback(t *testing.T) {
	cfg := Config{LogLevel: "shouty"}
	assert.Equal(t, logrus.InfoLevel, cfg.LogrusLevel())
}
