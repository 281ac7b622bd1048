package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	// REMOTE_URL has no default
	require.ErrorContains(t, cfg.Validate(), "REMOTE_URL is required")
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"PORT":            "9000",
		"STORE_BACKEND":   "memory",
		"REMOTE_URL":      "http://payments.local",
		"REMOTE_TOKEN":    "tok",
		"REMOTE_TIMEOUT":  "3s",
		"PENDING_TIMEOUT": "30m",
		"SYNC_INTERVAL":   "15s",
		"SYNC_ERRORS":     "propagate",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, BackendMemory, cfg.StoreBackend)
	require.Equal(t, "tok", cfg.RemoteToken)
	require.Equal(t, 3*time.Second, cfg.RemoteTimeout)
	require.Equal(t, 30*time.Minute, cfg.PendingTimeout)
	require.Equal(t, 15*time.Second, cfg.SyncInterval)
	require.Equal(t, "propagate", cfg.SyncErrors)
}

func TestFromEnv_BadDuration(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"SYNC_INTERVAL": "often"}))
	require.ErrorContains(t, err, "SYNC_INTERVAL")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RemoteURL = "http://payments.local"
	cfg.StoreBackend = "sqlite"
	cfg.SyncErrors = "loud"
	cfg.PendingTimeout = 0

	err := cfg.Validate()
	require.ErrorContains(t, err, "unsupported STORE_BACKEND=sqlite")
	require.ErrorContains(t, err, "unsupported SYNC_ERRORS=loud")
	require.ErrorContains(t, err, "PENDING_TIMEOUT must be positive")
}
