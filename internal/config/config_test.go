package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[transport]
url = "ws://proxy:9000/ws"

[policy]
accept_threshold_pct = 97
reject_threshold_pct = 70
delay_actions = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ws://proxy:9000/ws", cfg.Transport.URL)
	assert.Equal(t, int64(97), cfg.Policy.AcceptThresholdPct)
	assert.Equal(t, int64(70), cfg.Policy.RejectThresholdPct)
	assert.False(t, cfg.Policy.DelayActions)

	// Untouched sections keep their defaults.
	assert.Equal(t, 2*time.Second, cfg.Transport.ReconnectDelay.Duration)
	assert.Equal(t, "brokerbot:settings", cfg.Redis.Key)
	assert.Equal(t, 5432, cfg.History.Port)
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeConfig(t, `
[transport]
url = "ws://localhost:7801/ws"
reconnect_delay = "750ms"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Transport.ReconnectDelay.Duration)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BROKERBOT_TRANSPORT_URL", "ws://override:1234/ws")
	t.Setenv("BROKERBOT_POLICY_ACCEPT_THRESHOLD_PCT", "99")
	t.Setenv("BROKERBOT_POLICY_UNATTENDED", "true")
	t.Setenv("BROKERBOT_NOTIFY_EVENTS", "sold, failed")

	path := writeConfig(t, `
[transport]
url = "ws://file:7801/ws"

[policy]
accept_threshold_pct = 95
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://override:1234/ws", cfg.Transport.URL)
	assert.Equal(t, int64(99), cfg.Policy.AcceptThresholdPct)
	assert.True(t, cfg.Policy.Unattended)
	assert.Equal(t, []string{"sold", "failed"}, cfg.Notify.Events)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidateDefaults(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	cfg.Transport.URL = ""
	cfg.Policy.AcceptThresholdPct = 80
	cfg.Policy.RejectThresholdPct = 90

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "transport: url")
	assert.Contains(t, err.Error(), "reject_threshold_pct must not exceed")
}

func TestValidateRedisWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	cfg.Redis.Key = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: addr")
	assert.Contains(t, err.Error(), "redis: key")
}

func TestValidateHistoryDSNBypassesHostChecks(t *testing.T) {
	cfg := Defaults()
	cfg.History.Enabled = true
	cfg.History.Host = ""
	cfg.History.DSN = "postgres://u:p@db:5432/brokerbot"

	assert.NoError(t, cfg.Validate())
}

func TestValidateTelegramPairing(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "tok"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")

	cfg.Notify.TelegramChatID = "42"
	assert.NoError(t, cfg.Validate())
}
