package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuotos/slackstorm/dispatcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "slackstorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadChannelsInFileOrder(t *testing.T) {
	path := writeConfig(t, `
channels:
  - id: general
    token: T123/B456/abc
    alias: DevTeam
  - id: random
    token: T999/B000/xyz
slack:
  escaping: legacy
  timeout_seconds: 5
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Channels, 2)
	assert.Equal(t, "general", cfg.Channels[0].ChannelID)
	assert.Equal(t, "T123/B456/abc", cfg.Channels[0].WebhookToken)
	assert.Equal(t, "DevTeam", cfg.Channels[0].Alias)
	assert.Equal(t, "random", cfg.Channels[1].ChannelID)
	assert.Equal(t, "", cfg.Channels[1].Alias)

	assert.Equal(t, dispatcher.EscapeLegacy, cfg.Escaping())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Channels)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "https://hooks.slack.com/services/", cfg.Slack.Endpoint)
	assert.Equal(t, dispatcher.EscapeJSON, cfg.Escaping())
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, time.Duration(0), cfg.Timeout())
}

func TestLoadRejectsBadChannels(t *testing.T) {
	tcs := []struct {
		Name    string
		Content string
	}{
		{"duplicate id", "channels:\n  - {id: general, token: T1}\n  - {id: general, token: T2}\n"},
		{"empty id", "channels:\n  - {token: T1}\n"},
		{"empty token", "channels:\n  - {id: general}\n"},
		{"unknown escaping", "slack:\n  escaping: xml\n"},
		{"unknown backend", "store:\n  backend: etcd\n"},
		{"not yaml", "channels: [\n"},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.Content))
			assert.Error(t, err)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("AUTH_TOKEN", "s3cret")
	t.Setenv("SLACK_SIGNING_SECRET", "signing")

	cfg, err := Load(writeConfig(t, "server:\n  auth_token: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "s3cret", cfg.Server.AuthToken)
	assert.Equal(t, "signing", cfg.Server.SigningSecret)
}

func TestBadRedisDBEnv(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestLoadEmptyPathReadsDefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultPath), []byte("channels:\n  - {id: general, token: T1}\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	require.Len(t, cfg.Channels, 1)
	assert.Equal(t, "general", cfg.Channels[0].ChannelID)
}
