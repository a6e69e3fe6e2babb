package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
  mode: debug
telegram:
  token: yaml-token
  mode: webhook
  webhook_url: https://bot.example/telegram/webhook
  allowed_users: [42, 43]
  session_ttl: 2h
site:
  root: /srv/site
  base_url: https://footholics.example
  timezone: Europe/London
log:
  level: debug
  format: json
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "yaml-token", cfg.Telegram.Token)
	assert.True(t, cfg.Telegram.IsWebhook())
	assert.Equal(t, []int64{42, 43}, cfg.Telegram.AllowedUsers)
	assert.Equal(t, 2*time.Hour, cfg.Telegram.SessionTTL)
	assert.Equal(t, "/srv/site", cfg.Site.Root)
	assert.Equal(t, "Europe/London", cfg.Site.Location().String())
	assert.Equal(t, "json", cfg.Log.Format)

	// 未写入 yaml 的字段取默认值
	assert.Equal(t, 50, cfg.Telegram.PollTimeout)
	assert.Equal(t, 90, cfg.Telegram.Timeout)
	assert.True(t, cfg.Telegram.SendSources)
	assert.Equal(t, "generated", cfg.Site.GeneratedDir)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_ALLOWED_USERS", "7, 8,")
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/matches")
	t.Setenv("SITE_ROOT", "/tmp/site")
	t.Setenv("ADMIN_TOKEN", "secret")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, []int64{7, 8}, cfg.Telegram.AllowedUsers)
	assert.Equal(t, "postgres://u:p@localhost:5432/matches", cfg.Database.DSN)
	assert.Equal(t, "/tmp/site", cfg.Site.Root)
	assert.Equal(t, "secret", cfg.Server.AdminToken)
}

func TestLoadConfig_BadAllowedUsers(t *testing.T) {
	t.Setenv("TELEGRAM_ALLOWED_USERS", "abc")
	_, err := LoadConfig(writeConfig(t, sampleYAML))
	assert.Error(t, err)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "polling", cfg.Telegram.Mode)
	assert.False(t, cfg.Telegram.IsWebhook())
	assert.Equal(t, time.UTC, cfg.Site.Location())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSiteConfig_BadTimezone(t *testing.T) {
	s := SiteConfig{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, s.Location())
}

func TestTelegramConfig_WebhookLink(t *testing.T) {
	tg := TelegramConfig{Mode: "Webhook", WebhookURL: "https://bot.example/telegram/webhook/", WebhookSecret: "s3"}
	assert.True(t, tg.IsWebhook())
	link, err := tg.WebhookLink()
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example/telegram/webhook/s3", link)

	tg.WebhookSecret = ""
	_, err = tg.WebhookLink()
	assert.Error(t, err)
}
