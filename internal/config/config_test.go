package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LOREBOOK_DB", "LOREBOOK_LOG", "LOREBOOK_LOG_LEVEL", "LOREBOOK_CHAT_SOURCE", "REDIS_URL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Log.Enabled)
	assert.Equal(t, SourceSQLite, cfg.Chat.Source)
	assert.Equal(t, 10, cfg.Activation.DefaultScanDepth)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
db_path: /tmp/lore.db
log:
  enabled: false
  level: debug
  format: json
chat:
  source: Redis
  redis_url: redis://localhost:6379/0
activation:
  default_scan_depth: 4
  seed: 99
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/lore.db", cfg.DBPath)
	assert.False(t, cfg.Log.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, SourceRedis, cfg.Chat.Source)
	assert.Equal(t, 4, cfg.Activation.DefaultScanDepth)
	assert.Equal(t, int64(99), cfg.Activation.Seed)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "db_path: /from/file.db\nlog:\n  enabled: true\n")
	t.Setenv("LOREBOOK_DB", "/from/env.db")
	t.Setenv("LOREBOOK_LOG", "false")
	t.Setenv("LOREBOOK_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.DBPath)
	assert.False(t, cfg.Log.Enabled)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"bad source":     "chat:\n  source: postgres\n",
		"redis no url":   "chat:\n  source: redis\n",
		"negative depth": "activation:\n  default_scan_depth: -1\n",
		"bad log format": "log:\n  format: xml\n",
		"malformed yaml": "log: [unterminated\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestRedisURLFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	cfg, err := Load(writeConfig(t, "chat:\n  source: redis\n"))
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Chat.RedisURL)
}

func TestDefaultPathFromEnv(t *testing.T) {
	t.Setenv("LOREBOOK_CONFIG", "/etc/lorebook.yaml")
	assert.Equal(t, "/etc/lorebook.yaml", DefaultPath())
}
