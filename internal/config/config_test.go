package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Listen, cfg.Listen)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("listen: 0.0.0.0:9000\nstorage:\n  type: bogus\nlog_level: LOUD\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.Listen)
	require.Equal(t, StorageFile, cfg.Storage.Type)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 7, cfg.Backup.Keep)
	require.Equal(t, "holocal_kv", cfg.Storage.SQL.Table)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Timezone = "Europe/Berlin"
	cfg.Storage.Type = StorageMemory
	cfg.BasicAuth = &BasicAuthConfig{Username: "admin", PasswordHash: "$2a$10$abc"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("HOLOCAL_LISTEN", "127.0.0.1:7777")
	t.Setenv("HOLOCAL_STORAGE_TYPE", "redis")
	t.Setenv("HOLOCAL_REDIS_ADDR", "redis:6379")

	cfg := DefaultConfig()
	ApplyEnv(cfg)
	require.Equal(t, "127.0.0.1:7777", cfg.Listen)
	require.Equal(t, StorageRedis, cfg.Storage.Type)
	require.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
}

func TestSaveErrors(t *testing.T) {
	require.Error(t, Save("", DefaultConfig()))
	require.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
	_, err := Load("")
	require.Error(t, err)
}

func TestPreviewURL(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "http://127.0.0.1:8080/calendar", cfg.PreviewURL())
	cfg.Preview.URL = "http://example.test/calendar"
	require.Equal(t, "http://example.test/calendar", cfg.PreviewURL())
}
