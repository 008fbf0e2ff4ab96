package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQL    = "sql"
)

// RedisConfig points the redis storage backend at a server.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	// Prefix is prepended to every key so several instances can share a DB.
	Prefix string `yaml:"prefix" json:"prefix"`
}

// SQLConfig describes the PostgreSQL storage backend.
type SQLConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Database string `yaml:"database" json:"database"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Table    string `yaml:"table" json:"table"`
}

// StorageConfig selects where application state is persisted.
type StorageConfig struct {
	// Type is one of "file" (default), "memory", "redis", "sql".
	Type  string      `yaml:"type" json:"type"`
	Dir   string      `yaml:"dir" json:"dir"`
	Redis RedisConfig `yaml:"redis" json:"redis"`
	SQL   SQLConfig   `yaml:"sql" json:"sql"`
}

// BackupConfig controls periodic snapshots of the store.
type BackupConfig struct {
	// Cron is a cron-style schedule string (e.g. "0 3 * * *"). Empty disables
	// backups.
	Cron string `yaml:"cron" json:"cron"`
	Dir  string `yaml:"dir" json:"dir"`
	// Keep is how many snapshot files are retained.
	Keep int `yaml:"keep" json:"keep"`
}

// PreviewConfig controls the PNG snapshot of the month page.
type PreviewConfig struct {
	// URL defaults to http://<listen>/calendar when empty.
	URL    string `yaml:"url" json:"url"`
	Output string `yaml:"output" json:"output"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// RateLimitConfig bounds API requests per client IP.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" json:"per_minute"`
	Burst     int `yaml:"burst" json:"burst"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
// PasswordHash is a bcrypt hash as printed by `holocal hash-password`.
type BasicAuthConfig struct {
	Username     string `yaml:"username" json:"username"`
	PasswordHash string `yaml:"password_hash" json:"password_hash"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as canonical display zone (e.g. "Europe/Berlin").
	// Events are placed on days and hours as seen in this zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Backup    BackupConfig    `yaml:"backup" json:"backup"`
	Preview   PreviewConfig   `yaml:"preview" json:"preview"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    "127.0.0.1:8080",
		Timezone:  "Local",
		LogLevel:  "info",
		LogFormat: "text",
		Storage: StorageConfig{
			Type: StorageFile,
			Dir:  "/var/lib/holocal/data",
			Redis: RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "holocal:",
			},
			SQL: SQLConfig{
				Host:  "127.0.0.1",
				Port:  5432,
				Table: "holocal_kv",
			},
		},
		Backup: BackupConfig{
			Cron: "0 3 * * *",
			Dir:  "/var/lib/holocal/backup",
			Keep: 7,
		},
		Preview: PreviewConfig{
			Output: "/var/lib/holocal/preview.png",
			Width:  1280,
			Height: 960,
		},
		RateLimit: RateLimitConfig{
			PerMinute: 200,
			Burst:     50,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat != "json" {
		c.LogFormat = def.LogFormat
	}

	switch c.Storage.Type {
	case StorageMemory, StorageFile, StorageRedis, StorageSQL:
	default:
		// Unknown value; fall back to file storage so data is not silently lost.
		c.Storage.Type = StorageFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = def.Storage.Dir
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = def.Storage.Redis.Addr
	}
	if c.Storage.SQL.Host == "" {
		c.Storage.SQL.Host = def.Storage.SQL.Host
	}
	if c.Storage.SQL.Port <= 0 {
		c.Storage.SQL.Port = def.Storage.SQL.Port
	}
	if c.Storage.SQL.Table == "" {
		c.Storage.SQL.Table = def.Storage.SQL.Table
	}

	if c.Backup.Dir == "" {
		c.Backup.Dir = def.Backup.Dir
	}
	if c.Backup.Keep <= 0 {
		c.Backup.Keep = def.Backup.Keep
	}

	if c.Preview.Output == "" {
		c.Preview.Output = def.Preview.Output
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = def.Preview.Width
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = def.Preview.Height
	}

	if c.RateLimit.PerMinute <= 0 {
		c.RateLimit.PerMinute = def.RateLimit.PerMinute
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = def.RateLimit.Burst
	}
}

// PreviewURL is the page captured for PNG snapshots.
func (c *Config) PreviewURL() string {
	if c.Preview.URL != "" {
		return c.Preview.URL
	}
	return "http://" + c.Listen + "/calendar"
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
//
// In both cases HOLOCAL_* environment variables are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			ApplyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	ApplyEnv(cfg)

	return cfg, nil
}

// envKeys maps viper keys (bound to HOLOCAL_<KEY>) onto config fields.
var envKeys = map[string]func(c *Config, v string){
	"listen":       func(c *Config, v string) { c.Listen = v },
	"timezone":     func(c *Config, v string) { c.Timezone = v },
	"log_level":    func(c *Config, v string) { c.LogLevel = v },
	"storage_type": func(c *Config, v string) { c.Storage.Type = v },
	"storage_dir":  func(c *Config, v string) { c.Storage.Dir = v },
	"redis_addr":   func(c *Config, v string) { c.Storage.Redis.Addr = v },
}

// ApplyEnv overrides fields from HOLOCAL_* environment variables, e.g.
// HOLOCAL_LISTEN=0.0.0.0:9000. The result is normalized again.
func ApplyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("holocal")
	for key := range envKeys {
		_ = v.BindEnv(key)
	}
	for key, set := range envKeys {
		if val := v.GetString(key); val != "" {
			set(cfg, val)
		}
	}
	cfg.Normalize()
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, ".holocal-config-*.tmp")
}

// WriteFileAtomic writes data next to path under a temp name, fsyncs it,
// sets 0600 and renames it over path. The parent directory is created with
// 0700 when missing.
func WriteFileAtomic(path string, data []byte, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
