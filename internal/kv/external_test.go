//go:build redis || sql

package kv

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"holocal/internal/config"
)

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s := NewRedis(config.RedisConfig{Addr: addr, Prefix: "holocal-test:" + strconv.Itoa(os.Getpid()) + ":"})
	require.NoError(t, s.Connect(context.Background()))
	exercise(t, s)
}

func TestSQLBackend(t *testing.T) {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		t.Skip("POSTGRES_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("POSTGRES_PORT"))
	if port == 0 {
		port = 5432
	}
	cfg := config.SQLConfig{
		Host:     host,
		Port:     port,
		Database: "testing",
		Username: "postgres",
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Table:    "holocal_kv_test_" + strconv.Itoa(os.Getpid()),
	}
	s := NewSQL(cfg)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() {
		db := NewSQL(cfg)
		if db.Connect(context.Background()) == nil {
			_, _ = db.db.Exec("DROP TABLE " + db.table)
			_ = db.Close(context.Background())
		}
	})
	exercise(t, s)
}
