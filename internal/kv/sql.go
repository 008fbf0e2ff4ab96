package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"holocal/internal/config"
	appLog "holocal/internal/log"
)

var ErrConnectionFailed = errors.New("failed to connect")

// SQL keeps every key as a row of a single PostgreSQL table.
type SQL struct {
	cfg   config.SQLConfig
	table string
	db    *sqlx.DB
}

func NewSQL(cfg config.SQLConfig) *SQL {
	return &SQL{cfg: cfg, table: pq.QuoteIdentifier(cfg.Table)}
}

// Connect opens the pool and creates the table when missing.
func (s *SQL) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(
		ctx,
		"postgres",
		fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			s.cfg.Host, s.cfg.Port, s.cfg.Database, s.cfg.Username, s.cfg.Password),
	)
	if err != nil {
		appLog.Error("sql storage connect failed", err, "host", s.cfg.Host, "port", s.cfg.Port)
		return ErrConnectionFailed
	}
	_, err = db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS "+s.table+" ("+
			"key TEXT PRIMARY KEY, value BYTEA NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now())")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	s.db = db
	return nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.GetContext(ctx, &v, "SELECT value FROM "+s.table+" WHERE key=$1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %q: %w", key, ErrNotFound)
	}
	return v, err
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+s.table+"(key, value, updated_at) VALUES($1, $2, now()) "+
			"ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at",
		key, value)
	return err
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table+" WHERE key=$1", key)
	return err
}

func (s *SQL) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	err := s.db.SelectContext(ctx, &keys, "SELECT key FROM "+s.table)
	return keys, err
}

func (s *SQL) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
