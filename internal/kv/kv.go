// Package kv is the device-local key-value store the application persists
// its state into. Values are opaque byte slices keyed by logical name.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"holocal/internal/config"
)

var ErrNotFound = errors.New("key not found")

// Store is implemented by every storage backend.
type Store interface {
	// Get returns ErrNotFound (wrapped) when key has never been set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key in no particular order.
	Keys(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// New builds the backend selected by cfg.Type and connects it.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case config.StorageMemory:
		return NewMemory(), nil
	case config.StorageFile:
		return NewFile(cfg.Dir)
	case config.StorageRedis:
		s := NewRedis(cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis %s: %w", cfg.Redis.Addr, err)
		}
		return s, nil
	case config.StorageSQL:
		s := NewSQL(cfg.SQL)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to database %s %d: %w", cfg.SQL.Host, cfg.SQL.Port, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type %s", cfg.Type)
	}
}
