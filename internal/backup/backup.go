// Package backup periodically dumps every key of the KV store into a
// timestamped JSON file and prunes old files.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"holocal/internal/config"
	"holocal/internal/kv"
	appLog "holocal/internal/log"
)

const (
	filePrefix = "holocal-"
	fileSuffix = ".json"
	// stampLayout sorts lexically in time order. Milliseconds keep two runs
	// within the same second apart.
	stampLayout = "20060102T150405.000Z"
)

// File is the on-disk snapshot format.
type File struct {
	TakenAt time.Time                  `json:"takenAt"`
	Entries map[string]json.RawMessage `json:"entries"`
}

// Backup writes snapshots of a kv.Store into a directory.
type Backup struct {
	store kv.Store
	dir   string
	keep  int
	now   func() time.Time

	cron *cron.Cron
}

// New creates a Backup for store using cfg. Nothing is scheduled until
// Start is called.
func New(store kv.Store, cfg config.BackupConfig) *Backup {
	keep := cfg.Keep
	if keep <= 0 {
		keep = 7
	}
	return &Backup{
		store: store,
		dir:   cfg.Dir,
		keep:  keep,
		now:   time.Now,
	}
}

// Start runs RunOnce on a standard 5-field cron schedule. An empty schedule
// disables backups.
func (b *Backup) Start(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		appLog.Info("backup scheduler disabled")
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := b.RunOnce(ctx); err != nil {
			appLog.Error("scheduled backup failed", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	c.Start()
	b.cron = c
	appLog.Info("backup scheduler started", "cron", schedule, "dir", b.dir, "keep", b.keep)
	return nil
}

// Stop halts the scheduler and waits for a running backup to finish.
func (b *Backup) Stop() {
	if b.cron == nil {
		return
	}
	<-b.cron.Stop().Done()
	b.cron = nil
}

// RunOnce writes a snapshot file and prunes old ones, returning the path
// of the new file.
func (b *Backup) RunOnce(ctx context.Context) (string, error) {
	if b.dir == "" {
		return "", errors.New("backup dir is empty")
	}
	keys, err := b.store.Keys(ctx)
	if err != nil {
		return "", fmt.Errorf("list keys: %w", err)
	}
	sort.Strings(keys)

	snap := File{
		TakenAt: b.now().UTC(),
		Entries: make(map[string]json.RawMessage, len(keys)),
	}
	for _, k := range keys {
		v, err := b.store.Get(ctx, k)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", k, err)
		}
		if !json.Valid(v) {
			appLog.Warn("backup skipping non-JSON value", "key", k)
			continue
		}
		snap.Entries[k] = json.RawMessage(v)
	}

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return "", err
	}
	path := filepath.Join(b.dir, filePrefix+snap.TakenAt.Format(stampLayout)+fileSuffix)
	if err := config.WriteFileAtomic(path, data, filePrefix+"*.tmp"); err != nil {
		return "", err
	}
	appLog.Info("backup written", "path", path, "keys", len(snap.Entries))

	if err := b.prune(); err != nil {
		appLog.Error("backup prune failed", err, "dir", b.dir)
	}
	return path, nil
}

// List returns the snapshot files in dir, oldest first.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

func (b *Backup) prune() error {
	files, err := List(b.dir)
	if err != nil {
		return err
	}
	for len(files) > b.keep {
		if err := os.Remove(files[0]); err != nil {
			return err
		}
		appLog.Debug("backup pruned", "path", files[0])
		files = files[1:]
	}
	return nil
}

// Restore writes every entry of the snapshot at path into store. Keys not
// present in the snapshot are left alone.
func Restore(ctx context.Context, store kv.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var snap File
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("decode backup %s: %w", path, err)
	}
	n := 0
	for k, v := range snap.Entries {
		if err := store.Set(ctx, k, v); err != nil {
			return n, fmt.Errorf("restore %s: %w", k, err)
		}
		n++
	}
	appLog.Info("backup restored", "path", path, "keys", n, "taken_at", snap.TakenAt)
	return n, nil
}
