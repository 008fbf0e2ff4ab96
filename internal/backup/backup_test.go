package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"holocal/internal/config"
	"holocal/internal/kv"
)

func TestRunOnceWritesAndPrunes(t *testing.T) {
	ctx := context.Background()
	src := kv.NewMemory()
	require.NoError(t, src.Set(ctx, "calendar_events", []byte(`[{"id":"a"}]`)))
	require.NoError(t, src.Set(ctx, "active_calendar", []byte(`"default"`)))
	require.NoError(t, src.Set(ctx, "garbage", []byte("not json")))

	dir := t.TempDir()
	b := New(src, config.BackupConfig{Dir: dir, Keep: 2})
	clock := time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }

	var paths []string
	for i := 0; i < 3; i++ {
		p, err := b.RunOnce(ctx)
		require.NoError(t, err)
		paths = append(paths, p)
		clock = clock.Add(24 * time.Hour)
	}

	files, err := List(dir)
	require.NoError(t, err)
	require.Equal(t, paths[1:], files)
	require.Equal(t, "holocal-20240317T030000.000Z.json", filepath.Base(files[1]))

	dst := kv.NewMemory()
	n, err := Restore(ctx, dst, files[1])
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := dst.Get(ctx, "active_calendar")
	require.NoError(t, err)
	require.Equal(t, `"default"`, string(got))
	_, err = dst.Get(ctx, "garbage")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRunOnceSameSecond(t *testing.T) {
	ctx := context.Background()
	src := kv.NewMemory()
	require.NoError(t, src.Set(ctx, "active_calendar", []byte(`"default"`)))

	dir := t.TempDir()
	b := New(src, config.BackupConfig{Dir: dir, Keep: 5})
	clock := time.Date(2024, 3, 15, 3, 0, 0, 100*int(time.Millisecond), time.UTC)
	b.now = func() time.Time { return clock }

	first, err := b.RunOnce(ctx)
	require.NoError(t, err)
	clock = clock.Add(250 * time.Millisecond)
	second, err := b.RunOnce(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	files, err := List(dir)
	require.NoError(t, err)
	require.Equal(t, []string{first, second}, files)
}

func TestRunOnceRequiresDir(t *testing.T) {
	b := New(kv.NewMemory(), config.BackupConfig{})
	_, err := b.RunOnce(context.Background())
	require.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	b := New(kv.NewMemory(), config.BackupConfig{Dir: t.TempDir()})
	require.Error(t, b.Start("every now and then"))
	require.NoError(t, b.Start(""))
	require.NoError(t, b.Start("0 3 * * *"))
	b.Stop()
	b.Stop()
}

func TestRestoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holocal-bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := Restore(context.Background(), kv.NewMemory(), path)
	require.Error(t, err)
}
