package kv

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"holocal/internal/config"
)

// exercise runs the behavior every backend must share.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "calendar_events", []byte(`[]`)))
		v, err := s.Get(ctx, "calendar_events")
		require.NoError(t, err)
		require.Equal(t, `[]`, string(v))

		require.NoError(t, s.Set(ctx, "calendar_events", []byte(`[{"id":"1"}]`)))
		v, err = s.Get(ctx, "calendar_events")
		require.NoError(t, err)
		require.Equal(t, `[{"id":"1"}]`, string(v))
	})

	t.Run("keys and delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "active_calendar", []byte(`"default"`)))
		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		sort.Strings(keys)
		require.Equal(t, []string{"active_calendar", "calendar_events"}, keys)

		require.NoError(t, s.Delete(ctx, "active_calendar"))
		require.NoError(t, s.Delete(ctx, "active_calendar"))
		_, err = s.Get(ctx, "active_calendar")
		require.ErrorIs(t, err, ErrNotFound)
	})

	require.NoError(t, s.Close(ctx))
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'x'
	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(v))
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	exercise(t, f)

	info, err := os.Stat(filepath.Join(dir, "calendar_events.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileRejectsPathKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.Error(t, f.Set(ctx, "../escape", []byte("x")))
	require.Error(t, f.Set(ctx, "", []byte("x")))
	_, err = f.Get(ctx, "a/b")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(config.StorageConfig{Type: config.StorageMemory})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)

	s, err = New(config.StorageConfig{Type: config.StorageFile, Dir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &File{}, s)

	_, err = New(config.StorageConfig{Type: "tape"})
	require.Error(t, err)
}
