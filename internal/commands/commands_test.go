package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"holocal/internal/backup"
	"holocal/internal/config"
	"holocal/internal/model"
)

func TestPromptHash(t *testing.T) {
	read := lineReader(strings.NewReader("hunter2\nhunter2\n"))
	hash, err := promptHash(read, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	tests := []struct {
		name  string
		input string
	}{
		{"mismatch", "a\nb\n"},
		{"empty", "\n\n"},
		{"eof", "only-once\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := promptHash(lineReader(strings.NewReader(tt.input)), bcrypt.MinCost)
			require.Error(t, err)
		})
	}

	_, err = promptHash(func(string) (string, error) { return "", errors.New("tty gone") }, bcrypt.MinCost)
	require.ErrorContains(t, err, "tty gone")
}

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.Storage.Type = config.StorageFile
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "data")
	cfg.Backup.Dir = filepath.Join(t.TempDir(), "backup")
	return cfg
}

func TestExportImportICS(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)

	st, backend, err := openStore(ctx, cfg)
	require.NoError(t, err)
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	_, err = st.CreateEvent(ctx, model.CalendarEvent{Title: "Standup", StartTime: start, EndTime: start.Add(time.Hour)})
	require.NoError(t, err)
	require.NoError(t, backend.Close(ctx))

	out := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, ExportICS(ctx, cfg, []string{"-out", out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "SUMMARY:Standup")

	require.NoError(t, ImportICS(ctx, cfg, []string{"-in", out}))

	st, backend, err = openStore(ctx, cfg)
	require.NoError(t, err)
	defer backend.Close(ctx)
	require.Len(t, st.ActiveEvents(), 2)

	require.Error(t, ExportICS(ctx, cfg, nil))
	require.Error(t, ExportICS(ctx, cfg, []string{"-out", out, "-calendar", "nope"}))
	require.Error(t, ImportICS(ctx, cfg, nil))
}

func TestRestoreLatest(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)

	st, backend, err := openStore(ctx, cfg)
	require.NoError(t, err)
	_, err = st.CreateCalendar(ctx, model.Calendar{Name: "Work"})
	require.NoError(t, err)
	_, err = backup.New(backend, cfg.Backup).RunOnce(ctx)
	require.NoError(t, err)
	require.NoError(t, backend.Close(ctx))

	// Restore into an empty data dir.
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "fresh")
	require.NoError(t, Restore(ctx, cfg, []string{"-latest"}))

	st, backend, err = openStore(ctx, cfg)
	require.NoError(t, err)
	defer backend.Close(ctx)
	require.Len(t, st.Calendars(), 2)

	require.Error(t, Restore(ctx, cfg, nil))
}
