package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat("text")
	SetLevel(LevelInfo)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	Info("store opened", "backend", "memory", "events", 3)
	require.Contains(t, buf.String(), "store opened")
	require.Contains(t, buf.String(), "backend=memory")
	require.Contains(t, buf.String(), "events=3")

	buf.Reset()
	Debug("hidden at info level")
	require.Empty(t, buf.String())

	buf.Reset()
	Error("save failed", errors.New("disk full"), "key", "calendar_events")
	require.Contains(t, buf.String(), "disk full")
	require.Contains(t, buf.String(), "key=calendar_events")
}

func TestOddKeyValues(t *testing.T) {
	f := fields("a", 1, 2, "b", "dangling")
	require.Equal(t, 1, f["a"])
	require.Len(t, f, 1)
}
