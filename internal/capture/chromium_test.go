package capture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"holocal/internal/config"
)

func TestOptionsNormalize(t *testing.T) {
	o := Options{}
	require.ErrorIs(t, o.normalize(), ErrNoURL)

	o = Options{URL: "http://127.0.0.1:8080/calendar"}
	require.NoError(t, o.normalize())
	require.Equal(t, DefaultWidth, o.Width)
	require.Equal(t, DefaultHeight, o.Height)
	require.NotZero(t, o.Timeout)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Listen = "0.0.0.0:9000"
	o := OptionsFromConfig(cfg)
	require.Equal(t, "http://0.0.0.0:9000/calendar", o.URL)
	require.Equal(t, 1280, o.Width)
	require.Equal(t, 960, o.Height)
}

func TestTasksAddAuthHeader(t *testing.T) {
	var png []byte
	plain := Options{URL: "http://x/calendar"}.tasks(&png)
	authed := Options{URL: "http://x/calendar", Username: "admin", Password: "pw"}.tasks(&png)
	require.Len(t, authed, len(plain)+2)
}

func TestCalendarPNGRequiresURL(t *testing.T) {
	_, err := CalendarPNG(context.Background(), Options{})
	require.ErrorIs(t, err, ErrNoURL)
	require.Error(t, CalendarPNGToFile(context.Background(), Options{URL: "http://x"}, ""))
}
