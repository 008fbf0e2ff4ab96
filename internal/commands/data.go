package commands

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"holocal/internal/backup"
	"holocal/internal/capture"
	"holocal/internal/config"
	"holocal/internal/ics"
	"holocal/internal/kv"
	appLog "holocal/internal/log"
	"holocal/internal/store"
)

// openStore connects the configured backend and loads the store on it. The
// caller closes the returned kv.Store.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, kv.Store, error) {
	backend, err := kv.New(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, backend)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, nil, err
	}
	return st, backend, nil
}

// ExportICS writes a calendar as an .ics file.
//
//	holocal export-ics [-calendar id] -out file
func ExportICS(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export-ics", flag.ContinueOnError)
	out := fs.String("out", "", "Output .ics path (- for stdout)")
	calID := fs.String("calendar", "", "Calendar id (default: active calendar)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("export-ics: -out is required")
	}

	st, backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close(ctx)

	cal := st.ActiveCalendar()
	if *calID != "" {
		found := false
		for _, c := range st.Calendars() {
			if c.ID == *calID {
				cal, found = c, true
			}
		}
		if !found {
			return fmt.Errorf("export-ics: %q: %w", *calID, store.ErrCalendarNotFound)
		}
	}
	events, err := st.EventsOf(cal.ID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := ics.Export(&buf, cal, events, time.Now()); err != nil {
		return err
	}
	if *out == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	appLog.Info("ics exported", "calendar_id", cal.ID, "events", len(events), "path", *out)
	return nil
}

// ImportICS loads events from an .ics file or feed URL into a calendar.
//
//	holocal import-ics [-calendar id] -in file|url
func ImportICS(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import-ics", flag.ContinueOnError)
	in := fs.String("in", "", "Input .ics path or http(s)/webcal URL")
	calID := fs.String("calendar", "", "Calendar id (default: active calendar)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("import-ics: -in is required")
	}

	var body []byte
	var err error
	if strings.Contains(*in, "://") {
		body, err = ics.NewFetcher(30*time.Second).Fetch(ctx, *in)
	} else {
		body, err = os.ReadFile(*in)
	}
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.Local
	}
	events, err := ics.Import(body, loc)
	if err != nil {
		return err
	}

	st, backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close(ctx)

	target := *calID
	if target == "" {
		target = st.ActiveCalendar().ID
	}
	n, err := st.ImportEvents(ctx, target, events)
	if err != nil {
		return err
	}
	appLog.Info("ics imported", "calendar_id", target, "events", n, "source", *in)
	return nil
}

// Snapshot renders the month page of a running server into a PNG.
//
//	holocal snapshot [-url u] [-user name -password pw] -out file
func Snapshot(ctx context.Context, cfg *config.Config, args []string) error {
	opts := capture.OptionsFromConfig(cfg)
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	out := fs.String("out", cfg.Preview.Output, "Output PNG path")
	fs.StringVar(&opts.URL, "url", opts.URL, "Page to capture")
	fs.IntVar(&opts.Width, "width", opts.Width, "Viewport width")
	fs.IntVar(&opts.Height, "height", opts.Height, "Viewport height")
	fs.StringVar(&opts.Username, "user", "", "Basic auth username")
	fs.StringVar(&opts.Password, "password", "", "Basic auth password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return capture.CalendarPNGToFile(ctx, opts, *out)
}

// Restore loads a backup file back into the configured storage backend.
// With -latest the newest file of backup.dir is used.
//
//	holocal restore -in file | -latest
func Restore(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	in := fs.String("in", "", "Backup file to restore")
	latest := fs.Bool("latest", false, "Restore the newest file in backup.dir")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *in
	if path == "" && *latest {
		files, err := backup.List(cfg.Backup.Dir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("restore: no backups in %s", cfg.Backup.Dir)
		}
		path = files[len(files)-1]
	}
	if path == "" {
		return errors.New("restore: -in or -latest is required")
	}

	backend, err := kv.New(cfg.Storage)
	if err != nil {
		return err
	}
	defer backend.Close(ctx)

	_, err = backup.Restore(ctx, backend, path)
	return err
}
