package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"holocal/internal/config"
	appLog "holocal/internal/log"
)

// Default capture parameters. They match the layout of the /calendar page.
const (
	DefaultWidth      = 1280
	DefaultHeight     = 960
	DefaultTimeoutSec = 30
)

// ReadySelector is the element /calendar marks once it has rendered.
const ReadySelector = `[data-ready="true"]`

var ErrNoURL = errors.New("capture: URL is required")

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/calendar?date=2024-03-01".
	URL string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Username and Password are sent as HTTP Basic credentials when set.
	Username string
	Password string

	// Timeout bounds the entire capture operation.
	Timeout time.Duration
}

// OptionsFromConfig fills capture options from the preview section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URL:    cfg.PreviewURL(),
		Width:  cfg.Preview.Width,
		Height: cfg.Preview.Height,
	}
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return ErrNoURL
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// tasks builds the chromedp action list that renders opts.URL into png.
func (o Options) tasks(png *[]byte) chromedp.Tasks {
	t := chromedp.Tasks{}
	if o.Username != "" {
		token := base64.StdEncoding.EncodeToString([]byte(o.Username + ":" + o.Password))
		t = append(t,
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers{"Authorization": "Basic " + token}),
		)
	}
	return append(t,
		chromedp.EmulateViewport(int64(o.Width), int64(o.Height)),
		chromedp.Navigate(o.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(500*time.Millisecond),
		chromedp.FullScreenshot(png, 100),
	)
}

// CalendarPNG launches a headless Chromium instance via chromedp, navigates
// to opts.URL, waits for the page to expose data-ready="true" and returns a
// full-page PNG screenshot.
func CalendarPNG(parentCtx context.Context, opts Options) ([]byte, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, allocOpts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// Apply timeout to the entire capture sequence.
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	start := time.Now()
	var png []byte
	if err := chromedp.Run(ctx, opts.tasks(&png)); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	appLog.Info("calendar captured", "url", opts.URL, "bytes", len(png), "elapsed", time.Since(start).String())
	return png, nil
}

// CalendarPNGToFile captures like CalendarPNG and writes the PNG to path.
func CalendarPNGToFile(ctx context.Context, opts Options, path string) error {
	if path == "" {
		return errors.New("capture: output path is required")
	}
	png, err := CalendarPNG(ctx, opts)
	if err != nil {
		return err
	}
	if err := config.WriteFileAtomic(path, png, "preview-*.png.tmp"); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
