// Package snapshot renders a dashboard page in a headless browser and
// saves a screenshot of the composed charts.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raykavin/reportview/pkg/logger"
)

// Defaults
const (
	DefaultWidth   = 1280
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second
	DefaultQuality = 90
)

// ErrNoURL is returned when no page to capture is configured
var ErrNoURL = errors.New("snapshot: page url is required")

// Options configures a capture
type Options struct {
	URL    string
	Output string
	Width  int
	Height int
	// RemoteURL attaches to a running browser's devtools endpoint instead
	// of launching one
	RemoteURL string
	Timeout   time.Duration
	// Selector is waited for before the capture
	Selector string
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return ErrNoURL
	}
	if o.Output == "" {
		o.Output = "report.png"
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Selector == "" {
		o.Selector = "#chart .pane"
	}
	return nil
}

// Capture loads the page, waits for the first chart pane and writes a full
// page PNG to the output file
func Capture(ctx context.Context, log logger.Logger, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if opts.RemoteURL != "" {
		log.Infof("Connecting to browser at %s", opts.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	}
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var image []byte
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetCacheDisabled(true),
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(opts.Selector, chromedp.ByQuery),
		chromedp.FullScreenshot(&image, DefaultQuality),
	)
	if err != nil {
		return fmt.Errorf("capture %s: %w", opts.URL, err)
	}

	if err := os.WriteFile(opts.Output, image, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	log.Infof("Snapshot of %s saved to %s (%d bytes)", opts.URL, opts.Output, len(image))
	return nil
}
