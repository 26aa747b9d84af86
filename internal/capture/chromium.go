// Package capture takes PNG snapshots of the HTML board with headless
// Chromium.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Default capture parameters. The board page is a single column, so the
// height only bounds the first paint; FullScreenshot grabs the whole page.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second

	// ReadySelector matches the board root once it has rendered.
	ReadySelector = `[data-ready="true"]`
)

// Options defines one snapshot.
type Options struct {
	// URL of the board page, e.g. "http://127.0.0.1:8080/board".
	URL string

	// OutputPath is where the PNG is written.
	OutputPath string

	// Width and Height are the viewport size in pixels.
	Width  int
	Height int

	Timeout time.Duration

	// Username and Password are sent as basic auth when set.
	Username string
	Password string

	// ExecPath overrides the Chromium binary.
	ExecPath string
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
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
	return nil
}

// allocatorOptions are the headless flags plus the optional binary path.
func (o Options) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.WindowSize(o.Width, o.Height))
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	return opts
}

// authHeader is the basic auth header value, or "" without credentials.
func (o Options) authHeader() string {
	if o.Username == "" {
		return ""
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(o.Username+":"+o.Password))
}

// SnapshotBoard navigates to the board, waits for ReadySelector and writes
// a full-page PNG to opts.OutputPath.
func SnapshotBoard(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts.allocatorOptions()...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{network.Enable()}
	if h := opts.authHeader(); h != "" {
		tasks = append(tasks, network.SetExtraHTTPHeaders(network.Headers{"Authorization": h}))
	}
	tasks = append(tasks,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		// Let web fonts settle.
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	)
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("capture: output dir: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
