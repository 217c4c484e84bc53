package crawler

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"sjsage522/geardealworker/helpers"
	"sjsage522/geardealworker/logger"

	"github.com/chromedp/chromedp"
)

const navigationTimeout = 45 * time.Second

// ChromeOptions configures the headless browser
type ChromeOptions struct {
	ExecPath  string
	Headless  bool
	UserAgent string
}

// ChromePage is a single browser tab that renders JavaScript-driven pages
type ChromePage struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewChromePage starts a browser and opens one tab in it
func NewChromePage(parent context.Context, opts ChromeOptions) (*ChromePage, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = helpers.RandomUserAgent()
	}
	if opts.ExecPath == "" {
		opts.ExecPath = findChromeBinary()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// The first Run launches the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info("Browser started (headless: %t, binary: %q)", opts.Headless, opts.ExecPath)

	return &ChromePage{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx
func (p *ChromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url in the tab
func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, navigationTimeout, chromedp.Navigate(url))
}

// Content waits for waitSelector and returns the rendered document
func (p *ChromePage) Content(ctx context.Context, waitSelector string, timeout time.Duration) (io.Reader, error) {
	var html string
	err := p.run(ctx, timeout,
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("waiting for %q: %w", waitSelector, err)
	}
	return strings.NewReader(html), nil
}

// Close closes the tab and shuts the browser down
func (p *ChromePage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancelTab()
	p.cancelAlloc()
	return err
}

// findChromeBinary locates a Chrome/Chromium binary, or returns "" to let chromedp decide
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
