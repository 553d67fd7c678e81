package harness

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// BrowserConfig configures Chrome launch options for WebGL testing.
type BrowserConfig struct {
	Headless bool          // Run in headless mode (default: true)
	Timeout  time.Duration // Navigation timeout (default: 30s)
}

// DefaultBrowserConfig returns sensible defaults for CI runs.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

// BrowserClient wraps Rod with the flags the WebGL build needs.
type BrowserClient struct {
	browser *rod.Browser
	page    *rod.Page
	timeout time.Duration
}

var _ BrowserDriver = (*BrowserClient)(nil)

// NewBrowserClient launches Chrome for the WebGL build:
//   - No sandbox (for container compatibility)
//   - No /dev/shm usage (CI containers mount it tiny)
func NewBrowserClient(cfg BrowserConfig) (*BrowserClient, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	return &BrowserClient{
		browser: browser,
		timeout: cfg.Timeout,
	}, nil
}

// Navigate opens the URL in a fresh page.
func (c *BrowserClient) Navigate(url string) error {
	page := c.browser.MustPage()
	c.page = page

	if err := page.Timeout(c.timeout).Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	// Cancel timeout so later page calls are not bounded by it.
	page.CancelTimeout()
	return nil
}

// Page returns the current page, or nil if none open.
func (c *BrowserClient) Page() *rod.Page {
	return c.page
}

// WaitStable waits for the page to stop mutating the DOM, which is the
// closest signal the WebGL loader gives that the canvas is up.
func (c *BrowserClient) WaitStable() error {
	if c.page == nil {
		return errors.New("no page open, call Navigate first")
	}
	return c.page.WaitStable(c.timeout)
}

// Close shuts the browser down. Always call this (via the harness teardown)
// to prevent orphaned Chrome processes.
func (c *BrowserClient) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}
