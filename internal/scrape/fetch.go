package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// UserAgent is sent by both fetchers
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	defaultTimeout = 30 * time.Second
)

// Fetcher returns the HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// =============================================================================
// HTTP fetcher
// =============================================================================

// HTTPFetcher fetches static pages over plain HTTP
type HTTPFetcher struct {
	client *resty.Client
	logger *log.Logger
}

// NewHTTPFetcher creates a fetcher with retries and a browser user agent
func NewHTTPFetcher(retries int, timeout time.Duration, logger *log.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetHeader("User-Agent", UserAgent).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &HTTPFetcher{client: client, logger: logger}
}

// Client exposes the underlying resty client so callers can share it
func (f *HTTPFetcher) Client() *resty.Client {
	return f.client
}

// Fetch downloads a page and fails on non-2xx responses
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.logger != nil {
		f.logger.Debug("fetching page", "url", url)
	}
	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("failed to fetch %s: status %d", url, res.StatusCode())
	}
	return res.String(), nil
}

// =============================================================================
// Browser fetcher
// =============================================================================

// BrowserFetcher renders pages in headless Chromium for script-built tables
type BrowserFetcher struct {
	browser      *rod.Browser
	waitSelector string
	timeout      time.Duration
	logger       *log.Logger
}

// LaunchBrowser starts a Chromium instance and connects to it
func LaunchBrowser(headless bool) (*rod.Browser, error) {
	l := launcher.New().
		Headless(headless).
		Set("user-agent", UserAgent).
		Set("disable-blink-features", "AutomationControlled")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return browser, nil
}

// NewBrowserFetcher launches a headless browser.
// waitSelector, when set, must appear before the HTML is captured.
func NewBrowserFetcher(waitSelector string, timeout time.Duration, logger *log.Logger) (*BrowserFetcher, error) {
	browser, err := LaunchBrowser(true)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BrowserFetcher{
		browser:      browser,
		waitSelector: waitSelector,
		timeout:      timeout,
		logger:       logger,
	}, nil
}

// Fetch opens the URL in a new tab and returns the rendered HTML
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("failed to open tab: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.timeout)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", url, err)
	}
	if f.waitSelector != "" {
		if _, err := page.Element(f.waitSelector); err != nil {
			return "", fmt.Errorf("selector %q never appeared on %s: %w", f.waitSelector, url, err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read HTML from %s: %w", url, err)
	}
	if f.logger != nil {
		f.logger.Debug("rendered page", "url", url, "bytes", len(html))
	}
	return html, nil
}

// Close shuts the browser down
func (f *BrowserFetcher) Close() error {
	return f.browser.Close()
}
