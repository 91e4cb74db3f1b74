// Package fetch — headless browser fetcher.
// Renders the page in headless Chrome via go-rod and returns the DOM after
// the load event, for pages whose content is built by JavaScript.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserFetcher fetches pages through a lazily launched headless Chrome.
// It is safe for concurrent use; each Fetch opens its own tab.
type BrowserFetcher struct {
	timeout time.Duration

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewBrowser creates a BrowserFetcher. Chrome is not started until the
// first Fetch.
func NewBrowser(timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BrowserFetcher{timeout: timeout}
}

func (b *BrowserFetcher) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	b.launcher = l
	b.browser = browser
	return browser, nil
}

// Fetch loads url in a new tab and returns the rendered HTML.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	browser, err := b.connect()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", url, err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for %s to load: %w", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("reading DOM of %s: %w", url, err)
	}

	info, err := page.Info()
	finalURL := url
	if err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &core.FetchResult{
		URL:        finalURL,
		StatusCode: 200,
		HTML:       html,
	}, nil
}

// Close shuts down the browser if it was started.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Kill()
	b.browser = nil
	b.launcher = nil
	return err
}
