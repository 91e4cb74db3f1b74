// Package crawl discovers the pages of a site for --all runs.
// Sitemaps are tried first; without one, internal links are followed
// breadth-first using the same extractor the pipeline uses.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gaurav-prasanna/rankpipe/core"
)

const (
	// DefaultMaxPages bounds a discovery run.
	DefaultMaxPages = 100
	maxSitemapBytes = 20 << 20
	maxSitemapDepth = 2
)

// sitemapDoc covers both <urlset> and <sitemapindex> documents.
type sitemapDoc struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// Discoverer finds the optimizable pages of a site.
type Discoverer struct {
	Fetcher   core.Fetcher
	Extractor core.Extractor
	// Client fetches sitemaps. Pages go through Fetcher.
	Client   *http.Client
	MaxPages int
	Logger   *slog.Logger
}

// NewDiscoverer creates a Discoverer. maxPages <= 0 means DefaultMaxPages.
func NewDiscoverer(f core.Fetcher, e core.Extractor, maxPages int, logger *slog.Logger) *Discoverer {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Discoverer{
		Fetcher:   f,
		Extractor: e,
		Client:    &http.Client{Timeout: 15 * time.Second},
		MaxPages:  maxPages,
		Logger:    logger,
	}
}

// Discover returns the pages to process starting from baseURL. baseURL
// itself is always first.
func (d *Discoverer) Discover(ctx context.Context, baseURL string) ([]string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	sitemap := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, parsed.Host)
	urls, err := d.fromSitemap(ctx, sitemap, parsed.Host)
	if err != nil {
		d.Logger.Debug("sitemap unavailable", "url", sitemap, "err", err)
	}
	if len(urls) > 0 {
		q := NewQueue(d.MaxPages)
		q.Add(NormalizeURL(baseURL))
		for _, u := range urls {
			q.Add(u)
		}
		d.Logger.Info("discovered pages from sitemap", "count", q.Len())
		return q.All(), nil
	}

	pages, err := d.fromLinks(ctx, baseURL, parsed.Host)
	if err != nil {
		return nil, err
	}
	d.Logger.Info("discovered pages from links", "count", len(pages))
	return pages, nil
}

// fromSitemap reads sitemap.xml, following sitemap indexes up to
// maxSitemapDepth levels.
func (d *Discoverer) fromSitemap(ctx context.Context, sitemapURL, domain string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	var walk func(loc string, depth int) error
	walk = func(loc string, depth int) error {
		if seen[loc] || depth > maxSitemapDepth {
			return nil
		}
		seen[loc] = true

		doc, err := d.fetchSitemap(ctx, loc)
		if err != nil {
			return err
		}
		for _, u := range doc.URLs {
			if IsSameDomain(u.Loc, domain) && !ShouldSkip(u.Loc) {
				out = append(out, NormalizeURL(u.Loc))
			}
		}
		for _, s := range doc.Sitemaps {
			if err := walk(s.Loc, depth+1); err != nil {
				d.Logger.Debug("nested sitemap failed", "url", s.Loc, "err", err)
			}
		}
		return nil
	}

	if err := walk(sitemapURL, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Discoverer) fetchSitemap(ctx context.Context, loc string) (*sitemapDoc, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return nil, err
	}
	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing sitemap: %w", err)
	}
	return &doc, nil
}

// fromLinks crawls breadth-first from startURL. Pages that fail to fetch
// or parse are skipped.
func (d *Discoverer) fromLinks(ctx context.Context, startURL, domain string) ([]string, error) {
	q := NewQueue(d.MaxPages)
	q.Add(NormalizeURL(startURL))

	for q.HasNext() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := q.Next()

		result, err := d.Fetcher.Fetch(ctx, current)
		if err != nil {
			d.Logger.Debug("skipping page", "url", current, "err", err)
			continue
		}
		page, err := d.Extractor.Extract(result.HTML, current)
		if err != nil {
			d.Logger.Debug("skipping page", "url", current, "err", err)
			continue
		}

		for _, link := range page.Links {
			if IsSameDomain(link.Href, domain) && !ShouldSkip(link.Href) {
				q.Add(NormalizeURL(link.Href))
			}
		}
	}
	return q.All(), nil
}
