// Package generate runs one page through the whole pipeline:
// fetch → extract → optimize → build → render.
//
// A Generator holds no per-run state; each Generate call builds its own
// Document, so one Generator can serve many goroutines.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/document"
	"github.com/gaurav-prasanna/rankpipe/core/render"
	"github.com/oklog/ulid/v2"
)

// Generator wires the pipeline collaborators together.
type Generator struct {
	Fetcher   core.Fetcher
	Extractor core.Extractor
	Optimizer core.Optimizer
	Renderer  render.Renderer
	Logger    *slog.Logger

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Result is the outcome of one run.
type Result struct {
	Data  []byte
	Meta  core.PageMetadata
	Stats document.Stats
}

// New creates a Generator. A nil logger discards output.
func New(f core.Fetcher, e core.Extractor, o core.Optimizer, r render.Renderer, logger *slog.Logger) *Generator {
	return &Generator{
		Fetcher:   f,
		Extractor: e,
		Optimizer: o,
		Renderer:  r,
		Logger:    logger,
	}
}

// Generate fetches rawURL, asks the optimizer to rewrite it around keywords
// and renders the annotated result.
func (g *Generator) Generate(ctx context.Context, rawURL string, keywords []string) (*Result, error) {
	log := g.logger().With("url", rawURL)
	start := g.now()

	fetched, err := g.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	pageURL := fetched.URL
	if pageURL == "" {
		pageURL = rawURL
	}
	log.Debug("fetched", "status", fetched.StatusCode, "bytes", len(fetched.HTML))

	page, err := g.Extractor.Extract(fetched.HTML, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	log.Debug("extracted", "title", page.Title, "h1s", len(page.H1s), "links", len(page.Links))

	content, err := g.Optimizer.Optimize(ctx, page, keywords)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	log.Debug("optimized", "content_bytes", len(content.Content), "faqs", len(content.FAQs))

	meta := Metadata(pageURL, page, content, keywords, g.now())
	meta.RunID = g.newID()

	res, err := g.Assemble(content, meta)
	if err != nil {
		return nil, err
	}
	log.Info("generated",
		"run_id", meta.RunID,
		"blocks", res.Stats.Blocks,
		"highlighted", res.Stats.Highlighted,
		"dropped_headings", res.Stats.Dropped,
		"elapsed", g.now().Sub(start).Round(time.Millisecond),
	)
	return res, nil
}

// Assemble builds and renders already-optimized content. It is the offline
// half of Generate.
func (g *Generator) Assemble(content *core.OptimizedContent, meta core.PageMetadata) (*Result, error) {
	faqs := make([]document.FAQ, 0, len(content.FAQs))
	for _, f := range content.FAQs {
		faqs = append(faqs, document.FAQ{Question: f.Question, Answer: f.Answer})
	}

	doc, err := document.Build(content.Content, document.Options{Title: content.H1, FAQs: faqs})
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	if meta.Title == "" {
		meta.Title = doc.Title
	}

	data, err := g.Renderer.Render(doc, meta)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Result{Data: data, Meta: meta, Stats: doc.Stats}, nil
}

// Metadata describes a generated page. page and content may be nil.
func Metadata(rawURL string, page *core.CrawledData, content *core.OptimizedContent, keywords []string, now time.Time) core.PageMetadata {
	meta := core.PageMetadata{
		URL:         rawURL,
		Keywords:    keywords,
		Language:    "en",
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	if parsed, err := url.Parse(rawURL); err == nil {
		meta.Domain = parsed.Host
		meta.Path = parsed.Path
	}
	if page != nil {
		meta.Title = page.Title
		if page.Language != "" {
			meta.Language = page.Language
		}
	}
	if content != nil {
		meta.MetaTitle = content.MetaTitle
		meta.MetaDescription = content.MetaDescription
	}
	return meta
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return g.Logger
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Generator) newID() string {
	if g.NewID != nil {
		return g.NewID()
	}
	return ulid.Make().String()
}
