// Package core defines the pipeline contracts for rankpipe.
// Each stage is a clean, testable interface: fetch the page, extract a
// CrawledData record, ask the optimizer for annotated content, then
// normalize, filter and segment that content into blocks.
package core

import (
	"context"

	"github.com/gaurav-prasanna/rankpipe/core/segment"
)

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// Link is a hyperlink found on the page.
type Link struct {
	Text     string `json:"text"`
	Href     string `json:"href"`
	Internal bool   `json:"internal"`
}

// Image is an image found on the page.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// CrawledData is everything the optimizer needs to know about a page.
type CrawledData struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	Language        string   `json:"language"`
	H1s             []string `json:"h1s"`
	H2s             []string `json:"h2s"`
	H3s             []string `json:"h3s"`
	BodyContent     string   `json:"body_content"`
	SchemaMarkup    []string `json:"schema_markup"`
	Links           []Link   `json:"links"`
	Images          []Image  `json:"images"`
}

// FAQ is a question/answer pair suggested by the optimizer.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// OptimizedContent is the optimizer's reply. Content is raw annotated text
// using the [H1]/[PARA]/[BULLET] and [[KEYWORD:]]/[[ADJUSTED:]] markup.
type OptimizedContent struct {
	H1              string `json:"h1"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	Content         string `json:"content"`
	FAQs            []FAQ  `json:"faqs"`
}

// PageMetadata describes the source of a generated document.
type PageMetadata struct {
	RunID           string   `json:"run_id,omitempty"`
	URL             string   `json:"url"`
	Domain          string   `json:"domain"`
	Path            string   `json:"path"`
	Title           string   `json:"title"`
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Language        string   `json:"language"`
	GeneratedAt     string   `json:"generated_at"` // ISO8601
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor turns raw HTML into a CrawledData record.
type Extractor interface {
	Extract(html string, pageURL string) (*CrawledData, error)
}

// Optimizer rewrites page content around the target keywords.
type Optimizer interface {
	Optimize(ctx context.Context, page *CrawledData, keywords []string) (*OptimizedContent, error)
}

// Normalizer rewrites raw annotated text into canonical markup.
type Normalizer interface {
	Normalize(raw string) string
}

// FooterFilter removes site footer boilerplate from normalized text.
type FooterFilter interface {
	Strip(text string) string
}

// Segmenter splits normalized text into typed blocks.
type Segmenter interface {
	Segment(text string) []segment.Block
}
