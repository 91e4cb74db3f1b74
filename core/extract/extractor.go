// Package extract implements the Extractor interface.
// It turns a full HTML page into a CrawledData record by:
//  1. Reading head metadata and JSON-LD schema before anything is removed
//  2. Collecting headings, links and images from the whole document
//  3. Removing noise elements (nav, footer, scripts, forms, etc.)
//  4. Converting the best content container to Markdown body text
package extract

import (
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/rankpipe/core"
)

// noiseSelectors are HTML elements removed before body extraction.
// These contribute no meaningful content to the page text.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".cookie-banner", "#cookie-notice",
}

// PageExtractor builds CrawledData from HTML.
type PageExtractor struct{}

// New creates a PageExtractor.
func New() *PageExtractor {
	return &PageExtractor{}
}

// Extract parses html fetched from pageURL.
func (e *PageExtractor) Extract(html string, pageURL string) (*core.CrawledData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	data := &core.CrawledData{
		URL:             pageURL,
		Title:           cleanText(doc.Find("title").First().Text()),
		MetaDescription: metaContent(doc, "description"),
		Language:        strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		H1s:             texts(doc, "h1"),
		H2s:             texts(doc, "h2"),
		H3s:             texts(doc, "h3"),
		SchemaMarkup:    schemaMarkup(doc),
		Links:           links(doc, base),
		Images:          images(doc, base),
	}
	if data.Language == "" {
		data.Language = "en"
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// <main> is the most semantically correct, then <article>, then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return nil, fmt.Errorf("no content container found in HTML")
	}

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, fmt.Errorf("serializing content: %w", err)
	}
	body, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	data.BodyContent = strings.TrimSpace(body)

	return data, nil
}

func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First()
	if sel.Length() == 0 {
		sel = doc.Find(fmt.Sprintf(`meta[property="og:%s"]`, name)).First()
	}
	return cleanText(sel.AttrOr("content", ""))
}

func texts(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

func schemaMarkup(doc *goquery.Document) []string {
	var out []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if raw := strings.TrimSpace(s.Text()); raw != "" {
			out = append(out, raw)
		}
	})
	return out
}

func links(doc *goquery.Document, base *url.URL) []core.Link {
	var out []core.Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := ResolveURL(href, base)
		if resolved == "" {
			return
		}
		parsed, err := url.Parse(resolved)
		if err != nil {
			return
		}
		out = append(out, core.Link{
			Text:     cleanText(s.Text()),
			Href:     resolved,
			Internal: parsed.Host == base.Host,
		})
	})
	return out
}

func images(doc *goquery.Document, base *url.URL) []core.Image {
	var out []core.Image
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		resolved := ResolveURL(src, base)
		if resolved == "" {
			return
		}
		out = append(out, core.Image{Src: resolved, Alt: cleanText(s.AttrOr("alt", ""))})
	})
	return out
}

// ResolveURL resolves a potentially relative URL against base.
// Non-navigational references (mailto:, tel:, javascript:, fragments,
// data: URIs) resolve to "".
func ResolveURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	for _, prefix := range []string{"mailto:", "javascript:", "tel:", "#", "data:"} {
		if strings.HasPrefix(href, prefix) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}

// cleanText collapses whitespace in extracted text.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
