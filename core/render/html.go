// Package render — HTML renderer.
// Blocks are laid out as Markdown and converted with goldmark. Highlighted
// runs travel through goldmark as Private Use Area placeholders and become
// <mark> elements afterwards, so raw HTML is never enabled.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const (
	markStart = "\uE000"
	markEnd   = "\uE001"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<title>%s</title>
%s<style>mark{background:#90ee90;padding:0 .1em}</style>
</head>
<body>
<article>
%s</article>
%s</body>
</html>
`

// HTMLRenderer writes a Document as a standalone HTML5 page.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer creates an HTMLRenderer with GFM extensions.
func NewHTMLRenderer() *HTMLRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithXHTML()),
	)
	return &HTMLRenderer{md: md}
}

// Render converts doc into HTML bytes.
func (r *HTMLRenderer) Render(doc *document.Document, meta core.PageMetadata) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	src := markdownBody(doc, func(s string) string { return markStart + s + markEnd }, escapeMarkdown)

	var body bytes.Buffer
	if err := r.md.Convert([]byte(src), &body); err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}
	content := strings.NewReplacer(markStart, "<mark>", markEnd, "</mark>").Replace(body.String())

	title := meta.MetaTitle
	if title == "" {
		title = doc.Title
	}
	if title == "" {
		title = meta.Title
	}

	var head string
	if meta.MetaDescription != "" {
		head = fmt.Sprintf("<meta name=\"description\" content=\"%s\">\n", html.EscapeString(meta.MetaDescription))
	}
	var footer string
	if meta.URL != "" {
		u := html.EscapeString(meta.URL)
		footer = fmt.Sprintf("<footer><p>Source: <a href=\"%s\">%s</a></p></footer>\n", u, u)
	}

	lang := meta.Language
	if lang == "" {
		lang = "en"
	}

	out := fmt.Sprintf(htmlTemplate, html.EscapeString(lang), html.EscapeString(title), head, content, footer)
	return []byte(out), nil
}

// Extension returns the file extension for HTML output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}

// escapeMarkdown backslash-escapes every ASCII punctuation character so run
// text is always literal to the Markdown parser.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIIPunct(c) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isASCIIPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}
