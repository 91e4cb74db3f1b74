// Package render — Markdown renderer.
// Headings become #/##/###, bullets "- " or "n. ", and highlighted runs
// use the ==mark== extension. Page metadata is written as YAML front matter.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/document"
	"github.com/gaurav-prasanna/rankpipe/core/markup"
	"github.com/gaurav-prasanna/rankpipe/core/segment"
	"github.com/goccy/go-yaml"
)

// FAQHeading titles the FAQ section in every back-end.
const FAQHeading = "Frequently Asked Questions"

// MarkdownRenderer writes a Document as Markdown.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

type frontMatter struct {
	Title           string   `yaml:"title,omitempty"`
	MetaTitle       string   `yaml:"meta_title,omitempty"`
	MetaDescription string   `yaml:"meta_description,omitempty"`
	Source          string   `yaml:"source,omitempty"`
	Keywords        []string `yaml:"keywords,omitempty"`
	Language        string   `yaml:"language,omitempty"`
	GeneratedAt     string   `yaml:"generated_at,omitempty"`
}

// Render converts doc into Markdown bytes.
func (r *MarkdownRenderer) Render(doc *document.Document, meta core.PageMetadata) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	fm, err := yaml.Marshal(frontMatter{
		Title:           doc.Title,
		MetaTitle:       meta.MetaTitle,
		MetaDescription: meta.MetaDescription,
		Source:          meta.URL,
		Keywords:        meta.Keywords,
		Language:        meta.Language,
		GeneratedAt:     meta.GeneratedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(markdownBody(doc, func(s string) string { return "==" + s + "==" }, nil))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// markdownBody lays out blocks and FAQs as Markdown. mark wraps highlighted
// text; escape, when set, is applied to every run before marking.
func markdownBody(doc *document.Document, mark, escape func(string) string) string {
	inline := func(runs []markup.InlineRun) string {
		var b strings.Builder
		for _, run := range runs {
			text := run.Text
			if escape != nil {
				text = escape(text)
			}
			if run.Highlighted {
				text = mark(text)
			}
			b.WriteString(text)
		}
		return b.String()
	}

	var b strings.Builder
	prev := segment.Kind(-1)
	for _, blk := range doc.Blocks {
		if b.Len() > 0 {
			// Consecutive list items stay tight.
			if prev == segment.Bullet && blk.Kind == segment.Bullet {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(blockPrefix(blk))
		b.WriteString(inline(blk.Runs))
		prev = blk.Kind
	}

	if len(doc.FAQs) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## " + FAQHeading)
		for _, f := range doc.FAQs {
			if len(f.Question) > 0 {
				b.WriteString("\n\n### " + inline(f.Question))
			}
			if len(f.Answer) > 0 {
				b.WriteString("\n\n" + inline(f.Answer))
			}
		}
	}
	return b.String()
}

func blockPrefix(blk document.RenderedBlock) string {
	switch blk.Kind {
	case segment.Heading1, segment.Heading2, segment.Heading3:
		return strings.Repeat("#", blk.Kind.Level()) + " "
	case segment.Bullet:
		if blk.Ordered {
			return strconv.Itoa(blk.Number) + ". "
		}
		return "- "
	default:
		return ""
	}
}
