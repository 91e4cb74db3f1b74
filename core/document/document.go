// Package document runs the annotated-content pipeline end to end:
// normalize → strip footer → segment → deduplicate headings → render runs.
//
// Build is synchronous and holds no external resources. Every call owns
// a fresh heading registry, so concurrent builds never share state.
package document

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/headings"
	"github.com/gaurav-prasanna/rankpipe/core/markup"
	"github.com/gaurav-prasanna/rankpipe/core/normalize"
	"github.com/gaurav-prasanna/rankpipe/core/segment"
)

// ErrEmptyContent is returned when there is no annotated text to build from.
var ErrEmptyContent = errors.New("annotated content is empty")

// FAQ is a question/answer pair produced by the optimizer.
type FAQ struct {
	Question string
	Answer   string
}

// Options carries the structured fields that accompany the annotated text.
type Options struct {
	// Title is the dedicated H1 field. It competes with body H1s for the
	// single top-level heading; whichever is seen first wins.
	Title string
	FAQs  []FAQ
}

// RenderedBlock is a block ready for a back-end.
type RenderedBlock struct {
	Kind    segment.Kind
	Ordered bool
	Number  int
	Runs    []markup.InlineRun
}

// Text returns the plain text of the block.
func (b RenderedBlock) Text() string {
	return markup.Join(b.Runs)
}

// RenderedFAQ is an FAQ entry with rendered runs.
type RenderedFAQ struct {
	Question []markup.InlineRun
	Answer   []markup.InlineRun
}

// Stats summarises a build, for logs and run history.
type Stats struct {
	Blocks      int `json:"blocks"`
	Highlighted int `json:"highlighted"`
	Dropped     int `json:"dropped_headings"`
	// Markers counts the KEYWORD and ADJUSTED markers that reached the
	// output, title and FAQs included. Markers.New counts the sentinels in
	// the raw input; they never render.
	Markers markup.Counts `json:"markers"`
}

// Document is the output of Build.
type Document struct {
	// Title is the plain text of the accepted top-level heading, if any.
	Title  string
	Blocks []RenderedBlock
	FAQs   []RenderedFAQ
	// HeadingAccepted reports whether the Title option won the top-level
	// heading rather than being deduplicated away.
	HeadingAccepted bool
	Stats           Stats
}

// Pipeline holds the text stages a build runs through.
type Pipeline struct {
	Normalizer core.Normalizer
	Footer     core.FooterFilter
	Segmenter  core.Segmenter
}

// DefaultPipeline returns the standard stages.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		Normalizer: normalize.New(),
		Footer:     normalize.NewFooterFilter(),
		Segmenter:  segment.New(),
	}
}

// Build turns raw annotated text into a Document using DefaultPipeline.
func Build(raw string, opts Options) (*Document, error) {
	return DefaultPipeline().Build(raw, opts)
}

// Build turns raw annotated text into a Document.
func (p *Pipeline) Build(raw string, opts Options) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyContent
	}

	reg := headings.NewRegistry()
	doc := &Document{}

	text := p.Normalizer.Normalize(raw)
	text = p.Footer.Strip(text)
	blocks := p.Segmenter.Segment(text)

	if title := normalizeTitle(opts.Title); title != "" && reg.Accept(title) {
		doc.HeadingAccepted = true
		doc.addBlock(segment.Block{Kind: segment.Heading1, Text: title})
	}

	var prevHeading string
	for _, b := range blocks {
		switch b.Kind {
		case segment.Heading1:
			if !reg.Accept(b.Text) {
				doc.Stats.Dropped++
				continue
			}
			// Keep a single top-level heading; later distinct H1s become H2s.
			if doc.Title != "" {
				b.Kind = segment.Heading2
			}
		case segment.Heading2, segment.Heading3:
			if key := headings.Key(b.Text); key == prevHeading {
				doc.Stats.Dropped++
				continue
			}
		}
		doc.addBlock(b)
		if b.Kind.IsHeading() {
			prevHeading = headings.Key(b.Text)
		} else {
			prevHeading = ""
		}
	}

	for _, f := range opts.FAQs {
		qText := normalize.NormalizeInline(f.Question)
		aText := normalize.NormalizeInline(f.Answer)
		q, a := markup.Render(qText), markup.Render(aText)
		if len(q) == 0 && len(a) == 0 {
			continue
		}
		doc.FAQs = append(doc.FAQs, RenderedFAQ{Question: q, Answer: a})
		doc.Stats.Highlighted += markup.Highlighted(q) + markup.Highlighted(a)
		doc.Stats.Markers = doc.Stats.Markers.Add(markup.Count(qText)).Add(markup.Count(aText))
	}
	doc.Stats.Markers.New = markup.Count(raw).New

	return doc, nil
}

func (d *Document) addBlock(b segment.Block) {
	rb := RenderedBlock{
		Kind:    b.Kind,
		Ordered: b.Ordered,
		Number:  b.Number,
		Runs:    markup.Render(b.Text),
	}
	if len(rb.Runs) == 0 {
		return
	}
	if rb.Kind == segment.Heading1 && d.Title == "" {
		d.Title = rb.Text()
	}
	d.Blocks = append(d.Blocks, rb)
	d.Stats.Blocks++
	d.Stats.Highlighted += markup.Highlighted(rb.Runs)
	d.Stats.Markers = d.Stats.Markers.Add(markup.Count(b.Text))
}

// titlePrefix is a heading marker or bullet glyph the optimizer sometimes
// puts in front of the title field. Numbering is part of the title.
var titlePrefix = regexp.MustCompile(`(?i)^(?:\[[ \t]*h[1-3][ \t]*\]|#{1,6}[ \t]+|•)[ \t]*`)

// normalizeTitle normalizes the title field as a single line and removes a
// leading heading marker.
func normalizeTitle(title string) string {
	return titlePrefix.ReplaceAllString(normalize.NormalizeInline(title), "")
}

// HeadingCount returns the number of blocks of kind k.
func (d *Document) HeadingCount(k segment.Kind) int {
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == k {
			n++
		}
	}
	return n
}
