// Package render — PDF renderer.
// Lays out blocks with gofpdf using word flow, so highlighted runs can be
// drawn over a filled rectangle while plain text around them wraps normally.
// Text is translated to cp1252 for the built-in Helvetica font.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/document"
	"github.com/gaurav-prasanna/rankpipe/core/markup"
	"github.com/gaurav-prasanna/rankpipe/core/segment"
	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin   = 20.0
	bodySize     = 11.0
	bodyLine     = 6.0
	bulletIndent = 6.0
)

var headingSizes = map[segment.Kind]float64{
	segment.Heading1: 20,
	segment.Heading2: 15,
	segment.Heading3: 13,
}

// PDFRenderer renders a Document as an A4 PDF.
type PDFRenderer struct {
	// Highlight fills the background of highlighted words.
	Highlight Color
}

// NewPDFRenderer creates a PDFRenderer using DefaultHighlight.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Highlight: DefaultHighlight}
}

// Render converts doc into PDF bytes.
func (r *PDFRenderer) Render(doc *document.Document, meta core.PageMetadata) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCellMargin(0)
	pdf.SetCreator("rankpipe", true)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	pdf.AddPage()

	w := &pdfWriter{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		fill: r.Highlight,
	}

	if meta.URL != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, w.tr("Source: "+meta.URL), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(4)
	}

	prev := segment.Kind(-1)
	for _, b := range doc.Blocks {
		w.block(b, prev)
		prev = b.Kind
	}

	if len(doc.FAQs) > 0 {
		w.heading([]markup.InlineRun{{Text: FAQHeading}}, segment.Heading2)
		for _, f := range doc.FAQs {
			if len(f.Question) > 0 {
				w.flow(f.Question, "B", bodySize, bodyLine, pageMargin)
			}
			if len(f.Answer) > 0 {
				w.flow(f.Answer, "", bodySize, bodyLine, pageMargin)
			}
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

type pdfWriter struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	fill Color
}

func (w *pdfWriter) block(b document.RenderedBlock, prev segment.Kind) {
	switch {
	case b.Kind.IsHeading():
		w.heading(b.Runs, b.Kind)
	case b.Kind == segment.Bullet:
		if prev != segment.Bullet {
			w.pdf.Ln(1)
		}
		glyph := segment.BulletGlyph
		if b.Ordered {
			glyph = strconv.Itoa(b.Number) + "."
		}
		w.pdf.SetFont("Helvetica", "", bodySize)
		w.pdf.SetX(pageMargin)
		w.pdf.CellFormat(bulletIndent, bodyLine, w.tr(glyph), "", 0, "L", false, 0, "")
		w.flow(b.Runs, "", bodySize, bodyLine, pageMargin+bulletIndent)
	default:
		w.flow(b.Runs, "", bodySize, bodyLine, pageMargin)
		w.pdf.Ln(2)
	}
}

func (w *pdfWriter) heading(runs []markup.InlineRun, kind segment.Kind) {
	size := headingSizes[kind]
	w.pdf.Ln(3)
	w.flow(runs, "B", size, size*0.5, pageMargin)
	w.pdf.Ln(2)
}

// flow writes runs word by word starting at the current position, wrapping
// back to left. It ends with a line break.
func (w *pdfWriter) flow(runs []markup.InlineRun, style string, size, lineH, left float64) {
	pdf := w.pdf
	pdf.SetFont("Helvetica", style, size)
	pdf.SetFillColor(w.fill.R, w.fill.G, w.fill.B)

	pageW, _ := pdf.GetPageSize()
	_, _, rightMargin, _ := pdf.GetMargins()
	right := pageW - rightMargin
	space := pdf.GetStringWidth(" ")

	if pdf.GetX() < left {
		pdf.SetX(left)
	}
	for _, word := range splitWords(runs) {
		for i, text := range breakWord(pdf, w.tr(word.Text), right-left) {
			width := pdf.GetStringWidth(text)
			spaced := word.Space && i == 0

			atStart := pdf.GetX() <= left+0.01
			need := width
			if spaced && !atStart {
				need += space
			}
			if !atStart && pdf.GetX()+need > right {
				pdf.Ln(lineH)
				pdf.SetX(left)
				atStart = true
			}
			if spaced && !atStart {
				pdf.CellFormat(space, lineH, "", "", 0, "L", word.SpaceHighlighted, 0, "")
			}
			pdf.CellFormat(width, lineH, text, "", 0, "L", word.Highlighted, 0, "")
		}
	}
	pdf.Ln(lineH)
}

// breakWord splits a word wider than maxW into pieces that each fit.
// text is already translated to a single-byte code page, so it is cut
// byte by byte.
func breakWord(pdf *gofpdf.Fpdf, text string, maxW float64) []string {
	if maxW <= 0 || pdf.GetStringWidth(text) <= maxW {
		return []string{text}
	}
	var pieces []string
	start := 0
	for end := start + 1; end <= len(text); end++ {
		if end-start > 1 && pdf.GetStringWidth(text[start:end]) > maxW {
			pieces = append(pieces, text[start:end-1])
			start = end - 1
		}
	}
	return append(pieces, text[start:])
}

type pdfWord struct {
	Text        string
	Highlighted bool
	// Space reports whitespace before the word. SpaceHighlighted is set
	// when that whitespace sits inside a highlighted run.
	Space            bool
	SpaceHighlighted bool
}

// splitWords breaks runs into words, remembering where whitespace fell.
// Text from adjacent runs with no whitespace between them stays as separate
// words placed side by side.
func splitWords(runs []markup.InlineRun) []pdfWord {
	var out []pdfWord
	pending, pendingHL := false, false
	for _, r := range runs {
		text := r.Text
		for text != "" {
			trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
			if len(trimmed) < len(text) {
				pending, pendingHL = true, r.Highlighted
			}
			text = trimmed
			if text == "" {
				break
			}
			end := strings.IndexFunc(text, unicode.IsSpace)
			if end < 0 {
				end = len(text)
			}
			space := pending && len(out) > 0
			out = append(out, pdfWord{
				Text:             text[:end],
				Highlighted:      r.Highlighted,
				Space:            space,
				SpaceHighlighted: space && pendingHL && r.Highlighted,
			})
			pending = false
			text = text[end:]
		}
	}
	return out
}
