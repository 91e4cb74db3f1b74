// Package render — JSON renderer.
// Emits metadata, every block with its runs, FAQs and build stats so that
// downstream tools can re-style the output without re-parsing markers.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/document"
	"github.com/gaurav-prasanna/rankpipe/core/markup"
)

// JSONRenderer produces structured JSON output.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// PageJSON is the top-level JSON document.
type PageJSON struct {
	Metadata        core.PageMetadata `json:"metadata"`
	Title           string            `json:"title"`
	HeadingAccepted bool              `json:"heading_accepted"`
	Blocks          []BlockJSON       `json:"blocks"`
	FAQs            []FAQJSON         `json:"faqs,omitempty"`
	Stats           document.Stats    `json:"stats"`
}

// BlockJSON is one rendered block.
type BlockJSON struct {
	Kind    string             `json:"kind"`
	Text    string             `json:"text"`
	Ordered bool               `json:"ordered,omitempty"`
	Number  int                `json:"number,omitempty"`
	Runs    []markup.InlineRun `json:"runs"`
}

// FAQJSON is one question/answer pair.
type FAQJSON struct {
	Question     string             `json:"question"`
	Answer       string             `json:"answer"`
	QuestionRuns []markup.InlineRun `json:"question_runs"`
	AnswerRuns   []markup.InlineRun `json:"answer_runs"`
}

// Render converts doc and metadata into indented JSON.
func (r *JSONRenderer) Render(doc *document.Document, meta core.PageMetadata) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	page := PageJSON{
		Metadata:        meta,
		Title:           doc.Title,
		HeadingAccepted: doc.HeadingAccepted,
		Blocks:          make([]BlockJSON, 0, len(doc.Blocks)),
		Stats:           doc.Stats,
	}
	for _, b := range doc.Blocks {
		page.Blocks = append(page.Blocks, BlockJSON{
			Kind:    b.Kind.String(),
			Text:    b.Text(),
			Ordered: b.Ordered,
			Number:  b.Number,
			Runs:    b.Runs,
		})
	}
	for _, f := range doc.FAQs {
		page.FAQs = append(page.FAQs, FAQJSON{
			Question:     markup.Join(f.Question),
			Answer:       markup.Join(f.Answer),
			QuestionRuns: f.Question,
			AnswerRuns:   f.Answer,
		})
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
