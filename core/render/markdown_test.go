package render

import (
	"strings"
	"testing"

	"github.com/gaurav-prasanna/rankpipe/core/document"
	"github.com/gaurav-prasanna/rankpipe/core/markup"
	"github.com/gaurav-prasanna/rankpipe/core/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownRenderer(t *testing.T) {
	out, err := NewMarkdownRenderer().Render(buildSample(t), sampleMeta)
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "title: Roof Repair in Austin\n")
	assert.Contains(t, md, "# Roof Repair in Austin\n\nFor 20 years, ==Austin roofers== have fixed leaks fast.")
	assert.Contains(t, md, "## Why Choose Us\n\n- Licensed ==roofing crews==\n- Free inspections\n\nCall us today.")
	assert.NotContains(t, md, "[[")
}

func TestMarkdownRenderer_FAQs(t *testing.T) {
	doc := buildSample(t, document.FAQ{Question: "Do you offer [[KEYWORD: free estimates]]?", Answer: "Yes."})
	out, err := NewMarkdownRenderer().Render(doc, sampleMeta)
	require.NoError(t, err)

	assert.Contains(t, string(out), "## Frequently Asked Questions\n\n### Do you offer ==free estimates==?\n\nYes.")
}

func TestMarkdownBody_OrderedList(t *testing.T) {
	doc := &document.Document{Blocks: []document.RenderedBlock{
		{Kind: segment.Bullet, Ordered: true, Number: 1, Runs: []markup.InlineRun{{Text: "First"}}},
		{Kind: segment.Bullet, Ordered: true, Number: 2, Runs: []markup.InlineRun{{Text: "Second"}}},
	}}
	assert.Equal(t, "1. First\n2. Second", markdownBody(doc, strings.ToUpper, nil))
}
