package render

import (
	"encoding/json"
	"testing"

	"github.com/gaurav-prasanna/rankpipe/core/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRenderer(t *testing.T) {
	doc := buildSample(t, document.FAQ{Question: "Q?", Answer: "[[KEYWORD: A]]."})
	out, err := NewJSONRenderer().Render(doc, sampleMeta)
	require.NoError(t, err)

	var page PageJSON
	require.NoError(t, json.Unmarshal(out, &page))

	assert.Equal(t, sampleMeta.URL, page.Metadata.URL)
	assert.Equal(t, "Roof Repair in Austin", page.Title)
	require.Len(t, page.Blocks, 6)

	assert.Equal(t, "h1", page.Blocks[0].Kind)
	assert.Equal(t, "paragraph", page.Blocks[1].Kind)
	assert.Equal(t, "For 20 years, Austin roofers have fixed leaks fast.", page.Blocks[1].Text)
	require.Len(t, page.Blocks[1].Runs, 3)
	assert.True(t, page.Blocks[1].Runs[1].Highlighted)
	assert.Equal(t, "bullet", page.Blocks[3].Kind)

	require.Len(t, page.FAQs, 1)
	assert.Equal(t, "A.", page.FAQs[0].Answer)
	assert.Equal(t, 2, page.Stats.Markers.Keywords, "the FAQ keyword counts too")
	assert.Equal(t, 1, page.Stats.Markers.Adjusted)
}
