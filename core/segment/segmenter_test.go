package segment

import (
	"testing"

	"github.com/gaurav-prasanna/rankpipe/core/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_AssignsKinds(t *testing.T) {
	text := "[H1] Title\n[H2] Section\n[H3] Sub\nA paragraph.\n• A bullet\n2. Second step\n3) Third step"
	blocks := Segment(text)
	assert.Equal(t, []Block{
		{Kind: Heading1, Text: "Title"},
		{Kind: Heading2, Text: "Section"},
		{Kind: Heading3, Text: "Sub"},
		{Kind: Paragraph, Text: "A paragraph."},
		{Kind: Bullet, Text: "A bullet"},
		{Kind: Bullet, Text: "Second step", Ordered: true, Number: 2},
		{Kind: Bullet, Text: "Third step", Ordered: true, Number: 3},
	}, blocks)
}

func TestSegment_DropsBlankLinesAndEmptyStructures(t *testing.T) {
	blocks := Segment("\n\n[H2]\n•\nText\n\n\nMore text\n")
	assert.Equal(t, []Block{
		{Kind: Paragraph, Text: "Text"},
		{Kind: Paragraph, Text: "More text"},
	}, blocks)
}

func TestSegment_UnknownPrefixIsParagraph(t *testing.T) {
	blocks := Segment("[H4] Not a level\n[QUOTE] x")
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		assert.Equal(t, Paragraph, b.Kind)
	}
}

func TestSegment_KeepsChangeMarkers(t *testing.T) {
	blocks := Segment("• Fast [[KEYWORD: roof repair]] today")
	require.Len(t, blocks, 1)
	assert.Equal(t, "Fast [[KEYWORD: roof repair]] today", blocks[0].Text)
}

func TestSegment_BracketlessHeadingAfterNormalize(t *testing.T) {
	normalized := normalize.Normalize("H2 Why Choose Us")
	assert.Equal(t, "[H2] Why Choose Us", normalized)

	blocks := Segment(normalized)
	require.Len(t, blocks, 1)
	assert.Equal(t, Heading2, blocks[0].Kind)
	assert.Equal(t, "Why Choose Us", blocks[0].Text)
}

func TestKind_Helpers(t *testing.T) {
	assert.Equal(t, "h2", Heading2.String())
	assert.Equal(t, "paragraph", Paragraph.String())
	assert.Equal(t, 3, Heading3.Level())
	assert.True(t, Heading1.IsHeading())
	assert.False(t, Bullet.IsHeading())
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "Title", StripPrefix("[H1] Title"))
	assert.Equal(t, "Item", StripPrefix("• Item"))
	assert.Equal(t, "Plain", StripPrefix("  Plain "))
	assert.Equal(t, "2024. Roofing Trends", StripPrefix("2024. Roofing Trends"))
	assert.Equal(t, "3) Steps", StripPrefix("[H2] 3) Steps"))
}

func TestSegmenter_Segment(t *testing.T) {
	assert.Len(t, New().Segment("a\nb"), 2)
}
