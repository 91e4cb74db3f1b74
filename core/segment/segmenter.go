// Package segment splits normalized annotated text into typed blocks.
//
// Policy for blank lines: they are dropped and no spacer blocks are
// emitted. Back-ends are responsible for spacing between blocks.
package segment

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the structural type of a block.
type Kind int

const (
	Paragraph Kind = iota
	Heading1
	Heading2
	Heading3
	Bullet
)

// String returns a stable lowercase name, used in JSON output and logs.
func (k Kind) String() string {
	switch k {
	case Heading1:
		return "h1"
	case Heading2:
		return "h2"
	case Heading3:
		return "h3"
	case Bullet:
		return "bullet"
	default:
		return "paragraph"
	}
}

// Level returns the heading level (1-3), or 0 for non-headings.
func (k Kind) Level() int {
	switch k {
	case Heading1:
		return 1
	case Heading2:
		return 2
	case Heading3:
		return 3
	default:
		return 0
	}
}

// IsHeading reports whether k is a heading kind.
func (k Kind) IsHeading() bool {
	return k.Level() > 0
}

// Block is one structural unit of text. Text still carries change markers.
type Block struct {
	Kind Kind
	Text string
	// Ordered and Number are set for numbered list items.
	Ordered bool
	Number  int
}

// BulletGlyph is the prefix the normalizer gives every bullet line.
const BulletGlyph = "•"

var (
	headingPrefix  = regexp.MustCompile(`^\[H([1-3])\]\s*`)
	numberedPrefix = regexp.MustCompile(`^(\d+)[.)]\s+`)
)

// Segmenter implements the segmentation stage of the pipeline.
type Segmenter struct{}

// New creates a Segmenter.
func New() *Segmenter {
	return &Segmenter{}
}

// Segment splits text into blocks.
func (s *Segmenter) Segment(text string) []Block {
	return Segment(text)
}

// Segment splits text into blocks, one per non-blank line.
// Headings and bullets with no text are dropped.
func Segment(text string) []Block {
	var blocks []Block
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b := classify(line)
		if b.Kind != Paragraph && b.Text == "" {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// classify inspects the leading marker of a single trimmed line.
func classify(line string) Block {
	if m := headingPrefix.FindStringSubmatch(line); m != nil {
		level, _ := strconv.Atoi(m[1])
		return Block{
			Kind: Heading1 + Kind(level-1),
			Text: strings.TrimSpace(line[len(m[0]):]),
		}
	}

	if strings.HasPrefix(line, BulletGlyph) {
		return Block{
			Kind: Bullet,
			Text: strings.TrimSpace(strings.TrimPrefix(line, BulletGlyph)),
		}
	}

	if m := numberedPrefix.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Block{
			Kind:    Bullet,
			Text:    strings.TrimSpace(line[len(m[0]):]),
			Ordered: true,
			Number:  n,
		}
	}

	return Block{Kind: Paragraph, Text: line}
}

// StripPrefix removes a leading heading marker or bullet glyph from a
// single line, returning the bare text. Numbering such as "2024." is part
// of the text and is kept.
func StripPrefix(line string) string {
	line = strings.TrimSpace(line)
	if m := headingPrefix.FindString(line); m != "" {
		return strings.TrimSpace(line[len(m):])
	}
	return strings.TrimSpace(strings.TrimPrefix(line, BulletGlyph))
}
