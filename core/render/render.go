// Package render turns a built Document into an output file format.
// Each back-end consumes blocks and inline runs only; none of them
// re-parse change markers.
package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/document"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrNilDocument   = errors.New("nil document")
	ErrInvalidColor  = errors.New("invalid colour")
)

// Renderer converts a Document and its metadata into file bytes.
type Renderer interface {
	Render(doc *document.Document, meta core.PageMetadata) ([]byte, error)
	Extension() string
}

// Formats lists the names accepted by Select.
var Formats = []string{"pdf", "markdown", "html", "json"}

// Options configures the renderer returned by Select.
type Options struct {
	// HighlightColor is a hex RGB colour ("#90EE90") used behind
	// highlighted words in PDF output. Empty means DefaultHighlight.
	HighlightColor string
}

// Select returns the renderer for format.
func Select(format string, opts Options) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "pdf":
		r := NewPDFRenderer()
		if opts.HighlightColor != "" {
			c, err := ParseHexColor(opts.HighlightColor)
			if err != nil {
				return nil, err
			}
			r.Highlight = c
		}
		return r, nil
	case "markdown", "md":
		return NewMarkdownRenderer(), nil
	case "html":
		return NewHTMLRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

// Color is an RGB triple.
type Color struct {
	R, G, B int
}

// DefaultHighlight is the light green drawn behind changed words.
var DefaultHighlight = Color{R: 144, G: 238, B: 144}

// ParseHexColor parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}
