// Package markup defines the change-marker grammar the optimizer uses to
// annotate rewritten content, and the single tokenizer every later stage
// relies on.
//
// Grammar (inside one line, tag names case-insensitive):
//
//	[[KEYWORD: term]]
//	[[ADJUSTED: old → new]]   (also accepts -> and => as the arrow)
//	[[ADJUSTED: text]]        (no arrow: the whole text is the change)
//	[[NEW]] / [[NEW anything]]
//
// Anything that does not parse is left as literal text.
package markup

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a ChangeMarker.
type Kind int

const (
	KindKeyword Kind = iota + 1
	KindAdjusted
	KindNew
)

// String returns the canonical tag name.
func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "KEYWORD"
	case KindAdjusted:
		return "ADJUSTED"
	case KindNew:
		return "NEW"
	default:
		return "UNKNOWN"
	}
}

// Arrow is the canonical separator between the old and new text of an
// ADJUSTED marker.
const Arrow = "→"

// fallbackArrows are accepted when the canonical arrow is absent.
var fallbackArrows = []string{Arrow, "->", "=>"}

// ChangeMarker is one parsed change marker.
type ChangeMarker struct {
	Kind Kind
	// Term is the inserted keyword (KindKeyword).
	Term string
	// Old and New hold the two halves of an ADJUSTED marker. Without an
	// arrow, Old is empty and New carries the whole captured text.
	Old      string
	New      string
	HasArrow bool
}

// Keyword builds a KEYWORD marker.
func Keyword(term string) ChangeMarker {
	return ChangeMarker{Kind: KindKeyword, Term: strings.TrimSpace(term)}
}

// Adjusted builds an ADJUSTED marker with both halves.
func Adjusted(oldText, newText string) ChangeMarker {
	return ChangeMarker{
		Kind:     KindAdjusted,
		Old:      strings.TrimSpace(oldText),
		New:      strings.TrimSpace(newText),
		HasArrow: true,
	}
}

// New builds a NEW sentinel.
func New() ChangeMarker {
	return ChangeMarker{Kind: KindNew}
}

// Display returns the text a renderer highlights for this marker.
// The "before" half of an ADJUSTED marker is never displayed.
func (m ChangeMarker) Display() string {
	switch m.Kind {
	case KindKeyword:
		return m.Term
	case KindAdjusted:
		return m.New
	default:
		return ""
	}
}

// String returns the canonical spelling of the marker.
func (m ChangeMarker) String() string {
	switch m.Kind {
	case KindKeyword:
		return fmt.Sprintf("[[KEYWORD: %s]]", m.Term)
	case KindAdjusted:
		if !m.HasArrow {
			return fmt.Sprintf("[[ADJUSTED: %s]]", m.New)
		}
		if m.Old == "" {
			return fmt.Sprintf("[[ADJUSTED: %s %s]]", Arrow, m.New)
		}
		return fmt.Sprintf("[[ADJUSTED: %s %s %s]]", m.Old, Arrow, m.New)
	case KindNew:
		return "[[NEW]]"
	default:
		return ""
	}
}

// Token is either literal text (Marker == nil) or a marker together with
// the raw source text it was parsed from.
type Token struct {
	Text   string
	Marker *ChangeMarker
}

// Tokenize splits s into literal and marker tokens, left to right.
// Concatenating every token's Text reproduces s exactly.
func Tokenize(s string) []Token {
	var tokens []Token
	lit := 0
	i := 0
	for i < len(s) {
		j := strings.Index(s[i:], "[[")
		if j < 0 {
			break
		}
		start := i + j
		m, end, ok := parseAt(s, start)
		if !ok {
			i = start + 1
			continue
		}
		if start > lit {
			tokens = append(tokens, Token{Text: s[lit:start]})
		}
		tokens = append(tokens, Token{Text: s[start:end], Marker: &m})
		lit = end
		i = end
	}
	if lit < len(s) {
		tokens = append(tokens, Token{Text: s[lit:]})
	}
	return tokens
}

// parseAt parses a marker whose "[[" opens at start. It returns the
// marker, the index just past its closing "]]", and whether it parsed.
func parseAt(s string, start int) (ChangeMarker, int, bool) {
	bodyStart := start + 2
	closing := strings.Index(s[bodyStart:], "]]")
	if closing < 0 {
		return ChangeMarker{}, 0, false
	}
	inner := s[bodyStart : bodyStart+closing]
	if strings.ContainsAny(inner, "\n") || strings.Contains(inner, "[[") {
		return ChangeMarker{}, 0, false
	}
	m, ok := parseInner(inner)
	if !ok {
		return ChangeMarker{}, 0, false
	}
	return m, bodyStart + closing + 2, true
}

func parseInner(inner string) (ChangeMarker, bool) {
	trimmed := strings.TrimSpace(inner)
	upper := strings.ToUpper(trimmed)
	if upper == "NEW" || strings.HasPrefix(upper, "NEW ") || strings.HasPrefix(upper, "NEW:") {
		return New(), true
	}

	colon := strings.IndexByte(trimmed, ':')
	if colon < 0 {
		return ChangeMarker{}, false
	}
	tag := strings.ToUpper(strings.TrimSpace(trimmed[:colon]))
	content := strings.TrimSpace(trimmed[colon+1:])

	switch tag {
	case "KEYWORD":
		return Keyword(content), true
	case "ADJUSTED":
		return parseAdjusted(content), true
	default:
		return ChangeMarker{}, false
	}
}

func parseAdjusted(content string) ChangeMarker {
	for _, arrow := range fallbackArrows {
		if idx := strings.Index(content, arrow); idx >= 0 {
			return Adjusted(content[:idx], content[idx+len(arrow):])
		}
	}
	return ChangeMarker{Kind: KindAdjusted, New: content}
}

// Strip replaces every marker in s with its displayed text.
func Strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range Tokenize(s) {
		if tok.Marker == nil {
			b.WriteString(tok.Text)
			continue
		}
		b.WriteString(tok.Marker.Display())
	}
	return b.String()
}

// Canonicalize rewrites every KEYWORD and ADJUSTED marker into its
// canonical spelling. Literal text and NEW sentinels are kept verbatim.
func Canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range Tokenize(s) {
		if tok.Marker == nil || tok.Marker.Kind == KindNew {
			b.WriteString(tok.Text)
			continue
		}
		b.WriteString(tok.Marker.String())
	}
	return b.String()
}

// DropNew removes every NEW sentinel and leaves everything else verbatim.
func DropNew(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range Tokenize(s) {
		if tok.Marker != nil && tok.Marker.Kind == KindNew {
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// MapText applies fn to every literal segment of s. Markers are copied
// through untouched.
func MapText(s string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range Tokenize(s) {
		if tok.Marker == nil {
			b.WriteString(fn(tok.Text))
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// Counts tallies markers by kind.
type Counts struct {
	Keywords int `json:"keywords"`
	Adjusted int `json:"adjusted"`
	New      int `json:"new"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Keywords: c.Keywords + o.Keywords,
		Adjusted: c.Adjusted + o.Adjusted,
		New:      c.New + o.New,
	}
}

// Count tallies the markers in s.
func Count(s string) Counts {
	var c Counts
	for _, tok := range Tokenize(s) {
		if tok.Marker == nil {
			continue
		}
		switch tok.Marker.Kind {
		case KindKeyword:
			c.Keywords++
		case KindAdjusted:
			c.Adjusted++
		case KindNew:
			c.New++
		}
	}
	return c
}
