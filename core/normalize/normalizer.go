// Package normalize rewrites raw optimizer output into the canonical
// annotated form every later stage assumes:
//   - headings as [H1]/[H2]/[H3] at the start of their own line,
//   - bullets as a leading "• " glyph, paragraphs as plain lines,
//   - KEYWORD/ADJUSTED markers in canonical spelling with one space on
//     each side, and no NEW sentinels,
//   - single spaces, trimmed lines, at most one blank line in a row.
//
// Normalization is a fixed, ordered list of named stages. Every stage is
// exported so it can be exercised on its own. None of them can fail:
// anything unrecognised is left as literal text.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gaurav-prasanna/rankpipe/core/markup"
)

// Stage is one named normalization step.
type Stage struct {
	Name string
	Fn   func(string) string
}

// Stages is the normalization order. Later stages assume earlier ones ran.
var Stages = []Stage{
	{"prepare-lines", PrepareLines},
	{"strip-artifacts", StripArtifacts},
	{"structural-markers", CanonicalizeStructuralMarkers},
	{"block-markers", CollapseBlockMarkers},
	{"new-sentinels", StripNewSentinels},
	{"change-markers", CanonicalizeChangeMarkers},
	{"marker-spacing", RepairMarkerSpacing},
	{"orphans", RemoveOrphans},
	{"whitespace", CollapseWhitespace},
}

// InlineStages normalize a single-line field such as a title or an FAQ
// entry. Block structure and orphan-line removal do not apply there.
var InlineStages = []Stage{
	{"prepare-lines", PrepareLines},
	{"strip-artifacts", StripArtifacts},
	{"new-sentinels", StripNewSentinels},
	{"change-markers", CanonicalizeChangeMarkers},
	{"marker-spacing", RepairMarkerSpacing},
	{"whitespace", CollapseWhitespace},
}

// maxPasses guards the fixed-point loop. Every stage reaches its own fixed
// point, so the list settles after one or two passes in practice.
const maxPasses = 32

// MarkerNormalizer implements the Normalize stage of the pipeline.
type MarkerNormalizer struct{}

// New creates a MarkerNormalizer.
func New() *MarkerNormalizer {
	return &MarkerNormalizer{}
}

// Normalize runs all stages over raw.
func (n *MarkerNormalizer) Normalize(raw string) string {
	return Normalize(raw)
}

// Normalize runs all stages over raw until the output stops changing, so
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	return fixedPoint(raw, Stages)
}

// NormalizeInline normalizes a single-line field and joins it onto one
// line. Text that would be a call-to-action line in a body is kept.
func NormalizeInline(s string) string {
	return strings.Join(strings.Fields(fixedPoint(s, InlineStages)), " ")
}

func fixedPoint(s string, stages []Stage) string {
	for pass := 0; pass < maxPasses; pass++ {
		next := runStages(s, stages)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func runStages(s string, stages []Stage) string {
	for _, st := range stages {
		s = st.Fn(s)
	}
	return s
}

// replaceAll applies re until s stops changing, so nested matches such as
// "****x****" or "<b><b>x</b></b>" are peeled completely.
func replaceAll(re *regexp.Regexp, s, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}

// htmlTagNames are the elements the optimizer leaks into its output.
// Anything else between angle brackets is prose, such as "x<y and y>z".
const htmlTagNames = `a|abbr|article|b|blockquote|br|code|del|div|em|font|footer|h[1-6]|header|hr|i|img|ins|li|mark|nav|ol|p|pre|s|section|small|span|strike|strong|sub|sup|table|tbody|td|th|thead|tr|u|ul`

var (
	crlfOrCR   = regexp.MustCompile(`\r\n?`)
	zeroWidth  = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "")
	multiBlank = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t\x{00a0}]+`)

	// Markdown escapes: any run of backslashes before punctuation.
	mdEscape   = regexp.MustCompile("\\\\+([`*_{}\\[\\]()#+\\-.!|>~])")
	brTag      = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTag    = regexp.MustCompile(`(?i)</?(?:` + htmlTagNames + `)(?:[ \t/][^<>\n]*)?>`)
	boldStars  = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	boldUnders = regexp.MustCompile(`__([^_\n]+)__`)
	mdLink     = regexp.MustCompile(`(?m)(^|[^!\[])\[([^\[\]\n]+)\]\(([^()\s]+)\)`)

	bracketMarker   = regexp.MustCompile(`(?i)\[[ \t]*(h[1-3]|para|bullet)[ \t]*\]`)
	mdHeading       = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+`)
	bareLineStart   = regexp.MustCompile(`(?m)^H([1-3])(?:[ \t]*:)?[ \t]+`)
	bareMidLine     = regexp.MustCompile(`([ \t])H([1-3])[ \t]+([A-Z0-9])`)
	midLineMarker   = regexp.MustCompile(`([^\n])[ \t]*(\[(?:H[1-3]|PARA|BULLET)\])`)
	markerThenSpace = regexp.MustCompile(`(?m)^(\[(?:H[1-3]|PARA|BULLET)\])[ \t]*`)

	paraMarker   = regexp.MustCompile(`(?m)^(?:\[PARA\]|PARA(?:[ \t]|$))[ \t]*`)
	bulletMarker = regexp.MustCompile(`(?m)^(?:\[BULLET\]|BULLET(?:[ \t]|$)|[-*+](?:[ \t]|$)|[•●▪◦])[ \t]*`)

	imageSyntax = regexp.MustCompile(`!\[[^\]\n]*\]\([^)\n]*\)`)
	urlLine     = regexp.MustCompile(`(?m)^[ \t]*(?:<?https?://\S+?>?|www\.\S+)[ \t]*$`)
	ctaLine     = regexp.MustCompile(`(?im)^[ \t]*(?:•[ \t]*|\[H[1-3]\][ \t]*)?(?:get (?:a|your) (?:free )?quote|request a (?:free )?quote|call (?:us )?now|contact us today)[ \t]*[.!:]*[ \t]*$`)
)

// PrepareLines unifies line endings, removes zero-width characters and
// trims every line.
func PrepareLines(s string) string {
	s = crlfOrCR.ReplaceAllString(s, "\n")
	s = zeroWidth.Replace(s)
	return trimLines(s)
}

// StripArtifacts removes decoration the optimizer tends to leak: Markdown
// escapes, HTML tags, bold emphasis and inline link syntax.
func StripArtifacts(s string) string {
	s = mdEscape.ReplaceAllString(s, "$1")
	s = brTag.ReplaceAllString(s, "\n")
	s = replaceAll(htmlTag, s, "")
	s = replaceAll(boldStars, s, "$1")
	s = replaceAll(boldUnders, s, "$1")
	s = mdLink.ReplaceAllString(s, "$1$2")
	return s
}

// CanonicalizeStructuralMarkers rewrites Markdown headings and bracket-less
// or oddly cased markers into [H1]/[H2]/[H3]/[PARA]/[BULLET], and moves
// every structural marker to the start of its own line.
func CanonicalizeStructuralMarkers(s string) string {
	s = bracketMarker.ReplaceAllStringFunc(s, func(m string) string {
		inner := strings.Trim(m, "[] \t")
		return "[" + strings.ToUpper(inner) + "]"
	})
	s = mdHeading.ReplaceAllStringFunc(s, func(m string) string {
		level := strings.Count(m, "#")
		if level > 3 {
			level = 3
		}
		return "[H" + strconv.Itoa(level) + "] "
	})
	s = bareLineStart.ReplaceAllString(s, "[H$1] ")
	s = markup.MapText(s, func(text string) string {
		return bareMidLine.ReplaceAllString(text, "$1[H$2] $3")
	})
	s = midLineMarker.ReplaceAllString(s, "$1\n$2")
	s = markerThenSpace.ReplaceAllString(s, "$1 ")
	return s
}

// CollapseBlockMarkers drops paragraph markers and turns every bullet
// spelling into the "• " glyph prefix.
func CollapseBlockMarkers(s string) string {
	s = paraMarker.ReplaceAllString(s, "")
	s = bulletMarker.ReplaceAllString(s, "• ")
	return s
}

// StripNewSentinels removes [[NEW]] and [[NEW …]] markers.
func StripNewSentinels(s string) string {
	return markup.DropNew(s)
}

// CanonicalizeChangeMarkers rewrites KEYWORD and ADJUSTED markers into
// their canonical spelling.
func CanonicalizeChangeMarkers(s string) string {
	return markup.Canonicalize(s)
}

// RepairMarkerSpacing inserts one space between a KEYWORD/ADJUSTED marker
// and text glued to either side of it.
func RepairMarkerSpacing(s string) string {
	tokens := markup.Tokenize(s)
	var b strings.Builder
	b.Grow(len(s) + 8)

	for i, tok := range tokens {
		if !isChange(tok) {
			b.WriteString(tok.Text)
			continue
		}
		if i > 0 && needsSpaceBefore(tokens[i-1]) {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
		if i+1 < len(tokens) && tokens[i+1].Marker == nil {
			r, _ := utf8.DecodeRuneInString(tokens[i+1].Text)
			if isWordRune(r) || r == '(' {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func isChange(tok markup.Token) bool {
	return tok.Marker != nil && tok.Marker.Kind != markup.KindNew
}

func needsSpaceBefore(prev markup.Token) bool {
	if prev.Marker != nil {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(prev.Text)
	if r == utf8.RuneError {
		return false
	}
	return isWordRune(r) || strings.ContainsRune(",.:;)]", r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// RemoveOrphans drops image syntax, lines holding nothing but a URL, and
// call-to-action boilerplate lines.
func RemoveOrphans(s string) string {
	s = imageSyntax.ReplaceAllString(s, "")
	s = urlLine.ReplaceAllString(s, "")
	s = ctaLine.ReplaceAllString(s, "")
	return s
}

// CollapseWhitespace collapses space runs, trims lines, and keeps at most
// one blank line between content lines.
func CollapseWhitespace(s string) string {
	s = spaceRuns.ReplaceAllString(s, " ")
	s = trimLines(s)
	s = multiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
