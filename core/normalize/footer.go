// Package normalize — footer filter.
// Page body text fed to the optimizer often carries the site footer, which
// the optimizer then echoes back. These helpers remove it.
package normalize

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gaurav-prasanna/rankpipe/core/markup"
)

const (
	// footerWindow is the trailing share of non-blank lines inspected for
	// leaked navigation labels.
	footerWindow = 0.15
	// maxNavLabelLen is the exclusive rune limit for a navigation label.
	maxNavLabelLen = 20
	// maxBoilerplateLen keeps long prose that merely mentions a policy.
	maxBoilerplateLen = 200
)

var boilerplatePattern = regexp.MustCompile(`(?i)(©|\(c\)\s*\d{4}|copyright\s+(?:©\s*)?\d{4}|all rights reserved|privacy policy|terms (?:of|&|and) (?:service|use|conditions)|cookie policy)`)

// FooterFilter implements the footer-stripping stage of the pipeline.
type FooterFilter struct{}

// NewFooterFilter creates a FooterFilter.
func NewFooterFilter() *FooterFilter {
	return &FooterFilter{}
}

// Strip removes footer boilerplate from text.
func (f *FooterFilter) Strip(text string) string {
	return StripFooter(text)
}

// StripFooter removes boilerplate lines anywhere in text, plus short
// capitalised link labels inside the trailing window.
func StripFooter(text string) string {
	lines := strings.Split(text, "\n")

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isBoilerplate(line) {
			continue
		}
		kept = append(kept, line)
	}

	nonBlank := 0
	for _, line := range kept {
		if strings.TrimSpace(line) != "" {
			nonBlank++
		}
	}
	window := int(math.Ceil(float64(nonBlank)*footerWindow - 1e-9))

	// Walk backwards so the window is counted from the end.
	out := make([]string, len(kept))
	n := len(kept)
	seen := 0
	for i := len(kept) - 1; i >= 0; i-- {
		line := kept[i]
		if strings.TrimSpace(line) != "" {
			seen++
			if seen <= window && isNavLabel(line) {
				continue
			}
		}
		n--
		out[n] = line
	}

	result := strings.Join(out[n:], "\n")
	result = multiBlank.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func isBoilerplate(line string) bool {
	if utf8.RuneCountInString(line) > maxBoilerplateLen {
		return false
	}
	return boilerplatePattern.MatchString(line)
}

// isNavLabel reports whether line looks like a footer link label: short,
// every word capitalised, no punctuation. Headings and optimizer changes
// are never labels.
func isNavLabel(line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "[H") {
		return false
	}
	if c := markup.Count(line); c.Keywords+c.Adjusted > 0 {
		return false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "•"))

	if line == "" || utf8.RuneCountInString(line) >= maxNavLabelLen {
		return false
	}
	for _, word := range strings.Fields(line) {
		first, _ := utf8.DecodeRuneInString(word)
		if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
			return false
		}
		for _, r := range word {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}
