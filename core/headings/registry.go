// Package headings tracks which top-level headings a document has already
// emitted, so a title supplied separately from the body is not printed twice.
//
// A Registry belongs to exactly one document build. There is deliberately
// no package-level instance: callers create one per run and pass it along.
package headings

import (
	"strings"

	"github.com/gaurav-prasanna/rankpipe/core/markup"
	"github.com/gaurav-prasanna/rankpipe/core/segment"
	"golang.org/x/text/unicode/norm"
)

// Registry is the set of accepted heading keys for one document build.
// It is not safe for concurrent use.
type Registry struct {
	seen map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// Accept records text and reports whether it should be rendered. The first
// occurrence of a key wins; later equivalents and empty headings are rejected.
func (r *Registry) Accept(text string) bool {
	key := Key(text)
	if key == "" {
		return false
	}
	if _, dup := r.seen[key]; dup {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}

// Len returns the number of accepted headings.
func (r *Registry) Len() int {
	return len(r.seen)
}

// Key is the comparison form of a heading: markers resolved to their
// displayed text, heading marker removed, NFKC-folded, lowercased and
// whitespace-collapsed.
func Key(text string) string {
	text = markup.Strip(text)
	text = segment.StripPrefix(text)
	text = norm.NFKC.String(text)
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
