// Package markup — inline run rendering.
// Turns the marker-bearing text of one block into plain and highlighted runs.
package markup

import "strings"

// InlineRun is the atomic unit handed to document back-ends.
type InlineRun struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
}

// Render converts text into runs. Literal text becomes plain runs, KEYWORD
// terms and the new half of ADJUSTED markers become highlighted runs, and
// NEW sentinels disappear without splitting the text around them.
// Empty runs are never emitted.
func Render(text string) []InlineRun {
	var runs []InlineRun
	var plain strings.Builder

	flush := func() {
		if plain.Len() == 0 {
			return
		}
		runs = append(runs, InlineRun{Text: plain.String()})
		plain.Reset()
	}

	for _, tok := range Tokenize(text) {
		if tok.Marker == nil {
			plain.WriteString(tok.Text)
			continue
		}
		display := tok.Marker.Display()
		if display == "" {
			continue
		}
		flush()
		runs = append(runs, InlineRun{Text: display, Highlighted: true})
	}
	flush()
	return runs
}

// Join concatenates run texts, ignoring highlight flags.
func Join(runs []InlineRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Highlighted returns the number of highlighted runs.
func Highlighted(runs []InlineRun) int {
	n := 0
	for _, r := range runs {
		if r.Highlighted {
			n++
		}
	}
	return n
}
