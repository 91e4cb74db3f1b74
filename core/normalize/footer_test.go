package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFooter_RemovesCopyrightAnywhere(t *testing.T) {
	text := "[H1] Title\n© 2024 Acme Corp. All Rights Reserved.\nBody paragraph one.\nBody paragraph two."
	got := StripFooter(Normalize(text))
	assert.NotContains(t, got, "© 2024 Acme Corp. All Rights Reserved.")
	assert.Contains(t, got, "Body paragraph one.")
}

func TestStripFooter_BoilerplatePatterns(t *testing.T) {
	lines := []string{
		"Copyright 2023 Example Inc",
		"(c) 2022 Widgets",
		"Privacy Policy | Terms of Service",
		"Read our Cookie Policy",
		"Terms and Conditions",
	}
	for _, line := range lines {
		got := StripFooter("Intro sentence here.\n" + line + "\nClosing sentence here.")
		assert.NotContains(t, got, line)
	}
}

func TestStripFooter_KeepsLongProseMentioningPolicy(t *testing.T) {
	long := "We take your data seriously and our privacy policy " + strings.Repeat("explains every detail of how we store it ", 5)
	got := StripFooter(long)
	assert.Equal(t, strings.TrimSpace(long), got)
}

func TestStripFooter_RemovesNavLabelsInTrailingWindow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 17; i++ {
		b.WriteString("A full sentence of real body content goes here.\n")
	}
	b.WriteString("About Us\n• Contact\nHome")
	got := StripFooter(b.String())

	assert.NotContains(t, got, "About Us")
	assert.NotContains(t, got, "Contact")
	assert.NotContains(t, got, "Home")
	assert.Equal(t, 17, strings.Count(got, "real body content"))
}

func TestStripFooter_KeepsShortLinesOutsideWindow(t *testing.T) {
	var b strings.Builder
	b.WriteString("Our Services\n")
	for i := 0; i < 19; i++ {
		b.WriteString("A full sentence of real body content goes here.\n")
	}
	got := StripFooter(b.String())
	assert.True(t, strings.HasPrefix(got, "Our Services\n"))
}

func TestStripFooter_KeepsHeadingsAndChangesInWindow(t *testing.T) {
	text := "Sentence one is long enough.\nSentence two is long enough.\n[H2] Contact Us\n[[KEYWORD: Roof Pros]]"
	got := StripFooter(text)
	assert.Contains(t, got, "[H2] Contact Us")
	assert.Contains(t, got, "[[KEYWORD: Roof Pros]]")
}

func TestStripFooter_KeepsPunctuatedShortLines(t *testing.T) {
	text := "Sentence one is long enough.\nCall today!"
	assert.Equal(t, text, StripFooter(text))
}

func TestIsNavLabel(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Home", true},
		{"About Us", true},
		{"• Blog", true},
		{"2024 Awards", true},
		{"about us", false},
		{"Contact us", false},
		{"FAQ?", false},
		{"[H3] Services", false},
		{"Twenty Characters Ok", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isNavLabel(tt.line), "line %q", tt.line)
	}
}

func TestFooterFilter_Strip(t *testing.T) {
	f := NewFooterFilter()
	assert.Equal(t, "Body text stays here.", f.Strip("Body text stays here.\nAll rights reserved"))
}
