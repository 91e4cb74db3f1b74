package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_RepairsMarkerSpacing(t *testing.T) {
	got := Normalize("For 20 years,[[KEYWORD: AIM Insurance]]has protected families.")
	assert.Contains(t, got, "years, [[KEYWORD: AIM Insurance]] has")
}

func TestNormalize_BracketlessHeading(t *testing.T) {
	assert.Equal(t, "[H2] Why Choose Us", Normalize("H2 Why Choose Us"))
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		"",
		"H1 Roof Repair in Austin\nPARA We fix roofs.[[KEYWORD: roof repair]]fast",
		"# Title\n\n\n\n## Sub\n- one\n* two\n+ three",
		"[h2]Services [PARA] First paragraph. [PARA] Second paragraph.",
		"Intro text H2 Our Services and more",
		"a![img](x.png)[[KEYWORD: glued]]b",
		"Text [[NEW]] with [[NEW sentence]] sentinels\r\nand CRLF",
		"\\[\\[KEYWORD: escaped\\]\\] and \\- dash \\\\. dots",
		"**Bold** claim with <b>tags</b><br>and a [link](https://x.io)",
		"https://example.com/orphan\nwww.example.com\nGet a Quote\nReal content.",
		"[[ADJUSTED: teachers -> educators and teachers]](today)",
		"[[KEYWORD: a]][[KEYWORD: b]]",
		"•item\n● dot\n▪ square\n-\n[BULLET] bracketed",
		"unclosed [[KEYWORD: term\nnext line",
		"  lots   of\t\tspace  ",
		"**********bold**********",
		"<<<<<b>b>b>b>b> text",
		"<b><i><b><i>deep</i></b></i></b> ____x____",
		"if x<y and y>z then",
	}
	for _, s := range samples {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestNormalize_PeelsNestedArtifacts(t *testing.T) {
	assert.Equal(t, "bold", Normalize("**********bold**********"))
	assert.Equal(t, "text", Normalize("<<<<<b>b>b>b>b> text"))
	assert.Equal(t, "deep", Normalize("<div><p><span><strong><em>deep</em></strong></span></p></div>"))
}

func TestNormalizeInline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"call to action kept", "Call Now", "Call Now"},
		{"numbering kept", "2024. Roofing Trends", "2024. Roofing Trends"},
		{"joins lines", "Roof\r\nRepair  Austin", "Roof Repair Austin"},
		{"markers", "Best[[KEYWORD: roofers]]in town [[NEW]]", "Best [[KEYWORD: roofers]] in town"},
		{"artifacts", "<b>Roof</b> **Repair**", "Roof Repair"},
		{"url kept", "https://example.com", "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeInline(tt.input))
		})
	}
}

func TestNormalize_FullDocument(t *testing.T) {
	raw := "H1 Roof Repair Austin\r\n" +
		"[PARA] Our crew,[[KEYWORD: roof repair]]and more.\n" +
		"[BULLET] Free [[ADJUSTED: estimate -> inspections]]\n" +
		"![logo](logo.png)\n" +
		"Get a Free Quote!\n\n\n\n" +
		"## Why Us"
	want := "[H1] Roof Repair Austin\n" +
		"Our crew, [[KEYWORD: roof repair]] and more.\n" +
		"• Free [[ADJUSTED: estimate → inspections]]\n\n" +
		"[H2] Why Us"
	assert.Equal(t, want, Normalize(raw))
}

func TestMarkerNormalizer_DelegatesToNormalize(t *testing.T) {
	n := New()
	assert.Equal(t, Normalize("H3 Tips"), n.Normalize("H3 Tips"))
}

func TestPrepareLines(t *testing.T) {
	assert.Equal(t, "a\nb\nc", PrepareLines("  a\r\nb \rc\u200b"))
}

func TestStripArtifacts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"markdown escapes", `Price\: \$5 \- fast\.`, `Price\: \$5 - fast.`},
		{"double escape", `a \\- b`, "a - b"},
		{"br tag", "one<br/>two", "one\ntwo"},
		{"html tags", "<p>Hello <strong>world</strong></p>", "Hello world"},
		{"tag with attributes", `<span class="k">Hi</span><img src="a.png"/>`, "Hi"},
		{"nested tags", "<b><b>x</b></b>", "x"},
		{"comparison prose kept", "if x<y and y>z then", "if x<y and y>z then"},
		{"unknown tag kept", "use <placeholder> here", "use <placeholder> here"},
		{"nested bold", "****x****", "x"},
		{"bold", "**Best** __price__", "Best price"},
		{"link", "See [our work](https://x.io/work).", "See our work."},
		{"image untouched", "![alt](a.png)", "![alt](a.png)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripArtifacts(tt.input))
		})
	}
}

func TestCanonicalizeStructuralMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare line start", "H2 Why Choose Us", "[H2] Why Choose Us"},
		{"bare with colon", "H1: Title", "[H1] Title"},
		{"markdown levels", "# A\n## B\n#### D", "[H1] A\n[H2] B\n[H3] D"},
		{"lowercase bracket", "[ h3 ]Tips", "[H3] Tips"},
		{"mid line marker", "Intro. [H2] Next", "Intro.\n[H2] Next"},
		{"bare mid line capitalised", "Intro H2 Services", "Intro\n[H2] Services"},
		{"prose mention kept", "Use one H1 tag per page", "Use one H1 tag per page"},
		{"inside keyword kept", "[[KEYWORD: best H1 Tips]]", "[[KEYWORD: best H1 Tips]]"},
		{"hashtag kept", "#hashtag", "#hashtag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalizeStructuralMarkers(tt.input))
		})
	}
}

func TestCollapseBlockMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"para bracket", "[PARA] Text", "Text"},
		{"para bare", "PARA Text", "Text"},
		{"paragraph word kept", "PARAGRAPH one", "PARAGRAPH one"},
		{"bullet bracket", "[BULLET] Item", "• Item"},
		{"bullet bare", "BULLET Item", "• Item"},
		{"markdown dash", "- Item", "• Item"},
		{"markdown star", "* Item", "• Item"},
		{"glyph no space", "•Item", "• Item"},
		{"other glyph", "● Item", "• Item"},
		{"emphasis kept", "*note*", "*note*"},
		{"horizontal rule kept", "---", "---"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollapseBlockMarkers(tt.input))
		})
	}
}

func TestStripNewSentinels(t *testing.T) {
	assert.Equal(t, "a  b c", StripNewSentinels("a [[NEW]] b[[new sentence]] c"))
}

func TestCanonicalizeChangeMarkers(t *testing.T) {
	got := CanonicalizeChangeMarkers("[[ Keyword :Plumber]] [[ADJUSTED:cheap=>affordable]]")
	assert.Equal(t, "[[KEYWORD: Plumber]] [[ADJUSTED: cheap → affordable]]", got)
}

func TestRepairMarkerSpacing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"comma before word after", "years,[[KEYWORD: AIM]]has", "years, [[KEYWORD: AIM]] has"},
		{"word before", "best[[KEYWORD: x]] y", "best [[KEYWORD: x]] y"},
		{"paren after", "[[ADJUSTED: a → b]](note)", "[[ADJUSTED: a → b]] (note)"},
		{"closing paren before", "(see)[[KEYWORD: x]]", "(see) [[KEYWORD: x]]"},
		{"adjacent markers", "[[KEYWORD: a]][[KEYWORD: b]]", "[[KEYWORD: a]] [[KEYWORD: b]]"},
		{"period after kept", "x [[KEYWORD: y]].", "x [[KEYWORD: y]]."},
		{"already spaced", "a [[KEYWORD: b]] c", "a [[KEYWORD: b]] c"},
		{"unicode letters", "café[[KEYWORD: x]]é", "café [[KEYWORD: x]] é"},
		{"non-change brackets", "a[[BAD: x]]b", "a[[BAD: x]]b"},
		{"line start", "[[KEYWORD: x]] y", "[[KEYWORD: x]] y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairMarkerSpacing(tt.input))
		})
	}
}

func TestRemoveOrphans(t *testing.T) {
	in := "Keep\nhttps://example.com/page\n![hero](hero.jpg)\nText ![inline](i.png) here\n• Get a Quote\nRequest a free quote.\nGet a quote for your roof today"
	want := "Keep\n\n\nText  here\n\n\nGet a quote for your roof today"
	assert.Equal(t, want, RemoveOrphans(in))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b\n\nc", CollapseWhitespace("  a \t  b  \n\n\n\n  c  "))
}
