// Package optimize — prompt construction.
package optimize

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/rankpipe/core"
)

// SystemPrompt teaches the model the annotation markup.
const SystemPrompt = `You are an SEO copy editor. Rewrite the page content so it naturally targets the given keywords.

Reply with one JSON object with these fields:
  "h1": the page's main heading, plain text
  "meta_title": at most 60 characters
  "meta_description": at most 155 characters
  "content": the full rewritten body using the markup below
  "faqs": a list of {"question", "answer"} objects (3 to 5 entries)

Markup for "content", one block per line:
  [H1] heading, [H2] heading, [H3] heading
  [PARA] paragraph text
  [BULLET] list item

Mark every change inline:
  [[KEYWORD: inserted keyword]]
  [[ADJUSTED: original wording → new wording]]

Keep the original meaning. Do not include navigation, footer text, copyright notices or calls to action.`

// BuildPrompt renders the user prompt for one page.
func BuildPrompt(page *core.CrawledData, body string, keywords []string, truncated bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Target keywords: %s\n\n", strings.Join(keywords, ", "))
	fmt.Fprintf(&b, "URL: %s\n", page.URL)
	if page.Title != "" {
		fmt.Fprintf(&b, "Current title: %s\n", page.Title)
	}
	if page.MetaDescription != "" {
		fmt.Fprintf(&b, "Current meta description: %s\n", page.MetaDescription)
	}
	writeList(&b, "Current H1", page.H1s)
	writeList(&b, "Current H2", page.H2s)
	writeList(&b, "Current H3", page.H3s)

	b.WriteString("\nPage content:\n")
	b.WriteString(body)
	if truncated {
		b.WriteString("\n[content truncated]")
	}
	b.WriteString("\n")
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(items, " | "))
}
