package generate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/document"
	"github.com/gaurav-prasanna/rankpipe/core/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	result *core.FetchResult
	err    error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	return f.result, f.err
}

type fakeExtractor struct {
	gotURL string
	err    error
}

func (e *fakeExtractor) Extract(html, pageURL string) (*core.CrawledData, error) {
	e.gotURL = pageURL
	if e.err != nil {
		return nil, e.err
	}
	return &core.CrawledData{URL: pageURL, Title: "Old Title", Language: "en-GB", BodyContent: html}, nil
}

type fakeOptimizer struct {
	content  *core.OptimizedContent
	err      error
	keywords []string
}

func (o *fakeOptimizer) Optimize(ctx context.Context, page *core.CrawledData, keywords []string) (*core.OptimizedContent, error) {
	o.keywords = keywords
	return o.content, o.err
}

func newTestGenerator(opt *fakeOptimizer) (*Generator, *fakeExtractor) {
	ext := &fakeExtractor{}
	g := New(
		&fakeFetcher{result: &core.FetchResult{URL: "https://roof.example.com/final", StatusCode: 200, HTML: "<p>hi</p>"}},
		ext,
		opt,
		render.NewJSONRenderer(),
		nil,
	)
	g.Now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	g.NewID = func() string { return "RUN1" }
	return g, ext
}

func TestGenerate(t *testing.T) {
	opt := &fakeOptimizer{content: &core.OptimizedContent{
		H1:              "Roof Repair in Austin",
		MetaTitle:       "Austin Roof Repair",
		MetaDescription: "Fast repairs.",
		Content:         "[H1] Roof Repair in Austin\n[PARA] Hire [[KEYWORD: Austin roofers]] today.",
		FAQs:            []core.FAQ{{Question: "Q?", Answer: "A."}},
	}}
	g, ext := newTestGenerator(opt)

	res, err := g.Generate(context.Background(), "https://roof.example.com/start", []string{"Austin roofers"})
	require.NoError(t, err)

	assert.Equal(t, "https://roof.example.com/final", ext.gotURL, "the final URL after redirects is used")
	assert.Equal(t, []string{"Austin roofers"}, opt.keywords)

	assert.Equal(t, "RUN1", res.Meta.RunID)
	assert.Equal(t, "roof.example.com", res.Meta.Domain)
	assert.Equal(t, "/final", res.Meta.Path)
	assert.Equal(t, "Old Title", res.Meta.Title)
	assert.Equal(t, "Austin Roof Repair", res.Meta.MetaTitle)
	assert.Equal(t, "en-GB", res.Meta.Language)
	assert.Equal(t, "2026-03-04T05:06:07Z", res.Meta.GeneratedAt)
	assert.Equal(t, 1, res.Stats.Dropped, "the body H1 repeats the title field")
	assert.Equal(t, 1, res.Stats.Markers.Keywords)

	var page render.PageJSON
	require.NoError(t, json.Unmarshal(res.Data, &page))
	assert.Equal(t, "Roof Repair in Austin", page.Title)
	assert.True(t, page.HeadingAccepted)
	require.Len(t, page.FAQs, 1)
}

func TestGenerate_StageErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("fetch", func(t *testing.T) {
		g, _ := newTestGenerator(&fakeOptimizer{})
		g.Fetcher = &fakeFetcher{err: boom}
		_, err := g.Generate(context.Background(), "https://x.example", []string{"k"})
		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "fetch: ")
	})

	t.Run("extract", func(t *testing.T) {
		g, ext := newTestGenerator(&fakeOptimizer{})
		ext.err = boom
		_, err := g.Generate(context.Background(), "https://x.example", []string{"k"})
		assert.ErrorContains(t, err, "extract: boom")
	})

	t.Run("optimize", func(t *testing.T) {
		g, _ := newTestGenerator(&fakeOptimizer{err: boom})
		_, err := g.Generate(context.Background(), "https://x.example", []string{"k"})
		assert.ErrorContains(t, err, "optimize: boom")
	})

	t.Run("build", func(t *testing.T) {
		g, _ := newTestGenerator(&fakeOptimizer{content: &core.OptimizedContent{Content: "  "}})
		_, err := g.Generate(context.Background(), "https://x.example", []string{"k"})
		assert.ErrorIs(t, err, document.ErrEmptyContent)
		assert.ErrorContains(t, err, "build: ")
	})
}

func TestAssemble_Offline(t *testing.T) {
	g := New(nil, nil, nil, render.NewMarkdownRenderer(), nil)
	meta := Metadata("https://x.example/a", nil, nil, nil, time.Unix(0, 0))

	res, err := g.Assemble(&core.OptimizedContent{Content: "[H1] Saved Output\n[PARA] Body with [[KEYWORD: term]]."}, meta)
	require.NoError(t, err)

	assert.Equal(t, "Saved Output", res.Meta.Title)
	assert.Contains(t, string(res.Data), "Body with ==term==.")
}

func TestMetadata_Defaults(t *testing.T) {
	meta := Metadata("https://x.example/p", nil, nil, []string{"a"}, time.Unix(0, 0))
	assert.Equal(t, "en", meta.Language)
	assert.Equal(t, "x.example", meta.Domain)
	assert.Equal(t, "1970-01-01T00:00:00Z", meta.GeneratedAt)
	assert.Empty(t, meta.RunID)
}
