// Package cmd — optimize command.
// The main command: fetch → extract → optimize → build → render → write,
// for one URL or, with --all, for every page discovered on the site.
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/extract"
	"github.com/gaurav-prasanna/rankpipe/core/fetch"
	"github.com/gaurav-prasanna/rankpipe/core/generate"
	"github.com/gaurav-prasanna/rankpipe/core/optimize"
	"github.com/gaurav-prasanna/rankpipe/core/output"
	"github.com/gaurav-prasanna/rankpipe/crawl"
	"github.com/gaurav-prasanna/rankpipe/internal/history"
)

var (
	optFormats      formatFlags
	flagAll         bool
	flagBrowser     bool
	flagKeywords    string
	flagKeywordFile string
	flagModel       string
	flagOutputDir   string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <url>",
	Short: "Rewrite a page around target keywords and render the highlighted result",
	Long: `Optimize fetches a webpage, extracts its content, asks the configured LLM to
rewrite it around the target keywords, and renders the annotated rewrite with
every change highlighted.

Examples:
  rankpipe optimize https://example.com --keywords "roof repair,austin roofers"
  rankpipe optimize https://example.com --keywords_file kw.csv --html --output_dir ./out
  rankpipe optimize https://example.com --all --json --keywords "roof repair"
  rankpipe optimize https://spa.example.com --browser --keywords "widgets"`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optFormats.register(optimizeCmd)
	optimizeCmd.Flags().BoolVar(&flagAll, "all", false, "Optimize all discovered sub-pages")
	optimizeCmd.Flags().BoolVar(&flagBrowser, "browser", false, "Render pages in headless Chrome before extracting")
	optimizeCmd.Flags().StringVar(&flagKeywords, "keywords", "", "Comma-separated target keywords")
	optimizeCmd.Flags().StringVar(&flagKeywordFile, "keywords_file", "", "File with one keyword per line or a CSV keyword column")
	optimizeCmd.Flags().StringVar(&flagModel, "model", "", "LLM model (overrides config)")
	optimizeCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}

	keywords, err := loadKeywords()
	if err != nil {
		return err
	}

	format, err := optFormats.format(cfg.Output.Format)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(format)
	if err != nil {
		return err
	}

	fetcher, closeFetcher := newFetcher()
	defer closeFetcher()

	timeout, err := cfg.LLMTimeout()
	if err != nil {
		return err
	}
	model := cfg.LLM.Model
	if flagModel != "" {
		model = flagModel
	}
	optimizer := optimize.New(optimize.Config{
		Endpoint:    cfg.LLM.Endpoint,
		Model:       model,
		Timeout:     timeout,
		BodyWords:   cfg.LLM.BodyWords,
		Temperature: cfg.LLM.Temperature,
	})

	extractor := extract.New()
	gen := generate.New(fetcher, extractor, optimizer, renderer, logger)

	writer, err := output.New(outputDir(flagOutputDir))
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	store := openHistory()
	if store != nil {
		defer store.Close()
		gen.NewID = store.NewID
	}

	job := &pageJob{gen: gen, writer: writer, store: store, keywords: keywords, format: format}
	ctx := cmd.Context()

	if !flagAll {
		path, err := job.run(ctx, rawURL, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
		return nil
	}

	fmt.Fprintf(os.Stdout, "Discovering pages from %s...\n", rawURL)
	urls, err := crawl.NewDiscoverer(fetcher, extractor, cfg.Crawl.MaxPages, logger).Discover(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Found %d pages to process\n", len(urls))

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Crawl.Concurrency)
	for i, pageURL := range urls {
		g.Go(func() error {
			path, err := job.run(gctx, pageURL, true)
			if err != nil {
				failed.Add(1)
				fmt.Fprintf(os.Stderr, "[%d/%d] ✗ %s: %v\n", i+1, len(urls), pageURL, err)
				return nil
			}
			fmt.Fprintf(os.Stdout, "[%d/%d] ✓ Written: %s\n", i+1, len(urls), path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if n := int(failed.Load()); n > 0 {
		fmt.Fprintf(os.Stderr, "\n%d/%d pages failed\n", n, len(urls))
		if n == len(urls) {
			return fmt.Errorf("all %d pages failed", n)
		}
	}
	return nil
}

// pageJob runs one URL and records the outcome.
type pageJob struct {
	gen      *generate.Generator
	writer   *output.Writer
	store    *history.Store
	keywords []string
	format   string
}

func (j *pageJob) run(ctx context.Context, pageURL string, mirror bool) (string, error) {
	start := time.Now()
	run := &history.Run{URL: pageURL, Keywords: j.keywords, Format: j.format}

	path, err := j.generate(ctx, pageURL, mirror, run)
	run.Duration = time.Since(start)
	if err != nil {
		run.Status = history.StatusFailed
		run.Error = err.Error()
	}
	if j.store != nil {
		if rerr := j.store.Record(context.WithoutCancel(ctx), run); rerr != nil {
			logger.Warn("recording run failed", "url", pageURL, "err", rerr)
		}
	}
	return path, err
}

func (j *pageJob) generate(ctx context.Context, pageURL string, mirror bool, run *history.Run) (string, error) {
	res, err := j.gen.Generate(ctx, pageURL, j.keywords)
	if err != nil {
		return "", err
	}
	run.ID = res.Meta.RunID
	run.Blocks = res.Stats.Blocks
	run.Highlighted = res.Stats.Highlighted
	run.Markers = res.Stats.Markers.Keywords + res.Stats.Markers.Adjusted

	path, err := j.writer.Write(pageURL, res.Data, j.gen.Renderer.Extension(), mirror)
	if err != nil {
		return "", err
	}
	run.OutputPath = path
	return path, nil
}

// loadKeywords merges --keywords and --keywords_file.
func loadKeywords() ([]string, error) {
	keywords := optimize.SplitKeywords(flagKeywords)
	if flagKeywordFile != "" {
		f, err := os.Open(flagKeywordFile)
		if err != nil {
			return nil, fmt.Errorf("opening keywords file: %w", err)
		}
		defer f.Close()
		fromFile, err := optimize.ParseKeywords(f)
		if err != nil {
			return nil, fmt.Errorf("reading keywords file: %w", err)
		}
		keywords = optimize.Merge(keywords, fromFile)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: use --keywords or --keywords_file", optimize.ErrNoKeywords)
	}
	return keywords, nil
}

// newFetcher picks the HTTP or headless-browser fetcher.
func newFetcher() (core.Fetcher, func()) {
	if flagBrowser || cfg.Crawl.Browser {
		b := fetch.NewBrowser(0)
		return b, func() {
			if err := b.Close(); err != nil {
				logger.Debug("closing browser", "err", err)
			}
		}
	}
	return fetch.New(fetch.WithUserAgent(cfg.Crawl.UserAgent)), func() {}
}
