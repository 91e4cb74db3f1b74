// Package cmd — render command.
// Runs the document pipeline offline over saved LLM output, either the raw
// JSON reply or bare annotated text.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/rankpipe/core/generate"
	"github.com/gaurav-prasanna/rankpipe/core/optimize"
	"github.com/gaurav-prasanna/rankpipe/core/output"
	"github.com/gaurav-prasanna/rankpipe/internal/history"
)

var (
	renderFormats   formatFlags
	flagTitle       string
	flagSourceURL   string
	flagRenderOut   string
	flagRenderWords string
)

var renderCmd = &cobra.Command{
	Use:   "render <annotated-file>",
	Short: "Render saved annotated content without calling the LLM",
	Long: `Render reads a file containing an optimizer reply (JSON) or annotated text
using the [H1]/[PARA]/[BULLET] and [[KEYWORD: ...]]/[[ADJUSTED: a → b]] markup,
and renders it with every change highlighted.

Examples:
  rankpipe render reply.json --pdf
  rankpipe render draft.txt --title "Roof Repair in Austin" --html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFormats.register(renderCmd)
	renderCmd.Flags().StringVar(&flagTitle, "title", "", "Top-level heading (overrides the reply's h1)")
	renderCmd.Flags().StringVar(&flagSourceURL, "url", "", "Source page URL recorded in the output metadata")
	renderCmd.Flags().StringVar(&flagRenderWords, "keywords", "", "Comma-separated keywords recorded in the output metadata")
	renderCmd.Flags().StringVar(&flagRenderOut, "output_dir", "", "Output directory (default: current directory)")
}

func runRender(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	start := time.Now()

	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	format, err := renderFormats.format(cfg.Output.Format)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(format)
	if err != nil {
		return err
	}

	content := optimize.ParseReply(string(raw))
	if flagTitle != "" {
		content.H1 = flagTitle
	}

	source := flagSourceURL
	if source == "" {
		abs, err := filepath.Abs(inPath)
		if err != nil {
			abs = inPath
		}
		source = "file://" + filepath.ToSlash(abs)
	}
	keywords := optimize.SplitKeywords(flagRenderWords)
	meta := generate.Metadata(source, nil, content, keywords, time.Now())

	gen := generate.New(nil, nil, nil, renderer, logger)
	res, err := gen.Assemble(content, meta)
	if err != nil {
		return err
	}

	writer, err := output.New(outputDir(flagRenderOut))
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	path, err := writer.WriteNamed(name, res.Data, renderer.Extension())
	if err != nil {
		return err
	}

	if store := openHistory(); store != nil {
		defer store.Close()
		run := &history.Run{
			URL:         source,
			Keywords:    keywords,
			Format:      format,
			OutputPath:  path,
			Blocks:      res.Stats.Blocks,
			Highlighted: res.Stats.Highlighted,
			Markers:     res.Stats.Markers.Keywords + res.Stats.Markers.Adjusted,
			Duration:    time.Since(start),
		}
		if err := store.Record(cmd.Context(), run); err != nil {
			logger.Warn("recording run failed", "err", err)
		}
	}

	logger.Debug("rendered", "blocks", res.Stats.Blocks, "highlighted", res.Stats.Highlighted)
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}
