// Package cmd implements the CLI commands for rankpipe using Cobra.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/gaurav-prasanna/rankpipe/core/render"
	"github.com/gaurav-prasanna/rankpipe/internal/config"
	"github.com/gaurav-prasanna/rankpipe/internal/history"
)

// Persistent flags and the state they produce.
var (
	flagConfig  string
	flagVerbose bool

	logger *slog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rankpipe",
	Short: "rankpipe — rewrite web pages around target keywords and highlight every change",
	Long: `rankpipe fetches a web page, asks an LLM to rewrite it around your target
keywords, and renders the result with every inserted keyword and adjusted
phrase highlighted.

Usage:
  rankpipe optimize <url> --keywords "roof repair,austin roofers" [flags]
  rankpipe render <annotated.txt> [flags]
  rankpipe history`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...))
		}))

		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// formatFlags are the mutually exclusive output format switches shared by
// optimize and render.
type formatFlags struct {
	pdf, markdown, html, json bool
}

func (f *formatFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.pdf, "pdf", false, "Output PDF")
	cmd.Flags().BoolVar(&f.markdown, "markdown", false, "Output Markdown")
	cmd.Flags().BoolVar(&f.html, "html", false, "Output HTML")
	cmd.Flags().BoolVar(&f.json, "json", false, "Output structured JSON")
}

// format returns the chosen format, falling back to the configured default.
func (f *formatFlags) format(fallback string) (string, error) {
	var chosen []string
	for name, set := range map[string]bool{"pdf": f.pdf, "markdown": f.markdown, "html": f.html, "json": f.json} {
		if set {
			chosen = append(chosen, name)
		}
	}
	switch len(chosen) {
	case 0:
		return fallback, nil
	case 1:
		return chosen[0], nil
	default:
		return "", fmt.Errorf("only one output format allowed per run (got %d)", len(chosen))
	}
}

func newRenderer(format string) (render.Renderer, error) {
	return render.Select(format, render.Options{HighlightColor: cfg.Render.HighlightColor})
}

// openHistory opens the run history. Failures are logged and yield nil so
// a broken history file never blocks a run.
func openHistory() *history.Store {
	if cfg.History.Disabled || cfg.History.Path == "" {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("run history unavailable", "path", cfg.History.Path, "err", err)
		return nil
	}
	return store
}

func outputDir(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Output.Dir
}
