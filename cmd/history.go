// Package cmd — history command.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/rankpipe/internal/history"
)

var (
	flagHistoryLimit int
	flagHistoryURL   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent optimize and render runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&flagHistoryURL, "url", "", "Only show runs for this URL")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.History.Disabled {
		return errors.New("run history is disabled in the config")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), history.ListParams{Limit: flagHistoryLimit, URL: flagHistoryURL})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tSTATUS\tFORMAT\tHIGHLIGHTS\tURL\tOUTPUT")
	for _, r := range runs {
		out := r.OutputPath
		if r.Status == history.StatusFailed {
			out = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			humanize.Time(r.CreatedAt),
			r.Status,
			r.Format,
			r.Highlighted,
			r.URL,
			strings.ReplaceAll(out, "\n", " "),
		)
	}
	return tw.Flush()
}
