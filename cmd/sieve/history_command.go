package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sieve/internal/history"
	"sieve/internal/report"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent validation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled (history.enabled = false)")
				return nil
			}
			ledger, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer ledger.Close()

			runs, err := ledger.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func renderHistoryTable(runs []history.Run) string {
	headers := []string{"Run", "Source", "State", "Started", "Duration", "Good", "Bad", "Error", "Pending"}
	aligns := []report.Alignment{
		report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignRight,
		report.AlignRight, report.AlignRight, report.AlignRight, report.AlignRight,
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if d := run.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		rows = append(rows, []string{
			shortID(run.ID),
			filepath.Base(run.Source),
			string(run.State),
			humanize.Time(run.StartedAt),
			duration,
			humanize.Comma(int64(run.Confirmed)),
			humanize.Comma(int64(run.Rejected)),
			humanize.Comma(int64(run.Errored)),
			humanize.Comma(int64(run.Pending)),
		})
	}
	return report.RenderTable(headers, rows, aligns)
}
