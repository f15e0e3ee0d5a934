package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sieve/internal/candidates"
	"sieve/internal/checkpoint"
	"sieve/internal/config"
	"sieve/internal/history"
	"sieve/internal/report"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <source>",
		Short: "Show checkpoint and result counts for a source without probing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			paths := checkpoint.Derive(source)

			opts := candidates.LoadOptions{Column: cfg.Input.Column, Hint: cfg.Input.ColumnHint, RequireStatus: true}
			if d := []rune(cfg.Input.Delimiter); len(d) == 1 {
				opts.Delimiter = d[0]
			}

			found, unreadable := false, false
			for _, entry := range []struct {
				label string
				path  string
			}{
				{label: "Result", path: paths.Result},
				{label: "Checkpoint", path: paths.Backup},
			} {
				store, err := candidates.Load(entry.path, opts)
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if err != nil {
					unreadable = true
					fmt.Fprintln(out, renderStatusLine(entry.label, statusWarn, "unreadable: "+err.Error(), colorize))
					continue
				}
				found = true
				for _, line := range renderSectionHeader(fmt.Sprintf("%s: %s", entry.label, filepath.Base(entry.path)), colorize) {
					fmt.Fprintln(out, line)
				}
				counts := store.Counts()
				fmt.Fprintln(out, report.CountsTable(counts))
				if entry.label == "Checkpoint" && counts.Unknown > 0 {
					fmt.Fprintln(out, renderStatusLine("Resume offset", statusInfo,
						fmt.Sprintf("row %s (sieve run --resume %s)", humanize.Comma(int64(store.ResumeOffset())), args[0]), colorize))
				}
				fmt.Fprintln(out)
			}
			if !found && !unreadable {
				fmt.Fprintln(out, renderStatusLine("Checkpoint", statusWarn, "no checkpoint or result next to "+source, colorize))
			}

			if cfg.History.Enabled {
				printLastRun(cmd.Context(), out, cfg, source, colorize)
			}
			return nil
		},
	}
}

func printLastRun(ctx context.Context, out io.Writer, cfg *config.Config, source string, colorize bool) {
	ledger, err := history.Open(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Last run", statusWarn, "history unavailable: "+err.Error(), colorize))
		return
	}
	defer ledger.Close()
	run, ok, err := ledger.LastForSource(ctx, source)
	switch {
	case err != nil:
		fmt.Fprintln(out, renderStatusLine("Last run", statusWarn, err.Error(), colorize))
	case !ok:
		fmt.Fprintln(out, renderStatusLine("Last run", statusInfo, "none recorded", colorize))
	default:
		kind := statusOK
		switch run.State {
		case history.StateInterrupted, history.StateRunning:
			kind = statusWarn
		case history.StateFailed:
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine("Last run", kind,
			fmt.Sprintf("%s %s (%s)", run.State, humanize.Time(run.StartedAt), shortID(run.ID)), colorize))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
