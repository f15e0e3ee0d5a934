package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sieve/internal/candidates"
	"sieve/internal/checkpoint"
	"sieve/internal/config"
	"sieve/internal/engine"
	"sieve/internal/history"
	"sieve/internal/logging"
	"sieve/internal/metrics"
	"sieve/internal/notifications"
	"sieve/internal/oracle"
	"sieve/internal/preflight"
	"sieve/internal/report"
	"sieve/internal/services"
)

// runner wires one validation run from source file to result file.
type runner struct {
	cfg      *config.Config
	source   string
	logger   *slog.Logger
	out      io.Writer
	colorize bool

	// probe overrides the HTTP oracle in tests.
	probe engine.Prober
}

func (r *runner) run(ctx context.Context) error {
	if failed := preflight.Failed(preflight.RunAll(r.cfg, r.source)); len(failed) > 0 {
		for _, line := range preflightLines(failed, r.colorize) {
			fmt.Fprintln(r.out, line)
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "run", fmt.Sprintf("%d check(s) failed", len(failed)), nil)
	}

	prober := r.probe
	if prober == nil {
		client, err := oracle.New(oracle.OptionsFromConfig(r.cfg))
		if err != nil {
			return err
		}
		prober = client
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithSource(ctx, r.source)
	logger := logging.WithContext(ctx, r.logger)
	notifier := notifications.NewService(r.cfg)

	mgr := checkpoint.New(checkpoint.Options{
		Source: r.source,
		Load:   r.loadOptions(),
		Logger: logger,
	})
	if err := mgr.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := mgr.Unlock(); err != nil {
			logger.Warn("release source lock failed", logging.Error(err))
		}
	}()

	rep := report.New(r.out, report.Options{Color: r.colorize, Logger: logger})
	rep.Banner("Preparing identifier list.")
	store, offset, resumed, err := r.prepare(rep, mgr, logger)
	if err != nil {
		r.notifyError(ctx, notifier, logger, "load", err)
		return err
	}

	ledger := r.openHistory(logger)
	if ledger != nil {
		defer ledger.Close()
	}
	pending := len(store.Pending(offset))
	started := time.Now()
	if ledger != nil {
		_, err := ledger.Begin(ctx, history.Run{
			ID:      runID,
			Source:  r.source,
			Resumed: resumed,
			Workers: r.cfg.Engine.Workers,
			Total:   store.Len(),
			Pending: pending,
		})
		if err != nil {
			logging.WarnWithContext(logger, "history record failed", "history_begin_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run is not recorded in history"))
			ledger = nil
		}
	}
	r.publish(ctx, notifier, logger, notifications.EventRunStarted, notifications.Payload{
		"source":  r.source,
		"pending": pending,
		"resumed": resumed,
	})

	recorder := metrics.NewRecorder()
	rep.Banner("Testing the identifiers.")
	eng := engine.New(prober, mgr, engine.Options{
		Workers:    r.cfg.Engine.Workers,
		Autosave:   r.cfg.Engine.Autosave,
		Logger:     logger,
		OnProgress: rep.Progress,
		Metrics:    recorder,
	})
	stats, runErr := eng.Run(ctx, store, offset)
	rep.Finish()

	counts := store.Counts()
	recorder.SetCounts(counts)
	defer r.writeMetrics(recorder, logger)
	summary := report.Summarize(counts)
	elapsed := time.Since(started)

	if runErr != nil {
		state := history.StateFailed
		event := notifications.EventError
		if engine.IsInterrupted(runErr) {
			state = history.StateInterrupted
			event = notifications.EventRunInterrupted
			rep.Info("Interrupted after %d completions. Progress saved to '%s'; rerun with --resume.",
				stats.Completed, mgr.Paths().Backup)
		}
		r.finishHistory(ledger, runID, history.Outcome{State: state, Counts: counts, Err: runErr}, logger)
		r.publish(ctx, notifier, logger, event, notifications.Payload{
			"source":  r.source,
			"summary": summary.String(),
			"context": "run",
			"error":   runErr,
		})
		return runErr
	}

	resultPath, _, err := rep.Finalize(mgr, store)
	if err != nil {
		r.finishHistory(ledger, runID, history.Outcome{State: history.StateFailed, Counts: counts, Err: err}, logger)
		r.notifyError(ctx, notifier, logger, "finalize", err)
		return err
	}
	r.finishHistory(ledger, runID, history.Outcome{State: history.StateCompleted, Counts: counts, ResultPath: resultPath}, logger)
	r.publish(ctx, notifier, logger, notifications.EventRunCompleted, notifications.Payload{
		"source":   r.source,
		"summary":  summary.String(),
		"duration": elapsed,
		"result":   resultPath,
	})
	logger.Info("run complete",
		logging.String("summary", summary.String()),
		logging.String("result", resultPath),
		logging.Int("checkpoints", stats.Checkpoints),
		logging.Duration("elapsed", elapsed))
	return nil
}

func (r *runner) loadOptions() candidates.LoadOptions {
	opts := candidates.LoadOptions{
		Column: r.cfg.Input.Column,
		Hint:   r.cfg.Input.ColumnHint,
	}
	if d := []rune(r.cfg.Input.Delimiter); len(d) == 1 {
		opts.Delimiter = d[0]
	}
	return opts
}

// prepare loads the store from the checkpoint when resuming, otherwise from
// the source, and returns the offset to start probing from.
func (r *runner) prepare(rep *report.Reporter, mgr *checkpoint.Manager, logger *slog.Logger) (*candidates.Store, int, bool, error) {
	var (
		store   *candidates.Store
		offset  int
		resumed bool
	)
	if r.cfg.Engine.Resume {
		if restored, at, ok := mgr.Load(); ok {
			rep.Info("+ Using backup file.")
			rep.Info("  - Searching for last starting point within %d rows.", restored.Len())
			if _, found := restored.FirstUnknown(); found {
				rep.Info("  - Found. Starting on row %d", at)
			}
			store, offset, resumed = restored, at, true
		}
	}
	if store == nil {
		if mgr.Exists() && !r.cfg.Engine.Resume {
			logging.WarnWithContext(logger, "existing checkpoint will be replaced", "checkpoint_overwrite",
				logging.String("path", mgr.Paths().Backup),
				logging.String(logging.FieldErrorHint, "use --resume to continue the previous run"),
				logging.String(logging.FieldImpact, "previous progress is discarded at the first autosave"))
		}
		rep.Info("+ Starting from scratch.")
		loaded, err := candidates.Load(r.source, r.loadOptions())
		if err != nil {
			return nil, 0, false, err
		}
		store = loaded
	}
	if r.cfg.Engine.RetryErrors {
		if reset := store.RetryErrored(); reset > 0 {
			rep.Info("  - Retrying %d errored rows.", reset)
			offset = store.ResumeOffset()
		}
	}
	logger.Info("candidate list ready",
		logging.Int("rows", store.Len()),
		logging.String("column", store.Column()),
		logging.Int("offset", offset),
		logging.Bool("resumed", resumed))
	return store, offset, resumed, nil
}

func (r *runner) openHistory(logger *slog.Logger) *history.Store {
	if !r.cfg.History.Enabled {
		return nil
	}
	ledger, err := history.Open(r.cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.String("path", r.cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run is not recorded in history"))
		return nil
	}
	return ledger
}

func (r *runner) finishHistory(ledger *history.Store, runID string, out history.Outcome, logger *slog.Logger) {
	if ledger == nil {
		return
	}
	// The run context may already be cancelled; the ledger row must still close.
	if err := ledger.Finish(context.Background(), runID, out); err != nil {
		logging.WarnWithContext(logger, "history update failed", "history_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run stays marked as running in history"))
	}
}

func (r *runner) writeMetrics(recorder *metrics.Recorder, logger *slog.Logger) {
	path := strings.TrimSpace(r.cfg.Metrics.Textfile)
	if path == "" {
		return
	}
	if err := recorder.WriteTextfile(path); err != nil {
		logging.WarnWithContext(logger, "metrics export failed", "metrics_write_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "metrics for this run are not exported"))
	}
}

func (r *runner) notifyError(ctx context.Context, notifier notifications.Service, logger *slog.Logger, label string, err error) {
	r.publish(ctx, notifier, logger, notifications.EventError, notifications.Payload{
		"source":  r.source,
		"context": label,
		"error":   err,
	})
}

func (r *runner) publish(ctx context.Context, notifier notifications.Service, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	timeout := time.Duration(r.cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := notifier.Publish(sendCtx, event, payload); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "operator is not notified"))
	}
}
