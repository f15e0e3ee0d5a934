package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"sieve/internal/candidates"
	"sieve/internal/logging"
)

const (
	// DefaultWorkers is the probe concurrency when Options.Workers is unset.
	DefaultWorkers = 50
	// DefaultAutosave is the checkpoint interval in completions.
	DefaultAutosave = 5000
)

// Prober classifies one identifier. A nil error means the returned status is
// terminal; a non-nil error is recorded as ERROR.
type Prober interface {
	Probe(ctx context.Context, identifier string) (candidates.Status, error)
}

// Saver persists a consistent snapshot of the store.
type Saver interface {
	Save(store *candidates.Store) error
}

// Recorder receives per-probe and per-checkpoint observations.
type Recorder interface {
	ObserveProbe(status candidates.Status, elapsed time.Duration)
	ObserveCheckpoint(err error)
}

// Progress is delivered to Options.OnProgress after every completion.
type Progress struct {
	Completed int
	Total     int
	Confirmed int
	Rejected  int
	Errored   int
}

// Percent returns completion as a percentage of Total.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Options tunes an Engine.
type Options struct {
	Workers int
	// Autosave is the number of completions between checkpoints. Zero
	// disables periodic checkpoints; negative selects DefaultAutosave.
	Autosave   int
	Logger     *slog.Logger
	OnProgress func(Progress)
	Metrics    Recorder
}

// Stats summarizes one Run.
type Stats struct {
	Pending            int
	Completed          int
	Confirmed          int
	Rejected           int
	Errored            int
	Checkpoints        int
	CheckpointFailures int
	Elapsed            time.Duration
}

// Engine coordinates workers, the consumer, and checkpointing.
type Engine struct {
	prober     Prober
	saver      Saver
	workers    int
	autosave   int
	logger     *slog.Logger
	onProgress func(Progress)
	metrics    Recorder
}

// New constructs an Engine. saver may be nil to disable checkpoints.
func New(prober Prober, saver Saver, opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	autosave := opts.Autosave
	if autosave < 0 {
		autosave = DefaultAutosave
	}
	recorder := opts.Metrics
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Engine{
		prober:     prober,
		saver:      saver,
		workers:    workers,
		autosave:   autosave,
		logger:     logging.NewComponentLogger(opts.Logger, "engine"),
		onProgress: opts.OnProgress,
		metrics:    recorder,
	}
}

type outcome struct {
	index   int
	status  candidates.Status
	err     error
	elapsed time.Duration
}

// Run probes every UNKNOWN record at or after offset. Progress counts only
// this run's probes against the pending set. It returns context.Canceled (or
// the context's error) with partial Stats when ctx is cancelled before every
// pending record is resolved; in that case a final checkpoint has already been
// attempted. A cancellation that lands after the last result is a normal finish.
// Dispatch stops once ctx is done, except that a worker ready at the same
// instant may still receive one more record; its result is recorded normally.
func (e *Engine) Run(ctx context.Context, store *candidates.Store, offset int) (Stats, error) {
	logger := logging.WithContext(ctx, e.logger)
	pending := store.Pending(offset)
	stats := Stats{Pending: len(pending)}
	if len(pending) == 0 {
		logger.Info("nothing to validate", logging.Int("offset", offset))
		return stats, nil
	}

	workers := e.workers
	if workers > len(pending) {
		workers = len(pending)
	}
	logger.Info("validation started",
		logging.Int("pending", len(pending)),
		logging.Int("offset", offset),
		logging.Int("workers", workers),
		logging.Int("autosave", e.autosave))

	start := time.Now()
	jobs := make(chan candidates.Record)
	results := make(chan outcome, workers)
	// In-flight probes are allowed to finish after cancellation so their
	// results can be recorded before the interrupt checkpoint.
	probeCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for rec := range jobs {
				results <- e.probe(probeCtx, rec)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rec := range pending {
			select {
			case <-ctx.Done():
				return
			default:
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- rec:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	progress := Progress{Total: len(pending)}
	for res := range results {
		status := res.status
		if res.err != nil || !status.Terminal() {
			status = candidates.StatusErrored
			logger.Debug("probe failed",
				logging.Int("row", res.index),
				logging.Error(res.err))
		}
		if err := store.Resolve(res.index, status); err != nil {
			logging.ErrorWithContext(logger, "record resolved twice", "engine_double_resolve",
				logging.Int("row", res.index),
				logging.Error(err))
			continue
		}
		e.metrics.ObserveProbe(status, res.elapsed)

		stats.Completed++
		progress.Completed++
		switch status {
		case candidates.StatusConfirmed:
			stats.Confirmed++
			progress.Confirmed++
		case candidates.StatusRejected:
			stats.Rejected++
			progress.Rejected++
		case candidates.StatusErrored:
			stats.Errored++
			progress.Errored++
		}
		if e.onProgress != nil {
			e.onProgress(progress)
		}
		if e.autosave > 0 && stats.Completed%e.autosave == 0 {
			e.checkpoint(logger, store, &stats, "autosave")
		}
	}
	stats.Elapsed = time.Since(start)

	if err := ctx.Err(); err != nil && stats.Completed < stats.Pending {
		logger.Info("validation interrupted",
			logging.Int("completed", stats.Completed),
			logging.Int("remaining", stats.Pending-stats.Completed))
		e.checkpoint(logger, store, &stats, "interrupt")
		return stats, err
	}

	logger.Info("validation finished",
		logging.Int("completed", stats.Completed),
		logging.Int("confirmed", stats.Confirmed),
		logging.Int("rejected", stats.Rejected),
		logging.Int("errored", stats.Errored),
		logging.Duration("elapsed", stats.Elapsed))
	return stats, nil
}

func (e *Engine) probe(ctx context.Context, rec candidates.Record) outcome {
	start := time.Now()
	status, err := e.prober.Probe(ctx, rec.Value)
	return outcome{index: rec.Index, status: status, err: err, elapsed: time.Since(start)}
}

func (e *Engine) checkpoint(logger *slog.Logger, store *candidates.Store, stats *Stats, reason string) {
	if e.saver == nil {
		return
	}
	err := e.saver.Save(store)
	e.metrics.ObserveCheckpoint(err)
	if err != nil {
		stats.CheckpointFailures++
		logging.WarnWithContext(logger, "checkpoint failed", "checkpoint_write_failed",
			logging.String("reason", reason),
			logging.Int("completed", stats.Completed),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free disk space next to the source file"),
			logging.String(logging.FieldImpact, "progress since the last checkpoint is not persisted"))
		return
	}
	stats.Checkpoints++
	logger.Debug("checkpoint written",
		logging.String("reason", reason),
		logging.Int("completed", stats.Completed))
}

// IsInterrupted reports whether err came from a cancelled run.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type noopRecorder struct{}

func (noopRecorder) ObserveProbe(candidates.Status, time.Duration) {}
func (noopRecorder) ObserveCheckpoint(error)                        {}
