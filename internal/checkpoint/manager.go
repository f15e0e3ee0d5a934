package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"sieve/internal/candidates"
	"sieve/internal/fileutil"
	"sieve/internal/logging"
	"sieve/internal/services"
)

// ErrLocked indicates another process holds the lock for the same source.
var ErrLocked = errors.New("another sieve run is using this source")

// Paths are the files derived from a candidate source.
type Paths struct {
	Source string
	Backup string
	Result string
	Lock   string
}

// Derive computes the checkpoint, result, and lock paths for source.
func Derive(source string) Paths {
	dir := filepath.Dir(source)
	ext := filepath.Ext(source)
	base := strings.TrimSuffix(filepath.Base(source), ext)
	return Paths{
		Source: source,
		Backup: filepath.Join(dir, base+"_backup"+ext),
		Result: filepath.Join(dir, base+"_result"+ext),
		Lock:   filepath.Join(dir, "."+base+".lock"),
	}
}

// Options configures a Manager.
type Options struct {
	Source string
	// Load controls column resolution and the delimiter for snapshot files.
	Load   candidates.LoadOptions
	Logger *slog.Logger
}

// Manager saves, restores, and finalizes snapshots for one source.
type Manager struct {
	paths     Paths
	loadOpts  candidates.LoadOptions
	delimiter rune
	logger    *slog.Logger
	lock      *flock.Flock
	saves     atomic.Int64
}

// New constructs a Manager for opts.Source.
func New(opts Options) *Manager {
	paths := Derive(opts.Source)
	delimiter := opts.Load.Delimiter
	if delimiter == 0 {
		delimiter = candidates.DelimiterFor(opts.Source)
	}
	loadOpts := opts.Load
	loadOpts.Delimiter = delimiter
	loadOpts.RequireStatus = true
	return &Manager{
		paths:     paths,
		loadOpts:  loadOpts,
		delimiter: delimiter,
		logger:    logging.NewComponentLogger(opts.Logger, "checkpoint"),
		lock:      flock.New(paths.Lock),
	}
}

// Paths returns the derived file locations.
func (m *Manager) Paths() Paths {
	return m.paths
}

// Lock acquires the per-source lock without blocking.
func (m *Manager) Lock() error {
	ok, err := m.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "lock", m.paths.Lock, err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrLocked, m.paths.Lock)
	}
	return nil
}

// Unlock releases the per-source lock and removes the lock file.
func (m *Manager) Unlock() error {
	if !m.lock.Locked() {
		return nil
	}
	if err := m.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	_ = os.Remove(m.paths.Lock)
	return nil
}

// Save writes a consistent snapshot of store to the backup path.
func (m *Manager) Save(store *candidates.Store) error {
	snap := store.Snapshot()
	if err := m.write(m.paths.Backup, snap); err != nil {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", "save", m.paths.Backup, err)
	}
	total := m.saves.Add(1)
	m.logger.Debug("checkpoint saved",
		logging.String("path", m.paths.Backup),
		logging.Int("records", len(snap.Rows)),
		logging.Int64("saves", total))
	return nil
}

// Saves returns the number of successful checkpoint writes.
func (m *Manager) Saves() int {
	return int(m.saves.Load())
}

// Exists reports whether a checkpoint file is present.
func (m *Manager) Exists() bool {
	info, err := os.Stat(m.paths.Backup)
	return err == nil && !info.IsDir()
}

// Load restores the store from the checkpoint. A missing or malformed
// checkpoint is a normal cold start and reports ok=false without error.
func (m *Manager) Load() (store *candidates.Store, offset int, ok bool) {
	if _, err := os.Stat(m.paths.Backup); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(m.logger, "checkpoint unreadable", "checkpoint_stat_failed",
				logging.String("path", m.paths.Backup),
				logging.Error(err),
				logging.String(logging.FieldImpact, "starting from scratch"))
		}
		return nil, 0, false
	}

	store, err := candidates.Load(m.paths.Backup, m.loadOpts)
	if err != nil {
		logging.WarnWithContext(m.logger, "checkpoint malformed", "checkpoint_corrupt",
			logging.String("path", m.paths.Backup),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the backup file if the source changed"),
			logging.String(logging.FieldImpact, "starting from scratch"))
		return nil, 0, false
	}

	m.logger.Info("using backup file",
		logging.String("path", m.paths.Backup),
		logging.Int("rows", store.Len()))
	offset, found := store.FirstUnknown()
	if found {
		m.logger.Info("found last starting point", logging.Int("row", offset))
	} else {
		m.logger.Info("no unresolved rows in backup")
	}
	return store, offset, true
}

// Finalize writes terminal results to the result path and returns it. The
// source file is never overwritten.
func (m *Manager) Finalize(store *candidates.Store) (string, error) {
	if fileutil.SamePath(m.paths.Result, m.paths.Source) {
		return "", services.Wrap(services.ErrValidation, "checkpoint", "finalize", "result path equals source "+m.paths.Source, nil)
	}
	if err := m.write(m.paths.Result, store.Snapshot()); err != nil {
		return "", services.Wrap(services.ErrCheckpoint, "checkpoint", "finalize", m.paths.Result, err)
	}
	return m.paths.Result, nil
}

func (m *Manager) write(path string, snap *candidates.Table) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return snap.Write(w, m.delimiter)
	})
}
