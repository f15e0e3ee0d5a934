package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"

	"sieve/internal/candidates"
	"sieve/internal/engine"
	"sieve/internal/logging"
)

// Finalizer writes the result file for a store.
type Finalizer interface {
	Finalize(store *candidates.Store) (string, error)
}

// Options configures a Reporter.
type Options struct {
	// Interactive forces live-line mode on or off. Nil detects from the writer.
	Interactive *bool
	// Width overrides the banner width. Zero detects from the writer.
	Width  int
	Color  bool
	Logger *slog.Logger
}

// Reporter writes banners, live progress, and the final summary.
type Reporter struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	width       int
	logger      *slog.Logger
	sampler     *logging.ProgressSampler
	liveDrawn   bool
	good        *color.Color
	bad         *color.Color
	rule        *color.Color
}

// New constructs a Reporter writing to out.
func New(out io.Writer, opts Options) *Reporter {
	interactive := IsTerminal(out)
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}
	width := opts.Width
	if width <= 0 {
		width = Width(out)
	}
	r := &Reporter{
		out:         out,
		interactive: interactive,
		width:       width,
		logger:      logging.NewComponentLogger(opts.Logger, "report"),
		sampler:     logging.NewProgressSampler(5),
		good:        color.New(color.FgGreen),
		bad:         color.New(color.FgRed),
		rule:        color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{r.good, r.bad, r.rule} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Banner prints a section title between two rules as wide as the terminal.
func (r *Reporter) Banner(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakLiveLine()
	rule := strings.Repeat("=", r.width)
	fmt.Fprintln(r.out)
	r.rule.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, strings.TrimSpace(title))
	r.rule.Fprintln(r.out, rule)
	fmt.Fprintln(r.out)
}

// Info prints a plain message line.
func (r *Reporter) Info(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakLiveLine()
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Progress redraws the live line or logs a sampled progress event.
func (r *Reporter) Progress(p engine.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.interactive {
		fmt.Fprintf(r.out, "\r%s", ProgressLine(p))
		r.liveDrawn = true
		return
	}
	if r.sampler.ShouldLog(p.Percent(), "validating") {
		r.logger.Info("validation progress",
			logging.Int("completed", p.Completed),
			logging.Int("total", p.Total),
			logging.Int("good", p.Confirmed),
			logging.Int("bad", p.Rejected),
			logging.Int("errored", p.Errored))
	}
}

// Finish terminates the live line so later output starts on a fresh line.
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakLiveLine()
	r.sampler.Reset()
}

// Finalize writes the result file through f and prints the summary. The
// summary is computed from the store, not from engine counters.
func (r *Reporter) Finalize(f Finalizer, store *candidates.Store) (string, Summary, error) {
	summary := Summarize(store.Counts())
	path, err := f.Finalize(store)
	if err != nil {
		return "", summary, err
	}
	r.PrintSummary(summary)
	r.Info("Saving results as '%s'", path)
	return path, summary, nil
}

// PrintSummary prints the multi-line summary with valid and invalid counts
// highlighted.
func (r *Reporter) PrintSummary(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakLiveLine()
	for i, line := range s.Lines() {
		switch i {
		case 1:
			r.good.Fprintln(r.out, line)
		case 2:
			r.bad.Fprintln(r.out, line)
		default:
			fmt.Fprintln(r.out, line)
		}
	}
}

func (r *Reporter) breakLiveLine() {
	if r.liveDrawn {
		fmt.Fprintln(r.out)
		r.liveDrawn = false
	}
}
