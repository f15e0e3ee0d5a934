package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sieve/internal/candidates"
	"sieve/internal/engine"
	"sieve/internal/services"
)

type stubProber struct {
	mu      sync.Mutex
	calls   map[string]int
	confirm map[string]bool
	fail    map[string]bool
	delay   time.Duration
	hook    func(identifier string)

	inFlight atomic.Int32
	peak     atomic.Int32
}

func newStubProber(confirm ...string) *stubProber {
	p := &stubProber{calls: map[string]int{}, confirm: map[string]bool{}, fail: map[string]bool{}}
	for _, id := range confirm {
		p.confirm[id] = true
	}
	return p
}

func (p *stubProber) Probe(_ context.Context, identifier string) (candidates.Status, error) {
	current := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		peak := p.peak.Load()
		if current <= peak || p.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	p.mu.Lock()
	p.calls[identifier]++
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.hook != nil {
		p.hook(identifier)
	}
	if p.fail[identifier] {
		return candidates.StatusUnknown, fmt.Errorf("%w: connection refused", services.ErrTransport)
	}
	if p.confirm[identifier] {
		return candidates.StatusConfirmed, nil
	}
	return candidates.StatusRejected, nil
}

func (p *stubProber) callCount(identifier string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[identifier]
}

func (p *stubProber) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

type recordingSaver struct {
	mu        sync.Mutex
	snapshots []*candidates.Table
	err       error
}

func (s *recordingSaver) Save(store *candidates.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.snapshots = append(s.snapshots, store.Snapshot())
	return nil
}

func (s *recordingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func resolvedIn(table *candidates.Table) int {
	n := 0
	for _, st := range table.Statuses {
		if st.Terminal() {
			n++
		}
	}
	return n
}

func identifiers(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("user%02d@example.test", i)
	}
	return out
}

func statuses(store *candidates.Store) []candidates.Status {
	records := store.Records()
	out := make([]candidates.Status, len(records))
	for i, rec := range records {
		out[i] = rec.Status
	}
	return out
}

func TestRunClassifiesEveryRecord(t *testing.T) {
	store := candidates.NewStore("Emails", []string{"a", "b", "c"})
	prober := newStubProber("b")
	eng := engine.New(prober, nil, engine.Options{Workers: 4, Autosave: 0})

	stats, err := eng.Run(context.Background(), store, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []candidates.Status{candidates.StatusRejected, candidates.StatusConfirmed, candidates.StatusRejected}
	got := statuses(store)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got %s want %s", i, got[i], want[i])
		}
	}
	if stats.Completed != 3 || stats.Confirmed != 1 || stats.Rejected != 2 || stats.Errored != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	counts := store.Counts()
	if counts.Unknown != 0 || counts.Confirmed != 1 || counts.Rejected != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestRunAutosavesConsistentSnapshots(t *testing.T) {
	store := candidates.NewStore("Emails", identifiers(5))
	saver := &recordingSaver{}
	eng := engine.New(newStubProber(), saver, engine.Options{Workers: 3, Autosave: 2})

	stats, err := eng.Run(context.Background(), store, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if saver.count() != 2 || stats.Checkpoints != 2 {
		t.Fatalf("expected exactly 2 checkpoints, got %d (stats %d)", saver.count(), stats.Checkpoints)
	}
	for i, snap := range saver.snapshots {
		if got, want := resolvedIn(snap), (i+1)*2; got != want {
			t.Fatalf("snapshot %d holds %d resolved records, want %d", i, got, want)
		}
	}
}

func TestRunBoundsConcurrencyAndProbesOnce(t *testing.T) {
	ids := identifiers(10)
	store := candidates.NewStore("Emails", ids)
	prober := newStubProber()
	prober.delay = 5 * time.Millisecond
	eng := engine.New(prober, nil, engine.Options{Workers: 50})

	stats, err := eng.Run(context.Background(), store, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Completed != 10 {
		t.Fatalf("expected 10 completions, got %d", stats.Completed)
	}
	for _, id := range ids {
		if n := prober.callCount(id); n != 1 {
			t.Fatalf("%s probed %d times", id, n)
		}
	}
	if store.Counts().Unknown != 0 {
		t.Fatal("records left unresolved")
	}
}

func TestRunRespectsWorkerLimit(t *testing.T) {
	store := candidates.NewStore("Emails", identifiers(20))
	prober := newStubProber()
	prober.delay = 5 * time.Millisecond
	eng := engine.New(prober, nil, engine.Options{Workers: 3})

	if _, err := eng.Run(context.Background(), store, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if peak := prober.peak.Load(); peak > 3 {
		t.Fatalf("observed %d concurrent probes with 3 workers", peak)
	}
}

func TestRunEmptyPendingWritesNothing(t *testing.T) {
	store := candidates.NewStore("Emails", nil)
	saver := &recordingSaver{}
	prober := newStubProber()
	eng := engine.New(prober, saver, engine.Options{Autosave: 1})

	stats, err := eng.Run(context.Background(), store, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Pending != 0 || saver.count() != 0 || prober.totalCalls() != 0 {
		t.Fatalf("expected no work, got stats=%+v saves=%d probes=%d", stats, saver.count(), prober.totalCalls())
	}
}

func TestRunResumesFromOffset(t *testing.T) {
	ids := identifiers(6)
	store := candidates.NewStore("Emails", ids)
	for i := 0; i < 3; i++ {
		if err := store.Resolve(i, candidates.StatusRejected); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	prober := newStubProber(ids[0])
	var last engine.Progress
	eng := engine.New(prober, nil, engine.Options{
		Workers:    2,
		OnProgress: func(p engine.Progress) { last = p },
	})

	stats, err := eng.Run(context.Background(), store, store.ResumeOffset())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Pending != 3 || stats.Completed != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	for i, id := range ids {
		want := 0
		if i >= 3 {
			want = 1
		}
		if got := prober.callCount(id); got != want {
			t.Fatalf("%s probed %d times, want %d", id, got, want)
		}
	}
	if last.Completed != 3 || last.Total != 3 || last.Rejected != 3 || last.Confirmed != 0 {
		t.Fatalf("unexpected final progress: %+v", last)
	}
	if last.Percent() != 100 {
		t.Fatalf("expected 100%%, got %v", last.Percent())
	}
}

func TestRunRecordsTransportFailuresAsErrored(t *testing.T) {
	store := candidates.NewStore("Emails", []string{"a", "b", "c"})
	prober := newStubProber("c")
	prober.fail["b"] = true
	eng := engine.New(prober, nil, engine.Options{Workers: 2})

	stats, err := eng.Run(context.Background(), store, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := statuses(store)
	want := []candidates.Status{candidates.StatusRejected, candidates.StatusErrored, candidates.StatusConfirmed}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got %s want %s", i, got[i], want[i])
		}
	}
	if stats.Errored != 1 {
		t.Fatalf("expected 1 errored, got %d", stats.Errored)
	}
}

func TestRunContinuesWhenCheckpointFails(t *testing.T) {
	store := candidates.NewStore("Emails", identifiers(4))
	saver := &recordingSaver{err: errors.New("disk full")}
	eng := engine.New(newStubProber(), saver, engine.Options{Workers: 2, Autosave: 1})

	stats, err := eng.Run(context.Background(), store, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Completed != 4 {
		t.Fatalf("expected run to finish, got %+v", stats)
	}
	if stats.CheckpointFailures != 4 || stats.Checkpoints != 0 {
		t.Fatalf("unexpected checkpoint stats: %+v", stats)
	}
}

func TestRunCancelWritesInterruptCheckpoint(t *testing.T) {
	ids := []string{"a", "b", "stop", "d", "e"}
	store := candidates.NewStore("Emails", ids)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prober := newStubProber()
	prober.hook = func(identifier string) {
		if identifier == "stop" {
			cancel()
		}
	}
	saver := &recordingSaver{}
	eng := engine.New(prober, saver, engine.Options{Workers: 1, Autosave: 0})

	stats, err := eng.Run(ctx, store, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !engine.IsInterrupted(err) {
		t.Fatal("expected IsInterrupted")
	}
	if saver.count() != 1 || stats.Checkpoints != 1 {
		t.Fatalf("expected one interrupt checkpoint, got %d", saver.count())
	}
	got := statuses(store)
	for i := 0; i < 3; i++ {
		if !got[i].Terminal() {
			t.Fatalf("record %d should be resolved before the interrupt, got %s", i, got[i])
		}
	}
	if got[4] != candidates.StatusUnknown {
		t.Fatalf("record after the interrupt was probed: %s", got[4])
	}
	snap := saver.snapshots[0]
	if resolvedIn(snap) != stats.Completed {
		t.Fatalf("checkpoint holds %d resolved, stats report %d", resolvedIn(snap), stats.Completed)
	}
	if store.ResumeOffset() < 3 {
		t.Fatalf("resume offset went backwards: %d", store.ResumeOffset())
	}
}

func TestRunProgressCountsOnlyPendingRecords(t *testing.T) {
	store := candidates.NewStore("Emails", identifiers(10))
	for i := 0; i < 8; i++ {
		if err := store.Resolve(i, candidates.StatusRejected); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	var seen []engine.Progress
	eng := engine.New(newStubProber(), nil, engine.Options{
		Workers:    1,
		OnProgress: func(p engine.Progress) { seen = append(seen, p) },
	})

	if _, err := eng.Run(context.Background(), store, store.ResumeOffset()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(seen))
	}
	first := seen[0]
	if first.Completed != 1 || first.Total != 2 || first.Rejected != 1 || first.Confirmed != 0 {
		t.Fatalf("unexpected first progress: %+v", first)
	}
	if first.Percent() != 50 {
		t.Fatalf("expected 50%%, got %v", first.Percent())
	}
}

func TestRunCancelAfterLastResultFinishesNormally(t *testing.T) {
	ids := []string{"a", "b", "last"}
	store := candidates.NewStore("Emails", ids)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prober := newStubProber()
	prober.hook = func(identifier string) {
		if identifier == "last" {
			cancel()
		}
	}
	saver := &recordingSaver{}
	eng := engine.New(prober, saver, engine.Options{Workers: 1, Autosave: 0})

	stats, err := eng.Run(ctx, store, 0)
	if err != nil {
		t.Fatalf("expected a normal finish, got %v", err)
	}
	if stats.Completed != 3 {
		t.Fatalf("expected 3 completions, got %+v", stats)
	}
	if saver.count() != 0 {
		t.Fatalf("expected no interrupt checkpoint, got %d", saver.count())
	}
	if _, ok := store.FirstUnknown(); ok {
		t.Fatal("expected every record resolved")
	}
}
