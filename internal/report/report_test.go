package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"sieve/internal/candidates"
	"sieve/internal/engine"
	"sieve/internal/report"
)

type stubFinalizer struct {
	path  string
	err   error
	calls int
}

func (s *stubFinalizer) Finalize(*candidates.Store) (string, error) {
	s.calls++
	return s.path, s.err
}

func resolvedStore(t *testing.T, statuses ...candidates.Status) *candidates.Store {
	t.Helper()
	values := make([]string, len(statuses))
	for i := range values {
		values[i] = strings.Repeat("x", i+1)
	}
	store := candidates.NewStore("Emails", values)
	for i, st := range statuses {
		if st == candidates.StatusUnknown {
			continue
		}
		if err := store.Resolve(i, st); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	return store
}

func boolPtr(v bool) *bool { return &v }

func TestSummaryString(t *testing.T) {
	store := resolvedStore(t, candidates.StatusRejected, candidates.StatusConfirmed, candidates.StatusRejected)
	got := report.Summarize(store.Counts()).String()
	if got != "3 checked, 1 valid, 2 invalid" {
		t.Fatalf("unexpected summary %q", got)
	}

	store = resolvedStore(t, candidates.StatusErrored, candidates.StatusConfirmed, candidates.StatusUnknown)
	got = report.Summarize(store.Counts()).String()
	if got != "2 checked, 1 valid, 0 invalid, 1 errored" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestProgressLine(t *testing.T) {
	got := report.ProgressLine(engine.Progress{Completed: 4, Total: 10, Confirmed: 1, Rejected: 3})
	if got != "Completed 4 of 10 | Good found: 1 | Bad found: 3" {
		t.Fatalf("unexpected progress line %q", got)
	}
}

func TestInteractiveProgressRewritesLine(t *testing.T) {
	var buf bytes.Buffer
	rep := report.New(&buf, report.Options{Interactive: boolPtr(true), Width: 10})
	rep.Progress(engine.Progress{Completed: 1, Total: 2, Confirmed: 1})
	rep.Progress(engine.Progress{Completed: 2, Total: 2, Confirmed: 1, Rejected: 1})
	rep.Finish()

	want := "\rCompleted 1 of 2 | Good found: 1 | Bad found: 0" +
		"\rCompleted 2 of 2 | Good found: 1 | Bad found: 1\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestNonInteractiveProgressWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	rep := report.New(&buf, report.Options{Interactive: boolPtr(false)})
	rep.Progress(engine.Progress{Completed: 1, Total: 2})
	rep.Finish()
	if buf.Len() != 0 {
		t.Fatalf("expected no live output, got %q", buf.String())
	}
}

func TestBannerUsesWidth(t *testing.T) {
	var buf bytes.Buffer
	rep := report.New(&buf, report.Options{Interactive: boolPtr(false), Width: 12})
	rep.Banner("Testing the identifiers.")
	rule := strings.Repeat("=", 12)
	want := "\n" + rule + "\nTesting the identifiers.\n" + rule + "\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected banner %q", buf.String())
	}
}

func TestWidthFallsBackForNonTerminal(t *testing.T) {
	if got := report.Width(&bytes.Buffer{}); got != report.DefaultWidth {
		t.Fatalf("expected fallback width, got %d", got)
	}
	if report.IsTerminal(&bytes.Buffer{}) {
		t.Fatal("buffer is not a terminal")
	}
}

func TestFinalizeUsesStoreCounts(t *testing.T) {
	var buf bytes.Buffer
	rep := report.New(&buf, report.Options{Interactive: boolPtr(false)})
	store := resolvedStore(t, candidates.StatusRejected, candidates.StatusConfirmed, candidates.StatusRejected)
	fin := &stubFinalizer{path: "/tmp/list_result.csv"}

	path, summary, err := rep.Finalize(fin, store)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if path != fin.path || fin.calls != 1 {
		t.Fatalf("unexpected finalize result %q calls=%d", path, fin.calls)
	}
	if summary.Checked != 3 || summary.Valid != 1 || summary.Invalid != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	out := buf.String()
	for _, want := range []string{"3 identifiers have been checked.", "1 were valid", "2 were invalid", "Saving results as '/tmp/list_result.csv'"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFinalizeReturnsError(t *testing.T) {
	rep := report.New(&bytes.Buffer{}, report.Options{Interactive: boolPtr(false)})
	fin := &stubFinalizer{err: errors.New("read-only filesystem")}
	if _, _, err := rep.Finalize(fin, resolvedStore(t, candidates.StatusConfirmed)); err == nil {
		t.Fatal("expected finalize error")
	}
}

func TestCountsTable(t *testing.T) {
	store := resolvedStore(t, candidates.StatusConfirmed, candidates.StatusRejected, candidates.StatusRejected, candidates.StatusUnknown)
	out := report.CountsTable(store.Counts())
	for _, want := range []string{"GOOD", "BAD", "ERROR", "UNKNOWN", "TOTAL", "50.0%", "25.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
}
