package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sieve/internal/candidates"
	"sieve/internal/metrics"
)

func counterValue(t *testing.T, rec *metrics.Recorder, name, label, value string) float64 {
	t.Helper()
	families, err := rec.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRecorderCountsOutcomes(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.ObserveProbe(candidates.StatusConfirmed, 10*time.Millisecond)
	rec.ObserveProbe(candidates.StatusRejected, 20*time.Millisecond)
	rec.ObserveProbe(candidates.StatusRejected, 30*time.Millisecond)
	rec.ObserveProbe(candidates.StatusErrored, time.Second)
	rec.ObserveCheckpoint(nil)
	rec.ObserveCheckpoint(errors.New("disk full"))

	if got := counterValue(t, rec, "sieve_probes_total", "outcome", "rejected"); got != 2 {
		t.Fatalf("expected 2 rejected probes, got %v", got)
	}
	if got := counterValue(t, rec, "sieve_probes_total", "outcome", "errored"); got != 1 {
		t.Fatalf("expected 1 errored probe, got %v", got)
	}
	if got := counterValue(t, rec, "sieve_checkpoints_total", "result", "failed"); got != 1 {
		t.Fatalf("expected 1 failed checkpoint, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.ObserveProbe(candidates.StatusConfirmed, time.Millisecond)
	rec.SetCounts(candidates.Counts{Total: 1, Confirmed: 1})

	path := filepath.Join(t.TempDir(), "textfile", "sieve.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		`sieve_probes_total{outcome="confirmed"} 1`,
		`sieve_records{status="confirmed"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in textfile:\n%s", want, data)
		}
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *metrics.Recorder
	rec.ObserveProbe(candidates.StatusConfirmed, time.Millisecond)
	rec.ObserveCheckpoint(nil)
	rec.SetCounts(candidates.Counts{})
	if err := rec.WriteTextfile("/nonexistent/path"); err != nil {
		t.Fatalf("nil recorder should not write: %v", err)
	}
}
