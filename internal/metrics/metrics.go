// Package metrics collects Prometheus counters for a validation run and
// exports them to a node_exporter textfile when configured.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sieve/internal/candidates"
)

const namespace = "sieve"

// Recorder owns an isolated registry so repeated runs in one process never
// collide on collector registration.
type Recorder struct {
	registry    *prometheus.Registry
	probes      *prometheus.CounterVec
	duration    prometheus.Histogram
	checkpoints *prometheus.CounterVec
	records     *prometheus.GaugeVec
}

// NewRecorder builds a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Oracle probes by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Oracle round-trip latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		checkpoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_total",
			Help:      "Checkpoint writes by result.",
		}, []string{"result"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records by status at the end of the run.",
		}, []string{"status"}),
	}
	r.registry.MustRegister(r.probes, r.duration, r.checkpoints, r.records)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveProbe records one completed probe.
func (r *Recorder) ObserveProbe(status candidates.Status, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.probes.WithLabelValues(outcomeLabel(status)).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// ObserveCheckpoint records a checkpoint attempt.
func (r *Recorder) ObserveCheckpoint(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	r.checkpoints.WithLabelValues(result).Inc()
}

// SetCounts publishes final status totals.
func (r *Recorder) SetCounts(c candidates.Counts) {
	if r == nil {
		return
	}
	r.records.WithLabelValues("unknown").Set(float64(c.Unknown))
	r.records.WithLabelValues("confirmed").Set(float64(c.Confirmed))
	r.records.WithLabelValues("rejected").Set(float64(c.Rejected))
	r.records.WithLabelValues("errored").Set(float64(c.Errored))
}

// WriteTextfile writes the registry in text exposition format. An empty path
// is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func outcomeLabel(status candidates.Status) string {
	switch status {
	case candidates.StatusConfirmed:
		return "confirmed"
	case candidates.StatusRejected:
		return "rejected"
	case candidates.StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}
