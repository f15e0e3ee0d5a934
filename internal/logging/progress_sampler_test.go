package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 5},
		{"default bucket size for negative", -1, 5},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "probing") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_PhaseChange(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "probing") {
		t.Error("first phase should log")
	}
	if s.ShouldLog(0, "probing") {
		t.Error("same phase and percent should not log again")
	}
	if !s.ShouldLog(0, "  finalizing ") {
		t.Error("different phase should log")
	}
	if s.lastPhase != "finalizing" {
		t.Errorf("lastPhase = %q, want finalizing", s.lastPhase)
	}
}

func TestProgressSampler_PercentBuckets(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "probing") {
		t.Error("0% should log")
	}
	if s.ShouldLog(3, "probing") {
		t.Error("3% should not log (same bucket)")
	}
	if !s.ShouldLog(5, "probing") {
		t.Error("5% should log (new bucket)")
	}
	if s.ShouldLog(-1, "probing") {
		t.Error("negative percent should not trigger bucket logging")
	}
	s.ShouldLog(95, "probing")
	if !s.ShouldLog(100, "probing") {
		t.Error("100% should log")
	}
	if s.ShouldLog(105, "probing") {
		t.Error("105% should not log again (same as 100% bucket)")
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "probing")

	s.Reset()

	if s.lastPhase != "" || s.lastBucket != -1 {
		t.Errorf("unexpected state after reset: %+v", s)
	}
	if !s.ShouldLog(50, "probing") {
		t.Error("should log after reset")
	}
}
