package store

import (
	"testing"
	"time"
)

func TestEstimateWaitNoHistory(t *testing.T) {
	if got := EstimateWait(nil, 1); got != 10 {
		t.Fatalf("EstimateWait(nil, 1)=%d, want 10", got)
	}
	if got := EstimateWait(nil, 2); got != 20 {
		t.Fatalf("EstimateWait(nil, 2)=%d, want 20", got)
	}
}

func TestEstimateWaitFloor(t *testing.T) {
	samples := []time.Duration{3 * time.Minute}
	if got := EstimateWait(samples, 1); got != 5 {
		t.Fatalf("EstimateWait([3m], 1)=%d, want floor 5", got)
	}
}

func TestEstimateWaitAverages(t *testing.T) {
	samples := []time.Duration{10 * time.Minute, 20 * time.Minute}
	if got := EstimateWait(samples, 1); got != 15 {
		t.Fatalf("EstimateWait=%d, want 15", got)
	}
	if got := EstimateWait(samples, 3); got != 45 {
		t.Fatalf("EstimateWait=%d, want 45", got)
	}
}

func TestEstimateWaitClampsPosition(t *testing.T) {
	if got := EstimateWait(nil, 0); got != 10 {
		t.Fatalf("EstimateWait(nil, 0)=%d, want 10", got)
	}
	if got := EstimateWait(nil, -3); got != 10 {
		t.Fatalf("EstimateWait(nil, -3)=%d, want 10", got)
	}
}
