package util

import (
	"math"
	"testing"
)

func TestNewStats(t *testing.T) {
	stats := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if stats.Mean != 5 {
		t.Errorf("Expected mean 5, got %v", stats.Mean)
	}
	if stats.Min != 2 || stats.Max != 9 {
		t.Errorf("Expected min 2 / max 9, got %v / %v", stats.Min, stats.Max)
	}
	if math.Abs(stats.StdDeviation-2.0) > 1e-9 {
		t.Errorf("Expected std deviation 2, got %v", stats.StdDeviation)
	}
}

func TestNewStatsEmpty(t *testing.T) {
	stats := NewStats(nil)
	if stats != (Stats{}) {
		t.Errorf("Expected zero stats for empty input, got %+v", stats)
	}
}

func TestDistributionQuality(t *testing.T) {
	// perfectly even shards should score a perfect quality
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	if math.Abs(even.DistributionQuality-1.0) > 1e-9 {
		t.Errorf("Expected quality 1.0 for even distribution, got %v", even.DistributionQuality)
	}

	// a heavily skewed distribution must score worse
	skewed := NewDistributionStats([]float64{100, 1, 1, 1})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Errorf("Skewed distribution should score below even, got %v", skewed.DistributionQuality)
	}
}

func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()

	for i := 0; i < 100; i++ {
		h.AddSample(100)
	}

	if h.GetCount() != 100 {
		t.Errorf("Expected 100 samples, got %d", h.GetCount())
	}
	if h.AverageSize() != 100 {
		t.Errorf("Expected average 100, got %d", h.AverageSize())
	}

	// all samples land in the (64, 256] bucket, median estimate is its midpoint
	if got := h.MedianEstimate(); got != (64+256)/2 {
		t.Errorf("Expected median estimate %d, got %d", (64+256)/2, got)
	}

	h.Reset()
	if h.GetCount() != 0 || h.AverageSize() != 0 {
		t.Error("Reset should clear all samples")
	}
}
