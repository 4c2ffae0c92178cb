package sizer

import (
	"testing"
)

func fixedStats(usedPercent float64, availableBytes uint64, cpuPercent float64) *Sizer {
	return &Sizer{
		readMemory: func() (float64, uint64, error) { return usedPercent, availableBytes, nil },
		readCPU:    func() (float64, error) { return cpuPercent, nil },
	}
}

func TestNext_NeutralConditionsReturnBaseSize(t *testing.T) {
	t.Parallel()

	s := fixedStats(60, 8*1024*1024*1024, 60)
	got := s.Next(Inputs{RemainingCount: baseBatchSize * 10})
	if got != baseBatchSize {
		t.Fatalf("want base batch size %d under neutral conditions, got %d", baseBatchSize, got)
	}
}

func TestNext_HighMemoryPressureScalesDown(t *testing.T) {
	t.Parallel()

	s := fixedStats(100, 0, 60)
	got := s.Next(Inputs{RemainingCount: baseBatchSize * 10})
	if got >= baseBatchSize {
		t.Fatalf("want batch size scaled down under memory pressure, got %d", got)
	}
}

func TestNext_LowMemoryAndCPUStaysAtMax(t *testing.T) {
	t.Parallel()

	// baseBatchSize already equals maxBatchSize, so scale-up factors can
	// only keep Next() pinned at the ceiling, never exceed it.
	s := fixedStats(20, 8*1024*1024*1024, 10)
	got := s.Next(Inputs{RemainingCount: baseBatchSize * 10})
	if got != maxBatchSize {
		t.Fatalf("want batch size clamped at max %d under headroom, got %d", maxBatchSize, got)
	}
}

func TestNext_ClampsToMinAndMax(t *testing.T) {
	t.Parallel()

	down := fixedStats(100, 0, 100)
	if got := down.Next(Inputs{RemainingCount: 4}); got != minBatchSize {
		t.Fatalf("want clamped to min %d on a near-empty tail, got %d", minBatchSize, got)
	}

	up := fixedStats(0, 8*1024*1024*1024, 0)
	if got := up.Next(Inputs{RemainingCount: baseBatchSize * 10}); got > maxBatchSize {
		t.Fatalf("want clamped to max %d, got %d", maxBatchSize, got)
	}
}

func TestNext_TailRuleShrinksBatchNearEndOfRun(t *testing.T) {
	t.Parallel()

	s := fixedStats(60, 8*1024*1024*1024, 60)
	got := s.Next(Inputs{RemainingCount: 30})
	if got >= baseBatchSize {
		t.Fatalf("want tail rule to shrink the batch below base size, got %d", got)
	}
	if got < minBatchSize {
		t.Fatalf("want tail rule to respect the minimum batch size, got %d", got)
	}
}

func TestMemoryFactor(t *testing.T) {
	t.Parallel()

	if f := memoryFactor(60, 0); f != 1 {
		t.Errorf("memoryFactor(60) = %v, want 1 (neutral band)", f)
	}
	if f := memoryFactor(100, 0); f != 0.5 {
		t.Errorf("memoryFactor(100) = %v, want 0.5 (max scale-down)", f)
	}
	if f := memoryFactor(0, fourGB); f != 1.5 {
		t.Errorf("memoryFactor(0, 4GB) = %v, want 1.5 (max scale-up)", f)
	}
	if f := memoryFactor(0, 0); f != 1 {
		t.Errorf("memoryFactor(0, 0 avail) = %v, want 1 (no scale-up without headroom)", f)
	}
}

func TestCPUFactor(t *testing.T) {
	t.Parallel()

	if f := cpuFactor(60); f != 1 {
		t.Errorf("cpuFactor(60) = %v, want 1", f)
	}
	if f := cpuFactor(100); f != 0.6 {
		t.Errorf("cpuFactor(100) = %v, want 0.6", f)
	}
	if f := cpuFactor(0); f != 1.3 {
		t.Errorf("cpuFactor(0) = %v, want 1.3", f)
	}
}

func TestAverageFileSize_CapsAt100Samples(t *testing.T) {
	t.Parallel()

	sizes := make([]int64, 200)
	for i := range sizes {
		sizes[i] = 1000
	}
	sizes[150] = 1_000_000_000 // outside the first 100 samples, must be ignored
	if got := averageFileSize(sizes); got != 1000 {
		t.Fatalf("averageFileSize() = %v, want 1000 (sample capped at first 100)", got)
	}
}

func TestAverageProcessingTime_Empty(t *testing.T) {
	t.Parallel()
	if got := averageProcessingTime(nil); got != 0 {
		t.Fatalf("averageProcessingTime(nil) = %v, want 0", got)
	}
}
