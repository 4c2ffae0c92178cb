// Package sizer implements the AdaptiveBatchSizer (§4.11): a per-user batch
// size calculator that scales a base batch size down or up based on host
// memory/CPU pressure, average input file size, and a rolling average of
// recent per-file processing time.
package sizer

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	baseBatchSize = 1000
	minBatchSize  = 10
	maxBatchSize  = 1000

	cpuSampleInterval = time.Second
)

// Inputs captures everything one Next call needs to compute a batch size.
type Inputs struct {
	// RemainingFileSizes is used only for its length (capped at 100 samples)
	// and average size; pass at most the first 100 remaining file sizes in
	// bytes.
	RemainingFileSizes []int64

	// RemainingCount is the true count of files not yet submitted, used by
	// the tail rule; it may exceed len(RemainingFileSizes).
	RemainingCount int

	// CurrentBatchIndex is 0 for the first batch of a run.
	CurrentBatchIndex int

	// CompletedFiles/TotalFiles are progress counters, carried for
	// parity with the spec's signature; Next does not currently consult
	// them beyond the tail rule's use of RemainingCount.
	CompletedFiles int
	TotalFiles     int

	// RollingProcessingTimes is the last-20-files window tracked by
	// domain.BatchState.
	RollingProcessingTimes []time.Duration
}

// Sizer computes an adaptive batch size per user. It is stateless between
// calls except for the pluggable stat readers, so callers should construct
// one Sizer per user per batch run per §5 ("reset at the start of every
// batch run").
type Sizer struct {
	readMemory func() (usedPercent float64, availableBytes uint64, err error)
	readCPU    func() (percent float64, err error)
}

// New constructs a Sizer backed by gopsutil's memory/CPU readers.
func New() *Sizer {
	return &Sizer{
		readMemory: readMemoryStats,
		readCPU:    readCPUStats,
	}
}

func readMemoryStats() (float64, uint64, error) {
	stat, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return stat.UsedPercent, stat.Available, nil
}

func readCPUStats() (float64, error) {
	percents, err := cpu.Percent(cpuSampleInterval, false)
	if err != nil || len(percents) == 0 {
		return 0, err
	}
	return percents[0], nil
}

// Next computes the batch size for the next batch given in.
func (s *Sizer) Next(in Inputs) int {
	size := float64(baseBatchSize)

	if usedPct, availableBytes, err := s.readMemory(); err == nil {
		size *= memoryFactor(usedPct, availableBytes)
	}

	if cpuPct, err := s.readCPU(); err == nil {
		size *= cpuFactor(cpuPct)
	}

	if avg := averageFileSize(in.RemainingFileSizes); avg > 0 {
		size *= fileSizeFactor(avg)
	}

	if avg := averageProcessingTime(in.RollingProcessingTimes); avg > 0 {
		size *= processingTimeFactor(avg)
	}

	batchSize := clampBatchSize(int(size))

	if in.RemainingCount < 2*batchSize {
		tail := in.RemainingCount / 2
		if tail < minBatchSize {
			tail = minBatchSize
		}
		batchSize = tail
	}

	return clampBatchSize(batchSize)
}

func clampBatchSize(n int) int {
	if n < minBatchSize {
		return minBatchSize
	}
	if n > maxBatchSize {
		return maxBatchSize
	}
	return n
}

const fourGB = 4 * 1024 * 1024 * 1024

// memoryFactor scales down up to 50% when memory usage exceeds 75%, or up
// to 50% up when usage is below 50% and at least 4GB is free.
func memoryFactor(usedPercent float64, availableBytes uint64) float64 {
	switch {
	case usedPercent > 75:
		excess := (usedPercent - 75) / 25 // 0..1 as usedPercent goes 75->100
		return 1 - 0.5*clip01(excess)
	case usedPercent < 50 && availableBytes >= fourGB:
		headroom := (50 - usedPercent) / 50 // 0..1 as usedPercent goes 50->0
		return 1 + 0.5*clip01(headroom)
	default:
		return 1
	}
}

// cpuFactor scales down up to 40% when a 1s CPU sample exceeds 80%, or up
// to 30% up when it's below 50%.
func cpuFactor(percent float64) float64 {
	switch {
	case percent > 80:
		excess := (percent - 80) / 20
		return 1 - 0.4*clip01(excess)
	case percent < 50:
		headroom := (50 - percent) / 50
		return 1 + 0.3*clip01(headroom)
	default:
		return 1
	}
}

const (
	tenMB = 10 * 1024 * 1024
	twoMB = 2 * 1024 * 1024
)

// fileSizeFactor scales down up to 50% for large average files (>10MB), up
// to 30% up for small ones (<2MB).
func fileSizeFactor(avgBytes float64) float64 {
	switch {
	case avgBytes > tenMB:
		excess := (avgBytes - tenMB) / tenMB
		return 1 - 0.5*clip01(excess)
	case avgBytes < twoMB:
		headroom := (twoMB - avgBytes) / twoMB
		return 1 + 0.3*clip01(headroom)
	default:
		return 1
	}
}

// processingTimeFactor scales down up to 30% when the rolling average
// per-file processing time exceeds 30s; no upward scaling is defined for a
// fast rolling average.
func processingTimeFactor(avg time.Duration) float64 {
	const threshold = 30 * time.Second
	if avg <= threshold {
		return 1
	}
	excess := float64(avg-threshold) / float64(threshold)
	return 1 - 0.3*clip01(excess)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func averageFileSize(sizes []int64) float64 {
	if len(sizes) == 0 {
		return 0
	}
	sample := sizes
	if len(sample) > 100 {
		sample = sample[:100]
	}
	var sum int64
	for _, s := range sample {
		sum += s
	}
	return float64(sum) / float64(len(sample))
}

func averageProcessingTime(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	var sum time.Duration
	for _, t := range times {
		sum += t
	}
	return sum / time.Duration(len(times))
}
