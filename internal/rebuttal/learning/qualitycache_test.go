package learning

import (
	"testing"
	"time"
)

func TestQualityCache_CachesWithinTTL(t *testing.T) {
	t.Parallel()

	c := newQualityCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lastSeen := now

	first := c.get("pending-1", 0.9, 2, lastSeen, 50, now)
	// Change every input that would affect the computed score; a cache hit
	// should still return the first result since we're within the TTL.
	second := c.get("pending-1", 0.9, 99, now.Add(-10*24*time.Hour), 0, now.Add(time.Minute))
	if first != second {
		t.Fatalf("want the cached score reused within the TTL: first=%v second=%v", first, second)
	}
}

func TestQualityCache_RecomputesAfterTTLExpires(t *testing.T) {
	t.Parallel()

	c := newQualityCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := c.get("pending-1", 0.9, 2, now, 50, now)
	later := now.Add(qualityScoreTTL + time.Minute)
	second := c.get("pending-1", 0.9, 2, now, 0, later)

	if first == second {
		t.Fatalf("want a different score once inputs change after the cache entry expires")
	}
}

func TestQualityCache_DifferentConfidenceIsDifferentKey(t *testing.T) {
	t.Parallel()

	c := newQualityCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	low := c.get("pending-1", 0.1, 2, now, 50, now)
	high := c.get("pending-1", 0.9, 2, now, 50, now)
	if low == high {
		t.Fatalf("want different confidences to key independently, both scored %v", low)
	}
}
