package learning

import (
	"fmt"
	"sync"
	"time"
)

const qualityScoreTTL = time.Hour

type qualityCacheEntry struct {
	score     float64
	expiresAt time.Time
}

// qualityCache memoizes qualityScore results keyed by (pendingID, confidence)
// for qualityScoreTTL, per §4.7.
type qualityCache struct {
	mu      sync.Mutex
	entries map[string]qualityCacheEntry
}

func newQualityCache() *qualityCache {
	return &qualityCache{entries: make(map[string]qualityCacheEntry)}
}

func (c *qualityCache) get(pendingID string, confidence float64, detectionCount int, lastSeenAt time.Time, sampleContextsLen int, now time.Time) float64 {
	key := fmt.Sprintf("%s:%.4f", pendingID, confidence)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && now.Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.score
	}
	c.mu.Unlock()

	score := qualityScore(confidence, detectionCount, lastSeenAt, sampleContextsLen, now)

	c.mu.Lock()
	c.entries[key] = qualityCacheEntry{score: score, expiresAt: now.Add(qualityScoreTTL)}
	c.mu.Unlock()

	return score
}
