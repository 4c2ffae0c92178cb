package learning

import (
	"context"
	"sync"
	"time"

	"github.com/MrWong99/callaudit/pkg/store"
)

const (
	baseThresholdOtherProperty = 0.88
	baseThresholdMixed         = 0.85

	categoryThresholdTTL = 7 * 24 * time.Hour
)

// thresholdEntry is one cached adaptive-threshold computation.
type thresholdEntry struct {
	value     float64
	expiresAt time.Time
}

// thresholdCache caches per-category adaptive auto-approval thresholds for
// up to categoryThresholdTTL, since CategoryPerformance is expensive to
// recompute and changes slowly.
type thresholdCache struct {
	mu      sync.Mutex
	entries map[string]thresholdEntry
}

func newThresholdCache() *thresholdCache {
	return &thresholdCache{entries: make(map[string]thresholdEntry)}
}

// adaptiveThreshold returns the per-category auto-approval confidence
// threshold: a base rate by category family (falling back to
// configDefault for categories outside the named families), adjusted -0.02
// for a historically high (>0.95) approval rate or +0.02 for a low (<0.80)
// one.
func (c *thresholdCache) adaptiveThreshold(ctx context.Context, st store.Store, category string, configDefault float64, now time.Time) float64 {
	c.mu.Lock()
	if entry, ok := c.entries[category]; ok && now.Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.value
	}
	c.mu.Unlock()

	base := baseThresholdForCategory(category, configDefault)

	perf, err := st.CategoryPerformance(ctx, category)
	value := base
	if err == nil {
		switch {
		case perf.ApprovalRate > 0.95:
			value = base - 0.02
		case perf.ApprovalRate < 0.80:
			value = base + 0.02
		}
	}

	c.mu.Lock()
	c.entries[category] = thresholdEntry{value: value, expiresAt: now.Add(categoryThresholdTTL)}
	c.mu.Unlock()

	return value
}

func baseThresholdForCategory(category string, configDefault float64) float64 {
	switch category {
	case "other-property":
		return baseThresholdOtherProperty
	case "mixed-future-other":
		return baseThresholdMixed
	default:
		return configDefault
	}
}
