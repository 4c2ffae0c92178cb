package learning

import (
	"context"
	"testing"
	"time"

	"github.com/MrWong99/callaudit/internal/domain"
	storemock "github.com/MrWong99/callaudit/pkg/store/mock"
)

func TestBaseThresholdForCategory(t *testing.T) {
	t.Parallel()

	if got := baseThresholdForCategory("other-property", 0.9); got != baseThresholdOtherProperty {
		t.Errorf("other-property = %v, want %v", got, baseThresholdOtherProperty)
	}
	if got := baseThresholdForCategory("mixed-future-other", 0.9); got != baseThresholdMixed {
		t.Errorf("mixed-future-other = %v, want %v", got, baseThresholdMixed)
	}
	if got := baseThresholdForCategory("would-consider", 0.9); got != 0.9 {
		t.Errorf("unnamed category = %v, want configDefault 0.9", got)
	}
}

func TestAdaptiveThreshold_AdjustsForApprovalRate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	high := newThresholdCache()
	st := &storemock.Store{CategoryPerformanceResult: domain.CategoryPerformance{ApprovalRate: 0.97}}
	if got := high.adaptiveThreshold(context.Background(), st, "would-consider", 0.9, now); got != 0.88 {
		t.Errorf("high approval rate = %v, want base-0.02 = 0.88", got)
	}

	low := newThresholdCache()
	st2 := &storemock.Store{CategoryPerformanceResult: domain.CategoryPerformance{ApprovalRate: 0.5}}
	if got := low.adaptiveThreshold(context.Background(), st2, "would-consider", 0.9, now); got != 0.92 {
		t.Errorf("low approval rate = %v, want base+0.02 = 0.92", got)
	}
}

func TestAdaptiveThreshold_CachesForTheTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newThresholdCache()
	st := &storemock.Store{CategoryPerformanceResult: domain.CategoryPerformance{ApprovalRate: 0.97}}

	first := c.adaptiveThreshold(context.Background(), st, "would-consider", 0.9, now)
	st.CategoryPerformanceResult = domain.CategoryPerformance{ApprovalRate: 0.1}
	second := c.adaptiveThreshold(context.Background(), st, "would-consider", 0.9, now.Add(time.Hour))
	if first != second {
		t.Fatalf("want the cached value reused within the TTL: first=%v second=%v", first, second)
	}
	if got := st.CallCount("CategoryPerformance"); got != 1 {
		t.Fatalf("want CategoryPerformance only queried once while cached, got %d calls", got)
	}
}

func TestAdaptiveThreshold_StoreErrorFallsBackToBase(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newThresholdCache()
	st := &storemock.Store{CategoryPerformanceErr: errThresholdLookup}

	if got := c.adaptiveThreshold(context.Background(), st, "would-consider", 0.9, now); got != 0.9 {
		t.Fatalf("want the base threshold on a lookup error, got %v", got)
	}
}

var errThresholdLookup = &thresholdLookupError{}

type thresholdLookupError struct{}

func (*thresholdLookupError) Error() string { return "category performance lookup failed" }
