// Package observe provides application-wide observability primitives for
// the call-audit engine: OpenTelemetry metrics, distributed tracing,
// structured logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all audit-engine metrics.
const meterName = "github.com/MrWong99/callaudit"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// VADDuration tracks voice-activity detection latency (Releasing and
	// Late-Hello passes).
	VADDuration metric.Float64Histogram

	// TranscribeDuration tracks agent-segment transcription latency.
	TranscribeDuration metric.Float64Histogram

	// MatchDuration tracks rebuttal-matcher latency across all three tiers.
	MatchDuration metric.Float64Histogram

	// FileDuration tracks end-to-end processing latency for a single call recording.
	FileDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// DetectorOutcomes counts detector results. Use with attributes:
	//   attribute.String("detector", ...), attribute.String("outcome", ...)
	DetectorOutcomes metric.Int64Counter

	// LearningStoreActions counts phrase-repository learning actions. Use
	// with attribute:
	//   attribute.String("action", ...) // pending_added, auto_approved, approved, rejected
	LearningStoreActions metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// InFlightWorkers tracks the number of currently-running batch workers
	// per user. Use with attribute:
	//   attribute.String("user_id", ...)
	InFlightWorkers metric.Int64UpDownCounter

	// ActiveBatches tracks the number of batches currently being processed.
	ActiveBatches metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for per-file audit latencies, which run from sub-second VAD passes to
// multi-minute transcription jobs.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 180,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.VADDuration, err = m.Float64Histogram("callaudit.vad.duration",
		metric.WithDescription("Latency of voice-activity detection passes."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscribeDuration, err = m.Float64Histogram("callaudit.transcribe.duration",
		metric.WithDescription("Latency of agent-segment transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MatchDuration, err = m.Float64Histogram("callaudit.match.duration",
		metric.WithDescription("Latency of rebuttal matching across all tiers."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FileDuration, err = m.Float64Histogram("callaudit.file.duration",
		metric.WithDescription("End-to-end processing latency for a single call recording."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("callaudit.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.DetectorOutcomes, err = m.Int64Counter("callaudit.detector.outcomes",
		metric.WithDescription("Total detector outcomes by detector and outcome."),
	); err != nil {
		return nil, err
	}
	if met.LearningStoreActions, err = m.Int64Counter("callaudit.learning.actions",
		metric.WithDescription("Total phrase-repository learning actions by action type."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("callaudit.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.InFlightWorkers, err = m.Int64UpDownCounter("callaudit.inflight_workers",
		metric.WithDescription("Number of currently-running batch workers per user."),
	); err != nil {
		return nil, err
	}
	if met.ActiveBatches, err = m.Int64UpDownCounter("callaudit.active_batches",
		metric.WithDescription("Number of batches currently being processed."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("callaudit.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordProviderRequest is a convenience method that records a provider
// request counter increment with the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordDetectorOutcome is a convenience method that records a detector
// outcome counter increment.
func (m *Metrics) RecordDetectorOutcome(ctx context.Context, detector, outcome string) {
	m.DetectorOutcomes.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("detector", detector),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordLearningAction is a convenience method that records a learning-store
// action counter increment.
func (m *Metrics) RecordLearningAction(ctx context.Context, action string) {
	m.LearningStoreActions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("action", action)),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
