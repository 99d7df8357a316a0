// Package observe provides application-wide observability for the
// interview engine: OpenTelemetry metrics with a Prometheus exporter
// bridge, plus HTTP middleware.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is
// provided for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for all engine metrics.
const meterName = "github.com/internai/interviewd"

// Metrics holds all OpenTelemetry metric instruments for the engine.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Latency histograms ---

	// LLMDuration tracks LLM chat-completion latency.
	LLMDuration metric.Float64Histogram

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// EvaluationDuration tracks end-to-end answer evaluation latency
	// (claim extraction + rubric scoring). Attribute: round.
	EvaluationDuration metric.Float64Histogram

	// --- Counters ---

	// AnswersProcessed counts processed answers. Attributes: round, phase.
	AnswersProcessed metric.Int64Counter

	// Interruptions counts interruption decisions. Attributes: reason,
	// action ("warn" or "interrupt").
	Interruptions metric.Int64Counter

	// FollowUps counts follow-up questions issued.
	FollowUps metric.Int64Counter

	// ClaimsExtracted counts extracted claims. Attribute: verifiability.
	ClaimsExtracted metric.Int64Counter

	// ProviderErrors counts provider errors. Attributes: provider, kind.
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live interview sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request latency by method and path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries in seconds. LLM
// calls dominate, so buckets extend to 30s.
var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.LLMDuration, err = m.Float64Histogram("interviewd.llm.duration",
		metric.WithDescription("Latency of LLM chat completions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.STTDuration, err = m.Float64Histogram("interviewd.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("interviewd.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EvaluationDuration, err = m.Float64Histogram("interviewd.evaluation.duration",
		metric.WithDescription("End-to-end answer evaluation latency by round."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.AnswersProcessed, err = m.Int64Counter("interviewd.answers.processed",
		metric.WithDescription("Total answers processed by round and phase."),
	); err != nil {
		return nil, err
	}
	if met.Interruptions, err = m.Int64Counter("interviewd.interruptions",
		metric.WithDescription("Total interruption decisions by reason and action."),
	); err != nil {
		return nil, err
	}
	if met.FollowUps, err = m.Int64Counter("interviewd.followups",
		metric.WithDescription("Total follow-up questions issued."),
	); err != nil {
		return nil, err
	}
	if met.ClaimsExtracted, err = m.Int64Counter("interviewd.claims.extracted",
		metric.WithDescription("Total claims extracted by verifiability."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("interviewd.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	if met.ActiveSessions, err = m.Int64UpDownCounter("interviewd.active_sessions",
		metric.WithDescription("Number of live interview sessions."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("interviewd.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating
// it on first call using [otel.GetMeterProvider]. Panics if instrument
// creation fails (should not happen with the global provider).
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

// Attr is a convenience alias for [attribute.String].
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAnswer records one processed answer.
func (m *Metrics) RecordAnswer(ctx context.Context, round, phase string) {
	m.AnswersProcessed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("round", round),
			attribute.String("phase", phase),
		),
	)
}

// RecordInterruption records one interruption decision.
func (m *Metrics) RecordInterruption(ctx context.Context, reason, action string) {
	m.Interruptions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("reason", reason),
			attribute.String("action", action),
		),
	)
}

// RecordProviderError records one provider error.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// RecordFollowUp records one issued follow-up question.
func (m *Metrics) RecordFollowUp(ctx context.Context, trigger string) {
	m.FollowUps.Add(ctx, 1,
		metric.WithAttributes(attribute.String("trigger", trigger)),
	)
}

// RecordClaim records one extracted claim.
func (m *Metrics) RecordClaim(ctx context.Context, verifiability string) {
	m.ClaimsExtracted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("verifiability", verifiability)),
	)
}
