// Package gateway wraps the configured LLM provider with the engine-wide
// call policy: bounded concurrency, a per-call timeout, one retry at
// equal temperature, and latency metrics.
//
// Every LLM call in the engine goes through one shared [Gateway].
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/internai/interviewd/internal/observe"
	"github.com/internai/interviewd/pkg/provider/llm"
)

// ErrBackendUnavailable is returned when the LLM backend fails both the
// initial call and the retry, or when the concurrency slot cannot be
// acquired before the context ends.
var ErrBackendUnavailable = errors.New("gateway: llm backend unavailable")

const (
	// DefaultTimeout bounds a single LLM call.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxConcurrent bounds in-flight LLM calls to protect the
	// backend.
	DefaultMaxConcurrent = 16
)

// Config tunes a [Gateway]. Zero values take the documented defaults.
type Config struct {
	Timeout       time.Duration
	MaxConcurrent int64
}

// Gateway is the shared LLM client. Safe for concurrent use.
type Gateway struct {
	provider llm.Provider
	timeout  time.Duration
	sem      *semaphore.Weighted
	metrics  *observe.Metrics
}

// New creates a Gateway over the given provider. metrics may be nil.
func New(provider llm.Provider, cfg Config, metrics *observe.Metrics) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Gateway{
		provider: provider,
		timeout:  cfg.Timeout,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrent),
		metrics:  metrics,
	}
}

// Chat sends the request through the concurrency gate and returns the
// response text. A failed call is retried once at the same temperature;
// a second failure maps to [ErrBackendUnavailable]. Context cancellation
// is propagated as-is.
func (g *Gateway) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer g.sem.Release(1)

	resp, err := g.call(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("llm call failed, retrying once",
			"provider", g.provider.Name(), "error", err)
		resp, err = g.call(ctx, req)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if g.metrics != nil {
			g.metrics.RecordProviderError(ctx, g.provider.Name(), "llm")
		}
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return resp.Content, nil
}

// call issues one timed provider call and records its latency.
func (g *Gateway) call(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.provider.Chat(callCtx, req)
	if g.metrics != nil {
		g.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())
	}
	return resp, err
}

// Provider returns the wrapped provider, for health checks.
func (g *Gateway) Provider() llm.Provider {
	return g.provider
}
