package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names. Kept in one place so dashboards and alerts have a single
// source of truth.
const (
	MetricNameCacheHits         = "mentormatch.cache.hits"
	MetricNameCacheMisses       = "mentormatch.cache.misses"
	MetricNameEmbeddingRequests = "mentormatch.embedding.requests"
	MetricNameEmbeddingDuration = "mentormatch.embedding.duration"
)

// CacheMetrics records cache hit/miss counts with bounded cardinality (cache name).
type CacheMetrics interface {
	RecordHit(ctx context.Context, cacheName string)
	RecordMiss(ctx context.Context, cacheName string)
}

type cacheMetrics struct {
	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// NewCacheMetrics creates CacheMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewCacheMetrics(meter metric.Meter) (CacheMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	hits, err := meter.Int64Counter(
		MetricNameCacheHits,
		metric.WithDescription("Cache lookups that returned a cached value. Label cache: profile_embedding."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache hits counter: %w", err)
	}

	misses, err := meter.Int64Counter(
		MetricNameCacheMisses,
		metric.WithDescription("Cache lookups that missed and triggered an embedding call. Label cache: profile_embedding."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache misses counter: %w", err)
	}

	return &cacheMetrics{hits: hits, misses: misses}, nil
}

func attrCache(name string) attribute.KeyValue {
	return attribute.String("cache", name)
}

func (c *cacheMetrics) RecordHit(ctx context.Context, cacheName string) {
	c.hits.Add(ctx, 1, metric.WithAttributes(attrCache(cacheName)))
}

func (c *cacheMetrics) RecordMiss(ctx context.Context, cacheName string) {
	c.misses.Add(ctx, 1, metric.WithAttributes(attrCache(cacheName)))
}

// EmbeddingMetrics records embedding provider calls by outcome.
type EmbeddingMetrics interface {
	RecordRequest(ctx context.Context, status string)
	RecordDuration(ctx context.Context, duration time.Duration, status string)
}

type embeddingMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewEmbeddingMetrics creates EmbeddingMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewEmbeddingMetrics(meter metric.Meter) (EmbeddingMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	requests, err := meter.Int64Counter(
		MetricNameEmbeddingRequests,
		metric.WithDescription("Embedding provider calls by status (success, error)."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameEmbeddingDuration,
		metric.WithDescription("Embedding provider call duration (seconds)."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding duration histogram: %w", err)
	}

	return &embeddingMetrics{requests: requests, duration: duration}, nil
}

func attrStatus(status string) attribute.KeyValue {
	if status != "success" {
		status = "error"
	}

	return attribute.String("status", status)
}

func (e *embeddingMetrics) RecordRequest(ctx context.Context, status string) {
	e.requests.Add(ctx, 1, metric.WithAttributes(attrStatus(status)))
}

func (e *embeddingMetrics) RecordDuration(ctx context.Context, duration time.Duration, status string) {
	e.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrStatus(status)))
}
