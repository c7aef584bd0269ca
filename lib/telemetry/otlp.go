package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const exporterDialTimeout = 3 * time.Second

type otlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

// protocol is "grpc", "http" or "" when exporting is off. grpc wins if both
// endpoints are set.
func (c otlpConnConfig) protocol() string {
	switch {
	case c.GrpcEndpoint != "":
		return "grpc"
	case c.HttpEndpoint != "":
		return "http"
	}
	return ""
}

func (c otlpConnConfig) enabled() bool {
	return c.protocol() != ""
}

func (c otlpConnConfig) endpoint() string {
	if c.protocol() == "grpc" {
		return c.GrpcEndpoint
	}
	return c.HttpEndpoint
}

type tracesConfig struct {
	otlpConnConfig
	// SampleRatio is the share of root traces kept, 0 means keep all.
	// A full scrape emits a few dozen spans, busy deployments may want less.
	SampleRatio float64 `json:"sample_ratio"`
}

func (c tracesConfig) sampler() trace.Sampler {
	if c.SampleRatio <= 0 || c.SampleRatio >= 1 {
		return trace.ParentBased(trace.AlwaysSample())
	}
	return trace.ParentBased(trace.TraceIDRatioBased(c.SampleRatio))
}

type metricsConfig struct {
	otlpConnConfig
	IntervalSeconds int `json:"interval_seconds"`
}

func (c metricsConfig) interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

type otlpConfig struct {
	Traces  tracesConfig  `json:"traces"`
	Metrics metricsConfig `json:"metrics"`
}

type config struct {
	Otlp otlpConfig `json:"otlp"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func logExporter(signal string, c otlpConnConfig) {
	slog.Info(
		"otlp exporter enabled",
		"signal", signal,
		"protocol", c.protocol(),
		"endpoint", c.endpoint(),
		"headers", len(c.Headers) > 0,
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, cfg tracesConfig) (*trace.TracerProvider, error) {
	opts := []trace.TracerProviderOption{
		trace.WithResource(r),
		trace.WithSampler(cfg.sampler()),
	}
	if !cfg.enabled() {
		return trace.NewTracerProvider(opts...), nil
	}

	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	var exporter trace.SpanExporter
	var err error
	if cfg.protocol() == "grpc" {
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(cfg.GrpcEndpoint),
			otlptracegrpc.WithHeaders(cfg.Headers),
		)
	} else {
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(cfg.HttpEndpoint),
			otlptracehttp.WithHeaders(cfg.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	logExporter("traces", cfg.otlpConnConfig)

	return trace.NewTracerProvider(append(opts, trace.WithBatcher(exporter))...), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, cfg metricsConfig) (*metric.MeterProvider, error) {
	if !cfg.enabled() {
		return metric.NewMeterProvider(metric.WithResource(r)), nil
	}

	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	var exporter metric.Exporter
	var err error
	if cfg.protocol() == "grpc" {
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(cfg.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		)
	} else {
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(cfg.HttpEndpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	logExporter("metrics", cfg.otlpConnConfig)

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(cfg.interval()))),
		metric.WithResource(r),
	), nil
}
