package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetupWithoutExporters(t *testing.T) {
	err := Setup(context.Background(), "test:telemetry", config{})
	if err != nil {
		t.Fatal(err)
	}

	_, span := Tracer("test").Start(context.Background(), "span")
	require.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, Shutdown(context.Background()))
}

func TestSetupForTestingOnce(t *testing.T) {
	cleanup := SetupForTesting("test:telemetry/once")
	defer cleanup()

	second := SetupForTesting("test:telemetry/once")
	second()
}

func TestConnConfigProtocol(t *testing.T) {
	require.False(t, otlpConnConfig{}.enabled())
	require.Equal(t, "http", otlpConnConfig{HttpEndpoint: "http://localhost:4318"}.protocol())

	both := otlpConnConfig{
		GrpcEndpoint: "http://localhost:4317",
		HttpEndpoint: "http://localhost:4318",
	}
	require.Equal(t, "grpc", both.protocol())
	require.Equal(t, "http://localhost:4317", both.endpoint())
}

func TestMetricsInterval(t *testing.T) {
	require.Equal(t, 15*time.Second, metricsConfig{}.interval())
	require.Equal(t, 2*time.Second, metricsConfig{IntervalSeconds: 2}.interval())
}

func TestTracesSampler(t *testing.T) {
	require.Contains(t, tracesConfig{}.sampler().Description(), "AlwaysOnSampler")
	require.Contains(t, tracesConfig{SampleRatio: 0.25}.sampler().Description(), "TraceIDRatioBased{0.25}")
}

func TestBrowserStatsWithoutChildren(t *testing.T) {
	count, rssMb, err := browserStats(context.Background())
	if err != nil {
		t.Skipf("process table not readable here: %v", err)
	}
	require.GreaterOrEqual(t, count, int64(0))
	require.GreaterOrEqual(t, rssMb, int64(0))
}
