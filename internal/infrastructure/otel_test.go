package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

// TestTraceCorrelation tests trace ID correlation
func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
}

func TestBusinessMetrics_Record(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, metrics, 20*time.Millisecond, 2)
		RecordCacheLookup(ctx, metrics, true)
		RecordCacheLookup(ctx, metrics, false)
		RecordAggregation(ctx, metrics, "monthly_volume", time.Millisecond, 10)
		RecordExport(ctx, metrics, "tasks", "csv")
	})

	// nil metrics are a no-op
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, nil, time.Second, 1)
		RecordCacheLookup(ctx, nil, true)
		RecordAggregation(ctx, nil, "x", time.Second, 0)
		RecordExport(ctx, nil, "tasks", "xlsx")
	})
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordCacheLookup(context.Background(), metrics, true)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dataset_cache_hits")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPrometheusRegistryIsPerProvider(t *testing.T) {
	first, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer first.Shutdown(context.Background())

	second, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err, "a second provider must not collide on registration")
	defer second.Shutdown(context.Background())

	assert.NotSame(t, first.Registry, second.Registry)
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *OTelConfig
		wantErr bool
	}{
		{
			name: "everything disabled",
			cfg:  &OTelConfig{ServiceName: "t", ServiceVersion: "1"},
		},
		{
			name: "no exporters",
			cfg: &OTelConfig{ServiceName: "t", ServiceVersion: "1", EnableTracing: true, EnableMetrics: true,
				TraceExporter: "none", MetricExporter: "none"},
		},
		{
			name:    "unsupported trace exporter",
			cfg:     &OTelConfig{ServiceName: "t", ServiceVersion: "1", EnableTracing: true, TraceExporter: "jaeger"},
			wantErr: true,
		},
		{
			name:    "unsupported metric exporter",
			cfg:     &OTelConfig{ServiceName: "t", ServiceVersion: "1", EnableMetrics: true, MetricExporter: "statsd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}
