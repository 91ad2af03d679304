package observability

import (
	"context"
	"testing"
	"time"

	"arenaapp/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	mp := NewMetricsProvider(cfg)
	reader := sdkmetric.NewManualReader()
	require.NoError(t, mp.start(context.Background(), reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetricsProvider_Records(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.RecordWager(ctx, "a", 1000)
	mp.RecordWager(ctx, "b", 1000)
	mp.RecordWager(ctx, "a", 100)
	mp.RecordSettlement(ctx, 2300, 115)
	mp.RecordClaim(ctx, 1820)
	mp.RecordClaim(ctx, 364)
	mp.RecordOperation(ctx, "settle", "", 3*time.Millisecond)
	mp.RecordOperation(ctx, "claim", "state", time.Millisecond)

	assert.Equal(t, int64(3), sumOf(t, reader, WagersTotal))
	assert.Equal(t, int64(2100), sumOf(t, reader, WageredVolume))
	assert.Equal(t, int64(1), sumOf(t, reader, SettlementsTotal))
	assert.Equal(t, int64(115), sumOf(t, reader, FeesCollected))
	assert.Equal(t, int64(2184), sumOf(t, reader, ClaimedVolume))
	assert.Equal(t, int64(2), sumOf(t, reader, OperationsTotal))
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		exporter string
	}{
		{"otel disabled", false, "stdout"},
		{"exporter none", true, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewTestConfig()
			cfg.OTelEnabled = tt.enabled
			cfg.OTelExporterType = tt.exporter

			mp := NewMetricsProvider(cfg)
			require.NoError(t, mp.Initialize(context.Background()))

			assert.NotPanics(t, func() {
				mp.RecordWager(context.Background(), "a", 10)
				mp.RecordSettlement(context.Background(), 10, 1)
				mp.RecordClaim(context.Background(), 9)
				mp.RecordOperation(context.Background(), "settle", "", time.Millisecond)
			})
			assert.NoError(t, mp.Shutdown(context.Background()))
		})
	}
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	assert.Error(t, err)
}
