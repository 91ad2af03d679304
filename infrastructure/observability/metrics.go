package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"arenaapp/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// MetricsProvider manages OpenTelemetry metrics for the arena engine
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	operationsCounter     metric.Int64Counter
	operationDurationHist metric.Float64Histogram
	wagersCounter         metric.Int64Counter
	wageredVolumeCounter  metric.Int64Counter
	settlementsCounter    metric.Int64Counter
	settledVolumeCounter  metric.Int64Counter
	feesCounter           metric.Int64Counter
	claimsCounter         metric.Int64Counter
	claimedVolumeCounter  metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "stdout", "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		log.Info("Using stdout metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.start(ctx, reader); err != nil {
		return err
	}
	otel.SetMeterProvider(mp.meterProvider)

	log.Info("Metrics provider initialized successfully")
	return nil
}

// start builds the meter provider around reader and creates the instruments.
// Callers hold mp.mu.
func (mp *MetricsProvider) start(ctx context.Context, reader sdkmetric.Reader) error {
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("arena")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.operationsCounter, err = mp.meter.Int64Counter(
		OperationsTotal,
		metric.WithDescription("Total number of engine operations by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create operations counter: %w", err)
	}

	mp.operationDurationHist, err = mp.meter.Float64Histogram(
		OperationDuration,
		metric.WithDescription("Duration of engine operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create operation duration histogram: %w", err)
	}

	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&mp.wagersCounter, WagersTotal, "Total number of stakes and wagers placed", "1"},
		{&mp.wageredVolumeCounter, WageredVolume, "Lamports deposited into contest escrows", "lamports"},
		{&mp.settlementsCounter, SettlementsTotal, "Total number of settled contests", "1"},
		{&mp.settledVolumeCounter, SettledVolume, "Total pools of settled contests", "lamports"},
		{&mp.feesCounter, FeesCollected, "Fees paid to the treasury", "lamports"},
		{&mp.claimsCounter, ClaimsTotal, "Total number of paid claims", "1"},
		{&mp.claimedVolumeCounter, ClaimedVolume, "Lamports paid out to winners", "lamports"},
	}
	for _, c := range counters {
		*c.dst, err = mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordOperation records one engine operation and its error kind
func (mp *MetricsProvider) RecordOperation(ctx context.Context, operation string, errorKind string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}
	if errorKind == "" {
		errorKind = ErrorKindNone
	}

	mp.operationsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelOperation, operation),
		attribute.String(LabelErrorKind, errorKind),
	))
	mp.operationDurationHist.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(LabelOperation, operation),
	))
}

// RecordWager records funds entering a contest on one side
func (mp *MetricsProvider) RecordWager(ctx context.Context, side string, amount int64) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.String(LabelSide, side))
	mp.wagersCounter.Add(ctx, 1, attrs)
	mp.wageredVolumeCounter.Add(ctx, amount, attrs)
}

// RecordSettlement records a settled contest
func (mp *MetricsProvider) RecordSettlement(ctx context.Context, totalPool, fee int64) {
	if !mp.isEnabled() {
		return
	}

	mp.settlementsCounter.Add(ctx, 1)
	mp.settledVolumeCounter.Add(ctx, totalPool)
	mp.feesCounter.Add(ctx, fee)
}

// RecordClaim records a paid claim
func (mp *MetricsProvider) RecordClaim(ctx context.Context, payout int64) {
	if !mp.isEnabled() {
		return
	}

	mp.claimsCounter.Add(ctx, 1)
	mp.claimedVolumeCounter.Add(ctx, payout)
}

// isEnabled reports whether instruments exist to record into
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}
