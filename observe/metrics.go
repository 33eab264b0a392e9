package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records store operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records a completed operation with duration and error status.
	RecordOp(ctx context.Context, op Op, duration time.Duration, err error)

	// RecordJoin records a caller joining an in-flight request.
	RecordJoin(ctx context.Context, op Op)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	joinCount    metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"siren.op.total",
		metric.WithDescription("Total number of store network operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"siren.op.errors",
		metric.WithDescription("Total number of failed store network operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	joinCount, err := meter.Int64Counter(
		"siren.fetch.joined",
		metric.WithDescription("Fetches served by an in-flight request"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"siren.op.duration_ms",
		metric.WithDescription("Store network operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		joinCount:    joinCount,
		durationHist: durationHist,
	}, nil
}

func opAttributes(op Op) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("siren.op", op.Name),
		attribute.Bool("siren.bypass", op.Bypass),
	)
}

func (m *metricsImpl) RecordOp(ctx context.Context, op Op, duration time.Duration, err error) {
	opt := opAttributes(op)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordJoin(ctx context.Context, op Op) {
	m.joinCount.Add(ctx, 1, opAttributes(op))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordOp(ctx context.Context, op Op, duration time.Duration, err error) {}
func (noopMetrics) RecordJoin(ctx context.Context, op Op)                                  {}
