package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for all metrics.
const meterName = "github.com/cwbudde/algo-biosig"

// tickLatencyBuckets covers the range of per-tick processing latencies
// expected at biosignal window sizes (in seconds).
var tickLatencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// Metrics holds the metric instruments recorded by the streaming loop.
// All fields are safe for concurrent use.
type Metrics struct {
	// TickLatency tracks per-tick processing latency (pipeline +
	// extraction + inference), excluding pacing sleeps.
	TickLatency metric.Float64Histogram

	// Overruns counts ticks whose processing exceeded the step interval.
	Overruns metric.Int64Counter

	// PredictorErrors counts ticks whose prediction failed even after
	// the positional retry.
	PredictorErrors metric.Int64Counter

	// SinkErrors counts failed result publications.
	SinkErrors metric.Int64Counter

	// BufferedSamples observes the current per-channel fill of the ring
	// buffer.
	BufferedSamples metric.Int64ObservableGauge
}

// NewMetrics creates the instrument set on the given provider. The
// bufferSize callback feeds the buffered-samples gauge; pass nil to
// leave the gauge unregistered.
func NewMetrics(mp metric.MeterProvider, bufferSize func() int64) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TickLatency, err = m.Float64Histogram("biosig.tick.latency",
		metric.WithDescription("Per-tick processing latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(tickLatencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Overruns, err = m.Int64Counter("biosig.tick.overruns",
		metric.WithDescription("Ticks whose processing exceeded the step interval."),
	); err != nil {
		return nil, err
	}
	if met.PredictorErrors, err = m.Int64Counter("biosig.predictor.errors",
		metric.WithDescription("Predictions that failed after the positional retry."),
	); err != nil {
		return nil, err
	}
	if met.SinkErrors, err = m.Int64Counter("biosig.sink.errors",
		metric.WithDescription("Failed result publications."),
	); err != nil {
		return nil, err
	}

	if bufferSize != nil {
		met.BufferedSamples, err = m.Int64ObservableGauge("biosig.buffer.samples",
			metric.WithDescription("Per-channel samples currently buffered."),
			metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
				obs.Observe(bufferSize())
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instrument set built on the
// global meter provider, without the buffer gauge. Tests should use
// NewMetrics with their own provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider(), nil)
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}
