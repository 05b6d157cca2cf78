// Package sink delivers per-tick results to their consumers: a
// structured log, a Kafka topic, or an in-memory collector for tests.
package sink

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-biosig/realtime"
)

// LogSink writes every result to a structured logger. It is the
// default sink of the daemon.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink on logger, defaulting to slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{log: logger.With("component", "sink")}
}

// Publish implements realtime.ResultSink.
func (l *LogSink) Publish(_ context.Context, r realtime.Result) error {
	l.log.Info("prediction",
		"session_id", r.SessionID,
		"prediction", r.Prediction,
		"latency_s", r.LatencyS,
		"window_end", r.WindowEnd)
	return nil
}

// Collector buffers published results in memory for assertions.
type Collector struct {
	mu      sync.Mutex
	results []realtime.Result
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Publish implements realtime.ResultSink.
func (c *Collector) Publish(_ context.Context, r realtime.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
	return nil
}

// Results returns a copy of everything published so far.
func (c *Collector) Results() []realtime.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]realtime.Result, len(c.results))
	copy(out, c.results)
	return out
}
