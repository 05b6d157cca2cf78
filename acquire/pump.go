package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-biosig/realtime"
)

// DefaultBatchSize is the per-read sample count when none is given.
const DefaultBatchSize = 32

// Pump is the producer side of the loop: it reads batches from a
// source at the source sampling rate and pushes them into the ring
// buffer until the context is cancelled. Zero-length reads are
// transient and only pause the pump for one batch interval; the stream
// may resume.
type Pump struct {
	src   Source
	buf   *realtime.RingBuffer
	batch int
	log   *slog.Logger
}

// NewPump wires a source to a buffer. batchSize ≤ 0 selects
// DefaultBatchSize; a nil logger selects slog.Default.
func NewPump(src Source, buf *realtime.RingBuffer, batchSize int, logger *slog.Logger) *Pump {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pump{
		src:   src,
		buf:   buf,
		batch: batchSize,
		log:   logger.With("component", "pump"),
	}
}

// Run starts the source and moves samples until ctx is done, then stops
// the source. Read errors are fatal; the acquisition hardware going
// away is not something the loop can recover on its own.
func (p *Pump) Run(ctx context.Context) error {
	if err := p.src.Start(); err != nil {
		return fmt.Errorf("acquire: start source: %w", err)
	}
	defer func() {
		if err := p.src.Stop(); err != nil {
			p.log.Warn("stopping source failed", "error", err)
		}
	}()

	interval := time.Duration(float64(p.batch) / p.src.SampleRate() * float64(time.Second))
	p.log.Info("pump started",
		"sample_rate", p.src.SampleRate(),
		"channels", len(p.src.ChannelLabels()),
		"batch", p.batch)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		data, _, err := p.src.Read(p.batch)
		if err != nil {
			return fmt.Errorf("acquire: read: %w", err)
		}
		if len(data) == 0 || len(data[0]) == 0 {
			continue
		}
		if err := p.buf.Push(data); err != nil {
			return fmt.Errorf("acquire: push: %w", err)
		}
	}
}
