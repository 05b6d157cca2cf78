package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-biosig/feature"
	"github.com/cwbudde/algo-biosig/internal/observe"
	"github.com/cwbudde/algo-biosig/pipeline"
)

// State is the scheduler lifecycle state.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrAlreadyStarted is returned when Run is entered a second time; a
// scheduler instance runs at most once.
var ErrAlreadyStarted = errors.New("realtime: scheduler already started")

// DefaultIdleBackoff is the retry delay when the buffer does not yet
// hold a full window.
const DefaultIdleBackoff = 5 * time.Millisecond

// Result is forwarded to the sink once per tick that completes
// inference.
type Result struct {
	SessionID  uuid.UUID  `json:"session_id"`
	Prediction Prediction `json:"prediction"`
	LatencyS   float64    `json:"latency_s"`
	WindowEnd  float64    `json:"window_end"`
}

// ResultSink receives one Result per successful tick. Publish failures
// are logged and counted, never fatal.
type ResultSink interface {
	Publish(ctx context.Context, r Result) error
}

// SchedulerConfig assembles the collaborators and timing of a streaming
// loop.
type SchedulerConfig struct {
	Buffer    *RingBuffer
	Pipeline  *pipeline.Pipeline
	Extractor *feature.Extractor
	Predictor Predictor
	Sink      ResultSink

	// WindowS and StepS are the window length and tick interval in
	// seconds. The window is converted to samples at the pipeline input
	// rate, truncating.
	WindowS float64
	StepS   float64

	// IdleBackoff overrides DefaultIdleBackoff when positive.
	IdleBackoff time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Metrics is optional; nil disables instrumentation.
	Metrics *observe.Metrics
}

// Scheduler is the single consumer of the ring buffer: every tick it
// pulls the freshest window, runs the pipeline and extractor, invokes
// the predictor, and paces to the step interval. All collaborators are
// called from the Run goroutine only.
type Scheduler struct {
	buffer    *RingBuffer
	pipe      *pipeline.Pipeline
	extractor *feature.Extractor
	predictor Predictor
	sink      ResultSink

	windowSamples int
	step          time.Duration
	idleBackoff   time.Duration
	sessionID     uuid.UUID

	log     *slog.Logger
	metrics *observe.Metrics
	state   atomic.Int32
}

// NewScheduler validates the configuration and returns a scheduler in
// the Idle state. Misconfiguration fails here, before anything streams.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Buffer == nil || cfg.Pipeline == nil || cfg.Extractor == nil || cfg.Predictor == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("%w: scheduler requires buffer, pipeline, extractor, predictor, and sink", pipeline.ErrConfiguration)
	}
	if cfg.WindowS <= 0 || cfg.StepS <= 0 {
		return nil, fmt.Errorf("%w: window %gs and step %gs must be positive", pipeline.ErrConfiguration, cfg.WindowS, cfg.StepS)
	}

	windowSamples := int(cfg.WindowS * cfg.Pipeline.InputRate())
	if windowSamples <= 0 {
		return nil, fmt.Errorf("%w: window of %gs holds no samples at %g Hz", pipeline.ErrConfiguration, cfg.WindowS, cfg.Pipeline.InputRate())
	}
	if windowSamples > cfg.Buffer.Capacity() {
		return nil, fmt.Errorf("%w: window of %d samples exceeds buffer capacity %d", pipeline.ErrConfiguration, windowSamples, cfg.Buffer.Capacity())
	}
	if cfg.Extractor.SampleRate() != cfg.Pipeline.OutputRate() {
		return nil, fmt.Errorf("%w: extractor rate %g Hz does not match pipeline output rate %g Hz",
			pipeline.ErrConfiguration, cfg.Extractor.SampleRate(), cfg.Pipeline.OutputRate())
	}

	idle := cfg.IdleBackoff
	if idle <= 0 {
		idle = DefaultIdleBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		buffer:        cfg.Buffer,
		pipe:          cfg.Pipeline,
		extractor:     cfg.Extractor,
		predictor:     cfg.Predictor,
		sink:          cfg.Sink,
		windowSamples: windowSamples,
		step:          time.Duration(cfg.StepS * float64(time.Second)),
		idleBackoff:   idle,
		sessionID:     uuid.New(),
		log:           logger.With("component", "scheduler"),
		metrics:       cfg.Metrics,
	}
	s.state.Store(int32(Idle))
	return s, nil
}

// SessionID identifies this scheduler run in published results.
func (s *Scheduler) SessionID() uuid.UUID {
	return s.sessionID
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// WindowSamples returns the per-tick window length in samples at the
// input rate.
func (s *Scheduler) WindowSamples() int {
	return s.windowSamples
}

// Run drives the loop until ctx is cancelled. It may be entered once
// per instance; a second call returns ErrAlreadyStarted. Everything
// inside the loop is recoverable: insufficient data backs off,
// predictor and sink failures are logged and counted. Cancellation is
// observed once per iteration and during both sleeps, so shutdown
// latency is bounded by one backoff or the remainder of the current
// tick.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrAlreadyStarted
	}
	defer s.state.Store(int32(Stopped))

	s.log.Info("scheduler started",
		"session_id", s.sessionID,
		"window_samples", s.windowSamples,
		"step", s.step)

	for {
		if ctx.Err() != nil {
			s.state.Store(int32(Stopping))
			s.log.Info("scheduler stopping", "session_id", s.sessionID)
			return nil
		}

		start := time.Now()

		window, ok := s.buffer.ReadLast(s.windowSamples)
		if !ok {
			if !s.sleep(ctx, s.idleBackoff) {
				s.state.Store(int32(Stopping))
				return nil
			}
			continue
		}

		s.tick(ctx, start, window)

		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.TickLatency.Record(ctx, elapsed.Seconds())
		}

		if remaining := s.step - elapsed; remaining > 0 {
			if !s.sleep(ctx, remaining) {
				s.state.Store(int32(Stopping))
				return nil
			}
		} else {
			if s.metrics != nil {
				s.metrics.Overruns.Add(ctx, 1)
			}
			s.log.Debug("tick overran step interval", "elapsed", elapsed, "step", s.step)
		}
	}
}

// tick processes one full window. Failures are logged, never returned.
func (s *Scheduler) tick(ctx context.Context, start time.Time, window [][]float64) {
	// Synthetic per-sample timestamps derived from index and rate; the
	// buffer holds no wall-clock information.
	rate := s.pipe.InputRate()
	ts := make([]float64, s.windowSamples)
	for i := range ts {
		ts[i] = float64(i) / rate
	}

	out, _, err := s.pipe.Run(pipeline.Frame{Data: window, Timestamps: ts, SampleRate: rate})
	if err != nil {
		s.log.Warn("pipeline failed", "error", err)
		return
	}

	vec, err := s.extractor.ExtractFrame(out.Data)
	if err != nil {
		s.log.Warn("feature extraction failed", "error", err)
		return
	}

	prediction, err := s.predict(vec)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PredictorErrors.Add(ctx, 1)
		}
		s.log.Warn("prediction failed", "error", err)
		return
	}

	windowEnd := 0.0
	if n := len(out.Timestamps); n > 0 {
		windowEnd = out.Timestamps[n-1]
	}

	result := Result{
		SessionID:  s.sessionID,
		Prediction: prediction,
		LatencyS:   time.Since(start).Seconds(),
		WindowEnd:  windowEnd,
	}
	if err := s.sink.Publish(ctx, result); err != nil {
		if s.metrics != nil {
			s.metrics.SinkErrors.Add(ctx, 1)
		}
		s.log.Warn("sink publish failed", "error", err)
	}
}

// predict invokes the predictor, retrying exactly once with the flat
// value vector when the keyed form is rejected and the predictor
// supports positional input.
func (s *Scheduler) predict(vec *feature.Vector) (Prediction, error) {
	prediction, err := s.predictor.Predict(vec)
	if err == nil || !errors.Is(err, ErrInputShape) {
		return prediction, err
	}

	positional, ok := s.predictor.(PositionalPredictor)
	if !ok {
		return nil, err
	}
	return positional.PredictValues(vec.Values())
}

// sleep waits for d or until ctx is done, reporting false on
// cancellation.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
