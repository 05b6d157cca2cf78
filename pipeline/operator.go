// Package pipeline composes ordered chains of signal-processing
// operators over channel-major sample windows. Operator configuration is
// immutable and serializable; invalid parameters fail at chain
// construction time, before anything starts streaming.
package pipeline

import "errors"

// ErrConfiguration marks invalid operator parameters: cutoffs outside
// (0, Nyquist), non-positive orders or rates, unknown operator names.
// Pipelines refuse to build when any operator reports it.
var ErrConfiguration = errors.New("pipeline: invalid configuration")

// Frame is one window of multichannel samples travelling through the
// chain: channel-major data, per-sample timestamps (POSIX seconds), and
// the sampling rate the data is currently expressed at.
type Frame struct {
	Data       [][]float64
	Timestamps []float64
	SampleRate float64
}

// Channels returns the channel count of the frame.
func (f Frame) Channels() int {
	return len(f.Data)
}

// Samples returns the per-channel sample count of the frame.
func (f Frame) Samples() int {
	if len(f.Data) == 0 {
		return 0
	}
	return len(f.Data[0])
}

// Annotation carries side-channel diagnostics produced by one operator
// invocation. It never feeds back into the sample data.
type Annotation map[string]any

// Operator transforms one frame into another. Implementations hold only
// immutable configuration: Process must not mutate caller-owned data and
// must be deterministic for identical inputs.
type Operator interface {
	// Name identifies the operator kind in configs and history entries.
	Name() string

	// Config returns a serializable snapshot of the operator parameters.
	Config() map[string]any

	// Validate checks the configuration against the sampling rate the
	// operator will run at and returns the rate it emits (only Resample
	// changes it). Violations are reported as ErrConfiguration.
	Validate(sampleRate float64) (float64, error)

	// Process applies the transform and returns the resulting frame plus
	// diagnostics. The returned frame may alias the input when the
	// operator is a no-op.
	Process(f Frame) (Frame, Annotation, error)
}
