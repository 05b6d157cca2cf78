package pipeline

import (
	"fmt"

	"github.com/cwbudde/algo-biosig/dsp/resample"
)

// Resample changes the effective sampling rate of the frame. Every
// operator downstream, and window sizing, observes the new rate.
type Resample struct {
	TargetRate float64
}

// NewResample creates a resample operator targeting targetRate (Hz).
func NewResample(targetRate float64) *Resample {
	return &Resample{TargetRate: targetRate}
}

func (r *Resample) Name() string { return "resample" }

func (r *Resample) Config() map[string]any {
	return map[string]any{"target_fs": r.TargetRate}
}

func (r *Resample) Validate(sampleRate float64) (float64, error) {
	if r.TargetRate <= 0 {
		return 0, fmt.Errorf("%w: resample target rate must be > 0: %g", ErrConfiguration, r.TargetRate)
	}
	return r.TargetRate, nil
}

// Process resamples every channel. When the target rate already matches
// the frame rate, the input frame is returned as-is (no recomputation,
// same backing data). Otherwise timestamps are regenerated anchored at
// the first original timestamp, spaced by the new sample period.
func (r *Resample) Process(f Frame) (Frame, Annotation, error) {
	if f.SampleRate == r.TargetRate {
		return f, nil, nil
	}

	out := make([][]float64, len(f.Data))
	for ch, row := range f.Data {
		resampled, err := resample.Resample(row, f.SampleRate, r.TargetRate)
		if err != nil {
			return Frame{}, nil, fmt.Errorf("resample: channel %d: %w", ch, err)
		}
		out[ch] = resampled
	}

	var start float64
	if len(f.Timestamps) > 0 {
		start = f.Timestamps[0]
	}
	n := 0
	if len(out) > 0 {
		n = len(out[0])
	}

	return Frame{
		Data:       out,
		Timestamps: resample.Timestamps(start, n, r.TargetRate),
		SampleRate: r.TargetRate,
	}, nil, nil
}
