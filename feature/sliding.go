package feature

import (
	"errors"
	"fmt"
)

// ErrWindowTooLong is returned when the configured window does not fit
// into the supplied buffer even once.
var ErrWindowTooLong = errors.New("feature: window longer than buffer")

// Windows is a lazy, finite, restartable scan over a channel-major
// buffer. Each call to Next extracts the cross-channel feature vector
// for the next window position.
type Windows struct {
	extractor *Extractor
	data      [][]float64
	schema    *Schema

	winSamples  int
	stepSamples int
	pos         int
}

// SlidingExtract prepares a window scan over data with a window and step
// given in seconds, converted via the extractor's sampling rate
// (fractional samples truncate). The scan is deterministic: the same
// buffer always yields the same sequence of vectors.
func (e *Extractor) SlidingExtract(data [][]float64, windowS, stepS float64) (*Windows, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("feature: no channels")
	}

	win := int(windowS * e.sampleRate)
	step := int(stepS * e.sampleRate)
	if win <= 0 || step <= 0 {
		return nil, fmt.Errorf("feature: window %gs and step %gs must be positive at %g Hz", windowS, stepS, e.sampleRate)
	}

	n := len(data[0])
	for ch, row := range data {
		if len(row) != n {
			return nil, fmt.Errorf("feature: channel %d has %d samples, channel 0 has %d", ch, len(row), n)
		}
	}
	if win > n {
		return nil, fmt.Errorf("%w: %d > %d", ErrWindowTooLong, win, n)
	}

	return &Windows{
		extractor:   e,
		data:        data,
		schema:      e.Schema(len(data)),
		winSamples:  win,
		stepSamples: step,
	}, nil
}

// Schema returns the cross-channel schema shared by all vectors of the
// scan.
func (w *Windows) Schema() *Schema {
	return w.schema
}

// Next extracts the feature vector at the current window position and
// advances by the step. It returns nil, false after the last full
// window.
func (w *Windows) Next() (*Vector, bool, error) {
	if w.pos+w.winSamples > len(w.data[0]) {
		return nil, false, nil
	}

	values := make([]float64, 0, w.schema.Len())
	for _, row := range w.data {
		chValues, err := w.extractor.extractChannel(row[w.pos : w.pos+w.winSamples])
		if err != nil {
			return nil, false, err
		}
		values = append(values, chValues...)
	}

	w.pos += w.stepSamples

	vec, err := w.schema.Vector(values)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Reset restarts the scan from the first window.
func (w *Windows) Reset() {
	w.pos = 0
}
