package pipeline

import (
	"fmt"

	"github.com/cwbudde/algo-biosig/dsp/iir"
)

// Notch is a narrowband band-reject operator applied with zero-phase
// filtering, typically used to remove powerline interference.
type Notch struct {
	Freq float64
	Q    float64
}

// NewNotch creates a notch operator at freq (Hz) with quality factor q.
func NewNotch(freq, q float64) *Notch {
	return &Notch{Freq: freq, Q: q}
}

func (n *Notch) Name() string { return "notch" }

func (n *Notch) Config() map[string]any {
	return map[string]any{"freq": n.Freq, "q": n.Q}
}

func (n *Notch) Validate(sampleRate float64) (float64, error) {
	if err := checkBand(n.Freq, sampleRate, "notch frequency"); err != nil {
		return 0, err
	}
	if n.Q <= 0 {
		return 0, fmt.Errorf("%w: notch q must be > 0: %g", ErrConfiguration, n.Q)
	}
	return sampleRate, nil
}

func (n *Notch) Process(f Frame) (Frame, Annotation, error) {
	coeffs := []iir.Coefficients{iir.Notch(n.Freq, n.Q, f.SampleRate)}
	out, err := zeroPhaseEach(f.Data, coeffs)
	if err != nil {
		return Frame{}, nil, fmt.Errorf("notch: %w", err)
	}
	return Frame{Data: out, Timestamps: f.Timestamps, SampleRate: f.SampleRate}, nil, nil
}

// Bandpass is a zero-phase Butterworth bandpass operator.
type Bandpass struct {
	Low   float64
	High  float64
	Order int
}

// NewBandpass creates a bandpass operator between low and high (Hz).
func NewBandpass(low, high float64, order int) *Bandpass {
	return &Bandpass{Low: low, High: high, Order: order}
}

func (b *Bandpass) Name() string { return "bandpass" }

func (b *Bandpass) Config() map[string]any {
	return map[string]any{"low": b.Low, "high": b.High, "order": b.Order}
}

func (b *Bandpass) Validate(sampleRate float64) (float64, error) {
	if err := checkOrder(b.Order, "bandpass"); err != nil {
		return 0, err
	}
	if err := checkBand(b.Low, sampleRate, "bandpass low edge"); err != nil {
		return 0, err
	}
	if err := checkBand(b.High, sampleRate, "bandpass high edge"); err != nil {
		return 0, err
	}
	if b.Low >= b.High {
		return 0, fmt.Errorf("%w: bandpass edges inverted: %g >= %g", ErrConfiguration, b.Low, b.High)
	}
	return sampleRate, nil
}

func (b *Bandpass) Process(f Frame) (Frame, Annotation, error) {
	coeffs := iir.ButterworthBP(b.Low, b.High, b.Order, f.SampleRate)
	out, err := zeroPhaseEach(f.Data, coeffs)
	if err != nil {
		return Frame{}, nil, fmt.Errorf("bandpass: %w", err)
	}
	return Frame{Data: out, Timestamps: f.Timestamps, SampleRate: f.SampleRate}, nil, nil
}

// Highpass is a zero-phase Butterworth highpass operator.
type Highpass struct {
	Cutoff float64
	Order  int
}

// NewHighpass creates a highpass operator with the given cutoff (Hz).
func NewHighpass(cutoff float64, order int) *Highpass {
	return &Highpass{Cutoff: cutoff, Order: order}
}

func (h *Highpass) Name() string { return "highpass" }

func (h *Highpass) Config() map[string]any {
	return map[string]any{"cutoff": h.Cutoff, "order": h.Order}
}

func (h *Highpass) Validate(sampleRate float64) (float64, error) {
	if err := checkOrder(h.Order, "highpass"); err != nil {
		return 0, err
	}
	if err := checkBand(h.Cutoff, sampleRate, "highpass cutoff"); err != nil {
		return 0, err
	}
	return sampleRate, nil
}

func (h *Highpass) Process(f Frame) (Frame, Annotation, error) {
	coeffs := iir.ButterworthHP(h.Cutoff, h.Order, f.SampleRate)
	out, err := zeroPhaseEach(f.Data, coeffs)
	if err != nil {
		return Frame{}, nil, fmt.Errorf("highpass: %w", err)
	}
	return Frame{Data: out, Timestamps: f.Timestamps, SampleRate: f.SampleRate}, nil, nil
}

// Lowpass is a zero-phase Butterworth lowpass operator.
type Lowpass struct {
	Cutoff float64
	Order  int
}

// NewLowpass creates a lowpass operator with the given cutoff (Hz).
func NewLowpass(cutoff float64, order int) *Lowpass {
	return &Lowpass{Cutoff: cutoff, Order: order}
}

func (l *Lowpass) Name() string { return "lowpass" }

func (l *Lowpass) Config() map[string]any {
	return map[string]any{"cutoff": l.Cutoff, "order": l.Order}
}

func (l *Lowpass) Validate(sampleRate float64) (float64, error) {
	if err := checkOrder(l.Order, "lowpass"); err != nil {
		return 0, err
	}
	if err := checkBand(l.Cutoff, sampleRate, "lowpass cutoff"); err != nil {
		return 0, err
	}
	return sampleRate, nil
}

func (l *Lowpass) Process(f Frame) (Frame, Annotation, error) {
	coeffs := iir.ButterworthLP(l.Cutoff, l.Order, f.SampleRate)
	out, err := zeroPhaseEach(f.Data, coeffs)
	if err != nil {
		return Frame{}, nil, fmt.Errorf("lowpass: %w", err)
	}
	return Frame{Data: out, Timestamps: f.Timestamps, SampleRate: f.SampleRate}, nil, nil
}

// zeroPhaseEach filters every channel independently through the cascade.
func zeroPhaseEach(data [][]float64, coeffs []iir.Coefficients) ([][]float64, error) {
	out := make([][]float64, len(data))
	for ch, row := range data {
		filtered, err := iir.ZeroPhase(coeffs, row)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		out[ch] = filtered
	}
	return out, nil
}

func checkBand(freq, sampleRate float64, what string) error {
	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist {
		return fmt.Errorf("%w: %s %g Hz outside (0, %g)", ErrConfiguration, what, freq, nyquist)
	}
	return nil
}

func checkOrder(order int, what string) error {
	if order <= 0 {
		return fmt.Errorf("%w: %s order must be >= 1: %d", ErrConfiguration, what, order)
	}
	return nil
}
