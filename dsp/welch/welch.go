// Package welch estimates power spectral density via Welch's method:
// overlapping Hann-windowed segments, per-segment mean removal, and
// averaged one-sided periodograms with density scaling.
package welch

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// ErrEmptySignal is returned when the input has no samples.
var ErrEmptySignal = errors.New("welch: empty signal")

const defaultSegmentLength = 256

type config struct {
	segmentLength int
}

// Option configures the estimator.
type Option func(*config)

// WithSegmentLength overrides the nominal segment length. The effective
// length is still capped at the signal length.
func WithSegmentLength(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.segmentLength = n
		}
	}
}

// PSD estimates the one-sided power spectral density of sig.
//
// Segments of min(segmentLength, len(sig)) samples overlap by half, each
// has its mean removed and a periodic Hann window applied, and the
// periodograms are averaged. Segments are zero-padded to the next power
// of two for the FFT. Returned frequencies run from 0 to the Nyquist
// frequency; the density is scaled so that integrating it over frequency
// approximates the signal's variance.
func PSD(sig []float64, sampleRate float64, opts ...Option) (freqs, pxx []float64, err error) {
	if len(sig) == 0 {
		return nil, nil, ErrEmptySignal
	}
	if sampleRate <= 0 {
		return nil, nil, fmt.Errorf("welch: sample rate must be > 0: %g", sampleRate)
	}

	cfg := config{segmentLength: defaultSegmentLength}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	nperseg := cfg.segmentLength
	if nperseg > len(sig) {
		nperseg = len(sig)
	}
	step := nperseg - nperseg/2
	nfft := nextPowerOf2(nperseg)
	bins := nfft/2 + 1

	win := hannPeriodic(nperseg)
	var winSumSq float64
	for _, w := range win {
		winSumSq += w * w
	}

	plan, err := algofft.NewPlan64(nfft)
	if err != nil {
		return nil, nil, fmt.Errorf("welch: fft plan: %w", err)
	}

	var (
		seg     = make([]float64, nperseg)
		inData  = make([]complex128, nfft)
		outData = make([]complex128, nfft)
		re      = make([]float64, bins)
		im      = make([]float64, bins)
		power   = make([]float64, bins)
		acc     = make([]float64, bins)
		nSeg    int
	)

	for start := 0; start+nperseg <= len(sig); start += step {
		copy(seg, sig[start:start+nperseg])

		var mean float64
		for _, v := range seg {
			mean += v
		}
		mean /= float64(nperseg)
		for i := range seg {
			seg[i] -= mean
		}

		vecmath.MulBlockInPlace(seg, win)

		for i := range inData {
			inData[i] = 0
		}
		for i, v := range seg {
			inData[i] = complex(v, 0)
		}

		if err := plan.Forward(outData, inData); err != nil {
			return nil, nil, fmt.Errorf("welch: fft: %w", err)
		}

		for i := 0; i < bins; i++ {
			re[i] = real(outData[i])
			im[i] = imag(outData[i])
		}
		vecmath.Power(power, re, im)

		for i := range acc {
			acc[i] += power[i]
		}
		nSeg++
	}

	scale := 1 / (sampleRate * winSumSq * float64(nSeg))
	pxx = make([]float64, bins)
	for i := range pxx {
		pxx[i] = acc[i] * scale
	}
	// One-sided spectrum: double everything except DC and Nyquist.
	for i := 1; i < bins-1; i++ {
		pxx[i] *= 2
	}

	freqs = make([]float64, bins)
	for i := range freqs {
		freqs[i] = float64(i) * sampleRate / float64(nfft)
	}

	return freqs, pxx, nil
}

// hannPeriodic returns a periodic Hann window of length n, the variant
// used for spectral averaging.
func hannPeriodic(n int) []float64 {
	win := make([]float64, n)
	if n == 1 {
		win[0] = 1
		return win
	}
	for i := range win {
		win[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return win
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
