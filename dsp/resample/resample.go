// Package resample converts signals between sampling rates using direct
// windowed-sinc interpolation with a Kaiser window.
//
// Output length is always round(inputLength * targetRate/sourceRate), so
// window bookkeeping downstream of a rate change stays exact.
package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRate indicates a non-positive input or output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
	// ErrEmptySignal indicates an input with no samples.
	ErrEmptySignal = errors.New("resample: empty signal")
)

const (
	tapsPerSide = 32
	kaiserBeta  = 7.5
)

// OutputLength returns the number of samples produced when resampling n
// input samples from sourceRate to targetRate.
func OutputLength(n int, sourceRate, targetRate float64) int {
	return int(math.Round(float64(n) * targetRate / sourceRate))
}

// Resample converts sig from sourceRate to targetRate. When the rates
// are equal, the input slice is returned unchanged (no copy). The
// anti-aliasing cutoff follows the lower of the two Nyquist frequencies.
func Resample(sig []float64, sourceRate, targetRate float64) ([]float64, error) {
	if sourceRate <= 0 || targetRate <= 0 {
		return nil, ErrInvalidRate
	}
	if len(sig) == 0 {
		return nil, ErrEmptySignal
	}
	if sourceRate == targetRate {
		return sig, nil
	}

	ratio := targetRate / sourceRate
	outLen := OutputLength(len(sig), sourceRate, targetRate)
	out := make([]float64, outLen)

	// Cutoff in cycles per input sample; pulled below the input Nyquist
	// when downsampling so the folded band is attenuated.
	fc := 0.5 * math.Min(1, ratio)

	for j := range out {
		t := float64(j) / ratio
		center := int(math.Floor(t))

		var acc, wsum float64
		for i := center - tapsPerSide + 1; i <= center+tapsPerSide; i++ {
			if i < 0 || i >= len(sig) {
				continue
			}
			d := t - float64(i)
			w := 2 * fc * sinc(2*fc*d) * kaiser(d/float64(tapsPerSide), kaiserBeta)
			acc += sig[i] * w
			wsum += w
		}
		if wsum != 0 {
			acc /= wsum
		}
		out[j] = acc
	}

	return out, nil
}

// Timestamps regenerates a timestamp sequence for n resampled samples,
// anchored at start and spaced by 1/targetRate.
func Timestamps(start float64, n int, targetRate float64) []float64 {
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = start + float64(i)/targetRate
	}
	return ts
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// kaiser evaluates a Kaiser window at normalized position x in [-1, 1].
func kaiser(x, beta float64) float64 {
	if x < -1 || x > 1 {
		return 0
	}
	return besselI0(beta*math.Sqrt(1-x*x)) / besselI0(beta)
}

// besselI0 is the zeroth-order modified Bessel function of the first
// kind, evaluated via its power series.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	half := x / 2
	for k := 1; k < 32; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < 1e-16*sum {
			break
		}
	}
	return sum
}
