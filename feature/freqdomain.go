package feature

import (
	"gonum.org/v1/gonum/integrate"

	"github.com/cwbudde/algo-biosig/dsp/welch"
)

// freqDomain computes the frequency-domain group for one channel window:
// total spectral power (trapezoidal integral of the Welch PSD over
// frequency) and median frequency (where the cumulative PSD reaches half
// of its total, linearly interpolated; zero for an all-zero spectrum).
func freqDomain(sig []float64, sampleRate float64) (power, medianFreq float64, err error) {
	freqs, pxx, err := welch.PSD(sig, sampleRate)
	if err != nil {
		return 0, 0, err
	}

	power = integrate.Trapezoidal(freqs, pxx)

	csum := make([]float64, len(pxx))
	var running float64
	for i, p := range pxx {
		running += p
		csum[i] = running
	}
	if running <= 0 {
		return power, 0, nil
	}

	medianFreq = interp(running/2, csum, freqs)
	return power, medianFreq, nil
}

// interp linearly interpolates fp at position x over the non-decreasing
// grid xp, clamping beyond the ends.
func interp(x float64, xp, fp []float64) float64 {
	if x <= xp[0] {
		return fp[0]
	}
	last := len(xp) - 1
	if x >= xp[last] {
		return fp[last]
	}

	for i := 1; i <= last; i++ {
		if x <= xp[i] {
			span := xp[i] - xp[i-1]
			if span == 0 {
				return fp[i]
			}
			frac := (x - xp[i-1]) / span
			return fp[i-1] + frac*(fp[i]-fp[i-1])
		}
	}
	return fp[last]
}
