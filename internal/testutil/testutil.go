// Package testutil provides deterministic signal builders shared by
// tests across the repository.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine wave sampled at sampleRate.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// MultiSine generates a channel-major matrix where channel i carries a
// sine at freqs[i].
func MultiSine(freqs []float64, sampleRate float64, length int) [][]float64 {
	out := make([][]float64, len(freqs))
	for i, f := range freqs {
		out[i] = Sine(f, sampleRate, 1.0, length)
	}
	return out
}

// SeededNoise generates white noise in [-amplitude, amplitude] with a
// fixed seed for reproducibility.
func SeededNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Ramp generates a linear ramp from 0 to slope*(length-1).
func Ramp(slope float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = slope * float64(i)
	}
	return out
}

// AlmostEqual reports whether a and b differ by no more than eps.
func AlmostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
