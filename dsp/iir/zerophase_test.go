package iir

import (
	"errors"
	"math"
	"testing"
)

func sine(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = math.Sin(step * float64(i))
	}
	return out
}

// goertzelPower measures signal power at a single frequency.
func goertzelPower(x []float64, freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	coeff := 2 * math.Cos(w)
	var s0, s1, s2 float64
	for _, v := range x {
		s0 = v + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	return s1*s1 + s2*s2 - coeff*s1*s2
}

func TestZeroPhase_PreservesLengthAndInput(t *testing.T) {
	in := sine(10, 1000, 500)
	orig := make([]float64, len(in))
	copy(orig, in)

	out, err := ZeroPhase(ButterworthLP(100, 4, 1000), in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != orig[i] {
			t.Fatal("input slice was modified")
		}
	}
}

func TestZeroPhase_NoLagOnPassbandSine(t *testing.T) {
	const (
		fs   = 1000.0
		freq = 20.0
	)
	in := sine(freq, fs, 1000)

	out, err := ZeroPhase(ButterworthBP(1, 100, 4, fs), in)
	if err != nil {
		t.Fatal(err)
	}

	// Cross-correlate over a small lag range; the peak must be at lag 0.
	lo, hi := 100, len(in)-100
	bestLag, bestCorr := 0, math.Inf(-1)
	for lag := -5; lag <= 5; lag++ {
		var c float64
		for i := lo; i < hi; i++ {
			c += in[i] * out[i+lag]
		}
		if c > bestCorr {
			bestCorr = c
			bestLag = lag
		}
	}
	if bestLag != 0 {
		t.Fatalf("correlation peak at lag %d, want 0", bestLag)
	}
}

func TestZeroPhase_NotchAttenuatesCenter(t *testing.T) {
	const fs = 1000.0
	in := sine(50, fs, 1000)

	out, err := ZeroPhase([]Coefficients{Notch(50, 30, fs)}, in)
	if err != nil {
		t.Fatal(err)
	}

	// Measure away from the edges where reflect padding leaks a little.
	before := goertzelPower(in[200:800], 50, fs)
	after := goertzelPower(out[200:800], 50, fs)
	if after >= before/10 {
		t.Fatalf("50 Hz power %g -> %g, want at least 10x reduction", before, after)
	}
}

func TestZeroPhase_TooShort(t *testing.T) {
	coeffs := []Coefficients{Notch(50, 30, 1000)}
	_, err := ZeroPhase(coeffs, sine(50, 1000, PadLen(coeffs)))
	if !errors.Is(err, ErrTooShort) {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
}

func TestZeroPhase_EmptyCascadeIsIdentity(t *testing.T) {
	in := sine(10, 1000, 64)
	out, err := ZeroPhase(nil, in)
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}
