// Package wavelet implements multi-level discrete wavelet decomposition
// with Daubechies filters and symmetric signal extension.
package wavelet

import (
	"errors"
	"fmt"
)

// ErrEmptySignal is returned when the input has no samples.
var ErrEmptySignal = errors.New("wavelet: empty signal")

// db4DecLow is the Daubechies-4 decomposition lowpass filter
// (8 taps, 4 vanishing moments).
var db4DecLow = []float64{
	-0.010597401784997278,
	0.032883011666982945,
	0.030841381835986965,
	-0.18703481171888114,
	-0.02798376941698385,
	0.6308807679295904,
	0.7148465705525415,
	0.23037781330885523,
}

// DefaultLevel is the decomposition depth used when none is given.
const DefaultLevel = 3

// Decompose performs a level-deep discrete wavelet decomposition of sig
// with the db4 filter pair. The returned bands are ordered coarsest
// first: the approximation at the deepest level followed by the detail
// coefficients from deepest to shallowest, level+1 bands in total.
//
// The decomposition stops early when the running approximation becomes
// shorter than the filter, in which case fewer bands are returned.
func Decompose(sig []float64, level int) ([][]float64, error) {
	if len(sig) == 0 {
		return nil, ErrEmptySignal
	}
	if level <= 0 {
		return nil, fmt.Errorf("wavelet: level must be > 0: %d", level)
	}

	lo := db4DecLow
	hi := qmf(lo)

	details := make([][]float64, 0, level)
	approx := sig
	for l := 0; l < level && len(approx) >= 2; l++ {
		a := analyze(approx, lo)
		d := analyze(approx, hi)
		details = append(details, d)
		approx = a
	}

	bands := make([][]float64, 0, len(details)+1)
	bands = append(bands, approx)
	for i := len(details) - 1; i >= 0; i-- {
		bands = append(bands, details[i])
	}
	return bands, nil
}

// Energies returns the per-band sum of squared coefficients of a
// level-deep db4 decomposition, coarsest band first.
func Energies(sig []float64, level int) ([]float64, error) {
	bands, err := Decompose(sig, level)
	if err != nil {
		return nil, err
	}

	energies := make([]float64, len(bands))
	for i, band := range bands {
		var e float64
		for _, c := range band {
			e += c * c
		}
		energies[i] = e
	}
	return energies, nil
}

// analyze convolves x with filter f over a symmetric (half-point)
// extension and downsamples by two. The output has
// floor((len(x)+len(f)-1)/2) coefficients.
func analyze(x, f []float64) []float64 {
	n := len(x)
	fl := len(f)
	outLen := (n + fl - 1) / 2
	out := make([]float64, outLen)

	for k := 0; k < outLen; k++ {
		// Full-convolution index of this output coefficient.
		center := 2*k + 1
		var acc float64
		for j := 0; j < fl; j++ {
			acc += f[j] * symmetricAt(x, center-j)
		}
		out[k] = acc
	}
	return out
}

// symmetricAt indexes x with half-point symmetric boundary handling:
// ... x1 x0 | x0 x1 ... xn-1 | xn-1 xn-2 ...
func symmetricAt(x []float64, i int) float64 {
	n := len(x)
	if n == 1 {
		return x[0]
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return x[i]
}

// qmf derives the highpass decomposition filter from the lowpass one via
// the quadrature mirror relation.
func qmf(lo []float64) []float64 {
	n := len(lo)
	hi := make([]float64, n)
	for k := range hi {
		v := lo[n-1-k]
		if k%2 != 0 {
			v = -v
		}
		hi[k] = v
	}
	return hi
}
