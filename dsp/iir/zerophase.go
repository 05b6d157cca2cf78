package iir

import (
	"errors"
	"fmt"
)

// ErrTooShort is returned by ZeroPhase when the signal is not longer than
// the reflect-padding required to suppress filter edge transients.
var ErrTooShort = errors.New("iir: signal too short for zero-phase filtering")

// PadLen returns the reflect-padding length used by ZeroPhase for a
// cascade of the given sections: three times the effective tap count
// (2 per section plus one).
func PadLen(coeffs []Coefficients) int {
	return 3 * (2*len(coeffs) + 1)
}

// ZeroPhase applies the cascade forward and backward over the signal so
// the net phase response is zero. The input is reflected (odd symmetry)
// by PadLen samples at both ends before filtering, which pins the
// extension to the edge values and suppresses startup transients.
//
// The input slice is not modified; a new slice of the same length is
// returned. An empty cascade is the identity.
func ZeroPhase(coeffs []Coefficients, signal []float64) ([]float64, error) {
	if len(coeffs) == 0 {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out, nil
	}

	padLen := PadLen(coeffs)
	if len(signal) <= padLen {
		return nil, fmt.Errorf("%w: %d samples, need more than %d", ErrTooShort, len(signal), padLen)
	}

	ext := oddExtend(signal, padLen)
	chain := NewChain(coeffs)

	chain.ProcessBlock(ext)
	reverse(ext)
	chain.Reset()
	chain.ProcessBlock(ext)
	reverse(ext)

	out := make([]float64, len(signal))
	copy(out, ext[padLen:len(ext)-padLen])
	return out, nil
}

// oddExtend mirrors pad samples around both signal edges with odd
// symmetry: ext[i] = 2*x[edge] - x[mirror].
func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)

	first := x[0]
	for i := 0; i < pad; i++ {
		ext[i] = 2*first - x[pad-i]
	}

	copy(ext[pad:], x)

	last := x[n-1]
	for i := 0; i < pad; i++ {
		ext[pad+n+i] = 2*last - x[n-2-i]
	}

	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
