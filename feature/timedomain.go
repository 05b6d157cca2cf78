package feature

import (
	"math"
	"sort"
)

// timeFeatures holds the time-domain group for one channel window.
type timeFeatures struct {
	mean     float64
	std      float64
	rms      float64
	iemg     float64 // integrated absolute value
	mav      float64 // mean absolute value
	wl       float64 // waveform length
	zc       float64 // zero-crossing count
	median   float64
	iqr      float64
	skew     float64
	kurtosis float64 // excess kurtosis
}

// timeDomain computes all time-domain features in a single pass, using
// Welford's online algorithm for numerically stable higher moments.
// Moments are population moments (no bias correction).
func timeDomain(sig []float64) timeFeatures {
	n := len(sig)
	if n == 0 {
		return timeFeatures{}
	}

	var (
		mean, m2, m3, m4 float64
		sumSq, sumAbs    float64
		wl               float64
		zc               int
	)

	for i, x := range sig {
		ni := float64(i + 1)
		delta := x - mean
		deltaN := delta / ni
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(i)

		// M4 must be updated before M3, and M3 before M2.
		m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*m2 - 4*deltaN*m3
		m3 += term1*deltaN*(float64(i)-1) - 3*deltaN*m2
		m2 += term1
		mean += deltaN

		sumSq += x * x
		sumAbs += math.Abs(x)

		if i > 0 {
			wl += math.Abs(x - sig[i-1])
			if sig[i-1]*x < 0 {
				zc++
			}
		}
	}

	nf := float64(n)
	variance := m2 / nf

	var skew, kurt float64
	if variance > 0 {
		skew = (m3 / nf) / (variance * math.Sqrt(variance))
		kurt = (m4/nf)/(variance*variance) - 3
	}

	sorted := make([]float64, n)
	copy(sorted, sig)
	sort.Float64s(sorted)

	return timeFeatures{
		mean:     mean,
		std:      math.Sqrt(variance),
		rms:      math.Sqrt(sumSq / nf),
		iemg:     sumAbs,
		mav:      sumAbs / nf,
		wl:       wl,
		zc:       float64(zc),
		median:   percentile(sorted, 0.5),
		iqr:      percentile(sorted, 0.75) - percentile(sorted, 0.25),
		skew:     skew,
		kurtosis: kurt,
	}
}

// percentile evaluates the p-quantile of sorted data by linear
// interpolation between order statistics at positions i/(n-1).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
