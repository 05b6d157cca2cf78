package iir

import "math"

const defaultQ = 1 / math.Sqrt2

// Notch designs a band-reject biquad centered at freq (Hz) with quality
// factor q. Returns the zero value for out-of-range parameters.
func Notch(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := 1.0
	b1 := -2 * cw
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// lowpassRBJ designs a lowpass biquad at freq (Hz) with quality factor q.
func lowpassRBJ(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// highpassRBJ designs a highpass biquad at freq (Hz) with quality factor q.
func highpassRBJ(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b1 := -(1 + cw)
	b0 := -b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// ButterworthLP designs a lowpass Butterworth cascade of the given order.
//
// For odd orders, the final section is first-order (B2=A2=0). Returns nil
// for non-positive orders or out-of-range cutoffs.
func ButterworthLP(freq float64, order int, sampleRate float64) []Coefficients {
	if order <= 0 {
		return nil
	}

	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return nil
	}
	sections := make([]Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		q := butterworthQ(order, i)
		sections = append(sections, lowpassRBJ(freq, q, sampleRate))
	}
	if order%2 != 0 {
		sections = append(sections, firstOrderLP(freq, sampleRate))
	}
	return sections
}

// ButterworthHP designs a highpass Butterworth cascade of the given order.
//
// For odd orders, the final section is first-order (B2=A2=0). Returns nil
// for non-positive orders or out-of-range cutoffs.
func ButterworthHP(freq float64, order int, sampleRate float64) []Coefficients {
	if order <= 0 {
		return nil
	}

	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return nil
	}
	sections := make([]Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		q := butterworthQ(order, i)
		sections = append(sections, highpassRBJ(freq, q, sampleRate))
	}
	if order%2 != 0 {
		sections = append(sections, firstOrderHP(freq, sampleRate))
	}
	return sections
}

// ButterworthBP designs a bandpass cascade as a highpass at low followed
// by a lowpass at high, each of the given order. Returns nil when either
// edge is out of range or the band is empty.
func ButterworthBP(low, high float64, order int, sampleRate float64) []Coefficients {
	if order <= 0 || low >= high {
		return nil
	}

	hp := ButterworthHP(low, order, sampleRate)
	lp := ButterworthLP(high, order, sampleRate)
	if hp == nil || lp == nil {
		return nil
	}

	return append(hp, lp...)
}

// butterworthQ returns the quality factor for a Butterworth filter section.
// index ranges from 0 to (order/2 - 1) for the biquad sections.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return defaultQ
	}

	return 1 / (2 * s)
}

// firstOrderLP designs a first-order lowpass Butterworth section.
// Used for odd-order filters.
func firstOrderLP(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

// firstOrderHP designs a first-order highpass Butterworth section.
// Used for odd-order filters.
func firstOrderHP(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{}
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
