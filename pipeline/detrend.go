package pipeline

// Detrend removes the least-squares linear trend from every channel,
// countering slow electrode drift before filtering.
type Detrend struct{}

// NewDetrend creates a linear detrend operator.
func NewDetrend() *Detrend {
	return &Detrend{}
}

func (d *Detrend) Name() string { return "detrend" }

func (d *Detrend) Config() map[string]any {
	return map[string]any{}
}

func (d *Detrend) Validate(sampleRate float64) (float64, error) {
	return sampleRate, nil
}

func (d *Detrend) Process(f Frame) (Frame, Annotation, error) {
	out := make([][]float64, len(f.Data))
	for ch, row := range f.Data {
		out[ch] = detrendLinear(row)
	}
	return Frame{Data: out, Timestamps: f.Timestamps, SampleRate: f.SampleRate}, nil, nil
}

// detrendLinear fits y = a + b*i by least squares and returns the
// residual.
func detrendLinear(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n < 2 {
		copy(out, x)
		return out
	}

	var sumY, sumIY float64
	for i, y := range x {
		sumY += y
		sumIY += float64(i) * y
	}

	nf := float64(n)
	// Closed-form sums over i = 0..n-1.
	sumI := nf * (nf - 1) / 2
	sumII := nf * (nf - 1) * (2*nf - 1) / 6

	denom := nf*sumII - sumI*sumI
	b := (nf*sumIY - sumI*sumY) / denom
	a := (sumY - b*sumI) / nf

	for i, y := range x {
		out[i] = y - (a + b*float64(i))
	}
	return out
}
