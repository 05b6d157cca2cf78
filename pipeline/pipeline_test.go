package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-biosig/internal/testutil"
)

func makeFrame(data [][]float64, sampleRate float64) Frame {
	n := 0
	if len(data) > 0 {
		n = len(data[0])
	}
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = float64(i) / sampleRate
	}
	return Frame{Data: data, Timestamps: ts, SampleRate: sampleRate}
}

// tonePower measures signal power at freq via the Goertzel recurrence.
func tonePower(signal []float64, freq, sampleRate float64) float64 {
	omega := 2 * math.Pi * freq / sampleRate
	coeff := 2 * math.Cos(omega)

	var s1, s2 float64
	for _, x := range signal {
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	n := float64(len(signal))
	return (s1*s1 + s2*s2 - coeff*s1*s2) / (n * n)
}

func TestNotchAttenuatesTargetFrequency(t *testing.T) {
	const fs = 1000.0
	sig := make([]float64, 1000)
	mains := testutil.Sine(50, fs, 1.0, len(sig))
	wanted := testutil.Sine(20, fs, 1.0, len(sig))
	for i := range sig {
		sig[i] = mains[i] + wanted[i]
	}

	op := NewNotch(50, 30)
	out, ann, err := op.Process(makeFrame([][]float64{sig}, fs))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(ann) != 0 {
		t.Errorf("unexpected annotation: %v", ann)
	}

	before50 := tonePower(sig, 50, fs)
	after50 := tonePower(out.Data[0], 50, fs)
	if after50 > before50/10 {
		t.Errorf("50 Hz power not attenuated: before %g, after %g", before50, after50)
	}

	before20 := tonePower(sig, 20, fs)
	after20 := tonePower(out.Data[0], 20, fs)
	if after20 < before20/2 {
		t.Errorf("20 Hz power collapsed: before %g, after %g", before20, after20)
	}
}

func TestBandpassRejectsOutOfBand(t *testing.T) {
	const fs = 1000.0
	sig := make([]float64, 2000)
	for _, f := range []float64{5, 50, 300} {
		tone := testutil.Sine(f, fs, 1.0, len(sig))
		for i := range sig {
			sig[i] += tone[i]
		}
	}

	op := NewBandpass(20, 150, 4)
	out, _, err := op.Process(makeFrame([][]float64{sig}, fs))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	inBand := tonePower(out.Data[0], 50, fs)
	below := tonePower(out.Data[0], 5, fs)
	above := tonePower(out.Data[0], 300, fs)

	if below > inBand/20 {
		t.Errorf("5 Hz not rejected: %g vs in-band %g", below, inBand)
	}
	if above > inBand/20 {
		t.Errorf("300 Hz not rejected: %g vs in-band %g", above, inBand)
	}
	if inBand < 0.25*tonePower(sig, 50, fs) {
		t.Errorf("in-band 50 Hz attenuated too much: %g", inBand)
	}
}

func TestResampleIdentityAliasesInput(t *testing.T) {
	frame := makeFrame([][]float64{testutil.Sine(10, 250, 1.0, 100)}, 250)
	out, _, err := NewResample(250).Process(frame)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if &out.Data[0][0] != &frame.Data[0][0] {
		t.Error("same-rate resample should return the input frame unchanged")
	}
	if out.SampleRate != 250 {
		t.Errorf("SampleRate = %g, want 250", out.SampleRate)
	}
}

func TestResampleChangesRateAndLength(t *testing.T) {
	const fs = 1000.0
	frame := makeFrame(testutil.MultiSine([]float64{10, 25}, fs, 1000), fs)
	frame.Timestamps[0] = 5.0 // nonzero anchor
	for i := 1; i < len(frame.Timestamps); i++ {
		frame.Timestamps[i] = 5.0 + float64(i)/fs
	}

	out, _, err := NewResample(250).Process(frame)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.SampleRate != 250 {
		t.Errorf("SampleRate = %g, want 250", out.SampleRate)
	}
	for ch := range out.Data {
		if len(out.Data[ch]) != 250 {
			t.Errorf("channel %d length = %d, want 250", ch, len(out.Data[ch]))
		}
	}
	if len(out.Timestamps) != 250 {
		t.Fatalf("timestamp length = %d, want 250", len(out.Timestamps))
	}
	if out.Timestamps[0] != 5.0 {
		t.Errorf("timestamps not anchored at input start: %g", out.Timestamps[0])
	}
	gap := out.Timestamps[1] - out.Timestamps[0]
	if !testutil.AlmostEqual(gap, 1.0/250, 1e-12) {
		t.Errorf("timestamp spacing = %g, want %g", gap, 1.0/250)
	}
}

func TestArtifactDetectorFlagsSpikes(t *testing.T) {
	clean := testutil.SeededNoise(1, 1.0, 500)
	spiked := testutil.SeededNoise(2, 1.0, 500)
	spiked[100] = 100 // far beyond any plausible z-score

	op := NewArtifactDetector(DefaultZThreshold)
	frame := makeFrame([][]float64{clean, spiked}, 1000)
	out, ann, err := op.Process(frame)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// Data passes through untouched.
	if &out.Data[1][0] != &frame.Data[1][0] {
		t.Error("detector must not copy or modify the data")
	}

	segs, ok := ann["bad_segments"].([]BadSegment)
	if !ok {
		t.Fatalf("missing bad_segments annotation: %v", ann)
	}
	if len(segs) != 1 || segs[0].Count == 0 {
		t.Fatalf("unexpected segments: %+v", segs)
	}
	if len(segs[0].ChannelIndices) != 1 || segs[0].ChannelIndices[0] != 1 {
		t.Errorf("flagged channels = %v, want [1]", segs[0].ChannelIndices)
	}
}

func TestArtifactDetectorCleanSignal(t *testing.T) {
	op := NewArtifactDetector(DefaultZThreshold)
	_, ann, err := op.Process(makeFrame([][]float64{testutil.Sine(10, 1000, 1.0, 500)}, 1000))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, present := ann["bad_segments"]; present {
		t.Errorf("clean signal flagged: %v", ann)
	}
}

func TestDetrendRemovesRamp(t *testing.T) {
	ramp := testutil.Ramp(0.5, 200)
	for i := range ramp {
		ramp[i] += 3.0
	}

	out, _, err := NewDetrend().Process(makeFrame([][]float64{ramp}, 100))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i, v := range out.Data[0] {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("residual at %d = %g, want ~0", i, v)
		}
	}
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		ops  []Operator
	}{
		{"cutoff above nyquist", 250, []Operator{NewLowpass(200, 4)}},
		{"zero q", 1000, []Operator{NewNotch(50, 0)}},
		{"inverted band edges", 1000, []Operator{NewBandpass(100, 20, 4)}},
		{"zero order", 1000, []Operator{NewHighpass(1, 0)}},
		{"negative target rate", 1000, []Operator{NewResample(-5)}},
		{"zero sample rate", 0, nil},
		{"cutoff breaches nyquist after resample", 1000, []Operator{
			NewResample(250),
			NewLowpass(200, 4),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rate, tt.ops...)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("New() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestRateThreadingThroughResample(t *testing.T) {
	p, err := New(1000, NewLowpass(100, 4), NewResample(250), NewLowpass(100, 4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.InputRate() != 1000 {
		t.Errorf("InputRate = %g, want 1000", p.InputRate())
	}
	if p.OutputRate() != 250 {
		t.Errorf("OutputRate = %g, want 250", p.OutputRate())
	}
}

func TestRunAppendsHistoryPerOperator(t *testing.T) {
	p, err := New(1000, NewDetrend(), NewNotch(50, 30))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	frame := makeFrame([][]float64{testutil.Sine(50, 1000, 1.0, 500)}, 1000)
	if _, _, err := p.Run(frame); err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	if _, _, err := p.Run(frame); err != nil {
		t.Fatalf("Run 2: %v", err)
	}

	hist := p.History()
	if len(hist) != 4 {
		t.Fatalf("history length = %d, want 4", len(hist))
	}

	wantOps := []string{"detrend", "notch", "detrend", "notch"}
	for i, entry := range hist {
		if entry.Operator != wantOps[i] {
			t.Errorf("entry %d operator = %q, want %q", i, entry.Operator, wantOps[i])
		}
	}
	if hist[0].RunID != hist[1].RunID {
		t.Error("entries of one run must share a run ID")
	}
	if hist[0].RunID == hist[2].RunID {
		t.Error("separate runs must have distinct run IDs")
	}
	if hist[1].Config["freq"] != 50.0 {
		t.Errorf("notch config not recorded: %v", hist[1].Config)
	}
}

func TestEmptyChainIsIdentity(t *testing.T) {
	p, err := New(1000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	frame := makeFrame([][]float64{testutil.Sine(10, 1000, 1.0, 100)}, 1000)
	out, anns, err := p.Run(frame)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if &out.Data[0][0] != &frame.Data[0][0] {
		t.Error("empty chain must return the input frame")
	}
	if len(anns) != 0 {
		t.Errorf("empty chain produced annotations: %v", anns)
	}
	if len(p.History()) != 0 {
		t.Errorf("empty chain appended history: %v", p.History())
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	op := NewBandpass(20, 150, 4)
	frame := makeFrame([][]float64{testutil.SeededNoise(7, 1.0, 600)}, 1000)

	a, _, err := op.Process(frame)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	b, _, err := op.Process(frame)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range a.Data[0] {
		if a.Data[0][i] != b.Data[0][i] {
			t.Fatalf("outputs differ at %d: %g vs %g", i, a.Data[0][i], b.Data[0][i])
		}
	}
}
