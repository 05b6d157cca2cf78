package acquire

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"
)

// SimulatedSource synthesizes a deterministic multichannel biosignal:
// channel i carries a sine at 5+10i Hz, optionally with additive
// Gaussian noise and EMG-style burst activity. All randomness comes
// from one explicitly owned seeded generator, so a fixed seed always
// reproduces the same stream.
type SimulatedSource struct {
	mu sync.Mutex

	rate   float64
	freqs  []float64
	labels []string
	epoch  float64

	rng      *rand.Rand
	noiseStd float64
	burst    *burstGen

	started bool
	index   int64
}

// burstGen models intermittent EMG activation: bursts start at random
// with the configured per-second rate and add amplified noise for their
// duration.
type burstGen struct {
	startProb float64 // per-sample start probability
	samples   int     // burst length in samples
	gain      float64
	remaining int
}

// SimOption configures a SimulatedSource.
type SimOption func(*SimulatedSource)

// WithNoise adds zero-mean Gaussian noise with the given standard
// deviation to every sample.
func WithNoise(std float64) SimOption {
	return func(s *SimulatedSource) {
		if std > 0 {
			s.noiseStd = std
		}
	}
}

// WithEMGBursts overlays burst activity: bursts begin at roughly
// perSecond bursts per second, last durationS seconds, and add noise
// scaled by gain while active.
func WithEMGBursts(perSecond, durationS, gain float64) SimOption {
	return func(s *SimulatedSource) {
		if perSecond <= 0 || durationS <= 0 || gain <= 0 {
			return
		}
		s.burst = &burstGen{
			startProb: perSecond / s.rate,
			samples:   int(durationS * s.rate),
			gain:      gain,
		}
	}
}

// WithChannelFreqs overrides the default 5+10i Hz channel tones.
func WithChannelFreqs(freqs []float64) SimOption {
	return func(s *SimulatedSource) {
		if len(freqs) == len(s.freqs) {
			copy(s.freqs, freqs)
		}
	}
}

// WithEpoch sets the POSIX timestamp of the first sample (default 0).
func WithEpoch(epoch float64) SimOption {
	return func(s *SimulatedSource) {
		s.epoch = epoch
	}
}

// NewSimulatedSource creates a source with the given channel count,
// sampling rate, and RNG seed.
func NewSimulatedSource(channels int, sampleRate float64, seed int64, opts ...SimOption) (*SimulatedSource, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("acquire: channel count must be > 0: %d", channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("acquire: sample rate must be > 0: %g", sampleRate)
	}

	s := &SimulatedSource{
		rate:   sampleRate,
		freqs:  make([]float64, channels),
		labels: make([]string, channels),
		rng:    rand.New(rand.NewSource(seed)),
	}
	for ch := 0; ch < channels; ch++ {
		s.freqs[ch] = 5 + 10*float64(ch)
		s.labels[ch] = "ch" + strconv.Itoa(ch)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Start implements Source.
func (s *SimulatedSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

// Stop implements Source.
func (s *SimulatedSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return nil
}

// SampleRate implements Source.
func (s *SimulatedSource) SampleRate() float64 {
	return s.rate
}

// ChannelLabels implements Source.
func (s *SimulatedSource) ChannelLabels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Read implements Source, synthesizing exactly n fresh samples.
func (s *SimulatedSource) Read(n int) ([][]float64, []float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, nil, ErrNotStarted
	}
	if n <= 0 {
		return nil, nil, nil
	}

	data := make([][]float64, len(s.freqs))
	for ch := range data {
		data[ch] = make([]float64, n)
	}
	ts := make([]float64, n)

	for i := 0; i < n; i++ {
		t := float64(s.index) / s.rate
		ts[i] = s.epoch + t

		burstGain := 0.0
		if s.burst != nil {
			if s.burst.remaining > 0 {
				s.burst.remaining--
				burstGain = s.burst.gain
			} else if s.rng.Float64() < s.burst.startProb {
				s.burst.remaining = s.burst.samples
				burstGain = s.burst.gain
			}
		}

		for ch := range data {
			v := math.Sin(2 * math.Pi * s.freqs[ch] * t)
			if s.noiseStd > 0 {
				v += s.noiseStd * s.rng.NormFloat64()
			}
			if burstGain > 0 {
				v += burstGain * s.rng.NormFloat64()
			}
			data[ch][i] = v
		}
		s.index++
	}

	return data, ts, nil
}
