// Package feature converts processed signal windows into fixed-schema
// numeric feature vectors combining time-domain, frequency-domain, and
// wavelet-domain descriptors.
//
// The key set and its order are decided entirely by configuration
// (channel count, wavelet level) and never by sample values, so a
// predictor can rely on a stable positional layout.
package feature

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/algo-biosig/dsp/wavelet"
)

// timeKeys lists the time-domain feature keys in extraction order.
var timeKeys = []string{
	"mean", "std", "rms", "iemg", "mav", "wl", "zc",
	"median", "iqr", "skew", "kurtosis",
}

// Extractor computes feature vectors for windows at a fixed sampling
// rate. It is a pure function of its inputs: identical windows always
// produce identical vectors.
type Extractor struct {
	sampleRate   float64
	waveletLevel int

	channelKeys   []string
	channelSchema *Schema
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithWaveletLevel sets the wavelet decomposition depth (default 3,
// yielding level+1 energy bands).
func WithWaveletLevel(level int) Option {
	return func(e *Extractor) {
		if level > 0 {
			e.waveletLevel = level
		}
	}
}

// NewExtractor creates an extractor for signals sampled at sampleRate.
func NewExtractor(sampleRate float64, opts ...Option) (*Extractor, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("feature: sample rate must be > 0: %g", sampleRate)
	}

	e := &Extractor{
		sampleRate:   sampleRate,
		waveletLevel: wavelet.DefaultLevel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.channelKeys = append(e.channelKeys, timeKeys...)
	e.channelKeys = append(e.channelKeys, "psd_power", "psd_med_freq")
	for i := 0; i <= e.waveletLevel; i++ {
		e.channelKeys = append(e.channelKeys, "wavelet_e_"+strconv.Itoa(i))
	}
	e.channelSchema = NewSchema(e.channelKeys)

	return e, nil
}

// SampleRate returns the sampling rate the extractor was built for.
func (e *Extractor) SampleRate() float64 {
	return e.sampleRate
}

// ChannelKeys returns the ordered per-channel key list. The returned
// slice must not be modified.
func (e *Extractor) ChannelKeys() []string {
	return e.channelKeys
}

// Schema returns the cross-channel schema for the given channel count:
// every per-channel key prefixed with "ch{i}_", channel by channel.
func (e *Extractor) Schema(channels int) *Schema {
	keys := make([]string, 0, channels*len(e.channelKeys))
	for ch := 0; ch < channels; ch++ {
		prefix := "ch" + strconv.Itoa(ch) + "_"
		for _, k := range e.channelKeys {
			keys = append(keys, prefix+k)
		}
	}
	return NewSchema(keys)
}

// ExtractFrame computes the cross-channel feature vector for one
// channel-major window, keyed by Schema(len(data)).
func (e *Extractor) ExtractFrame(data [][]float64) (*Vector, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("feature: no channels")
	}

	schema := e.Schema(len(data))
	values := make([]float64, 0, schema.Len())
	for ch, row := range data {
		chValues, err := e.extractChannel(row)
		if err != nil {
			return nil, fmt.Errorf("feature: channel %d: %w", ch, err)
		}
		values = append(values, chValues...)
	}
	return schema.Vector(values)
}

// ExtractWindow computes the merged feature vector for one channel's
// window, keyed by the per-channel schema.
func (e *Extractor) ExtractWindow(sig []float64) (*Vector, error) {
	values, err := e.extractChannel(sig)
	if err != nil {
		return nil, err
	}
	return e.channelSchema.Vector(values)
}

// extractChannel computes the per-channel values in ChannelKeys order.
func (e *Extractor) extractChannel(sig []float64) ([]float64, error) {
	if len(sig) == 0 {
		return nil, fmt.Errorf("feature: empty window")
	}

	td := timeDomain(sig)

	power, medFreq, err := freqDomain(sig, e.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("feature: frequency domain: %w", err)
	}

	energies, err := waveletDomain(sig, e.waveletLevel)
	if err != nil {
		return nil, fmt.Errorf("feature: wavelet domain: %w", err)
	}

	values := make([]float64, 0, len(e.channelKeys))
	values = append(values,
		td.mean, td.std, td.rms, td.iemg, td.mav, td.wl, td.zc,
		td.median, td.iqr, td.skew, td.kurtosis,
		power, medFreq,
	)
	values = append(values, energies...)
	return values, nil
}
