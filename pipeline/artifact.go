package pipeline

import (
	"fmt"
	"math"
)

// stdFloor keeps the z-score bounded on near-constant channels.
const stdFloor = 1e-12

// DefaultZThreshold is the artifact z-score threshold used when none is
// configured.
const DefaultZThreshold = 6.0

// BadSegment describes a batch of samples flagged as artifacts.
type BadSegment struct {
	ChannelIndices []int `json:"channel_indices" yaml:"channel_indices"`
	Count          int   `json:"count" yaml:"count"`
}

// ArtifactDetector flags samples whose per-channel z-score exceeds a
// threshold. Detection is purely diagnostic: the data passes through
// untouched and the findings travel in the annotation.
type ArtifactDetector struct {
	ZThreshold float64
}

// NewArtifactDetector creates a detector with the given z-score
// threshold.
func NewArtifactDetector(zThreshold float64) *ArtifactDetector {
	return &ArtifactDetector{ZThreshold: zThreshold}
}

func (a *ArtifactDetector) Name() string { return "artifact_detector" }

func (a *ArtifactDetector) Config() map[string]any {
	return map[string]any{"z_thresh": a.ZThreshold}
}

func (a *ArtifactDetector) Validate(sampleRate float64) (float64, error) {
	if a.ZThreshold <= 0 {
		return 0, fmt.Errorf("%w: artifact z threshold must be > 0: %g", ErrConfiguration, a.ZThreshold)
	}
	return sampleRate, nil
}

func (a *ArtifactDetector) Process(f Frame) (Frame, Annotation, error) {
	var (
		flaggedChannels []int
		flaggedCount    int
	)

	for ch, row := range f.Data {
		if len(row) == 0 {
			continue
		}

		var sum, sumSq float64
		for _, x := range row {
			sum += x
			sumSq += x * x
		}
		n := float64(len(row))
		mean := sum / n
		variance := sumSq/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		std := math.Sqrt(variance) + stdFloor

		channelFlagged := false
		for _, x := range row {
			if math.Abs(x-mean)/std > a.ZThreshold {
				flaggedCount++
				channelFlagged = true
			}
		}
		if channelFlagged {
			flaggedChannels = append(flaggedChannels, ch)
		}
	}

	ann := Annotation{}
	if flaggedCount > 0 {
		ann["bad_segments"] = []BadSegment{{
			ChannelIndices: flaggedChannels,
			Count:          flaggedCount,
		}}
	}

	return f, ann, nil
}
