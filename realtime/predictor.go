package realtime

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-biosig/feature"
)

// ErrInputShape marks a predictor rejection that may succeed with the
// flat positional value vector instead of the keyed feature vector. The
// scheduler retries exactly once on it.
var ErrInputShape = errors.New("realtime: predictor rejected input shape")

// Prediction is an opaque inference result forwarded to the sink.
type Prediction any

// Predictor is the inference collaborator invoked once per tick. It is
// called from the scheduler goroutine only.
type Predictor interface {
	Predict(v *feature.Vector) (Prediction, error)
}

// PositionalPredictor is optionally implemented by predictors that can
// consume the flat value vector in schema order when the keyed form is
// rejected.
type PositionalPredictor interface {
	PredictValues(values []float64) (Prediction, error)
}

// ThresholdPredictor labels a window "active" when the mean of the
// per-channel RMS features exceeds the threshold, "rest" otherwise. It
// keeps the streaming loop exercisable without an external model.
type ThresholdPredictor struct {
	Threshold float64
}

// NewThresholdPredictor creates a predictor firing above the given mean
// RMS threshold.
func NewThresholdPredictor(threshold float64) *ThresholdPredictor {
	return &ThresholdPredictor{Threshold: threshold}
}

// Predict implements Predictor.
func (t *ThresholdPredictor) Predict(v *feature.Vector) (Prediction, error) {
	var sum float64
	count := 0
	for i, key := range v.Schema().Keys() {
		if strings.HasSuffix(key, "_rms") {
			sum += v.At(i)
			count++
		}
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no rms features present", ErrInputShape)
	}

	mean := sum / float64(count)
	if math.IsNaN(mean) {
		return nil, fmt.Errorf("realtime: rms features are NaN")
	}
	if mean > t.Threshold {
		return "active", nil
	}
	return "rest", nil
}
