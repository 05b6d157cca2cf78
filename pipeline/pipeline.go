package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// HistoryEntry records one operator invocation during a run.
type HistoryEntry struct {
	RunID      uuid.UUID
	Operator   string
	Config     map[string]any
	Annotation Annotation
}

// Pipeline is an ordered, immutable chain of operators. The only mutable
// state is the append-only history log, which Run extends by one entry
// per operator per invocation. A Pipeline is driven by a single caller
// (the scheduler) and is not safe for concurrent Run calls.
type Pipeline struct {
	ops        []Operator
	inputRate  float64
	outputRate float64
	history    []HistoryEntry
}

// New validates the operator chain against the input sampling rate and
// returns a ready pipeline. Sampling-rate changes from Resample
// operators are threaded through the validation of later operators, so
// a cutoff that only breaches Nyquist after a downstream rate drop is
// still caught here.
func New(sampleRate float64, ops ...Operator) (*Pipeline, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be > 0: %g", ErrConfiguration, sampleRate)
	}

	rate := sampleRate
	for i, op := range ops {
		next, err := op.Validate(rate)
		if err != nil {
			return nil, fmt.Errorf("operator %d (%s): %w", i, op.Name(), err)
		}
		rate = next
	}

	return &Pipeline{
		ops:        ops,
		inputRate:  sampleRate,
		outputRate: rate,
	}, nil
}

// InputRate returns the sampling rate the pipeline was validated for.
func (p *Pipeline) InputRate() float64 {
	return p.inputRate
}

// OutputRate returns the sampling rate frames leave the pipeline with.
func (p *Pipeline) OutputRate() float64 {
	return p.outputRate
}

// Len returns the number of operators in the chain.
func (p *Pipeline) Len() int {
	return len(p.ops)
}

// Run applies the operators strictly in configured order and returns the
// final frame plus a map from operator name to its annotation. One
// history entry is appended per operator. An empty chain is the identity
// transform and appends nothing.
func (p *Pipeline) Run(f Frame) (Frame, map[string]Annotation, error) {
	annotations := make(map[string]Annotation, len(p.ops))
	if len(p.ops) == 0 {
		return f, annotations, nil
	}

	runID := uuid.New()
	cur := f
	for _, op := range p.ops {
		next, ann, err := op.Process(cur)
		if err != nil {
			return Frame{}, nil, fmt.Errorf("pipeline: %s: %w", op.Name(), err)
		}

		annotations[op.Name()] = ann
		p.history = append(p.history, HistoryEntry{
			RunID:      runID,
			Operator:   op.Name(),
			Config:     op.Config(),
			Annotation: ann,
		})
		cur = next
	}

	return cur, annotations, nil
}

// History returns a copy of the accumulated run history.
func (p *Pipeline) History() []HistoryEntry {
	out := make([]HistoryEntry, len(p.history))
	copy(out, p.history)
	return out
}

// Spec returns the serializable operator list in configured order.
func (p *Pipeline) Spec() []OpSpec {
	specs := make([]OpSpec, len(p.ops))
	for i, op := range p.ops {
		specs[i] = OpSpec{Name: op.Name(), Params: op.Config()}
	}
	return specs
}
