package pipeline

import (
	"fmt"
	"math"
)

// Params holds the raw parameters for one operator in a configuration.
type Params map[string]any

// Num extracts a numeric parameter, returning def when the key is
// missing or not a finite number. YAML decodes whole numbers as int, so
// both int and float64 are accepted.
func (p Params) Num(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return def
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Factory builds one operator from its raw parameters.
type Factory func(p Params) (Operator, error)

// Registry maps operator names to factories, deciding which names a
// serialized pipeline configuration may reference.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given operator name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("%w: empty operator name", ErrConfiguration)
	}
	if factory == nil {
		return fmt.Errorf("%w: nil factory for %q", ErrConfiguration, name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: duplicate operator %q", ErrConfiguration, name)
	}

	r.factories[name] = factory
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic("pipeline registry: " + err.Error())
	}
}

// Lookup returns the factory for the given operator name, or nil.
func (r *Registry) Lookup(name string) Factory {
	return r.factories[name]
}

// DefaultRegistry returns a registry with all standard operators.
// Parameter defaults follow the operators' conventional biosignal
// settings.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("notch", func(p Params) (Operator, error) {
		return NewNotch(p.Num("freq", 50), p.Num("q", 30)), nil
	})
	r.MustRegister("bandpass", func(p Params) (Operator, error) {
		return NewBandpass(p.Num("low", 20), p.Num("high", 450), int(p.Num("order", 4))), nil
	})
	r.MustRegister("highpass", func(p Params) (Operator, error) {
		return NewHighpass(p.Num("cutoff", 0.5), int(p.Num("order", 2))), nil
	})
	r.MustRegister("lowpass", func(p Params) (Operator, error) {
		return NewLowpass(p.Num("cutoff", 100), int(p.Num("order", 4))), nil
	})
	r.MustRegister("resample", func(p Params) (Operator, error) {
		return NewResample(p.Num("target_fs", 250)), nil
	})
	r.MustRegister("artifact_detector", func(p Params) (Operator, error) {
		return NewArtifactDetector(p.Num("z_thresh", DefaultZThreshold)), nil
	})
	r.MustRegister("detrend", func(p Params) (Operator, error) {
		return NewDetrend(), nil
	})

	return r
}
