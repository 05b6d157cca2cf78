package pipeline

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// OpSpec is one entry of a serialized pipeline configuration. In YAML
// it is a flat mapping whose "op" key names the operator and whose
// remaining keys are its parameters:
//
//	- op: notch
//	  freq: 50
//	  q: 30
type OpSpec struct {
	Name   string
	Params map[string]any
}

// UnmarshalYAML decodes the flat mapping form, splitting the "op" key
// from the parameters.
func (s *OpSpec) UnmarshalYAML(node *yaml.Node) error {
	raw := make(map[string]any)
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	name, ok := raw["op"].(string)
	if !ok || name == "" {
		return fmt.Errorf("%w: operator entry is missing an \"op\" name", ErrConfiguration)
	}
	delete(raw, "op")

	s.Name = name
	s.Params = raw
	return nil
}

// MarshalYAML emits the flat mapping form with the operator name first.
func (s OpSpec) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendPair := func(key string, value any) error {
		k := &yaml.Node{}
		if err := k.Encode(key); err != nil {
			return err
		}
		v := &yaml.Node{}
		if err := v.Encode(value); err != nil {
			return err
		}
		node.Content = append(node.Content, k, v)
		return nil
	}

	if err := appendPair("op", s.Name); err != nil {
		return nil, err
	}
	for _, key := range sortedKeys(s.Params) {
		if err := appendPair(key, s.Params[key]); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Build instantiates the configured operators and assembles a
// validated pipeline for the given input sampling rate.
func (r *Registry) Build(sampleRate float64, specs []OpSpec) (*Pipeline, error) {
	ops := make([]Operator, 0, len(specs))
	for i, spec := range specs {
		factory := r.Lookup(spec.Name)
		if factory == nil {
			return nil, fmt.Errorf("%w: unknown operator %q at position %d", ErrConfiguration, spec.Name, i)
		}

		op, err := factory(Params(spec.Params))
		if err != nil {
			return nil, fmt.Errorf("operator %q at position %d: %w", spec.Name, i, err)
		}
		ops = append(ops, op)
	}

	return New(sampleRate, ops...)
}

// Build assembles a pipeline from specs using the default registry.
func Build(sampleRate float64, specs []OpSpec) (*Pipeline, error) {
	return DefaultRegistry().Build(sampleRate, specs)
}
