package feature

import "fmt"

// Schema is an ordered, immutable feature key list agreed between the
// extractor and the predictor. The order is fixed at construction and is
// the order in which [Vector.Values] yields numbers, so positional
// consumers and keyed consumers always see the same layout.
type Schema struct {
	keys  []string
	index map[string]int
}

// NewSchema builds a schema from an ordered key list.
func NewSchema(keys []string) *Schema {
	s := &Schema{
		keys:  make([]string, len(keys)),
		index: make(map[string]int, len(keys)),
	}
	copy(s.keys, keys)
	for i, k := range s.keys {
		s.index[k] = i
	}
	return s
}

// Len returns the number of features in the schema.
func (s *Schema) Len() int {
	return len(s.keys)
}

// Keys returns the ordered key list. The returned slice must not be
// modified.
func (s *Schema) Keys() []string {
	return s.keys
}

// Index returns the position of key in the schema, or -1 if absent.
func (s *Schema) Index(key string) int {
	if i, ok := s.index[key]; ok {
		return i
	}
	return -1
}

// Vector wraps a value slice with its schema.
func (s *Schema) Vector(values []float64) (*Vector, error) {
	if len(values) != len(s.keys) {
		return nil, fmt.Errorf("feature: %d values for %d-key schema", len(values), len(s.keys))
	}
	return &Vector{schema: s, values: values}, nil
}

// Vector is one extracted feature record: a schema plus parallel values.
type Vector struct {
	schema *Schema
	values []float64
}

// Schema returns the vector's schema.
func (v *Vector) Schema() *Schema {
	return v.schema
}

// Len returns the number of features.
func (v *Vector) Len() int {
	return len(v.values)
}

// Get returns the value for key, and whether the key exists.
func (v *Vector) Get(key string) (float64, bool) {
	i := v.schema.Index(key)
	if i < 0 {
		return 0, false
	}
	return v.values[i], true
}

// At returns the value at schema position i.
func (v *Vector) At(i int) float64 {
	return v.values[i]
}

// Values returns a copy of the values in schema order — the flat numeric
// form handed to positional predictors.
func (v *Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}
