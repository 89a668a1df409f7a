// Package features turns prospect attributes into the numeric vector a
// trained propensity model expects.
package features

import (
	"encoding/json"
	"math"
	"sort"
)

// Record is an immutable set of named prospect attributes. Values are either
// numbers or category labels.
type Record struct {
	values map[string]any
}

// NewRecord copies values into a new Record so later changes to the map do
// not leak into it.
func NewRecord(values map[string]any) Record {
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Record{values: cp}
}

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Len returns the number of attributes in the record.
func (r Record) Len() int { return len(r.values) }

// Names returns attribute names in lexical order.
func (r Record) Names() []string {
	names := make([]string, 0, len(r.values))
	for k := range r.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Vector is the ordered numeric input of a model, aligned to a Schema.
type Vector []float64

// numeric reports the float64 form of v when v is a finite number.
func numeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
