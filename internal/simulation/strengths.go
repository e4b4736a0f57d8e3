package simulation

import (
	"math"
	"sort"
)

// Strengths is an immutable competitor -> strength table for one request.
type Strengths struct {
	ids    []string
	values map[string]float64
}

// NewStrengths copies values into a new table. IDs are kept in lexical order,
// which is also the order of the unranked competitor set fed to the grid.
func NewStrengths(values map[string]float64) Strengths {
	s := Strengths{
		ids:    make([]string, 0, len(values)),
		values: make(map[string]float64, len(values)),
	}
	for id, v := range values {
		s.ids = append(s.ids, id)
		s.values[id] = v
	}
	sort.Strings(s.ids)
	return s
}

// Get returns the strength of a competitor.
func (s Strengths) Get(id string) (float64, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Len returns the number of competitors.
func (s Strengths) Len() int {
	return len(s.ids)
}

// IDs returns the competitor IDs in lexical order.
func (s Strengths) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Map returns a copy of the table.
func (s Strengths) Map() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for id, v := range s.values {
		out[id] = v
	}
	return out
}

// WithFloor returns a copy where every non-finite or non-positive strength is
// replaced by floor.
func (s Strengths) WithFloor(floor float64) Strengths {
	values := s.Map()
	for id, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			values[id] = floor
		}
	}
	return NewStrengths(values)
}
