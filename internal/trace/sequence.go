package trace

import "github.com/HappyEnt/flooja-cau-testbed/pkg/models"

// Sequence is a forward-only, single-pass cursor over samples.
//
// Call Next before reading the first sample; Time and Value are valid only
// after Next returned true. An exhausted sequence cannot be restarted, issue
// the query again instead.
type Sequence interface {
	Next() bool
	Time() int64
	Value() float64
}

// sliceSequence walks a pre-materialized pair of slices.
type sliceSequence struct {
	times  []int64
	values []float64
	cursor int
}

func newSliceSequence(times []int64, values []float64) *sliceSequence {
	if len(times) != len(values) {
		panic("trace: times and values must have the same length")
	}
	return &sliceSequence{times: times, values: values, cursor: -1}
}

func emptySequence() Sequence {
	return newSliceSequence(nil, nil)
}

func (s *sliceSequence) Next() bool {
	if s.cursor+1 >= len(s.times) {
		s.cursor = len(s.times)
		return false
	}
	s.cursor++
	return true
}

func (s *sliceSequence) Time() int64 {
	return s.times[s.cursor]
}

func (s *sliceSequence) Value() float64 {
	return s.values[s.cursor]
}

// mapSequence walks sorted keys and looks each value up in the live mapping.
type mapSequence struct {
	keys   []int64
	values map[int64]float64
	cursor int
}

func newMapSequence(keys []int64, values map[int64]float64) *mapSequence {
	return &mapSequence{keys: keys, values: values, cursor: -1}
}

func (s *mapSequence) Next() bool {
	if s.cursor+1 >= len(s.keys) {
		s.cursor = len(s.keys)
		return false
	}
	s.cursor++
	return true
}

func (s *mapSequence) Time() int64 {
	return s.keys[s.cursor]
}

func (s *mapSequence) Value() float64 {
	return s.values[s.keys[s.cursor]]
}

// Collect drains seq into a slice.
func Collect(seq Sequence) []models.Sample {
	var out []models.Sample
	for seq.Next() {
		out = append(out, models.Sample{Time: seq.Time(), Value: seq.Value()})
	}
	return out
}
