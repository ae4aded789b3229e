package trace

import (
	"slices"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// MemoryTrace holds a trace small enough to keep in memory.
// Windows are returned exactly, without downsampling.
type MemoryTrace struct {
	nodeID int
	values map[int64]float64
	keys   []int64 // sorted
}

// NewMemoryTrace builds a trace for nodeID from a time to value mapping.
// The mapping is copied.
func NewMemoryTrace(nodeID int, samples map[int64]float64) *MemoryTrace {
	values := make(map[int64]float64, len(samples))
	keys := make([]int64, 0, len(samples))
	for ts, v := range samples {
		values[ts] = v
		keys = append(keys, ts)
	}
	slices.Sort(keys)

	return &MemoryTrace{nodeID: nodeID, values: values, keys: keys}
}

// NewMemoryTraceFromSamples builds a trace from samples in any order. A later
// sample replaces an earlier one with the same timestamp.
func NewMemoryTraceFromSamples(nodeID int, samples []models.Sample) *MemoryTrace {
	m := make(map[int64]float64, len(samples))
	for _, s := range samples {
		m[s.Time] = s.Value
	}
	return NewMemoryTrace(nodeID, m)
}

func (t *MemoryTrace) NodeID() int {
	return t.nodeID
}

func (t *MemoryTrace) FirstTime() (int64, bool) {
	if len(t.keys) == 0 {
		return 0, false
	}
	return t.keys[0], true
}

func (t *MemoryTrace) LastTime() (int64, bool) {
	if len(t.keys) == 0 {
		return 0, false
	}
	return t.keys[len(t.keys)-1], true
}

// Len returns the number of samples.
func (t *MemoryTrace) Len() int {
	return len(t.keys)
}

// Samples returns all samples in time order.
func (t *MemoryTrace) Samples() []models.Sample {
	out := make([]models.Sample, len(t.keys))
	for i, ts := range t.keys {
		out[i] = models.Sample{Time: ts, Value: t.values[ts]}
	}
	return out
}

func (t *MemoryTrace) InterpolateAt(at int64) (float64, bool, error) {
	lo, hi := t.floor(at), t.ceiling(at)
	if lo < 0 || hi >= len(t.keys) {
		return 0, false, nil
	}

	lowerTime, upperTime := t.keys[lo], t.keys[hi]
	lowerValue, upperValue := t.values[lowerTime], t.values[upperTime]
	if lowerTime == upperTime {
		return lowerValue, true, nil
	}
	return lowerValue + float64(at-lowerTime)/float64(upperTime-lowerTime)*(upperValue-lowerValue), true, nil
}

func (t *MemoryTrace) AverageIn(a, b int64) (float64, bool, error) {
	if a > b {
		a, b = b, a
	}

	from, to := t.ceiling(a), t.floor(b)
	if from > to {
		return 0, false, nil
	}

	var sum float64
	for _, ts := range t.keys[from : to+1] {
		sum += t.values[ts]
	}
	return sum / float64(to-from+1), true, nil
}

// MeasurementsCovering returns every sample from the one at or before start
// to the one at or after end. maxDeltaT is ignored.
func (t *MemoryTrace) MeasurementsCovering(start, end, _ int64) (Sequence, error) {
	lower, upper := start, end
	if i := t.floor(start); i >= 0 {
		lower = t.keys[i]
	}
	if i := t.ceiling(end); i < len(t.keys) {
		upper = t.keys[i]
	}
	if lower > upper {
		return emptySequence(), nil
	}

	from, to := t.ceiling(lower), t.floor(upper)
	if from > to {
		return newMapSequence(nil, t.values), nil
	}
	return newMapSequence(t.keys[from:to+1], t.values), nil
}

// floor returns the index of the largest key <= ts, or -1.
func (t *MemoryTrace) floor(ts int64) int {
	i, found := slices.BinarySearch(t.keys, ts)
	if found {
		return i
	}
	return i - 1
}

// ceiling returns the index of the smallest key >= ts, or len(keys).
func (t *MemoryTrace) ceiling(ts int64) int {
	i, _ := slices.BinarySearch(t.keys, ts)
	return i
}
