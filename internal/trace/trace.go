// Package trace provides read-only stores for time-ordered measurement samples.
//
// Two stores implement the Trace contract: FileTrace answers queries with
// seeks into a binary trace file and downsamples windows by a record stride,
// MemoryTrace holds a small trace in memory and returns every sample.
package trace

import "github.com/HappyEnt/flooja-cau-testbed/pkg/models"

// Trace is the query contract shared by every trace store.
// Implementations are not safe for concurrent use; see Locked.
type Trace interface {
	// NodeID returns the testbed node the trace belongs to
	NodeID() int

	// FirstTime returns the first timestamp, ok is false for an empty trace
	FirstTime() (int64, bool)

	// LastTime returns the last timestamp, ok is false for an empty trace
	LastTime() (int64, bool)

	// InterpolateAt returns the value at t, linearly interpolated between the
	// bracketing samples. ok is false outside the covered range.
	InterpolateAt(t int64) (value float64, ok bool, err error)

	// AverageIn returns the mean of all samples within [a, b] inclusive,
	// in either argument order. ok is false when the window holds no sample.
	AverageIn(a, b int64) (value float64, ok bool, err error)

	// MeasurementsCovering returns samples covering [start, end] such that a
	// renderer drawing one point per maxDeltaT sees every feature.
	MeasurementsCovering(start, end, maxDeltaT int64) (Sequence, error)
}

// Info summarizes tr.
func Info(tr Trace) models.TraceInfo {
	info := models.TraceInfo{NodeID: tr.NodeID()}
	if first, ok := tr.FirstTime(); ok {
		info.FirstTime = &first
	}
	if last, ok := tr.LastTime(); ok {
		info.LastTime = &last
	}
	if ft, ok := tr.(interface {
		SampleCount() int64
		SamplingPeriod() int64
	}); ok {
		info.SampleCount = ft.SampleCount()
		info.SamplingPeriod = ft.SamplingPeriod()
	}
	return info
}
