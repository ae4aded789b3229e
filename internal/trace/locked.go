package trace

import "sync"

// Locked serializes all queries on tr. Use it when a trace is shared between
// goroutines, e.g. by HTTP handlers. Returned sequences may be consumed
// without holding the lock.
func Locked(tr Trace) Trace {
	if l, ok := tr.(*lockedTrace); ok {
		return l
	}
	return &lockedTrace{tr: tr}
}

type lockedTrace struct {
	mu sync.Mutex
	tr Trace
}

// Unwrap returns the guarded trace.
func (l *lockedTrace) Unwrap() Trace {
	return l.tr
}

func (l *lockedTrace) NodeID() int {
	return l.tr.NodeID()
}

func (l *lockedTrace) FirstTime() (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tr.FirstTime()
}

func (l *lockedTrace) LastTime() (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tr.LastTime()
}

func (l *lockedTrace) InterpolateAt(t int64) (float64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tr.InterpolateAt(t)
}

func (l *lockedTrace) AverageIn(a, b int64) (float64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tr.AverageIn(a, b)
}

func (l *lockedTrace) MeasurementsCovering(start, end, maxDeltaT int64) (Sequence, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tr.MeasurementsCovering(start, end, maxDeltaT)
}

// SampleCount and SamplingPeriod forward to file-backed traces and report
// zero otherwise.

func (l *lockedTrace) SampleCount() int64 {
	if ft, ok := l.tr.(interface{ SampleCount() int64 }); ok {
		return ft.SampleCount()
	}
	return 0
}

func (l *lockedTrace) SamplingPeriod() int64 {
	if ft, ok := l.tr.(interface{ SamplingPeriod() int64 }); ok {
		return ft.SamplingPeriod()
	}
	return 0
}
