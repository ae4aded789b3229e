// Package models defines the core data structures for testbed measurement traces.
package models

import (
	"encoding/json"
	"time"
)

// TimeUnit is the resolution of every timestamp in the pipeline.
// Timestamps are counts of TimeUnit since the Unix epoch.
const TimeUnit = 10 * time.Nanosecond

// UnitsPerSecond is the number of timestamp units in one second.
const UnitsPerSecond = int64(time.Second / TimeUnit)

// UnitsPerMillisecond is the number of timestamp units in one millisecond.
const UnitsPerMillisecond = int64(time.Millisecond / TimeUnit)

// Sample is a single (timestamp, value) measurement of a trace.
// For current traces the value is in milliamperes.
type Sample struct {
	// Time is the sample timestamp in TimeUnit since epoch
	Time int64 `json:"time"`

	// Value is the measured value
	Value float64 `json:"value"`
}

// TraceInfo summarizes one node's trace.
type TraceInfo struct {
	// NodeID identifies the testbed node the trace was recorded on
	NodeID int `json:"node_id"`

	// FirstTime is the timestamp of the first sample, nil for an empty trace
	FirstTime *int64 `json:"first_time"`

	// LastTime is the timestamp of the last sample, nil for an empty trace
	LastTime *int64 `json:"last_time"`

	// SampleCount is the number of stored samples (file-backed traces only)
	SampleCount int64 `json:"sample_count,omitempty"`

	// SamplingPeriod is the nominal spacing between samples (file-backed traces only)
	SamplingPeriod int64 `json:"sampling_period,omitempty"`
}

// HasData reports whether the trace holds at least one sample.
func (i *TraceInfo) HasData() bool {
	return i.FirstTime != nil && i.LastTime != nil
}

// Duration returns the covered time span, zero for an empty trace.
func (i *TraceInfo) Duration() time.Duration {
	if !i.HasData() {
		return 0
	}
	return time.Duration(*i.LastTime-*i.FirstTime) * TimeUnit
}

// ToJSON serializes the TraceInfo to JSON bytes.
func (i *TraceInfo) ToJSON() ([]byte, error) {
	return json.Marshal(i)
}

// FromJSON deserializes JSON bytes into a TraceInfo.
func (i *TraceInfo) FromJSON(data []byte) error {
	return json.Unmarshal(data, i)
}

// ToTime converts a pipeline timestamp to a time.Time.
func ToTime(ts int64) time.Time {
	return time.Unix(0, ts*int64(TimeUnit)).UTC()
}

// FromTime converts a time.Time to a pipeline timestamp, truncating below TimeUnit.
func FromTime(t time.Time) int64 {
	return t.UnixNano() / int64(TimeUnit)
}

// UnitCurrent is the unit of current trace values.
const UnitCurrent = "mA"

// Measurement names used when traces are exported to a time-series database.
const (
	MeasurementCurrent = "current"
	MeasurementGpio    = "gpio"
)
