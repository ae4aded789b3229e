package trace

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// FileTrace answers trace queries from a trace file without loading it.
//
// It remembers the last downsampled window so a renderer repainting a subset
// of that window at the same or a coarser resolution gets the previous points
// back without touching the file. FileTrace is not safe for concurrent use.
type FileTrace struct {
	idx    *Index
	nodeID int
	cache  downsampleCache

	hits   atomic.Int64
	misses atomic.Int64
}

// downsampleCache is the single result slot of MeasurementsCovering.
// maxDeltaT holds the resolution actually achieved, not the one requested.
type downsampleCache struct {
	valid     bool
	start     int64
	end       int64
	maxDeltaT int64
	times     []int64
	values    []float64
}

func (c *downsampleCache) covers(start, end, maxDeltaT int64) bool {
	return c.valid && maxDeltaT >= c.maxDeltaT && start >= c.start && end <= c.end
}

// CacheStats counts downsample cache hits and misses.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NodeIDFromPath derives the node id from a trace file name.
func NodeIDFromPath(path string) (int, error) {
	name := filepath.Base(path)
	id, err := strconv.Atoi(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNodeID, name)
	}
	return id, nil
}

// OpenFileTrace opens the trace file at path. The node id is the file name.
func OpenFileTrace(path string) (*FileTrace, error) {
	nodeID, err := NodeIDFromPath(path)
	if err != nil {
		return nil, err
	}

	idx, err := OpenIndex(path)
	if err != nil {
		return nil, err
	}
	return &FileTrace{idx: idx, nodeID: nodeID}, nil
}

// NewFileTrace reads a trace for nodeID from src. See NewIndex for ownership of src.
func NewFileTrace(nodeID int, src io.ReadSeeker) (*FileTrace, error) {
	idx, err := NewIndex(src)
	if err != nil {
		return nil, err
	}
	return &FileTrace{idx: idx, nodeID: nodeID}, nil
}

func (t *FileTrace) NodeID() int {
	return t.nodeID
}

func (t *FileTrace) FirstTime() (int64, bool) {
	return t.idx.FirstTime()
}

func (t *FileTrace) LastTime() (int64, bool) {
	return t.idx.LastTime()
}

// SampleCount returns the number of records in the file.
func (t *FileTrace) SampleCount() int64 {
	return t.idx.SampleCount()
}

// SamplingPeriod returns the nominal record spacing.
func (t *FileTrace) SamplingPeriod() int64 {
	return t.idx.SamplingPeriod()
}

// Search looks up a timestamp in the file.
func (t *FileTrace) Search(target int64) (SearchResult, error) {
	return t.idx.Search(target)
}

// Read decodes record i.
func (t *FileTrace) Read(i int64) (models.Sample, error) {
	return t.idx.Read(i)
}

// CacheStats returns the downsample cache counters. Safe to call concurrently.
func (t *FileTrace) CacheStats() CacheStats {
	return CacheStats{Hits: t.hits.Load(), Misses: t.misses.Load()}
}

// Close releases the trace file.
func (t *FileTrace) Close() error {
	return t.idx.Close()
}

func (t *FileTrace) InterpolateAt(at int64) (float64, bool, error) {
	res, err := t.idx.Search(at)
	if err != nil {
		return 0, false, err
	}
	if res.Found {
		s, err := t.idx.Read(res.Index)
		if err != nil {
			return 0, false, err
		}
		return s.Value, true, nil
	}

	lowerPos, upperPos := res.Index-1, res.Index
	if lowerPos < 0 || upperPos >= t.idx.SampleCount() {
		return 0, false, nil
	}

	lower, err := t.idx.Read(lowerPos)
	if err != nil {
		return 0, false, err
	}
	upper, err := t.idx.Read(upperPos)
	if err != nil {
		return 0, false, err
	}
	if lower.Time == upper.Time {
		return 0, false, nil
	}

	return lower.Value + float64(at-lower.Time)/float64(upper.Time-lower.Time)*(upper.Value-lower.Value), true, nil
}

func (t *FileTrace) AverageIn(a, b int64) (float64, bool, error) {
	if a > b {
		a, b = b, a
	}

	startRes, err := t.idx.Search(a)
	if err != nil {
		return 0, false, err
	}
	endRes, err := t.idx.Search(b)
	if err != nil {
		return 0, false, err
	}

	start := startRes.Index
	end := endRes.Index
	if !endRes.Found {
		end--
	}
	start = max(start, 0)
	end = min(end, t.idx.SampleCount()-1)

	var sum float64
	var n int64
	for i := start; i <= end; i++ {
		s, err := t.idx.Read(i)
		if err != nil {
			return 0, false, err
		}
		sum += s.Value
		n++
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

func (t *FileTrace) MeasurementsCovering(start, end, maxDeltaT int64) (Sequence, error) {
	if t.idx.SampleCount() == 0 {
		return emptySequence(), nil
	}

	if t.cache.covers(start, end, maxDeltaT) {
		t.hits.Add(1)
		return newSliceSequence(t.cache.times, t.cache.values), nil
	}
	t.misses.Add(1)

	times, values, gap, err := t.downsample(start, end, maxDeltaT)
	if err != nil {
		return nil, err
	}

	t.cache = downsampleCache{
		valid:     true,
		start:     start,
		end:       end,
		maxDeltaT: min(maxDeltaT, gap),
		times:     times,
		values:    values,
	}
	return newSliceSequence(times, values), nil
}

// downsample walks the file from the record entering the window at a fixed
// record stride until a record at or past end has been collected. It returns
// the collected points and the largest time gap between consecutive points.
func (t *FileTrace) downsample(start, end, maxDeltaT int64) ([]int64, []float64, int64, error) {
	res, err := t.idx.Search(start)
	if err != nil {
		return nil, nil, 0, err
	}
	pos := res.Index
	if !res.Found {
		pos = max(pos-1, 0)
	}

	first, err := t.idx.Read(pos)
	if err != nil {
		return nil, nil, 0, err
	}
	if first.Time > end {
		return nil, nil, 0, nil
	}

	times := []int64{first.Time}
	values := []float64{first.Value}

	stride := t.stride(maxDeltaT)
	last := t.idx.SampleCount() - 1
	prev := first.Time
	var gap int64

	for pos < last {
		if stride >= last-pos {
			pos = last
		} else {
			pos += stride
		}

		s, err := t.idx.Read(pos)
		if err != nil {
			return nil, nil, 0, err
		}
		times = append(times, s.Time)
		values = append(values, s.Value)

		gap = max(gap, s.Time-prev)
		prev = s.Time

		if s.Time >= end {
			break
		}
	}

	return times, values, gap, nil
}

// stride converts a time budget into a record count, at least one record.
func (t *FileTrace) stride(maxDeltaT int64) int64 {
	period := t.idx.SamplingPeriod()
	if period <= 0 {
		return 1
	}
	return max(maxDeltaT/period, 1)
}
