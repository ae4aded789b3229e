package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// SearchResult is the outcome of a timestamp search.
// When Found is set, Index points at a record with the searched timestamp.
// Otherwise Index is the insertion point in [0, SampleCount].
type SearchResult struct {
	Index int64
	Found bool
}

// Index gives positional access to the records of a trace file.
// It is not safe for concurrent use; every call seeks the shared source.
type Index struct {
	src    io.ReadSeeker
	count  int64
	period int64
	first  int64
	last   int64
	closed bool

	buf [RecordSize]byte
}

// OpenIndex opens the trace file at path.
func OpenIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}

	idx, err := NewIndex(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return idx, nil
}

// NewIndex reads the layout of a trace from src. The index takes ownership of
// src on success and closes it in Close when it implements io.Closer. On error
// src is left for the caller to release.
func NewIndex(src io.ReadSeeker) (*Index, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seek end: %w", ErrIO, err)
	}
	if size < FooterSize || (size-FooterSize)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: size %d is not %d*n+%d", ErrCorruptTraceFile, size, RecordSize, FooterSize)
	}

	idx := &Index{
		src:   src,
		count: (size - FooterSize) / RecordSize,
	}

	if err := idx.load(size-FooterSize, FooterSize); err != nil {
		return nil, err
	}
	idx.period = DecodeTimestamp(idx.buf[:])

	if idx.count > 0 {
		if idx.first, err = idx.timeAt(0); err != nil {
			return nil, err
		}
		if idx.last, err = idx.timeAt(idx.count - 1); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// SampleCount returns the number of records.
func (x *Index) SampleCount() int64 {
	return x.count
}

// SamplingPeriod returns the nominal record spacing stored in the footer.
func (x *Index) SamplingPeriod() int64 {
	return x.period
}

// FirstTime returns the timestamp of the first record.
func (x *Index) FirstTime() (int64, bool) {
	return x.first, x.count > 0
}

// LastTime returns the timestamp of the last record.
func (x *Index) LastTime() (int64, bool) {
	return x.last, x.count > 0
}

// Read decodes record i.
func (x *Index) Read(i int64) (models.Sample, error) {
	if i < 0 || i >= x.count {
		return models.Sample{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, x.count)
	}
	if err := x.load(i*RecordSize, RecordSize); err != nil {
		return models.Sample{}, err
	}
	return models.Sample{
		Time:  DecodeTimestamp(x.buf[:]),
		Value: DecodeValue(x.buf[:]),
	}, nil
}

// Search looks up target with a lower-bound binary search.
func (x *Index) Search(target int64) (SearchResult, error) {
	lower, upper := int64(0), x.count

	// upperTime is the timestamp at upper once upper has been probed.
	var upperTime int64
	probed := false

	for lower < upper {
		mid := lower + (upper-lower)/2
		t, err := x.timeAt(mid)
		if err != nil {
			return SearchResult{}, err
		}
		if target > t {
			lower = mid + 1
		} else {
			upper = mid
			upperTime = t
			probed = true
		}
	}

	return SearchResult{Index: upper, Found: probed && upperTime == target}, nil
}

// Close releases the underlying source.
func (x *Index) Close() error {
	if x.closed {
		return nil
	}
	x.closed = true
	if c, ok := x.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (x *Index) timeAt(i int64) (int64, error) {
	if err := x.load(i*RecordSize, TimestampSize); err != nil {
		return 0, err
	}
	return DecodeTimestamp(x.buf[:]), nil
}

func (x *Index) load(offset int64, n int) error {
	if _, err := x.src.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %w", ErrIO, offset, err)
	}
	if _, err := io.ReadFull(x.src, x.buf[:n]); err != nil {
		return fmt.Errorf("%w: read %d bytes at %d: %w", ErrIO, n, offset, err)
	}
	return nil
}
