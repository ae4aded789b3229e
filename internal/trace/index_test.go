package trace

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

func TestCodecRoundTrip(t *testing.T) {
	var buf [RecordSize]byte
	EncodeRecord(buf[:], models.Sample{Time: -42, Value: 3.25})

	assert.Equal(t, int64(-42), DecodeTimestamp(buf[:]))
	assert.Equal(t, 3.25, DecodeValue(buf[:]))
	// little-endian: lowest byte first
	assert.Equal(t, byte(0xd6), buf[0])
}

func TestWriteTraceFileSize(t *testing.T) {
	path := writeTrace(t, 1, scenarioSamples(), 10)

	idx, err := OpenIndex(path)
	require.NoError(t, err)
	defer idx.Close()

	assert.Equal(t, int64(8), idx.SampleCount())
	assert.Equal(t, int64(10), idx.SamplingPeriod())

	first, ok := idx.FirstTime()
	assert.True(t, ok)
	assert.Equal(t, int64(0), first)

	last, ok := idx.LastTime()
	assert.True(t, ok)
	assert.Equal(t, int64(70), last)
}

func TestCorruptTraceFileRejected(t *testing.T) {
	sizes := []int{0, 7, FooterSize + 1, FooterSize + RecordSize - 1, 2*RecordSize + FooterSize + 3}
	for _, size := range sizes {
		path := writeRaw(t, "5", make([]byte, size))

		idx, err := OpenIndex(path)
		assert.ErrorIs(t, err, ErrCorruptTraceFile, "size %d", size)
		assert.Nil(t, idx)

		ft, err := OpenFileTrace(path)
		assert.ErrorIs(t, err, ErrCorruptTraceFile, "size %d", size)
		assert.Nil(t, ft)
	}
}

func TestEmptyTrace(t *testing.T) {
	path := writeTrace(t, 2, nil, 10)

	idx, err := OpenIndex(path)
	require.NoError(t, err)
	defer idx.Close()

	assert.Equal(t, int64(0), idx.SampleCount())
	_, ok := idx.FirstTime()
	assert.False(t, ok)
	_, ok = idx.LastTime()
	assert.False(t, ok)

	res, err := idx.Search(5)
	require.NoError(t, err)
	assert.Equal(t, SearchResult{Index: 0, Found: false}, res)
}

func TestOpenIndexMissingFile(t *testing.T) {
	_, err := OpenIndex("/non/existent/trace/7")
	assert.ErrorIs(t, err, ErrIO)
}

func TestReadOutOfRange(t *testing.T) {
	idx, err := NewIndex(bytes.NewReader(encodeTrace(scenarioSamples(), 10)))
	require.NoError(t, err)

	_, err = idx.Read(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = idx.Read(8)
	assert.ErrorIs(t, err, ErrOutOfRange)

	s, err := idx.Read(7)
	require.NoError(t, err)
	assert.Equal(t, models.Sample{Time: 70, Value: 7}, s)
}

func TestSearchFindsExactAfterLeftProbe(t *testing.T) {
	// The last probe lands left of the match; the result must still be Found.
	idx, err := NewIndex(bytes.NewReader(encodeTrace([]models.Sample{{Time: 0}, {Time: 10}, {Time: 20}}, 10)))
	require.NoError(t, err)

	res, err := idx.Search(10)
	require.NoError(t, err)
	assert.Equal(t, SearchResult{Index: 1, Found: true}, res)
}

func TestSearchCorrectness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := rng.Intn(40)
		samples := make([]models.Sample, n)
		ts := int64(rng.Intn(5))
		for i := range samples {
			samples[i] = models.Sample{Time: ts, Value: float64(i)}
			ts += int64(rng.Intn(4)) // zero steps produce duplicates
		}

		idx, err := NewIndex(bytes.NewReader(encodeTrace(samples, 2)))
		require.NoError(t, err)

		for target := int64(-2); target <= ts+2; target++ {
			res, err := idx.Search(target)
			require.NoError(t, err)

			if res.Found {
				require.Less(t, res.Index, int64(n))
				assert.Equal(t, target, samples[res.Index].Time)
				continue
			}

			require.GreaterOrEqual(t, res.Index, int64(0))
			require.LessOrEqual(t, res.Index, int64(n))
			for i := int64(0); i < res.Index; i++ {
				assert.Less(t, samples[i].Time, target)
			}
			for i := res.Index; i < int64(n); i++ {
				assert.Greater(t, samples[i].Time, target)
			}
		}
	}
}

func TestIndexCloseIdempotent(t *testing.T) {
	path := writeTrace(t, 3, scenarioSamples(), 10)

	idx, err := OpenIndex(path)
	require.NoError(t, err)
	assert.NoError(t, idx.Close())
	assert.NoError(t, idx.Close())
}
