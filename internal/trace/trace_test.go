package trace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// Shared fixtures for the trace package tests.

// scenarioSamples is the eight record trace 0..70 with values 0..7.
func scenarioSamples() []models.Sample {
	samples := make([]models.Sample, 8)
	for i := range samples {
		samples[i] = models.Sample{Time: int64(i * 10), Value: float64(i)}
	}
	return samples
}

func uniformSamples(n int, period int64) []models.Sample {
	samples := make([]models.Sample, n)
	for i := range samples {
		samples[i] = models.Sample{Time: int64(i) * period, Value: float64(i % 7)}
	}
	return samples
}

func encodeTrace(samples []models.Sample, period int64) []byte {
	buf := make([]byte, len(samples)*RecordSize+FooterSize)
	for i, s := range samples {
		EncodeRecord(buf[i*RecordSize:], s)
	}
	EncodeFooter(buf[len(samples)*RecordSize:], period)
	return buf
}

func writeTrace(t *testing.T, nodeID int, samples []models.Sample, period int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), strconv.Itoa(nodeID))
	require.NoError(t, WriteTraceFile(path, samples, period))
	return path
}

func writeRaw(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// countingSource counts every Read issued against the trace bytes.
type countingSource struct {
	*bytes.Reader
	reads int
}

func newCountingSource(data []byte) *countingSource {
	return &countingSource{Reader: bytes.NewReader(data)}
}

func (c *countingSource) Read(p []byte) (int, error) {
	c.reads++
	return c.Reader.Read(p)
}

// flakySource fails every Read while fail is set.
type flakySource struct {
	*bytes.Reader
	fail bool
}

var errDiskGone = errors.New("disk gone")

func (f *flakySource) Read(p []byte) (int, error) {
	if f.fail {
		return 0, errDiskGone
	}
	return f.Reader.Read(p)
}

func collectTimes(t *testing.T, seq Sequence) []int64 {
	t.Helper()
	var out []int64
	for seq.Next() {
		out = append(out, seq.Time())
	}
	return out
}
