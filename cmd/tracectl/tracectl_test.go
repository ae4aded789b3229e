package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HappyEnt/flooja-cau-testbed/internal/storage"
	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/config"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

const base = 100 * models.UnitsPerSecond

// createMeasurement writes a measurement with node 13 holding eleven samples
// one millisecond apart starting at 100s, valued 0..10.
func createMeasurement(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	power := filepath.Join(dir, "powerprofiling")
	require.NoError(t, os.Mkdir(power, 0755))

	samples := make([]models.Sample, 11)
	for i := range samples {
		samples[i] = models.Sample{Time: base + int64(i)*models.UnitsPerMillisecond, Value: float64(i)}
	}
	require.NoError(t, trace.WriteTraceFile(filepath.Join(power, "13"), samples, models.UnitsPerMillisecond))

	serial := "# timestamp,observer_id,node_id,direction,output\n100.0,1,13,r,boot\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "serial.csv"), []byte(serial), 0644))
	return dir
}

func run(t *testing.T, env *rootEnv, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(env)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// fakeWriter records exported traces instead of writing to InfluxDB.
type fakeWriter struct {
	exported map[int][]models.Sample
	closed   bool
}

func (f *fakeWriter) ExportTrace(ctx context.Context, tr trace.Trace, maxDeltaT int64) (int, error) {
	first, _ := tr.FirstTime()
	last, _ := tr.LastTime()
	seq, err := tr.MeasurementsCovering(first, last, maxDeltaT)
	if err != nil {
		return 0, err
	}
	samples := trace.Collect(seq)
	f.exported[tr.NodeID()] = samples
	return len(samples), nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestInfo(t *testing.T) {
	dir := createMeasurement(t)

	out, err := run(t, newRootEnv(), "info", "--dir", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NODE", "FIRST", "LAST", "SAMPLES", "PERIOD"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"13", "100.00000000", "100.01000000", "11", "0.00100000"}, strings.Fields(lines[1]))
	assert.Equal(t, "serial lines: 1", lines[2])
}

func TestInterpolate(t *testing.T) {
	dir := createMeasurement(t)

	out, err := run(t, newRootEnv(), "interpolate", "13", "100.0005", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "0.500 mA\n", out)

	out, err = run(t, newRootEnv(), "interpolate", "13", "99", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "unknown\n", out)
}

func TestInterpolateErrors(t *testing.T) {
	dir := createMeasurement(t)

	_, err := run(t, newRootEnv(), "interpolate", "77", "100", "--dir", dir)
	assert.ErrorIs(t, err, storage.ErrNodeNotFound)

	_, err = run(t, newRootEnv(), "interpolate", "13", "later", "--dir", dir)
	assert.Error(t, err)

	_, err = run(t, newRootEnv(), "interpolate", "13", "--dir", dir)
	assert.Error(t, err)
}

func TestAverage(t *testing.T) {
	dir := createMeasurement(t)

	out, err := run(t, newRootEnv(), "average", "13", "100", "100.002", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "1.000 mA\n", out)

	out, err = run(t, newRootEnv(), "average", "13", "100.0001", "100.0002", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "unknown\n", out)
}

func TestSamples(t *testing.T) {
	dir := createMeasurement(t)

	out, err := run(t, newRootEnv(), "samples", "13", "--max-delta-t", "0.001", "--dir", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "# time,value", lines[0])
	assert.Equal(t, "100.00000000,0", lines[1])
	assert.Equal(t, "100.01000000,10", lines[11])

	out, err = run(t, newRootEnv(), "samples", "13", "--start", "100.002", "--end", "100.004", "--max-delta-t", "0.002", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "# time,value\n100.00200000,2\n100.00400000,4\n", out)
}

func TestConvertRoundTrip(t *testing.T) {
	dir := createMeasurement(t)
	csvPath := filepath.Join(t.TempDir(), "node13.csv")
	tracePath := filepath.Join(t.TempDir(), "13")

	out, err := run(t, newRootEnv(), "samples", "13", "--max-delta-t", "0.001", "--dir", dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(csvPath, []byte(out), 0644))

	out, err = run(t, newRootEnv(), "convert", csvPath, tracePath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 11 samples")

	tr, err := trace.OpenFileTrace(tracePath)
	require.NoError(t, err)
	defer tr.Close()

	assert.Equal(t, int64(11), tr.SampleCount())
	assert.Equal(t, models.UnitsPerMillisecond, tr.SamplingPeriod())
	v, ok, err := tr.InterpolateAt(base + 5*models.UnitsPerMillisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)
}

func TestConvertExplicitPeriod(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "in.csv")
	tracePath := filepath.Join(t.TempDir(), "4")
	require.NoError(t, os.WriteFile(csvPath, []byte("1.0,2\n1.5,3\n"), 0644))

	_, err := run(t, newRootEnv(), "convert", csvPath, tracePath, "--period", "0.25")
	require.NoError(t, err)

	tr, err := trace.OpenFileTrace(tracePath)
	require.NoError(t, err)
	defer tr.Close()
	assert.Equal(t, models.UnitsPerSecond/4, tr.SamplingPeriod())
}

func TestConvertInvalidInput(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("1.0,2\n1.5\n"), 0644))

	_, err := run(t, newRootEnv(), "convert", csvPath, filepath.Join(t.TempDir(), "4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in.csv")
	assert.Contains(t, err.Error(), "line 2")
}

func TestRender(t *testing.T) {
	dir := createMeasurement(t)
	pngPath := filepath.Join(t.TempDir(), "plot.png")

	out, err := run(t, newRootEnv(), "render", "13", "--out", pngPath, "--width", "320", "--height", "120", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "320x120")

	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
}

func TestRenderEmptyWindow(t *testing.T) {
	dir := createMeasurement(t)
	pngPath := filepath.Join(t.TempDir(), "plot.png")

	_, err := run(t, newRootEnv(), "render", "13", "--out", pngPath, "--start", "100.005", "--end", "100.005", "--dir", dir)
	require.Error(t, err)

	_, statErr := os.Stat(pngPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport(t *testing.T) {
	dir := createMeasurement(t)
	w := &fakeWriter{exported: make(map[int][]models.Sample)}

	env := newRootEnv()
	env.newWriter = func(cfg config.InfluxConfig) (storage.TraceWriter, error) {
		return w, nil
	}

	out, err := run(t, env, "export", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "node 13: 11 points")
	assert.Contains(t, out, "exported 11 points from 1 traces")
	assert.Len(t, w.exported[13], 11)
	assert.True(t, w.closed)
}
