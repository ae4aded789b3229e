package measurement

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HappyEnt/flooja-cau-testbed/internal/storage"
	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

const gpioCSV = "# timestamp,observer_id,node_id,pin_name,value\n" +
	"1.0,3,3,LED1,1\n" +
	"2.5,3,3,LED1,0\n"

const serialCSV = "# timestamp,observer_id,node_id,direction,output\n" +
	"0.5,3,3,r,boot\n" +
	"1.5,3,3,r,hello, world\n"

func createMeasurement(t *testing.T, withPower bool) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, GpioFile), []byte(gpioCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SerialFile), []byte(serialCSV), 0644))

	if withPower {
		power := filepath.Join(dir, PowerDir)
		require.NoError(t, os.Mkdir(power, 0755))

		sec := models.UnitsPerSecond
		samples := []models.Sample{{Time: sec, Value: 10}, {Time: 2 * sec, Value: 20}, {Time: 3 * sec, Value: 15}}
		require.NoError(t, trace.WriteTraceFile(filepath.Join(power, "3"), samples, sec))
	}
	return dir
}

func TestLocate(t *testing.T) {
	dir := createMeasurement(t, true)

	files, err := Locate(dir)
	require.NoError(t, err)
	assert.Equal(t, Files{
		Dir:    dir,
		Serial: filepath.Join(dir, SerialFile),
		Gpio:   filepath.Join(dir, GpioFile),
		Power:  filepath.Join(dir, PowerDir),
	}, files)
}

func TestLocateOptionalFiles(t *testing.T) {
	dir := t.TempDir()
	// a directory named like the serial log is not the serial log
	require.NoError(t, os.Mkdir(filepath.Join(dir, SerialFile), 0755))

	files, err := Locate(dir)
	require.NoError(t, err)
	assert.Equal(t, Files{Dir: dir}, files)
}

func TestLocateNotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := Locate(path)
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = Locate(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	m, err := Open(context.Background(), createMeasurement(t, true), nil)
	require.NoError(t, err)
	defer m.Close()

	require.NotNil(t, m.Gpio)
	require.NotNil(t, m.Serial)
	assert.Equal(t, []int{3}, m.Gpio.Nodes())
	assert.Equal(t, 2, m.Serial.Len())
	assert.Equal(t, "hello, world", m.Serial.Events()[1].Output)

	nodes, err := m.Traces.Nodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3}, nodes)

	start, end, ok := m.Span()
	assert.True(t, ok)
	assert.Equal(t, models.UnitsPerSecond/2, start)
	assert.Equal(t, 3*models.UnitsPerSecond, end)
}

func TestOpenWithoutEvents(t *testing.T) {
	m, err := Open(context.Background(), createMeasurement(t, true), nil, WithEvents(false))
	require.NoError(t, err)
	defer m.Close()

	assert.Nil(t, m.Gpio)
	assert.Nil(t, m.Serial)

	start, end, ok := m.Span()
	assert.True(t, ok)
	assert.Equal(t, models.UnitsPerSecond, start)
	assert.Equal(t, 3*models.UnitsPerSecond, end)
}

func TestOpenWithoutPowerTraces(t *testing.T) {
	m, err := Open(context.Background(), createMeasurement(t, false), nil)
	require.NoError(t, err)

	_, err = m.Traces.Trace(context.Background(), 3)
	assert.ErrorIs(t, err, storage.ErrNodeNotFound)
	assert.NoError(t, m.Close())
}

func TestOpenEmptyDirectory(t *testing.T) {
	m, err := Open(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)

	_, _, ok := m.Span()
	assert.False(t, ok)
}

func TestOpenMalformedLog(t *testing.T) {
	dir := createMeasurement(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(dir, GpioFile), []byte("1.0,3,3,LED1,maybe\n"), 0644))

	_, err := Open(context.Background(), dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), GpioFile)
	assert.Contains(t, err.Error(), "line 1")
}

func TestOpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, createMeasurement(t, true), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
