package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

const gpioCSV = "# timestamp,observer_id,node_id,pin_name,value\n" +
	"1234567999.11145678,13,13,LED2,0\n" +
	"123.45678,13,13,LED2,1\n" +
	"123.45679,11,11,INT1,1"

func TestLoadGpio(t *testing.T) {
	g, err := LoadGpio(strings.NewReader(gpioCSV))
	require.NoError(t, err)

	assert.Equal(t, []int{11, 13}, g.Nodes())
	assert.Equal(t, []string{"INT1", "LED2"}, g.PinNames())
	assert.Equal(t, 3, g.Len())

	assert.Equal(t, []models.GpioEvent{
		{Time: 12345678000, ObserverID: 13, NodeID: 13, Pin: "LED2", High: true},
		{Time: 123456799911145678, ObserverID: 13, NodeID: 13, Pin: "LED2", High: false},
	}, g.Pin(13, "LED2").Events())

	assert.Equal(t, []models.GpioEvent{
		{Time: 12345679000, ObserverID: 11, NodeID: 11, Pin: "INT1", High: true},
	}, g.Pin(11, "INT1").Events())

	assert.Nil(t, g.Pin(11, "LED2"))
	assert.Nil(t, g.Pin(99, "LED2"))

	start, end, ok := g.TimeSpan()
	assert.True(t, ok)
	assert.Equal(t, int64(12345678000), start)
	assert.Equal(t, int64(123456799911145678), end)
}

func TestLoadGpioRepeatedTimestampKeepsLast(t *testing.T) {
	input := "1.0,1,1,LED1,1\n1.0,1,1,LED1,0\n2.0,1,1,LED1,1\n"
	g, err := LoadGpio(strings.NewReader(input))
	require.NoError(t, err)

	events := g.Pin(1, "LED1").Events()
	require.Len(t, events, 2)
	assert.False(t, events[0].High)
	assert.True(t, events[1].High)
}

func TestLoadGpioInvalidRows(t *testing.T) {
	for _, input := range []string{
		"1.0,1,x,LED1,1\n",
		"1.0,1,1,,1\n",
		"1.0,1,1,LED1,high\n",
		"1.0,1,1,LED1\n",
	} {
		_, err := LoadGpio(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}

func TestPinTraceStateAt(t *testing.T) {
	g, err := LoadGpio(strings.NewReader("1.0,1,1,LED1,1\n2.0,1,1,LED1,0\n3.0,1,1,LED1,1\n"))
	require.NoError(t, err)
	p := g.Pin(1, "LED1")

	_, ok := p.StateAt(99999999)
	assert.False(t, ok)

	tests := []struct {
		at   int64
		high bool
	}{
		{100000000, true},
		{150000000, true},
		{200000000, false},
		{299999999, false},
		{1000000000, true},
	}
	for _, tt := range tests {
		high, ok := p.StateAt(tt.at)
		assert.True(t, ok, "time %d", tt.at)
		assert.Equal(t, tt.high, high, "time %d", tt.at)
	}
}

func TestPinTraceEventsCovering(t *testing.T) {
	g, err := LoadGpio(strings.NewReader("1.0,1,1,LED1,1\n2.0,1,1,LED1,0\n3.0,1,1,LED1,1\n4.0,1,1,LED1,0\n"))
	require.NoError(t, err)
	p := g.Pin(1, "LED1")

	times := func(events []models.GpioEvent) []int64 {
		var out []int64
		for _, e := range events {
			out = append(out, e.Time/models.UnitsPerSecond)
		}
		return out
	}

	sec := models.UnitsPerSecond
	assert.Equal(t, []int64{2, 3}, times(p.EventsCovering(2*sec+sec/2, 3*sec+sec/2)))
	assert.Equal(t, []int64{2, 3}, times(p.EventsCovering(2*sec, 3*sec)))
	assert.Equal(t, []int64{1, 2}, times(p.EventsCovering(0, 2*sec)))
	assert.Equal(t, []int64{4}, times(p.EventsCovering(10*sec, 20*sec)))
	assert.Empty(t, p.EventsCovering(0, sec/2))
	assert.Equal(t, []int64{2, 3}, times(p.EventsCovering(3*sec+sec/2, 2*sec+sec/2)))
}
