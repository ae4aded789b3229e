package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

const serialCSV = "# timestamp,observer_id,node_id,direction,output\n" +
	"1234567999.11145678,13,13,r,just, some text\n" +
	"123.45678,   13,13,r,same time other text\n" +
	"123.45679,   11,11,r,some other, text"

func TestLoadSerial(t *testing.T) {
	l, err := LoadSerial(strings.NewReader(serialCSV))
	require.NoError(t, err)

	assert.Equal(t, []models.SerialEvent{
		{Time: 12345678000, ObserverID: 13, NodeID: 13, Direction: models.SerialRead, Output: "same time other text"},
		{Time: 12345679000, ObserverID: 11, NodeID: 11, Direction: models.SerialRead, Output: "some other, text"},
		{Time: 123456799911145678, ObserverID: 13, NodeID: 13, Direction: models.SerialRead, Output: "just, some text"},
	}, l.Events())

	start, end, ok := l.TimeSpan()
	assert.True(t, ok)
	assert.Equal(t, int64(12345678000), start)
	assert.Equal(t, int64(123456799911145678), end)
}

func TestLoadSerialKeepsFileOrderForEqualTimes(t *testing.T) {
	input := "2.0,1,1,w,second\n1.0,1,1,r,first\n2.0,1,1,x,third\n"
	l, err := LoadSerial(strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, 3, l.Len())
	var outputs []string
	for _, e := range l.Events() {
		outputs = append(outputs, e.Output)
	}
	assert.Equal(t, []string{"first", "second", "third"}, outputs)
	assert.Equal(t, models.SerialWrite, l.Events()[1].Direction)
	assert.Equal(t, models.SerialNone, l.Events()[2].Direction)
}

func TestLoadSerialInvalidRows(t *testing.T) {
	_, err := LoadSerial(strings.NewReader("1.0,1,node,r,text\n"))
	assert.Error(t, err)

	_, err = LoadSerial(strings.NewReader("1.0,1,1,r\n"))
	assert.Error(t, err)
}

func TestLoadSerialEmpty(t *testing.T) {
	l, err := LoadSerial(strings.NewReader("# only a header\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, l.Len())
	_, _, ok := l.TimeSpan()
	assert.False(t, ok)
	assert.Empty(t, l.Covering(0, 100))
}

func TestSerialLogCovering(t *testing.T) {
	l, err := LoadSerial(strings.NewReader(serialCSV))
	require.NoError(t, err)

	got := l.Covering(12345678000, 12345679000)
	require.Len(t, got, 2)
	assert.Equal(t, "same time other text", got[0].Output)

	assert.Len(t, l.Covering(12345678001, 12345679000), 1)
	assert.Empty(t, l.Covering(0, 100))
	assert.Len(t, l.Covering(123456799911145678, 12345678000), 3)
}
