package parser

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"123.45678", 12345678000},
		{"123.45679", 12345679000},
		{"1234567999.11145678", 123456799911145678},
		{"  42 ", 4200000000},
		{"0.00000001", 1},
		{"0.000000019", 1}, // truncated, not rounded
		{"7.", 700000000},
		{".5", 50000000},
		{"-1.5", -150000000},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "123.45678000", FormatTimestamp(12345678000))
	assert.Equal(t, "0.00000001", FormatTimestamp(1))
	assert.Equal(t, "-1.50000000", FormatTimestamp(-150000000))
	assert.Equal(t, "0.00000000", FormatTimestamp(0))

	for _, ts := range []int64{0, 1, 99, -7, 123456799911145678, math.MinInt64, math.MaxInt64} {
		got, err := ParseTimestamp(FormatTimestamp(ts))
		if ts == math.MinInt64 {
			// the magnitude does not fit in int64
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, ts, got)
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, in := range []string{"", ".", "abc", "1.2.3", "12a.5", "1.5e3", "99999999999999999999", "92233720369"} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}
}

func TestReadRowsSkipsCommentsAndBlankLines(t *testing.T) {
	input := "# header\n\n1.0,2,a,b\r\n   \n# trailing comment\n3.0,4,c,d,e\n"

	var rows []row
	sp, err := readRows(strings.NewReader(input), 4, func(r row) error {
		rows = append(rows, r)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].line)
	assert.Equal(t, []string{"a", "b"}, rows[0].fields)
	assert.Equal(t, 6, rows[1].line)
	assert.Equal(t, 4, rows[1].observerID)
	assert.Equal(t, []string{"c", "d,e"}, rows[1].fields)

	start, end, ok := sp.TimeSpan()
	assert.True(t, ok)
	assert.Equal(t, int64(100000000), start)
	assert.Equal(t, int64(300000000), end)
}

func TestReadRowsErrorsNameTheLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"too few columns", "# c\n1.0,2,a\n", "line 2"},
		{"bad timestamp", "1.0,2,a,b\nnow,2,a,b\n", "line 2"},
		{"bad observer", "1.0,x,a,b\n", "line 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readRows(strings.NewReader(tt.input), 4, func(row) error { return nil })
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestSpanTracksMinAndMax(t *testing.T) {
	var sp span
	_, _, ok := sp.TimeSpan()
	assert.False(t, ok)

	for _, ts := range []int64{50, 10, 70, 30} {
		sp.observe(ts)
	}
	start, end, ok := sp.TimeSpan()
	assert.True(t, ok)
	assert.Equal(t, int64(10), start)
	assert.Equal(t, int64(70), end)
}
