// Package parser loads the CSV event logs a testbed observer writes next to
// the power traces: gpiotraces.csv and serial.csv. It also reads plain
// time,value sample files for conversion into trace files.
//
// Every log row starts with a timestamp in decimal seconds and the observer
// id, followed by columns specific to the log. Lines starting with '#' are
// comments and blank lines are skipped.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// fractionDigits is the number of decimal places representable in 10 ns units.
const fractionDigits = 8

// maxLineSize bounds a single CSV line; serial output lines can be long.
const maxLineSize = 1 << 20

// ParseTimestamp converts decimal seconds ("123.45678") into 10 ns units
// without going through floating point. Digits beyond the eighth decimal
// place are truncated.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	var secs int64
	if whole != "" {
		if !isDigits(whole) {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		secs = v
	}
	if secs > math.MaxInt64/models.UnitsPerSecond {
		return 0, fmt.Errorf("timestamp %q out of range", s)
	}

	if !isDigits(frac) {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	if len(frac) > fractionDigits {
		frac = frac[:fractionDigits]
	}
	var units int64
	if frac != "" {
		v, err := strconv.ParseInt(frac+strings.Repeat("0", fractionDigits-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		units = v
	}

	ts := secs*models.UnitsPerSecond + units
	if ts < 0 {
		return 0, fmt.Errorf("timestamp %q out of range", s)
	}
	if neg {
		ts = -ts
	}
	return ts, nil
}

// FormatTimestamp renders a timestamp in 10 ns units as decimal seconds with
// all eight decimal places, the inverse of ParseTimestamp.
func FormatTimestamp(ts int64) string {
	sign := ""
	u := uint64(ts)
	if ts < 0 {
		sign = "-"
		u = uint64(-(ts + 1)) + 1
	}
	per := uint64(models.UnitsPerSecond)
	return fmt.Sprintf("%s%d.%0*d", sign, u/per, fractionDigits, u%per)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// span tracks the earliest and latest timestamp seen by a loader.
type span struct {
	start, end int64
	seen       bool
}

func (s *span) observe(ts int64) {
	if !s.seen {
		s.start, s.end, s.seen = ts, ts, true
		return
	}
	s.start = min(s.start, ts)
	s.end = max(s.end, ts)
}

// TimeSpan returns the earliest and latest timestamp of the log. ok is false
// for a log without rows.
func (s *span) TimeSpan() (start, end int64, ok bool) {
	return s.start, s.end, s.seen
}

// row is one parsed data line. fields holds the columns after the observer
// id; the last field keeps any further commas.
type row struct {
	line       int
	time       int64
	observerID int
	fields     []string
}

// scanLines calls fn with the columns of every data line, split into at most
// columns parts so the last column swallows the remainder of the line.
func scanLines(r io.Reader, columns int, fn func(line int, parts []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.SplitN(text, ",", columns)
		if len(parts) != columns {
			return fmt.Errorf("line %d: expected %d columns, got %d", line, columns, len(parts))
		}
		if err := fn(line, parts); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read CSV: %w", err)
	}
	return nil
}

// readRows reads observer rows with exactly columns comma separated columns,
// where the last column swallows the remainder of the line.
func readRows(r io.Reader, columns int, fn func(row) error) (span, error) {
	var sp span

	err := scanLines(r, columns, func(line int, parts []string) error {
		ts, err := ParseTimestamp(parts[0])
		if err != nil {
			return err
		}
		observer, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("invalid observer id: %w", err)
		}

		if err := fn(row{line: line, time: ts, observerID: observer, fields: parts[2:]}); err != nil {
			return err
		}
		sp.observe(ts)
		return nil
	})
	return sp, err
}
