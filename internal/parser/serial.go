package parser

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// SerialLog holds the lines of serial.csv ordered by time and, for equal
// timestamps, by their order in the file.
type SerialLog struct {
	span
	events []models.SerialEvent
}

// LoadSerial reads rows of the form timestamp,observer_id,node_id,direction,output.
// The output column may itself contain commas.
func LoadSerial(r io.Reader) (*SerialLog, error) {
	l := &SerialLog{}

	sp, err := readRows(r, 5, func(rw row) error {
		node, err := strconv.Atoi(strings.TrimSpace(rw.fields[0]))
		if err != nil {
			return fmt.Errorf("invalid node id: %w", err)
		}

		l.events = append(l.events, models.SerialEvent{
			Time:       rw.time,
			ObserverID: rw.observerID,
			NodeID:     node,
			Direction:  models.ParseSerialDirection(strings.TrimSpace(rw.fields[1])),
			Output:     rw.fields[2],
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load serial output: %w", err)
	}
	l.span = sp

	slices.SortStableFunc(l.events, func(a, b models.SerialEvent) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return l, nil
}

// Events returns all lines in order.
func (l *SerialLog) Events() []models.SerialEvent {
	return l.events
}

// Len returns the number of lines.
func (l *SerialLog) Len() int {
	return len(l.events)
}

// Covering returns the lines with start <= time <= end.
func (l *SerialLog) Covering(start, end int64) []models.SerialEvent {
	if start > end {
		start, end = end, start
	}
	from := sort.Search(len(l.events), func(i int) bool { return l.events[i].Time >= start })
	to := sort.Search(len(l.events), func(i int) bool { return l.events[i].Time > end })
	return l.events[from:to]
}
