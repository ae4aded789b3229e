package parser

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// GpioEvents holds the level changes of gpiotraces.csv grouped by node and pin.
type GpioEvents struct {
	span
	nodes map[int]map[string]*PinTrace
}

// PinTrace is the time ordered level history of one pin on one node.
type PinTrace struct {
	events []models.GpioEvent
}

// LoadGpio reads rows of the form timestamp,observer_id,node_id,pin_name,value.
// value must be 0 or 1.
func LoadGpio(r io.Reader) (*GpioEvents, error) {
	g := &GpioEvents{nodes: make(map[int]map[string]*PinTrace)}

	sp, err := readRows(r, 5, func(rw row) error {
		node, err := strconv.Atoi(strings.TrimSpace(rw.fields[0]))
		if err != nil {
			return fmt.Errorf("invalid node id: %w", err)
		}
		pin := strings.TrimSpace(rw.fields[1])
		if pin == "" {
			return fmt.Errorf("empty pin name")
		}

		var high bool
		switch v := strings.TrimSpace(rw.fields[2]); v {
		case "1":
			high = true
		case "0":
		default:
			return fmt.Errorf("invalid pin value %q", v)
		}

		p := g.pin(node, pin)
		p.events = append(p.events, models.GpioEvent{
			Time:       rw.time,
			ObserverID: rw.observerID,
			NodeID:     node,
			Pin:        pin,
			High:       high,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load GPIO events: %w", err)
	}
	g.span = sp

	for _, pins := range g.nodes {
		for _, p := range pins {
			p.normalize()
		}
	}
	return g, nil
}

func (g *GpioEvents) pin(node int, name string) *PinTrace {
	pins, ok := g.nodes[node]
	if !ok {
		pins = make(map[string]*PinTrace)
		g.nodes[node] = pins
	}
	p, ok := pins[name]
	if !ok {
		p = &PinTrace{}
		pins[name] = p
	}
	return p
}

// Nodes returns the ids of all nodes with events, ascending.
func (g *GpioEvents) Nodes() []int {
	nodes := make([]int, 0, len(g.nodes))
	for n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// PinNames returns the sorted union of pin names over all nodes.
func (g *GpioEvents) PinNames() []string {
	seen := make(map[string]struct{})
	for _, pins := range g.nodes {
		for name := range pins {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Pin returns the history of pin on node, or nil if it never changed.
func (g *GpioEvents) Pin(node int, pin string) *PinTrace {
	return g.nodes[node][pin]
}

// Len returns the total number of events.
func (g *GpioEvents) Len() int {
	n := 0
	for _, pins := range g.nodes {
		for _, p := range pins {
			n += len(p.events)
		}
	}
	return n
}

// normalize sorts by time and keeps only the last row of a repeated timestamp.
func (p *PinTrace) normalize() {
	slices.SortStableFunc(p.events, func(a, b models.GpioEvent) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})

	out := p.events[:0]
	for _, e := range p.events {
		if n := len(out); n > 0 && out[n-1].Time == e.Time {
			out[n-1] = e
			continue
		}
		out = append(out, e)
	}
	p.events = out
}

// Events returns all events in time order.
func (p *PinTrace) Events() []models.GpioEvent {
	return p.events
}

// StateAt reports the pin level at t, taken from the last event at or before t.
// ok is false before the first event.
func (p *PinTrace) StateAt(t int64) (high bool, ok bool) {
	i := p.floor(t)
	if i < 0 {
		return false, false
	}
	return p.events[i].High, true
}

// EventsCovering returns the events within [start, end] preceded by the last
// event before start, so the level entering the window is known.
func (p *PinTrace) EventsCovering(start, end int64) []models.GpioEvent {
	if start > end {
		start, end = end, start
	}
	from := max(p.floor(start), 0)
	to := p.floor(end)
	if to < from {
		return nil
	}
	return p.events[from : to+1]
}

// floor returns the index of the last event at or before t, or -1.
func (p *PinTrace) floor(t int64) int {
	return sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > t }) - 1
}
