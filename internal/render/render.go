// Package render draws current traces as PNG plots.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// MaxConnectedPixels is the largest horizontal distance, in pixels, between
// two samples that are still joined by a line.
const MaxConnectedPixels = 20

// DefaultMaxCurrent is the top of the current axis in mA.
const DefaultMaxCurrent = 35.0

// ErrInvalidWindow is returned for windows that cannot be drawn.
var ErrInvalidWindow = errors.New("invalid plot window")

// Window is the visible time range and the pixel size of the plot.
type Window struct {
	Start  int64
	End    int64
	Width  int
	Height int
}

// Validate checks that the window spans time and has a positive size.
func (w Window) Validate() error {
	switch {
	case w.End <= w.Start:
		return fmt.Errorf("%w: end %d is not after start %d", ErrInvalidWindow, w.End, w.Start)
	case w.Width <= 0 || w.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidWindow, w.Width, w.Height)
	}
	return nil
}

// TimePerPixel is the time covered by one horizontal pixel, at least one unit.
func (w Window) TimePerPixel() int64 {
	if w.Width <= 0 {
		return max(w.End-w.Start, 1)
	}
	return max((w.End-w.Start)/int64(w.Width), 1)
}

// Options tune the rendered chart.
type Options struct {
	// MaxCurrent is the top of the current axis in mA; values above are clamped
	MaxCurrent float64
	Title      string
}

func (o Options) maxCurrent() float64 {
	if o.MaxCurrent <= 0 {
		return DefaultMaxCurrent
	}
	return o.MaxCurrent
}

// Segments splits seq into runs of samples that are drawn connected.
// A gap wider than MaxConnectedPixels pixels starts a new run.
func Segments(seq trace.Sequence, timePerPixel int64) [][]models.Sample {
	maxGap := MaxConnectedPixels * max(timePerPixel, 1)

	var segments [][]models.Sample
	var current []models.Sample
	for seq.Next() {
		s := models.Sample{Time: seq.Time(), Value: seq.Value()}
		if n := len(current); n > 0 && s.Time-current[n-1].Time > maxGap {
			segments = append(segments, current)
			current = nil
		}
		current = append(current, s)
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// clip cuts a segment to [start, end], interpolating the boundary points.
func clip(seg []models.Sample, start, end int64) []models.Sample {
	var out []models.Sample
	for i, s := range seg {
		if i > 0 {
			prev := seg[i-1]
			if prev.Time < start && s.Time > start {
				out = append(out, interpolate(prev, s, start))
			}
			if prev.Time < end && s.Time > end {
				out = append(out, interpolate(prev, s, end))
			}
		}
		if s.Time >= start && s.Time <= end {
			out = append(out, s)
		}
	}
	return out
}

func interpolate(a, b models.Sample, at int64) models.Sample {
	v := a.Value + float64(at-a.Time)/float64(b.Time-a.Time)*(b.Value-a.Value)
	return models.Sample{Time: at, Value: v}
}

// series converts segments of one trace into chart series.
func series(segments [][]models.Sample, win Window, color drawing.Color, maxCurrent float64) []chart.Series {
	pixelMs := float64(win.TimePerPixel()) / float64(models.UnitsPerMillisecond)
	style := chart.Style{StrokeColor: color, StrokeWidth: 1}

	var out []chart.Series
	for _, seg := range segments {
		seg = clip(seg, win.Start, win.End)
		if len(seg) == 0 {
			continue
		}

		xs := make([]float64, len(seg))
		ys := make([]float64, len(seg))
		for i, s := range seg {
			xs[i] = float64(s.Time-win.Start) / float64(models.UnitsPerMillisecond)
			ys[i] = min(max(s.Value, 0), maxCurrent)
		}
		if len(seg) == 1 {
			xs = append(xs, xs[0]+pixelMs)
			ys = append(ys, ys[0])
		}
		out = append(out, chart.ContinuousSeries{XValues: xs, YValues: ys, Style: style})
	}
	return out
}

// Chart builds the chart of traces inside win.
func Chart(traces []trace.Trace, win Window, opts Options) (chart.Chart, error) {
	if err := win.Validate(); err != nil {
		return chart.Chart{}, err
	}
	maxCurrent := opts.maxCurrent()
	windowMs := float64(win.End-win.Start) / float64(models.UnitsPerMillisecond)

	// the baseline keeps the chart renderable when no trace has data in win
	all := []chart.Series{chart.ContinuousSeries{
		Name:    "baseline",
		XValues: []float64{0, windowMs},
		YValues: []float64{0, 0},
		Style:   chart.Style{StrokeColor: drawing.ColorBlack.WithAlpha(64), StrokeWidth: 1},
	}}

	for i, tr := range traces {
		seq, err := tr.MeasurementsCovering(win.Start, win.End, win.TimePerPixel())
		if err != nil {
			return chart.Chart{}, fmt.Errorf("failed to read trace of node %d: %w", tr.NodeID(), err)
		}
		all = append(all, series(Segments(seq, win.TimePerPixel()), win, chart.GetDefaultColor(i), maxCurrent)...)
	}

	return chart.Chart{
		Title:  opts.Title,
		Width:  win.Width,
		Height: win.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 8},
		},
		XAxis: chart.XAxis{
			Name:  "ms",
			Range: &chart.ContinuousRange{Min: 0, Max: windowMs},
		},
		YAxis: chart.YAxis{
			Name:  models.UnitCurrent,
			Range: &chart.ContinuousRange{Min: 0, Max: maxCurrent},
		},
		Series: all,
	}, nil
}

// PNG renders traces inside win to w.
func PNG(w io.Writer, traces []trace.Trace, win Window, opts Options) error {
	ch, err := Chart(traces, win, opts)
	if err != nil {
		return err
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// Tooltip describes the current of tr at t, or "unknown" outside the trace.
func Tooltip(tr trace.Trace, t int64) (string, error) {
	v, ok, err := tr.InterpolateAt(t)
	if err != nil {
		return "", err
	}
	if !ok {
		return "unknown", nil
	}
	return fmt.Sprintf("%.3f %s", v, models.UnitCurrent), nil
}
