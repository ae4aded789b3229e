// Package measurement opens the result directory of one testbed run: the
// power traces under powerprofiling/ plus the optional serial and GPIO logs.
package measurement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/HappyEnt/flooja-cau-testbed/internal/parser"
	"github.com/HappyEnt/flooja-cau-testbed/internal/storage"
)

// File names inside a measurement directory.
const (
	SerialFile = "serial.csv"
	GpioFile   = "gpiotraces.csv"
	PowerDir   = "powerprofiling"
)

// ErrNotDirectory is returned when a measurement path is not a directory.
var ErrNotDirectory = errors.New("measurement path is not a directory")

// Files holds the paths found in a measurement directory. A path is empty
// when the file is absent.
type Files struct {
	Dir    string `json:"dir"`
	Serial string `json:"serial,omitempty"`
	Gpio   string `json:"gpio,omitempty"`
	Power  string `json:"power,omitempty"`
}

// Locate looks up the measurement files in dir.
func Locate(dir string) (Files, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Files{}, fmt.Errorf("failed to stat measurement directory: %w", err)
	}
	if !info.IsDir() {
		return Files{}, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	files := Files{Dir: dir}
	if isFile(filepath.Join(dir, SerialFile)) {
		files.Serial = filepath.Join(dir, SerialFile)
	}
	if isFile(filepath.Join(dir, GpioFile)) {
		files.Gpio = filepath.Join(dir, GpioFile)
	}
	if fi, err := os.Stat(filepath.Join(dir, PowerDir)); err == nil && fi.IsDir() {
		files.Power = filepath.Join(dir, PowerDir)
	}
	return files, nil
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Measurement is an opened measurement directory.
type Measurement struct {
	Files  Files
	Traces storage.TraceStore
	Gpio   *parser.GpioEvents // nil when absent or not loaded
	Serial *parser.SerialLog  // nil when absent or not loaded

	span   span
	logger *zap.Logger
}

type span struct {
	start, end int64
	ok         bool
}

func (s *span) add(start, end int64, ok bool) {
	if !ok {
		return
	}
	if !s.ok {
		*s = span{start: start, end: end, ok: true}
		return
	}
	s.start = min(s.start, start)
	s.end = max(s.end, end)
}

type options struct {
	loadEvents bool
}

// Option configures Open.
type Option func(*options)

// WithEvents controls whether serial.csv and gpiotraces.csv are loaded.
// They are loaded by default.
func WithEvents(load bool) Option {
	return func(o *options) { o.loadEvents = load }
}

// Open locates and loads the measurement in dir. Traces are opened through
// storage.OpenDirStorage; a measurement without powerprofiling/ has no traces.
func Open(ctx context.Context, dir string, logger *zap.Logger, opts ...Option) (*Measurement, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{loadEvents: true}
	for _, opt := range opts {
		opt(&o)
	}

	files, err := Locate(dir)
	if err != nil {
		return nil, err
	}

	m := &Measurement{Files: files, Traces: storage.EmptyStore(), logger: logger}

	if o.loadEvents && files.Gpio != "" {
		g, err := loadFile(files.Gpio, parser.LoadGpio)
		if err != nil {
			return nil, err
		}
		m.Gpio = g
		m.span.add(g.TimeSpan())
		logger.Info("loaded GPIO events", zap.Int("events", g.Len()), zap.Ints("nodes", g.Nodes()))
	}

	if o.loadEvents && files.Serial != "" {
		l, err := loadFile(files.Serial, parser.LoadSerial)
		if err != nil {
			return nil, err
		}
		m.Serial = l
		m.span.add(l.TimeSpan())
		logger.Info("loaded serial output", zap.Int("lines", l.Len()))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if files.Power != "" {
		store, err := storage.OpenDirStorage(files.Power, logger)
		if err != nil {
			return nil, err
		}
		m.Traces = store

		nodes, _ := store.Nodes(ctx)
		for _, nodeID := range nodes {
			tr, err := store.Trace(ctx, nodeID)
			if err != nil {
				continue
			}
			first, okFirst := tr.FirstTime()
			last, okLast := tr.LastTime()
			m.span.add(first, last, okFirst && okLast)
		}
	} else {
		logger.Warn("measurement has no power traces", zap.String("dir", dir))
	}

	return m, nil
}

func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T

	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	v, err := load(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return v, nil
}

// Span returns the earliest and latest timestamp over all traces and logs.
// ok is false for a measurement without any data.
func (m *Measurement) Span() (start, end int64, ok bool) {
	return m.span.start, m.span.end, m.span.ok
}

// Close releases the trace files.
func (m *Measurement) Close() error {
	return m.Traces.Close()
}
