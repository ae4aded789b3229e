package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
)

// DirStorage serves the trace files of a directory, one file per node named
// by the node id. It is safe for concurrent use.
type DirStorage struct {
	dir    string
	files  map[int]*trace.FileTrace
	traces map[int]trace.Trace
	nodes  []int
	logger *zap.Logger
}

// OpenDirStorage opens every regular file in dir whose name is a node id.
// Other entries are skipped. A corrupt trace file fails the whole open.
func OpenDirStorage(dir string, logger *zap.Logger) (*DirStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace directory: %w", err)
	}

	s := &DirStorage{
		dir:    dir,
		files:  make(map[int]*trace.FileTrace),
		traces: make(map[int]trace.Trace),
		logger: logger,
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		nodeID, err := trace.NodeIDFromPath(path)
		if err != nil {
			logger.Debug("skipping non-trace file", zap.String("path", path))
			continue
		}
		if _, dup := s.files[nodeID]; dup {
			logger.Warn("skipping duplicate trace file", zap.String("path", path), zap.Int("node_id", nodeID))
			continue
		}

		ft, err := trace.OpenFileTrace(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open trace %s: %w", path, err)
		}

		s.files[nodeID] = ft
		s.traces[nodeID] = trace.Locked(ft)
		s.nodes = append(s.nodes, nodeID)

		logger.Debug("opened trace",
			zap.Int("node_id", nodeID),
			zap.Int64("samples", ft.SampleCount()),
			zap.Int64("sampling_period", ft.SamplingPeriod()))
	}
	slices.Sort(s.nodes)

	logger.Info("trace directory opened", zap.String("dir", dir), zap.Int("nodes", len(s.nodes)))
	return s, nil
}

// Dir returns the directory the traces were read from.
func (s *DirStorage) Dir() string {
	return s.dir
}

// Nodes returns all node ids with a trace file, ascending.
func (s *DirStorage) Nodes(ctx context.Context) ([]int, error) {
	return slices.Clone(s.nodes), nil
}

// Trace returns the synchronized trace of nodeID.
func (s *DirStorage) Trace(ctx context.Context, nodeID int) (trace.Trace, error) {
	tr, ok := s.traces[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}
	return tr, nil
}

// CacheStats returns the downsampling cache counters of nodeID.
func (s *DirStorage) CacheStats(nodeID int) (trace.CacheStats, bool) {
	ft, ok := s.files[nodeID]
	if !ok {
		return trace.CacheStats{}, false
	}
	return ft.CacheStats(), true
}

// Stats returns storage statistics.
func (s *DirStorage) Stats(ctx context.Context) StorageStats {
	stats := StorageStats{Backend: "dir", TotalNodes: len(s.nodes)}
	for _, nodeID := range s.nodes {
		ft := s.files[nodeID]
		stats.TotalSamples += ft.SampleCount()
		stats.observe(s.traces[nodeID])

		cs := ft.CacheStats()
		stats.CacheHits += cs.Hits
		stats.CacheMisses += cs.Misses
	}
	return stats
}

// Close closes every trace file.
func (s *DirStorage) Close() error {
	var errs []error
	for _, ft := range s.files {
		if err := ft.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
