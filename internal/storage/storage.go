// Package storage provides trace storage backends.
package storage

import (
	"context"
	"errors"

	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
)

// ErrNodeNotFound is returned when a store holds no trace for a node.
var ErrNodeNotFound = errors.New("node not found")

// TraceStore defines the read-only interface for looking up traces by node.
// Used by: API, tracectl
type TraceStore interface {
	// Nodes returns the ids of all nodes with a trace, ascending
	Nodes(ctx context.Context) ([]int, error)

	// Trace returns the trace of a node, or ErrNodeNotFound
	Trace(ctx context.Context, nodeID int) (trace.Trace, error)

	// Stats returns storage statistics
	Stats(ctx context.Context) StorageStats

	// Close closes the storage
	Close() error
}

// TraceWriter copies traces into a store.
// Used by: tracectl export
type TraceWriter interface {
	// ExportTrace writes the samples of tr at resolution maxDeltaT and
	// returns the number of samples written
	ExportTrace(ctx context.Context, tr trace.Trace, maxDeltaT int64) (int, error)

	// Close closes the storage
	Close() error
}

// StorageStats provides storage statistics.
type StorageStats struct {
	Backend      string `json:"backend"`
	TotalNodes   int    `json:"total_nodes"`
	TotalSamples int64  `json:"total_samples"`
	FirstTime    *int64 `json:"first_time,omitempty"`
	LastTime     *int64 `json:"last_time,omitempty"`
	CacheHits    int64  `json:"cache_hits"`
	CacheMisses  int64  `json:"cache_misses"`
}

// observe widens the time span of s to include tr.
func (s *StorageStats) observe(tr trace.Trace) {
	if first, ok := tr.FirstTime(); ok && (s.FirstTime == nil || first < *s.FirstTime) {
		s.FirstTime = &first
	}
	if last, ok := tr.LastTime(); ok && (s.LastTime == nil || last > *s.LastTime) {
		s.LastTime = &last
	}
}

// emptyStore is a TraceStore without traces.
type emptyStore struct{}

// EmptyStore returns a TraceStore holding no traces.
func EmptyStore() TraceStore {
	return emptyStore{}
}

func (emptyStore) Nodes(ctx context.Context) ([]int, error) {
	return nil, nil
}

func (emptyStore) Trace(ctx context.Context, nodeID int) (trace.Trace, error) {
	return nil, ErrNodeNotFound
}

func (emptyStore) Stats(ctx context.Context) StorageStats {
	return StorageStats{Backend: "empty"}
}

func (emptyStore) Close() error {
	return nil
}
