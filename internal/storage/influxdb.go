package storage

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/query"

	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/config"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// Points are stored as measurement "current", tag "node_id", field "value".
const (
	nodeTag    = "node_id"
	valueField = "value"
)

// fluxQuerier is the part of api.QueryAPI the read storage needs.
type fluxQuerier interface {
	Query(ctx context.Context, query string) (*api.QueryTableResult, error)
}

// InfluxDBStorage implements TraceStore for read-only InfluxDB access.
// A node's points are loaded on first use into an in-memory trace.
type InfluxDBStorage struct {
	client   influxdb2.Client
	queryAPI fluxQuerier
	config   config.InfluxConfig
	now      func() time.Time

	mu     sync.Mutex
	traces map[int]*trace.MemoryTrace
}

// NewInfluxDBStorage creates a new read-only InfluxDB storage backend.
func NewInfluxDBStorage(cfg config.InfluxConfig) (*InfluxDBStorage, error) {
	client, err := connectInfluxDB(cfg)
	if err != nil {
		return nil, err
	}

	s := newInfluxDBStorage(client.QueryAPI(cfg.Org), cfg)
	s.client = client
	return s, nil
}

func newInfluxDBStorage(q fluxQuerier, cfg config.InfluxConfig) *InfluxDBStorage {
	return &InfluxDBStorage{
		queryAPI: q,
		config:   cfg,
		now:      time.Now,
		traces:   make(map[int]*trace.MemoryTrace),
	}
}

// connectInfluxDB creates a client and checks the server is healthy.
func connectInfluxDB(cfg config.InfluxConfig) (influxdb2.Client, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("InfluxDB health check failed: %s", health.Status)
	}
	return client, nil
}

func (s *InfluxDBStorage) rangeStart() string {
	return s.now().Add(-s.config.Range).UTC().Format(time.RFC3339Nano)
}

// Nodes returns the distinct node ids that have current samples.
func (s *InfluxDBStorage) Nodes(ctx context.Context) ([]int, error) {
	fluxQuery := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: %s)
			|> filter(fn: (r) => r._measurement == "%s" and r._field == "%s")
			|> group(columns: ["%s"])
			|> last()
	`, s.config.Bucket, s.rangeStart(), models.MeasurementCurrent, valueField, nodeTag)

	result, err := s.queryAPI.Query(ctx, fluxQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer result.Close()

	seen := make(map[int]struct{})
	for result.Next() {
		tag, _ := result.Record().ValueByKey(nodeTag).(string)
		nodeID, err := strconv.Atoi(tag)
		if err != nil {
			continue
		}
		seen[nodeID] = struct{}{}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query error: %w", result.Err())
	}

	nodes := make([]int, 0, len(seen))
	for nodeID := range seen {
		nodes = append(nodes, nodeID)
	}
	slices.Sort(nodes)
	return nodes, nil
}

// Trace loads every point of nodeID inside the configured range.
func (s *InfluxDBStorage) Trace(ctx context.Context, nodeID int) (trace.Trace, error) {
	s.mu.Lock()
	cached, ok := s.traces[nodeID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	fluxQuery := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: %s)
			|> filter(fn: (r) => r._measurement == "%s" and r._field == "%s" and r.%s == "%d")
			|> keep(columns: ["_time", "_value"])
			|> sort(columns: ["_time"])
	`, s.config.Bucket, s.rangeStart(), models.MeasurementCurrent, valueField, nodeTag, nodeID)

	result, err := s.queryAPI.Query(ctx, fluxQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query trace of node %d: %w", nodeID, err)
	}
	defer result.Close()

	var samples []models.Sample
	for result.Next() {
		if sample, ok := recordToSample(result.Record()); ok {
			samples = append(samples, sample)
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query error: %w", result.Err())
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}

	tr := trace.NewMemoryTraceFromSamples(nodeID, samples)

	s.mu.Lock()
	s.traces[nodeID] = tr
	s.mu.Unlock()
	return tr, nil
}

// recordToSample converts an InfluxDB FluxRecord to a Sample.
func recordToSample(record *query.FluxRecord) (models.Sample, bool) {
	v, ok := record.Value().(float64)
	if !ok {
		return models.Sample{}, false
	}
	return models.Sample{Time: models.FromTime(record.Time()), Value: v}, true
}

// Stats returns statistics over the traces loaded so far.
func (s *InfluxDBStorage) Stats(ctx context.Context) StorageStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := StorageStats{Backend: "influxdb", TotalNodes: len(s.traces)}
	for _, tr := range s.traces {
		stats.TotalSamples += int64(tr.Len())
		stats.observe(tr)
	}
	return stats
}

// Close closes the InfluxDB client.
func (s *InfluxDBStorage) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
