package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/HappyEnt/flooja-cau-testbed/internal/trace"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/config"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// pointWriter is the part of api.WriteAPIBlocking the exporter needs.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxDBWriteStorage implements TraceWriter for InfluxDB.
// Used by tracectl to export trace files.
type InfluxDBWriteStorage struct {
	client   influxdb2.Client
	writeAPI pointWriter
	config   config.InfluxConfig

	totalWrites atomic.Int64
}

// NewInfluxDBWriteStorage creates a new InfluxDB export backend.
func NewInfluxDBWriteStorage(cfg config.InfluxConfig) (*InfluxDBWriteStorage, error) {
	client, err := connectInfluxDB(cfg)
	if err != nil {
		return nil, err
	}

	s := newInfluxDBWriteStorage(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg)
	s.client = client
	return s, nil
}

func newInfluxDBWriteStorage(w pointWriter, cfg config.InfluxConfig) *InfluxDBWriteStorage {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultInfluxConfig().BatchSize
	}
	return &InfluxDBWriteStorage{writeAPI: w, config: cfg}
}

// newPoint builds the point for one sample of nodeID.
func newPoint(nodeID int, s models.Sample) *write.Point {
	return influxdb2.NewPointWithMeasurement(models.MeasurementCurrent).
		AddTag(nodeTag, strconv.Itoa(nodeID)).
		AddField(valueField, s.Value).
		SetTime(models.ToTime(s.Time))
}

// ExportTrace writes the whole trace, downsampled to maxDeltaT, in batches.
func (s *InfluxDBWriteStorage) ExportTrace(ctx context.Context, tr trace.Trace, maxDeltaT int64) (int, error) {
	first, ok := tr.FirstTime()
	if !ok {
		return 0, nil
	}
	last, _ := tr.LastTime()

	seq, err := tr.MeasurementsCovering(first, last, maxDeltaT)
	if err != nil {
		return 0, fmt.Errorf("failed to read trace of node %d: %w", tr.NodeID(), err)
	}

	written := 0
	batch := make([]*write.Point, 0, s.config.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeAPI.WritePoint(ctx, batch...); err != nil {
			return fmt.Errorf("failed to write batch to InfluxDB: %w", err)
		}
		written += len(batch)
		s.totalWrites.Add(int64(len(batch)))
		batch = batch[:0]
		return nil
	}

	for seq.Next() {
		batch = append(batch, newPoint(tr.NodeID(), models.Sample{Time: seq.Time(), Value: seq.Value()}))
		if len(batch) == s.config.BatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

// TotalWrites returns the number of points written since creation.
func (s *InfluxDBWriteStorage) TotalWrites() int64 {
	return s.totalWrites.Load()
}

// Close closes the InfluxDB client.
func (s *InfluxDBWriteStorage) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
