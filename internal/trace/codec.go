package trace

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// On-disk layout of a trace file:
//
//	[record_0]...[record_{n-1}][footer]
//	record = timestamp int64 LE | value float64 LE
//	footer = sampling period int64 LE
const (
	TimestampSize = 8
	ValueSize     = 8
	RecordSize    = TimestampSize + ValueSize
	FooterSize    = 8
)

// DecodeTimestamp reads the timestamp of a record buffer.
func DecodeTimestamp(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf[:TimestampSize]))
}

// DecodeValue reads the value of a record buffer.
func DecodeValue(buf []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[TimestampSize:RecordSize]))
}

// EncodeRecord writes s into buf, which must hold at least RecordSize bytes.
func EncodeRecord(buf []byte, s models.Sample) {
	binary.LittleEndian.PutUint64(buf[:TimestampSize], uint64(s.Time))
	binary.LittleEndian.PutUint64(buf[TimestampSize:RecordSize], math.Float64bits(s.Value))
}

// EncodeFooter writes the sampling period into buf, which must hold at least FooterSize bytes.
func EncodeFooter(buf []byte, samplingPeriod int64) {
	binary.LittleEndian.PutUint64(buf[:FooterSize], uint64(samplingPeriod))
}

// WriteTraceFile creates a new trace file at path holding samples followed by the footer.
// Samples must already be sorted by time; they are written as given.
func WriteTraceFile(path string, samples []models.Sample, samplingPeriod int64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close trace file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	var buf [RecordSize]byte
	for _, s := range samples {
		EncodeRecord(buf[:], s)
		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	EncodeFooter(buf[:], samplingPeriod)
	if _, err := w.Write(buf[:FooterSize]); err != nil {
		return fmt.Errorf("failed to write footer: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace file: %w", err)
	}
	return nil
}
