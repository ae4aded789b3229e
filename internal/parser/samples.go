package parser

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"
)

// LoadSamples reads rows of the form timestamp,value with the timestamp in
// decimal seconds. The result is ordered by time; rows with equal
// timestamps keep their file order.
func LoadSamples(r io.Reader) ([]models.Sample, error) {
	var samples []models.Sample

	err := scanLines(r, 2, func(line int, parts []string) error {
		ts, err := ParseTimestamp(parts[0])
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}
		if math.IsNaN(v) {
			return fmt.Errorf("invalid value %q", parts[1])
		}
		samples = append(samples, models.Sample{Time: ts, Value: v})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}

	slices.SortStableFunc(samples, func(a, b models.Sample) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return samples, nil
}

// SamplingPeriod estimates the nominal spacing of samples as the median gap
// between consecutive timestamps. It returns 0 for fewer than two samples.
func SamplingPeriod(samples []models.Sample) int64 {
	if len(samples) < 2 {
		return 0
	}
	gaps := make([]int64, len(samples)-1)
	for i := range gaps {
		gaps[i] = samples[i+1].Time - samples[i].Time
	}
	slices.Sort(gaps)
	return gaps[len(gaps)/2]
}
