// Package stats provides the small counting/bucketing helpers shared
// by the evaluation package: turning a tally of observations into a
// distribution, and bucketing a fractional score into a percentage
// range, mirroring the source's trigger/util/statistics.py.
package stats

import (
	"fmt"
	"strconv"

	mstats "github.com/montanaflynn/stats"
)

// Counter tallies occurrences of a comparable key, the Go analog of
// Python's collections.Counter.
type Counter[K comparable] map[K]int

// NewCounter returns an empty Counter.
func NewCounter[K comparable]() Counter[K] {
	return make(Counter[K])
}

// Add increments key's count by one.
func (c Counter[K]) Add(key K) {
	c[key]++
}

// Total returns the sum of all counts.
func (c Counter[K]) Total() int {
	total := 0
	for _, v := range c {
		total += v
	}
	return total
}

// ToRange buckets fraction (expected in [0, 1]) into a step%-wide
// percentage range string such as "40 - 45", mirroring to_range.
func ToRange(fraction float64, step int) string {
	if step <= 0 {
		step = 5
	}
	lower := (int(fraction*100) / step) * step
	upper := lower + step
	if upper > 100 {
		upper = 100
	}
	return fmt.Sprintf("%d - %d", lower, upper)
}

// Distribution is a label->count tally, JSON/log friendly, mirroring
// the source's "distribution <name>" report entries.
type Distribution map[string]int

// NumericStats summarizes a Counter[int] distribution: the underlying
// label->count distribution plus average/max/min over the counted
// keys (weighted by count), computed with montanaflynn/stats.
type NumericStats struct {
	Distribution Distribution
	Average      float64
	Max          float64
	Min          float64
}

// FromIntCounter expands counter into a weighted sample and returns
// its distribution plus average/max/min, mirroring stats_from_counter
// for the case where the counter's keys are numeric (e.g. cluster
// sizes). Returns the zero NumericStats if counter is empty.
func FromIntCounter(counter Counter[int]) (NumericStats, error) {
	dist := make(Distribution, len(counter))
	var data mstats.Float64Data
	for k, v := range counter {
		dist[strconv.Itoa(k)] = v
		for i := 0; i < v; i++ {
			data = append(data, float64(k))
		}
	}
	if len(data) == 0 {
		return NumericStats{Distribution: dist}, nil
	}
	avg, err := mstats.Mean(data)
	if err != nil {
		return NumericStats{}, fmt.Errorf("stats: mean: %w", err)
	}
	max, err := mstats.Max(data)
	if err != nil {
		return NumericStats{}, fmt.Errorf("stats: max: %w", err)
	}
	min, err := mstats.Min(data)
	if err != nil {
		return NumericStats{}, fmt.Errorf("stats: min: %w", err)
	}
	return NumericStats{Distribution: dist, Average: avg, Max: max, Min: min}, nil
}

// FromStringCounter returns only the label->count distribution for a
// non-numeric counter (e.g. bucketed percentage ranges), mirroring
// stats_from_counter's (distribution, None) branch for non-int keys.
func FromStringCounter(counter Counter[string]) Distribution {
	dist := make(Distribution, len(counter))
	for k, v := range counter {
		dist[k] = v
	}
	return dist
}

// FromFloat64SliceMeanStd returns the sample mean and population
// standard deviation of data, used by the evaluation package's
// cluster-dispersion score.
func FromFloat64SliceMeanStd(data []float64) (mean, std float64, err error) {
	if len(data) == 0 {
		return 0, 0, nil
	}
	fd := mstats.Float64Data(data)
	if mean, err = mstats.Mean(fd); err != nil {
		return 0, 0, fmt.Errorf("stats: mean: %w", err)
	}
	if len(data) == 1 {
		return mean, 0, nil
	}
	if std, err = mstats.StandardDeviation(fd); err != nil {
		return 0, 0, fmt.Errorf("stats: stddev: %w", err)
	}
	return mean, std, nil
}

// FromFloat64Slice returns average/max/min over data directly,
// used by the evaluation package for similarity/score lists that are
// not tallied through a Counter.
func FromFloat64Slice(data []float64) (avg, max, min float64, err error) {
	if len(data) == 0 {
		return 0, 0, 0, nil
	}
	fd := mstats.Float64Data(data)
	if avg, err = mstats.Mean(fd); err != nil {
		return 0, 0, 0, fmt.Errorf("stats: mean: %w", err)
	}
	if max, err = mstats.Max(fd); err != nil {
		return 0, 0, 0, fmt.Errorf("stats: max: %w", err)
	}
	if min, err = mstats.Min(fd); err != nil {
		return 0, 0, 0, fmt.Errorf("stats: min: %w", err)
	}
	return avg, max, min, nil
}
