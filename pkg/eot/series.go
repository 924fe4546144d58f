package eot

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is an immutable per-day sequence of values with the summary
// figures charts scale against.
type Series struct {
	values []float64
	min    float64
	max    float64
	maxAbs float64
	mean   float64
}

// newSeries takes ownership of values; callers must not touch it afterwards.
func newSeries(values []float64) *Series {
	s := &Series{values: values}
	if len(values) == 0 {
		return s
	}
	s.min = floats.Min(values)
	s.max = floats.Max(values)
	s.maxAbs = math.Max(math.Abs(s.min), math.Abs(s.max))
	s.mean = stat.Mean(values, nil)
	return s
}

// Len returns the number of days in the series
func (s *Series) Len() int { return len(s.values) }

// At returns the value for a zero-based day
func (s *Series) At(day int) float64 { return s.values[day] }

// Min returns the smallest value
func (s *Series) Min() float64 { return s.min }

// Max returns the largest value
func (s *Series) Max() float64 { return s.max }

// MaxAbs returns the largest magnitude
func (s *Series) MaxAbs() float64 { return s.maxAbs }

// Mean returns the average value
func (s *Series) Mean() float64 { return s.mean }

// Values yields (day, value) pairs in day order
func (s *Series) Values() iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for i, v := range s.values {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Slice returns a copy of the values
func (s *Series) Slice() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// SeriesData is the wire form of a Series
type SeriesData struct {
	Values []float64 `json:"values" msgpack:"values"`
	Min    float64   `json:"min" msgpack:"min"`
	Max    float64   `json:"max" msgpack:"max"`
	MaxAbs float64   `json:"maxAbs" msgpack:"maxAbs"`
	Mean   float64   `json:"mean" msgpack:"mean"`
}

// Data returns a detached copy of the series for encoding
func (s *Series) Data() SeriesData {
	return SeriesData{
		Values: s.Slice(),
		Min:    s.min,
		Max:    s.max,
		MaxAbs: s.maxAbs,
		Mean:   s.mean,
	}
}
