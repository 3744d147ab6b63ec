// Package stats provides the descriptive statistics used in score reports.
//
// Quartiles use the exclusive-median method: for an odd number of values the
// median element belongs to neither half. Other conventions (inclusive, linear
// interpolation) give different results for odd-length inputs.
package stats

import (
	"fmt"
	"math"
	"sort"
)

// InsufficientDataError is returned when a statistic needs more values than given.
type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s requires at least %d values, got %d", e.Op, e.Need, e.Got)
}

func need(op string, n int, values []float64) error {
	if len(values) < n {
		return &InsufficientDataError{Op: op, Need: n, Got: len(values)}
	}
	return nil
}

// Round rounds x to the given number of decimal places, halves away from zero.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Mean returns the arithmetic mean.
func Mean(values []float64) (float64, error) {
	if err := need("mean", 1, values); err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Median returns the middle value, or the mean of the two middle values.
func Median(values []float64) (float64, error) {
	if err := need("median", 1, values); err != nil {
		return 0, err
	}
	return median(sorted(values)), nil
}

// StdDev returns the sample standard deviation (n-1 denominator).
func StdDev(values []float64) (float64, error) {
	if err := need("sample standard deviation", 2, values); err != nil {
		return 0, err
	}
	return math.Sqrt(sumSquares(values) / float64(len(values)-1)), nil
}

// PopStdDev returns the population standard deviation (n denominator).
func PopStdDev(values []float64) (float64, error) {
	if err := need("population standard deviation", 1, values); err != nil {
		return 0, err
	}
	return math.Sqrt(sumSquares(values) / float64(len(values))), nil
}

// Min returns the smallest value.
func Min(values []float64) (float64, error) {
	if err := need("min", 1, values); err != nil {
		return 0, err
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m, nil
}

// Max returns the largest value.
func Max(values []float64) (float64, error) {
	if err := need("max", 1, values); err != nil {
		return 0, err
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m, nil
}

// Quartiles returns Q1 and Q3 rounded to two decimals. The lower half is the
// first n/2 sorted values and the upper half starts at n/2 + n%2, so the median
// of an odd-length input is excluded from both halves.
func Quartiles(values []float64) (q1, q3 float64, err error) {
	if err := need("quartiles", 2, values); err != nil {
		return 0, 0, err
	}
	s := sorted(values)
	mid := len(s) / 2
	upper := mid + len(s)%2
	return Round(median(s[:mid]), 2), Round(median(s[upper:]), 2), nil
}

// Summary bundles the statistics shown for one score series.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
}

// Summarize computes a Summary with every value rounded to two decimals.
// It needs at least two values.
func Summarize(values []float64) (Summary, error) {
	sd, err := StdDev(values)
	if err != nil {
		return Summary{}, err
	}
	q1, q3, err := Quartiles(values)
	if err != nil {
		return Summary{}, err
	}
	// With at least two values none of these can fail.
	mean, _ := Mean(values)
	med, _ := Median(values)
	lo, _ := Min(values)
	hi, _ := Max(values)

	return Summary{
		Count:  len(values),
		Mean:   Round(mean, 2),
		Median: Round(med, 2),
		StdDev: Round(sd, 2),
		Min:    Round(lo, 2),
		Max:    Round(hi, 2),
		Q1:     q1,
		Q3:     q3,
	}, nil
}

func sorted(values []float64) []float64 {
	cp := make([]float64, len(values))
	copy(cp, values)
	sort.Float64s(cp)
	return cp
}

// median expects sorted, non-empty input.
func median(s []float64) float64 {
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func sumSquares(values []float64) float64 {
	mean, _ := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss
}
