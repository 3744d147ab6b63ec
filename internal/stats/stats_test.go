package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuartilesExclusiveMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q1, q3 float64
	}{
		{"odd length", []float64{1, 2, 3, 4, 5, 6, 7}, 2, 6},
		{"odd length unsorted", []float64{7, 3, 5, 1, 6, 2, 4}, 2, 6},
		{"even length", []float64{1, 2, 3, 4, 5, 6, 7, 8}, 2.5, 6.5},
		{"two values", []float64{10, 20}, 10, 20},
		{"three values", []float64{12, 16, 20}, 12, 20},
		{"rounded", []float64{1, 1.333, 1.334, 9}, 1.17, 5.17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q1, q3, err := Quartiles(tt.values)
			require.NoError(t, err)
			assert.InDelta(t, tt.q1, q1, 1e-9)
			assert.InDelta(t, tt.q3, q3, 1e-9)
		})
	}
}

func TestQuartilesDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_, _, err := Quartiles(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestInsufficientData(t *testing.T) {
	one := []float64{42}

	_, err := StdDev(one)
	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 2, ide.Need)
	assert.Equal(t, 1, ide.Got)

	_, _, err = Quartiles(one)
	assert.ErrorAs(t, err, &ide)

	_, err = Summarize(one)
	assert.ErrorAs(t, err, &ide)

	for name, fn := range map[string]func([]float64) (float64, error){
		"mean": Mean, "median": Median, "min": Min, "max": Max, "pop": PopStdDev,
	} {
		_, err := fn(nil)
		assert.ErrorAs(t, err, &ide, name)
	}

	// A single value is enough for everything but the sample deviation.
	m, err := Mean(one)
	require.NoError(t, err)
	assert.Equal(t, 42.0, m)
	p, err := PopStdDev(one)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestBasicStatistics(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	mean, err := Mean(values)
	require.NoError(t, err)
	assert.InDelta(t, 5, mean, 1e-9)

	med, err := Median(values)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, med, 1e-9)

	pop, err := PopStdDev(values)
	require.NoError(t, err)
	assert.InDelta(t, 2, pop, 1e-9)

	sd, err := StdDev(values)
	require.NoError(t, err)
	assert.InDelta(t, 2.138089935, sd, 1e-9)

	lo, err := Min(values)
	require.NoError(t, err)
	hi, err := Max(values)
	require.NoError(t, err)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 9.0, hi)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{12, 16, 20})
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Count: 3, Mean: 16, Median: 16, StdDev: 4,
		Min: 12, Max: 20, Q1: 12, Q3: 20,
	}, s)

	s, err = Summarize([]float64{1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 1.67, s.Mean)
	assert.Equal(t, 0.58, s.StdDev)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.67, Round(5.0/3, 2))
	assert.Equal(t, 33.3, Round(100.0/3, 1))
	assert.Equal(t, 20.0, Round(20, 1))
	assert.Equal(t, 3.0, Round(2.5, 0))
}
