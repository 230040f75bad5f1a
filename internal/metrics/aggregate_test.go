package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ensurax-tui/internal/api"
)

func ptr(v float64) *float64 { return &v }

func TestSumSkipsMissingPeriods(t *testing.T) {
	t.Parallel()

	points := []api.SeriesPoint{
		{Period: "2024-01", Value: ptr(10)},
		{Period: "2024-02", Value: nil},
		{Period: "2024-03", Value: ptr(5)},
	}
	assert.Equal(t, 15.0, Sum(points))
}

func TestSumEmptyAndAllNil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Sum(nil))
	assert.Equal(t, 0.0, Sum([]api.SeriesPoint{{Period: "2024-01"}, {Period: "2024-02"}}))
}

func TestSumCoercesNaN(t *testing.T) {
	t.Parallel()

	points := []api.SeriesPoint{
		{Period: "2024-01", Value: ptr(math.NaN())},
		{Period: "2024-02", Value: ptr(3)},
	}
	got := Sum(points)
	require.False(t, math.IsNaN(got))
	assert.Equal(t, 3.0, got)
}

func TestAverageCountsOnlyPresentValues(t *testing.T) {
	t.Parallel()

	points := []api.SeriesPoint{
		{Period: "2024-01", Value: ptr(10)},
		{Period: "2024-02", Value: nil},
		{Period: "2024-03", Value: ptr(20)},
	}
	assert.Equal(t, 15.0, Average(points))
}

func TestAverageEmptyIsZeroNotNaN(t *testing.T) {
	t.Parallel()

	got := Average(nil)
	require.False(t, math.IsNaN(got))
	assert.Equal(t, 0.0, got)
}

func TestWeightedRatioSumsBeforeDividing(t *testing.T) {
	t.Parallel()

	// Two periods with very different volume. A naive mean of per-period
	// ratios would give 0.55; the volume-weighted answer is much lower.
	provided := 0.9
	points := []api.RatioPoint{
		{Period: "2024-01", Numerator: 10, Denominator: 100, Ratio: &provided},
		{Period: "2024-02", Numerator: 10, Denominator: 1000, Ratio: &provided},
	}
	assert.InDelta(t, 20.0/1100.0, WeightedRatio(points), 1e-9)
}

func TestWeightedRatioIgnoresProvidedRatio(t *testing.T) {
	t.Parallel()

	bogus := 42.0
	points := []api.RatioPoint{
		{Period: "2024-01", Numerator: 1, Denominator: 4, Ratio: &bogus},
	}
	assert.InDelta(t, 0.25, WeightedRatio(points), 1e-9)
}

func TestWeightedRatioOrderIndependent(t *testing.T) {
	t.Parallel()

	forward := []api.RatioPoint{
		{Period: "2024-01", Numerator: 3, Denominator: 7},
		{Period: "2024-02", Numerator: 11, Denominator: 13},
		{Period: "2024-03", Numerator: 5, Denominator: 17},
	}
	reversed := []api.RatioPoint{forward[2], forward[1], forward[0]}
	assert.InDelta(t, WeightedRatio(forward), WeightedRatio(reversed), 1e-9)
}

func TestWeightedRatioZeroDenominator(t *testing.T) {
	t.Parallel()

	points := []api.RatioPoint{
		{Period: "2024-01", Numerator: 5, Denominator: 0},
	}
	got := WeightedRatio(points)
	require.False(t, math.IsNaN(got))
	require.False(t, math.IsInf(got, 0))
	assert.Equal(t, 0.0, got)
	assert.Equal(t, 0.0, WeightedRatio(nil))
}

func TestLatest(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Latest(nil))
	assert.Equal(t, 7.0, Latest([]api.SeriesPoint{
		{Period: "2024-01", Value: ptr(3)},
		{Period: "2024-02", Value: ptr(7)},
	}))
	assert.Equal(t, 0.0, Latest([]api.SeriesPoint{
		{Period: "2024-01", Value: ptr(3)},
		{Period: "2024-02", Value: nil},
	}))
}

func TestDelta(t *testing.T) {
	t.Parallel()

	change, dir := Delta([]api.SeriesPoint{
		{Period: "2024-01", Value: ptr(100)},
		{Period: "2024-02", Value: ptr(110)},
	})
	assert.InDelta(t, 0.1, change, 1e-9)
	assert.Equal(t, Up, dir)

	change, dir = Delta([]api.SeriesPoint{
		{Period: "2024-01", Value: ptr(-50)},
		{Period: "2024-02", Value: ptr(-75)},
	})
	assert.InDelta(t, -0.5, change, 1e-9)
	assert.Equal(t, Down, dir)
}

func TestDeltaZeroPrevAndFlatSeries(t *testing.T) {
	t.Parallel()

	change, dir := Delta([]api.SeriesPoint{
		{Period: "2024-01", Value: ptr(0)},
		{Period: "2024-02", Value: ptr(50)},
	})
	assert.Equal(t, 0.0, change)
	assert.Equal(t, Up, dir)

	// No change still reads as up for badge purposes.
	change, dir = Delta([]api.SeriesPoint{
		{Period: "2024-01", Value: ptr(4)},
		{Period: "2024-02", Value: ptr(4)},
	})
	assert.Equal(t, 0.0, change)
	assert.Equal(t, Up, dir)

	change, dir = Delta([]api.SeriesPoint{{Period: "2024-01", Value: ptr(4)}})
	assert.Equal(t, 0.0, change)
	assert.Equal(t, Up, dir)
}

func TestRatioSeriesPrefersProvidedRatioPerPoint(t *testing.T) {
	t.Parallel()

	provided := 0.4
	points := []api.RatioPoint{
		{Period: "2024-01", Numerator: 1, Denominator: 2, Ratio: &provided},
		{Period: "2024-02", Numerator: 1, Denominator: 4},
		{Period: "2024-03", Numerator: 1, Denominator: 0},
	}
	series := RatioSeries(points)
	require.Len(t, series, 3)
	assert.Equal(t, 0.4, *series[0].Value)
	assert.Equal(t, 0.25, *series[1].Value)
	assert.Equal(t, 0.0, *series[2].Value)
}
