// Package metrics reduces raw backend series into the scalar KPIs and
// normalized shares the dashboard displays. Everything here is pure and
// total: malformed numbers coerce to zero and empty input yields zero, so a
// corrupt point can never blank a KPI card.
package metrics

import (
	"math"

	"ensurax-tui/internal/api"
)

// Direction tags the sign of a period-over-period delta for badge display.
type Direction int

const (
	Up Direction = iota
	Down
)

// sanitize coerces NaN and infinities to zero before aggregation.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Sum adds the non-nil values of a series. Nil values mark missing periods
// and are excluded, not treated as zero.
func Sum(points []api.SeriesPoint) float64 {
	total := 0.0
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		total += sanitize(*p.Value)
	}
	return total
}

// Average divides the sum of non-nil values by the count of non-nil values.
// An empty or all-nil series averages to 0, never NaN.
func Average(points []api.SeriesPoint) float64 {
	total := 0.0
	count := 0
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		total += sanitize(*p.Value)
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// WeightedRatio aggregates ratio points as sum(numerator)/sum(denominator).
// The per-point ratio field is ignored entirely: averaging per-period ratios
// over-weights low-volume periods. A zero denominator sum yields 0.
func WeightedRatio(points []api.RatioPoint) float64 {
	num := 0.0
	den := 0.0
	for _, p := range points {
		num += sanitize(p.Numerator)
		den += sanitize(p.Denominator)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Latest returns the value of the chronologically last point, or 0 for an
// empty series. A nil last value also reads as 0.
func Latest(points []api.SeriesPoint) float64 {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Value == nil {
			return 0
		}
		return sanitize(*points[i].Value)
	}
	return 0
}

// Delta returns the relative change between the last two points and its
// direction. With fewer than two points, or a zero previous value, the
// change is 0. Zero change reads as Up: the badge treats non-negative as up.
func Delta(points []api.SeriesPoint) (float64, Direction) {
	if len(points) < 2 {
		return 0, Up
	}
	last := 0.0
	if v := points[len(points)-1].Value; v != nil {
		last = sanitize(*v)
	}
	prev := 0.0
	if v := points[len(points)-2].Value; v != nil {
		prev = sanitize(*v)
	}
	if prev == 0 {
		return 0, Up
	}
	change := (last - prev) / math.Abs(prev)
	if change < 0 {
		return change, Down
	}
	return change, Up
}

// RatioSeries projects ratio points onto plain series points using the
// backend-provided ratio when present and numerator/denominator otherwise,
// for sparklines and trend bars. Per-point display is the one place the
// provided ratio is acceptable; aggregates always recompute.
func RatioSeries(points []api.RatioPoint) []api.SeriesPoint {
	out := make([]api.SeriesPoint, 0, len(points))
	for _, p := range points {
		v := 0.0
		switch {
		case p.Ratio != nil:
			v = sanitize(*p.Ratio)
		case p.Denominator != 0:
			v = sanitize(p.Numerator) / sanitize(p.Denominator)
		}
		value := v
		out = append(out, api.SeriesPoint{Period: p.Period, Value: &value})
	}
	return out
}

// Values flattens a series to its numeric values, reading nil as 0. Used by
// sparkline rendering where gaps still need a plotted point.
func Values(points []api.SeriesPoint) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Value == nil {
			out = append(out, 0)
			continue
		}
		out = append(out, sanitize(*p.Value))
	}
	return out
}
