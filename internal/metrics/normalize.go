package metrics

import "ensurax-tui/internal/api"

// Share is one breakdown item with its normalized percentage, in the same
// order the backend returned the items.
type Share struct {
	Key   string
	Value float64
	Pct   float64
}

// ToMaxScale normalizes each item against the largest value in the set, for
// bars that compare categories against the biggest one (claims by peril,
// backlog buckets). The denominator is floored at 1 so an all-zero set
// yields all-zero shares.
func ToMaxScale(items []api.BreakdownItem) []Share {
	maxValue := 1.0
	for _, item := range items {
		if v := sanitize(item.Value); v > maxValue {
			maxValue = v
		}
	}
	shares := make([]Share, 0, len(items))
	for _, item := range items {
		v := sanitize(item.Value)
		shares = append(shares, Share{
			Key:   item.Key,
			Value: v,
			Pct:   clampPct(v / maxValue * 100),
		})
	}
	return shares
}

// ToTotalScale normalizes each item against the sum of all values, for bars
// that represent proportion-of-whole (channel mix, cross-sell). Not
// interchangeable with ToMaxScale: callers pick per the chart's semantics.
func ToTotalScale(items []api.BreakdownItem) []Share {
	total := 0.0
	for _, item := range items {
		total += sanitize(item.Value)
	}
	if total < 1 {
		total = 1
	}
	shares := make([]Share, 0, len(items))
	for _, item := range items {
		v := sanitize(item.Value)
		shares = append(shares, Share{
			Key:   item.Key,
			Value: v,
			Pct:   clampPct(v / total * 100),
		})
	}
	return shares
}

// clampPct bounds a percentage to [0, 100], defending against upstream
// values that are negative or exceed the chosen denominator.
func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
