package api

import "encoding/json"

// SeriesPoint is one period-keyed value in a metric series. Periods arrive
// chronologically sorted from the backend and are kept in that order. A nil
// Value means the backend has no data for the period, which is different
// from zero.
type SeriesPoint struct {
	Period string   `json:"period"`
	Value  *float64 `json:"value"`
}

// RatioPoint carries the numerator and denominator for one period alongside
// the backend's precomputed ratio. Weighted aggregates recompute from
// numerator/denominator and never trust Ratio.
type RatioPoint struct {
	Period      string   `json:"period"`
	Numerator   float64  `json:"numerator"`
	Denominator float64  `json:"denominator"`
	Ratio       *float64 `json:"ratio"`
}

// BreakdownItem is one labeled magnitude within a distribution. Slice order
// is the server-determined display order.
type BreakdownItem struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// TwoSeriesPoint pairs two magnitudes per period (paid vs reserve).
type TwoSeriesPoint struct {
	Period string  `json:"period"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
}

// SLAPoint is one month of claims-handling SLA counters.
type SLAPoint struct {
	Period        string  `json:"period"`
	BreachesGt30d float64 `json:"breaches_gt_30d"`
	BreachesGt60d float64 `json:"breaches_gt_60d"`
	StillOpen     float64 `json:"still_open"`
	TotalReported float64 `json:"total_reported"`
}

// DemographicRow is one age-band/county cell of the customer demographics
// table.
type DemographicRow struct {
	AgeBand    string  `json:"age_band"`
	CountyName string  `json:"county_name"`
	Customers  float64 `json:"customers"`
}

// Range bounds a series request. Empty fields mean unbounded on that side.
// Dates are inclusive ISO strings (YYYY-MM-DD).
type Range struct {
	StartDate string
	EndDate   string
}

// OverviewData bundles the four overview series fetched together for the
// KPI row.
type OverviewData struct {
	GWP               []SeriesPoint
	LossRatio         []RatioPoint
	ClaimsFrequency   []RatioPoint
	AvgSettlementDays []SeriesPoint
}

// AskResponse is the assistant endpoint's envelope. Answer is kept raw
// because its shape is not contractually fixed: it may be a JSON string, an
// object with summary/text fields, or something else entirely. The chat
// interpreter owns that decision.
type AskResponse struct {
	Answer    json.RawMessage `json:"answer"`
	Citations json.RawMessage `json:"citations"`
	Meta      json.RawMessage `json:"meta"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type askRequest struct {
	Question string `json:"question"`
}

type apiError struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}
