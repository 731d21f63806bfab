package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"gridalpha/internal/model"
)

// CurveStats summarizes the shape of one day of prices.
type CurveStats struct {
	Zone   string  `json:"zone"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P05    float64 `json:"p05"`
	P95    float64 `json:"p95"`
	// Spread is P95 - P05, a robust daily range.
	Spread float64 `json:"spread"`
}

func ComputeCurveStats(curve model.PriceCurve) CurveStats {
	s := CurveStats{Zone: curve.Zone, Count: len(curve.Prices)}
	if s.Count == 0 {
		return s
	}
	vals := append([]float64(nil), curve.Prices...)
	sort.Float64s(vals)

	s.Min = vals[0]
	s.Max = vals[len(vals)-1]
	s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	if s.Count == 1 {
		s.StdDev = 0
	}
	s.P05 = stat.Quantile(0.05, stat.Empirical, vals, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, vals, nil)
	s.Spread = s.P95 - s.P05
	return s
}
