package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gridalpha/internal/model"
	"gridalpha/internal/strategy"
)

// Reference values for a combined-cycle gas plant.
const (
	DefaultHeatRate = 7.0  // MMBtu/MWh
	DefaultGasPrice = 4.00 // $/MMBtu
)

// SparkSpread is the gross margin of a gas plant selling at lmp:
// lmp - gasPrice*heatRate, in $/MWh.
func SparkSpread(lmp, gasPrice, heatRate float64) float64 {
	return lmp - gasPrice*heatRate
}

// ClassifySparkSpread grades a spread with the arbitrage thresholds and
// returns the FAVORABLE / MARGINAL / UNFAVORABLE label.
func ClassifySparkSpread(spread float64, th strategy.Thresholds) string {
	return strategy.ClassifyArbitrageSignal(spread, th).SpreadLabel()
}

type SparkSummary struct {
	Zone          string    `json:"zone"`
	GasPrice      float64   `json:"gas_price"`
	HeatRate      float64   `json:"heat_rate"`
	GasCost       float64   `json:"gas_cost"`
	Hourly        []float64 `json:"hourly_spread"`
	AvgSpread     float64   `json:"avg_spread"`
	PeakSpread    float64   `json:"peak_spread"`
	PeakHour      int       `json:"peak_hour"`
	HoursPositive int       `json:"hours_positive"`
	Label         string    `json:"label"`
}

// CurveSparkSpread computes the hourly spark spread of a curve and grades
// the daily average.
func CurveSparkSpread(curve model.PriceCurve, gasPrice, heatRate float64, th strategy.Thresholds) (SparkSummary, error) {
	if err := curve.Validate(); err != nil {
		return SparkSummary{}, err
	}
	if heatRate <= 0 {
		return SparkSummary{}, &model.InvalidInputError{Field: "heat_rate", Reason: "must be > 0"}
	}
	if gasPrice < 0 {
		return SparkSummary{}, &model.InvalidInputError{Field: "gas_price", Reason: "must be >= 0"}
	}

	hourly := make([]float64, len(curve.Prices))
	positive := 0
	for h, p := range curve.Prices {
		hourly[h] = SparkSpread(p, gasPrice, heatRate)
		if hourly[h] > 0 {
			positive++
		}
	}
	peak := floats.MaxIdx(hourly)
	avg := stat.Mean(hourly, nil)

	return SparkSummary{
		Zone:          curve.Zone,
		GasPrice:      gasPrice,
		HeatRate:      heatRate,
		GasCost:       gasPrice * heatRate,
		Hourly:        hourly,
		AvgSpread:     avg,
		PeakSpread:    hourly[peak],
		PeakHour:      peak,
		HoursPositive: positive,
		Label:         ClassifySparkSpread(avg, th),
	}, nil
}
