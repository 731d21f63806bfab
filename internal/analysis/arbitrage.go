package analysis

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"gridalpha/internal/model"
	"gridalpha/internal/strategy"
)

// ZoneResult is the arbitrage outcome for one zone and day.
type ZoneResult struct {
	Zone   string       `json:"zone"`
	Date   time.Time    `json:"date"`
	Source model.Source `json:"source,omitempty"`

	Schedule []model.BatteryAction `json:"schedule"`
	Profit   model.ProfitResult    `json:"profit"`

	AvgChargePrice    float64 `json:"avg_charge_price"`
	AvgDischargePrice float64 `json:"avg_discharge_price"`
	// SpreadPerMWh is avgDischarge - avgCharge/efficiency.
	SpreadPerMWh  float64 `json:"spread_per_mwh"`
	PerUnitEnergy float64 `json:"profit_per_mwh"`

	Signal      strategy.Signal `json:"signal"`
	SpreadLabel string          `json:"spread_label"`

	// HoursGatedOut counts discharge hours whose margin
	// price*efficiency - avgCharge does not clear the cycling cost.
	// Informational; the schedule still dispatches them.
	HoursGatedOut int `json:"hours_gated_out"`

	Stats CurveStats `json:"stats"`
}

// ZoneArbitrage schedules one curve and grades the result. Profit is left
// unrounded.
func ZoneArbitrage(curve model.PriceCurve, cfg model.BatteryConfig, th strategy.Thresholds) (ZoneResult, error) {
	schedule, err := strategy.ComputeSchedule(curve.Prices, cfg)
	if err != nil {
		return ZoneResult{}, err
	}
	profit, err := strategy.ComputeDailyProfit(schedule, cfg)
	if err != nil {
		return ZoneResult{}, err
	}

	res := ZoneResult{
		Zone:     curve.Zone,
		Date:     curve.Date,
		Source:   curve.Source,
		Schedule: schedule,
		Profit:   profit,
		Stats:    ComputeCurveStats(curve),
	}

	charge, discharge := strategy.LegPrices(schedule)
	if len(charge) > 0 && len(discharge) > 0 {
		res.AvgChargePrice = stat.Mean(charge, nil)
		res.AvgDischargePrice = stat.Mean(discharge, nil)
		res.SpreadPerMWh = res.AvgDischargePrice - res.AvgChargePrice/cfg.Efficiency
		for _, p := range discharge {
			if p*cfg.Efficiency-res.AvgChargePrice <= cfg.CyclingCost {
				res.HoursGatedOut++
			}
		}
	}

	res.PerUnitEnergy = profit.PerUnitEnergy(cfg)
	res.Signal = strategy.ClassifyArbitrageSignal(res.PerUnitEnergy, th)
	res.SpreadLabel = res.Signal.SpreadLabel()
	return res, nil
}
