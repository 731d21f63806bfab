package model

import (
	"github.com/shopspring/decimal"
)

// BatteryAction is the decision for one hour of the day.
// Power is negative while charging, positive while discharging and zero
// while idle. Price is the market price for that hour in every case.
type BatteryAction struct {
	Hour   int     `json:"hour"`
	Action Action  `json:"action"`
	Power  float64 `json:"power"`
	Price  float64 `json:"price"`
}

// ValidateSchedule checks that s has one record per hour, in order, with a
// power sign that matches the action.
func ValidateSchedule(s []BatteryAction) error {
	if len(s) != HoursPerDay {
		return invalid("schedule", "must contain exactly %d hourly actions, got %d", HoursPerDay, len(s))
	}
	for i, a := range s {
		if a.Hour != i {
			return invalid("schedule", "record %d has hour %d; hours must run 0..23 without gaps", i, a.Hour)
		}
		if !a.Action.Valid() {
			return invalid("schedule", "hour %d has unknown action %q", i, a.Action)
		}
		if ActionFromPower(a.Power) != a.Action {
			return invalid("schedule", "hour %d power %v does not match action %q", i, a.Power, a.Action)
		}
		if !finite(a.Price) {
			return invalid("schedule", "hour %d price is not finite", i)
		}
	}
	return nil
}

// ProfitResult is the daily arbitrage outcome. Values are unrounded; call
// Rounded at the output boundary.
type ProfitResult struct {
	GrossProfit float64 `json:"gross_profit"`
	NetProfit   float64 `json:"net_profit"`
	CycleCount  int     `json:"cycle_count"`
}

// Rounded returns a copy with currency rounded to cents.
func (r ProfitResult) Rounded() ProfitResult {
	return ProfitResult{
		GrossProfit: Round2(r.GrossProfit),
		NetProfit:   Round2(r.NetProfit),
		CycleCount:  r.CycleCount,
	}
}

// PerUnitEnergy is net profit per MWh of usable capacity, the value fed to
// the arbitrage signal classifier.
func (r ProfitResult) PerUnitEnergy(cfg BatteryConfig) float64 {
	energy := cfg.EnergyMWh()
	if energy <= 0 {
		return 0
	}
	return r.NetProfit / energy
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(x float64) float64 {
	if !finite(x) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
