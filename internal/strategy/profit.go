package strategy

import (
	"gonum.org/v1/gonum/stat"

	"gridalpha/internal/model"
)

// ComputeDailyProfit derives the expected daily profit of a schedule.
//
//	gross = (avgDischarge - avgCharge/efficiency) * batterySize * duration
//	net   = gross - cycles * cyclingCost * batterySize * duration
//
// Efficiency loss is charged to the buying leg: more energy has to be bought
// to deliver the same energy back. A schedule without both a charge and a
// discharge hour earns nothing.
func ComputeDailyProfit(schedule []model.BatteryAction, cfg model.BatteryConfig) (model.ProfitResult, error) {
	if err := model.ValidateSchedule(schedule); err != nil {
		return model.ProfitResult{}, err
	}
	if err := cfg.Validate(); err != nil {
		return model.ProfitResult{}, err
	}

	chargePrices, dischargePrices := LegPrices(schedule)
	if len(chargePrices) == 0 || len(dischargePrices) == 0 {
		return model.ProfitResult{}, nil
	}

	avgCharge := stat.Mean(chargePrices, nil)
	avgDischarge := stat.Mean(dischargePrices, nil)
	energy := cfg.BatterySize * cfg.Duration

	gross := (avgDischarge - avgCharge/cfg.Efficiency) * energy
	cycles := CountCycles(schedule)
	net := gross - float64(cycles)*cfg.CyclingCost*energy

	return model.ProfitResult{
		GrossProfit: gross,
		NetProfit:   net,
		CycleCount:  cycles,
	}, nil
}

// LegPrices splits the schedule's prices by leg, in hour order.
func LegPrices(schedule []model.BatteryAction) (charge, discharge []float64) {
	for _, a := range schedule {
		switch a.Action {
		case model.ActionCharge:
			charge = append(charge, a.Price)
		case model.ActionDischarge:
			discharge = append(discharge, a.Price)
		}
	}
	return charge, discharge
}

// CountCycles counts charge->discharge rounds in chronological order: a
// discharge hour closes a cycle when at least one charge hour precedes it
// since the previous cycle closed. Any schedule that both charges and
// discharges counts at least one cycle.
func CountCycles(schedule []model.BatteryAction) int {
	cycles := 0
	pending := false
	charged, discharged := false, false
	for _, a := range schedule {
		switch a.Action {
		case model.ActionCharge:
			pending = true
			charged = true
		case model.ActionDischarge:
			discharged = true
			if pending {
				cycles++
				pending = false
			}
		}
	}
	if cycles == 0 && charged && discharged {
		return 1
	}
	return cycles
}
