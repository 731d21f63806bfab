package backtest

import (
	"fmt"

	"gridalpha/internal/model"
	"gridalpha/internal/strategy"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run replays a strategy over one day of hourly prices, tracking state of
// charge and per-hour PnL.
func (e *Engine) Run(curve model.PriceCurve, batt *model.Battery, strat strategy.Strategy) (*Result, error) {
	if batt == nil {
		return nil, fmt.Errorf("battery is nil")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if err := curve.Validate(); err != nil {
		return nil, err
	}

	intervals := curve.Intervals()
	ledger := make([]LedgerRow, 0, len(intervals))
	cum := 0.0

	for idx, it := range intervals {
		req := strat.Decide(strategy.Context{
			Index:    idx,
			Interval: it,
			Battery:  batt,
		})

		res, err := batt.ApplyDispatch(it.Price, req, it.DurationHours())
		if err != nil {
			return nil, fmt.Errorf("hour %d apply dispatch: %w", it.Hour, err)
		}
		cum += res.PNL

		ledger = append(ledger, LedgerRow{
			Hour:  it.Hour,
			Start: it.Start,
			End:   it.End,
			Zone:  it.Zone,
			Price: it.Price,

			Action: model.ActionFromPower(res.PowerMW),

			RequestedPowerMW: req.PowerMW,
			PowerMW:          res.PowerMW,

			EnergyFromGridMWh: res.EnergyFromGridMWh,
			EnergyToGridMWh:   res.EnergyToGridMWh,
			ThroughputMWh:     res.ThroughputMWh,

			SOCStart: res.SOCStart,
			SOCEnd:   res.SOCEnd,

			PNL:    res.PNL,
			CumPNL: cum,
		})
	}

	return &Result{
		Strategy: strat.Name(),
		Ledger:   ledger,
		TotalPNL: cum,
		FinalSOC: batt.SOC,
	}, nil
}

// ReplaySchedule is a convenience wrapper: it replays schedule against curve
// on a fresh battery built from cfg, starting empty.
func (e *Engine) ReplaySchedule(curve model.PriceCurve, schedule []model.BatteryAction, cfg model.BatteryConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	batt, err := model.NewBattery(cfg.Params(), 0)
	if err != nil {
		return nil, err
	}
	strat, err := strategy.NewScheduleStrategy(schedule)
	if err != nil {
		return nil, err
	}
	return e.Run(curve, batt, strat)
}
