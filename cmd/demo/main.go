package main

import (
	"flag"
	"fmt"
	"os"

	"gridalpha/internal/backtest"
	"gridalpha/internal/config"
	"gridalpha/internal/data"
	"gridalpha/internal/model"
	"gridalpha/internal/strategy"
)

// Demo:
// - Build the synthetic demo curve for one zone and day
// - Compute the arbitrage schedule for a battery
// - Replay it through the battery model hour by hour to show how the pieces fit
func main() {
	zoneID := flag.String("zone", "PSEG", "Zone to simulate")
	date := flag.String("date", "2024-07-15", "Day to simulate (YYYY-MM-DD)")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV (e.g. results/demo.csv)")
	flag.Parse()

	zone, ok := data.LookupZone(*zoneID)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown zone %q\n", *zoneID)
		os.Exit(2)
	}
	day, err := data.ParseDay(*date)
	if err != nil {
		panic(err)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		if cfg, err = config.Load(*cfgPath); err != nil {
			panic(err)
		}
	}
	battery := cfg.Battery.ToModel()

	curve := data.DemoCurve(zone.ID, day)
	schedule, err := strategy.ComputeSchedule(curve.Prices, battery)
	if err != nil {
		panic(err)
	}
	profit, err := strategy.ComputeDailyProfit(schedule, battery)
	if err != nil {
		panic(err)
	}

	// Start empty so discharged energy is explained by charged energy.
	batt, err := model.NewBattery(battery.Params(), 0)
	if err != nil {
		panic(err)
	}
	strat, err := strategy.NewScheduleStrategy(schedule)
	if err != nil {
		panic(err)
	}
	result, err := backtest.New().Run(curve, batt, strat)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Demo curve for %s (%s) on %s\n", zone.ID, zone.DisplayName, day.Format("2006-01-02"))
	fmt.Printf("Battery=%.0f MW x %.1f h  eff=%.2f  cycling=$%.2f/MWh\n\n",
		battery.BatterySize, battery.Duration, battery.Efficiency, battery.CyclingCost)

	for _, r := range result.Ledger {
		fmt.Printf(
			"%s price=%7.2f  action=%-9s  req=%7.2f  p=%7.2f  soc=%.3f->%.3f  pnl=%9.2f  cum=%9.2f\n",
			r.Start.Format("2006-01-02 15:04"),
			r.Price,
			string(r.Action),
			r.RequestedPowerMW,
			r.PowerMW,
			r.SOCStart,
			r.SOCEnd,
			r.PNL,
			r.CumPNL,
		)
	}
	if clipped := result.Clipped(); len(clipped) > 0 {
		fmt.Printf("\nClipped hours: %v\n", clipped)
	}

	if *outCSV != "" {
		if err := backtest.WriteLedgerCSVFile(*outCSV, result.Ledger); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	rounded := profit.Rounded()
	perUnit := profit.PerUnitEnergy(battery)
	signal := strategy.ClassifyArbitrageSignal(perUnit, cfg.Signal.Thresholds())
	fmt.Printf("\nDone. Final SOC=%.3f  Replay PnL=$%.2f\n", result.FinalSOC, result.TotalPNL)
	fmt.Printf("Schedule gross=$%.2f net=$%.2f per-MWh=$%.2f signal=%s\n",
		rounded.GrossProfit, rounded.NetProfit, model.Round2(perUnit), signal)
}
