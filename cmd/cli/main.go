package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"gridalpha/internal/analysis"
	"gridalpha/internal/backtest"
	"gridalpha/internal/config"
	"gridalpha/internal/data"
	"gridalpha/internal/logger"
	"gridalpha/internal/model"
	"gridalpha/internal/store"
)

var log = logger.Get(logger.InfoLevel)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "schedule":
		err = cmdSchedule(os.Args[2:])
	case "rank":
		err = cmdRank(os.Args[2:])
	case "import":
		err = cmdImport(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Errorw("command failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli schedule --prices examples/curves/pseg_2024-07-15.json [--config examples/configs/default.yaml] [--out results/ledger.csv]")
	fmt.Println("  cli schedule --zone PSEG --date 2024-07-15 [--config ...] [--db gridalpha.db]")
	fmt.Println("  cli rank --data examples/curves [--config ...]")
	fmt.Println("  cli import --data examples/curves --db gridalpha.db")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - schedule prints the 24-hour charge/discharge plan and its profit")
	fmt.Println("  - rank orders every curve's zone by net arbitrage profit")
	fmt.Println("  - --zone fetches day-ahead prices (PJM_API_KEY), falling back to demo prices")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func cmdSchedule(args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	pricesPath := fs.String("prices", "", "Path to a curve JSON file")
	zone := fs.String("zone", "", "Zone to fetch when --prices is not given")
	date := fs.String("date", "", "Day to fetch (YYYY-MM-DD, default today)")
	cfgPath := fs.String("config", "", "Path to YAML config")
	dbPath := fs.String("db", "", "Optional SQLite price store for --zone")
	outPath := fs.String("out", "", "Optional ledger CSV output path")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	var curve model.PriceCurve
	switch {
	case *pricesPath != "":
		curve, err = data.LoadCurveJSON(*pricesPath)
	case *zone != "":
		curve, err = fetchCurve(cfg, *zone, *date, *dbPath)
	default:
		return fmt.Errorf("one of --prices or --zone is required")
	}
	if err != nil {
		return err
	}

	battery := cfg.Battery.ToModel()
	th := cfg.Signal.Thresholds()
	res, err := analysis.ZoneArbitrage(curve, battery, th)
	if err != nil {
		return err
	}
	printSchedule(res, battery)

	if *outPath == "" {
		return nil
	}
	replay, err := backtest.New().ReplaySchedule(curve, res.Schedule, battery)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		return err
	}
	if err := backtest.WriteLedgerCSVFile(*outPath, replay.Ledger); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s (replay PnL=$%.2f)\n", len(replay.Ledger), *outPath, replay.TotalPNL)
	return nil
}

func fetchCurve(cfg *config.Config, zoneID, date, dbPath string) (model.PriceCurve, error) {
	z, ok := data.LookupZone(zoneID)
	if !ok {
		return model.PriceCurve{}, fmt.Errorf("unknown zone %q", zoneID)
	}
	day := data.DayOf(time.Now().In(data.EPT))
	if date != "" {
		d, err := data.ParseDay(date)
		if err != nil {
			return model.PriceCurve{}, err
		}
		day = d
	}

	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	var curveStore data.CurveStore
	if dbPath != "" {
		db, err := store.Open(dbPath)
		if err != nil {
			return model.PriceCurve{}, err
		}
		defer db.Close()
		curveStore = store.NewPriceStore(db)
	}

	feed := data.NewFeedClient(cfg.Feed.APIKey, cfg.Feed.BaseURL, cfg.Feed.Timeout(), log).
		WithRateLimit(cfg.Feed.RequestsPerSecond, cfg.Feed.Burst)
	provider := data.NewProvider(curveStore, nil, feed, cfg.Demo.FallbackEnabled(), log)
	return provider.Curve(context.Background(), z.ID, day)
}

func printSchedule(res analysis.ZoneResult, battery model.BatteryConfig) {
	fmt.Printf("zone=%s date=%s source=%s battery=%.0fMW/%.1fh eff=%.2f cycling=$%.2f/MWh\n",
		orDash(res.Zone), fmtDay(res.Date), res.Source,
		battery.BatterySize, battery.Duration, battery.Efficiency, battery.CyclingCost)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "hour\tprice\taction\tpower_mw")
	for _, a := range res.Schedule {
		fmt.Fprintf(w, "%02d\t%.2f\t%s\t%.1f\n", a.Hour, a.Price, a.Action, a.Power)
	}
	_ = w.Flush()

	p := res.Profit.Rounded()
	fmt.Printf("avg charge=$%.2f avg discharge=$%.2f spread=$%.2f/MWh\n",
		res.AvgChargePrice, res.AvgDischargePrice, res.SpreadPerMWh)
	fmt.Printf("gross=$%.2f net=$%.2f cycles=%d per-MWh=$%.2f signal=%s (%s)\n",
		p.GrossProfit, p.NetProfit, p.CycleCount, res.PerUnitEnergy, res.Signal, res.SpreadLabel)
}

func cmdRank(args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	dataPaths := fs.String("data", "examples/curves", "Comma-separated curve JSON paths or directories")
	cfgPath := fs.String("config", "", "Path to YAML config")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	paths, err := expandPaths(splitPaths(*dataPaths))
	if err != nil {
		return err
	}
	byZone, err := data.LoadCurvesJSON(paths)
	if err != nil {
		return err
	}

	// latest curve per zone
	curves := make([]model.PriceCurve, 0, len(byZone))
	for _, cs := range byZone {
		latest := cs[0]
		for _, c := range cs[1:] {
			if c.Date.After(latest.Date) {
				latest = c
			}
		}
		curves = append(curves, latest)
	}

	ranked, summary, err := analysis.RankZones(curves, cfg.Battery.ToModel(), cfg.Signal.Thresholds())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "rank\tzone\tdate\tavg_chg\tavg_dis\tspread\tnet$\tper_mwh\tsignal")
	for i, r := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			i+1, r.Zone, fmtDay(r.Date), r.AvgChargePrice, r.AvgDischargePrice, r.SpreadPerMWh,
			model.Round2(r.Profit.NetProfit), r.PerUnitEnergy, r.Signal)
	}
	_ = w.Flush()
	fmt.Printf("zones=%d profitable=%d best=%s ($%.2f) worst=%s ($%.2f)\n",
		summary.TotalZones, summary.ProfitableZones,
		summary.BestZone, summary.BestNetProfit, summary.WorstZone, summary.WorstNetProfit)
	return nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dataPaths := fs.String("data", "", "Comma-separated curve JSON paths or directories")
	dbPath := fs.String("db", "gridalpha.db", "SQLite price store")
	_ = fs.Parse(args)

	paths, err := expandPaths(splitPaths(*dataPaths))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("--data is required")
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	ps := store.NewPriceStore(db)

	ctx := context.Background()
	for _, p := range paths {
		curve, err := data.LoadCurveJSON(p)
		if err != nil {
			return err
		}
		if z, ok := data.LookupZone(curve.Zone); ok {
			curve.Zone = z.ID
		}
		if err := ps.Save(ctx, curve); err != nil {
			return fmt.Errorf("import %s: %w", p, err)
		}
		log.Infow("imported curve", "file", p, "zone", curve.Zone, "date", curve.Date.Format("2006-01-02"))
	}
	fmt.Printf("Imported %d curves into %s\n", len(paths), *dbPath)
	return nil
}

func splitPaths(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandPaths replaces directories with the .json files they contain.
func expandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			out = append(out, filepath.Join(p, e.Name()))
		}
	}
	return out, nil
}

func fmtDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
