package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"gridalpha/internal/model"
	"gridalpha/internal/strategy"
)

// RankSummary aggregates a ranking across zones.
type RankSummary struct {
	TotalZones      int     `json:"total_zones"`
	ProfitableZones int     `json:"profitable_zones"`
	AvgSpread       float64 `json:"avg_spread_per_mwh"`
	AvgNetProfit    float64 `json:"avg_net_profit"`
	BestZone        string  `json:"best_zone"`
	BestNetProfit   float64 `json:"best_net_profit"`
	WorstZone       string  `json:"worst_zone"`
	WorstNetProfit  float64 `json:"worst_net_profit"`
	TotalGatedHours int     `json:"total_gated_hours"`
}

// RankZones runs ZoneArbitrage for every curve and sorts by net profit,
// highest first; equal profits order by zone name.
func RankZones(curves []model.PriceCurve, cfg model.BatteryConfig, th strategy.Thresholds) ([]ZoneResult, RankSummary, error) {
	out := make([]ZoneResult, 0, len(curves))
	for _, c := range curves {
		r, err := ZoneArbitrage(c, cfg, th)
		if err != nil {
			return nil, RankSummary{}, fmt.Errorf("zone %s: %w", c.Zone, err)
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Profit.NetProfit != out[j].Profit.NetProfit {
			return out[i].Profit.NetProfit > out[j].Profit.NetProfit
		}
		return out[i].Zone < out[j].Zone
	})
	return out, Summarize(out), nil
}

// Summarize expects results already ranked best first.
func Summarize(ranked []ZoneResult) RankSummary {
	s := RankSummary{TotalZones: len(ranked)}
	if len(ranked) == 0 {
		return s
	}
	spreads := make([]float64, len(ranked))
	nets := make([]float64, len(ranked))
	for i, r := range ranked {
		spreads[i] = r.SpreadPerMWh
		nets[i] = r.Profit.NetProfit
		if r.Profit.NetProfit > 0 {
			s.ProfitableZones++
		}
		s.TotalGatedHours += r.HoursGatedOut
	}
	s.AvgSpread = stat.Mean(spreads, nil)
	s.AvgNetProfit = stat.Mean(nets, nil)
	s.BestZone, s.BestNetProfit = ranked[0].Zone, ranked[0].Profit.NetProfit
	last := ranked[len(ranked)-1]
	s.WorstZone, s.WorstNetProfit = last.Zone, last.Profit.NetProfit
	return s
}
