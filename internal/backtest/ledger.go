package backtest

import (
	"time"

	"gridalpha/internal/model"
)

// LedgerRow is one hour of replay output.
type LedgerRow struct {
	Hour  int       `json:"hour"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Zone  string    `json:"zone"`
	Price float64   `json:"price"`

	Action model.Action `json:"action"`

	RequestedPowerMW float64 `json:"requested_power_mw"`
	PowerMW          float64 `json:"power_mw"`

	EnergyFromGridMWh float64 `json:"energy_from_grid_mwh"`
	EnergyToGridMWh   float64 `json:"energy_to_grid_mwh"`
	ThroughputMWh     float64 `json:"throughput_mwh"`

	SOCStart float64 `json:"soc_start"`
	SOCEnd   float64 `json:"soc_end"`

	PNL    float64 `json:"pnl"`
	CumPNL float64 `json:"cum_pnl"`
}

type Result struct {
	Strategy string      `json:"strategy"`
	Ledger   []LedgerRow `json:"ledger"`
	TotalPNL float64     `json:"total_pnl"`
	FinalSOC float64     `json:"final_soc"`
}

// Clipped reports the hours where the realized power differs from the
// request, i.e. where the rating or the SOC window bound the dispatch.
func (r *Result) Clipped() []int {
	var hours []int
	for _, row := range r.Ledger {
		if row.PowerMW != row.RequestedPowerMW {
			hours = append(hours, row.Hour)
		}
	}
	return hours
}
