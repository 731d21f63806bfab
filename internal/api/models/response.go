package models

import (
	"gridalpha/internal/analysis"
	"gridalpha/internal/backtest"
	"gridalpha/internal/data"
	"gridalpha/internal/model"
	"gridalpha/internal/strategy"
)

// ScheduleResponse is returned by both schedule endpoints.
type ScheduleResponse struct {
	ID           string                `json:"id"`
	Zone         string                `json:"zone,omitempty"`
	Date         string                `json:"date,omitempty"`
	Source       model.Source          `json:"source"`
	Battery      model.BatteryConfig   `json:"battery"`
	Schedule     []model.BatteryAction `json:"schedule"`
	Profit       model.ProfitResult    `json:"profit"`
	ProfitPerMWh float64               `json:"profit_per_mwh"`
	Signal       strategy.Signal       `json:"signal"`
	SpreadLabel  string                `json:"spread_label"`
	Ledger       []backtest.LedgerRow  `json:"ledger,omitempty"`
}

type ZonesResponse struct {
	Zones []data.Zone `json:"zones"`
}

// AssumptionsResponse lists the constants the dashboard shows next to its
// numbers.
type AssumptionsResponse struct {
	CyclingHurdlePerMWh     float64 `json:"cycling_hurdle_per_mwh"`
	DefaultEfficiencyPct    float64 `json:"default_efficiency_pct"`
	DefaultDurationHours    float64 `json:"default_duration_hours"`
	DefaultBatterySizeMW    float64 `json:"default_battery_size_mw"`
	DefaultHeatRateMMBtuMWh float64 `json:"default_heat_rate_mmbtu_mwh"`
	DefaultGasPriceMMBtu    float64 `json:"default_gas_price_mmbtu"`
	QueueSuccessRatePct     float64 `json:"queue_success_rate_pct"`
	SolarELCCPct            float64 `json:"solar_elcc_pct"`
	StaleThresholdMinutes   int     `json:"stale_threshold_minutes"`
	DownThresholdMinutes    int     `json:"down_threshold_minutes"`
	SignalStrongAbove       float64 `json:"signal_strong_above"`
	SignalModerateAbove     float64 `json:"signal_moderate_above"`
}

// ArbitrageResponse is the zone ranking of GET /api/v1/battery-arbitrage.
type ArbitrageResponse struct {
	ID       string               `json:"id"`
	Date     string               `json:"date"`
	IsDemo   bool                 `json:"is_demo"`
	Battery  model.BatteryConfig  `json:"battery"`
	Rankings []ZoneRanking        `json:"rankings"`
	Summary  analysis.RankSummary `json:"summary"`
}

// ZoneRanking is one ranked zone, currency rounded to cents.
type ZoneRanking struct {
	Rank              int             `json:"rank"`
	Zone              string          `json:"zone"`
	Source            model.Source    `json:"source"`
	GrossProfit       float64         `json:"gross_profit"`
	NetProfit         float64         `json:"net_profit"`
	CycleCount        int             `json:"cycle_count"`
	AvgChargePrice    float64         `json:"avg_charge_price"`
	AvgDischargePrice float64         `json:"avg_discharge_price"`
	SpreadPerMWh      float64         `json:"spread_per_mwh"`
	ProfitPerMWh      float64         `json:"profit_per_mwh"`
	Signal            strategy.Signal `json:"signal"`
	SpreadLabel       string          `json:"spread_label"`
	HoursGatedOut     int             `json:"hours_gated_out"`
}

type SparkSpreadResponse struct {
	analysis.SparkSummary
	Date   string       `json:"date"`
	Source model.Source `json:"source"`
}

// ConvergenceResponse is GET /api/v1/zones/:zone/convergence.
type ConvergenceResponse struct {
	analysis.ConvergenceSummary
	Date     string       `json:"date"`
	DASource model.Source `json:"da_source"`
	RTSource model.Source `json:"rt_source"`
}

type PutPricesResponse struct {
	Zone        string   `json:"zone"`
	Date        string   `json:"date"`
	Stored      int      `json:"stored_hours"`
	StoredDates []string `json:"stored_dates,omitempty"`
}

// BatteryInfo represents information about a battery preset
type BatteryInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	File        string       `json:"file"`
	Specs       BatterySpecs `json:"specs"`
}

type BatterySpecs struct {
	BatterySize float64 `json:"battery_size"`
	Duration    float64 `json:"duration"`
	EnergyMWh   float64 `json:"energy_mwh"`
	Efficiency  float64 `json:"efficiency"`
	CyclingCost float64 `json:"cycling_cost"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
