package models

// BatteryConfig is the battery part of a request. Zero fields take the
// server defaults, except CyclingCost where only an absent value does.
type BatteryConfig struct {
	BatteryFile string   `json:"battery_file,omitempty"`
	BatterySize float64  `json:"battery_size,omitempty"`
	Duration    float64  `json:"duration,omitempty" binding:"omitempty,lte=12"`
	Efficiency  float64  `json:"efficiency,omitempty"`
	CyclingCost *float64 `json:"cycling_cost,omitempty"`
}

// ScheduleRequest is the body of POST /api/v1/schedule.
type ScheduleRequest struct {
	Zone          string        `json:"zone,omitempty"`
	Date          string        `json:"date,omitempty"` // YYYY-MM-DD, informational
	Prices        []float64     `json:"prices" binding:"required"`
	Battery       BatteryConfig `json:"battery,omitempty"`
	IncludeLedger bool          `json:"include_ledger,omitempty"`
}

// BatteryQuery carries battery overrides as query parameters. Duration is
// capped at 12 hours, the longest leg a single daily cycle can trade.
type BatteryQuery struct {
	BatterySize float64  `form:"battery_size" binding:"omitempty,gt=0"`
	Duration    float64  `form:"duration" binding:"omitempty,gt=0,lte=12"`
	Efficiency  float64  `form:"efficiency" binding:"omitempty,gte=0.5,lte=0.99"`
	CyclingCost *float64 `form:"cycling_cost" binding:"omitempty,gte=0"`
}

func (q BatteryQuery) ToConfig() BatteryConfig {
	return BatteryConfig{
		BatterySize: q.BatterySize,
		Duration:    q.Duration,
		Efficiency:  q.Efficiency,
		CyclingCost: q.CyclingCost,
	}
}

// ZoneScheduleQuery is GET /api/v1/zones/:zone/schedule.
type ZoneScheduleQuery struct {
	BatteryQuery
	Date          string `form:"date"`
	IncludeLedger bool   `form:"include_ledger"`
}

// ArbitrageQuery is GET /api/v1/battery-arbitrage.
type ArbitrageQuery struct {
	BatteryQuery
	Date string `form:"date"`
	Zone string `form:"zone"`
}

// SparkSpreadQuery is GET /api/v1/zones/:zone/spark-spread. Absent gas and
// heat-rate values take the defaults; a gas price of 0 is honored.
type SparkSpreadQuery struct {
	Date     string   `form:"date"`
	GasPrice *float64 `form:"gas_price" binding:"omitempty,gte=0"`
	HeatRate *float64 `form:"heat_rate" binding:"omitempty,gt=0"`
}

// ConvergenceQuery is GET /api/v1/zones/:zone/convergence.
type ConvergenceQuery struct {
	Date string `form:"date"`
}

// PutPricesRequest is the body of PUT /api/v1/zones/:zone/prices.
type PutPricesRequest struct {
	Date   string    `json:"date" binding:"required"`
	Prices []float64 `json:"prices" binding:"required"`
}
