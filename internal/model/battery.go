package model

import (
	"errors"
	"math"
)

// BatteryConfig is the caller-supplied description of a storage asset.
// Units:
// - BatterySize: MW (rated power)
// - Duration: hours of stored energy at rated power
// - Efficiency: round-trip fraction in (0, 1]
// - CyclingCost: $/MWh per cycle (degradation hurdle)
type BatteryConfig struct {
	BatterySize float64 `json:"battery_size" yaml:"battery_size"`
	Duration    float64 `json:"duration" yaml:"duration"`
	Efficiency  float64 `json:"efficiency" yaml:"efficiency"`
	CyclingCost float64 `json:"cycling_cost" yaml:"cycling_cost"`
}

// DefaultBatteryConfig matches the platform assumptions: a 100 MW / 4 h
// lithium-ion plant at 87% round-trip efficiency and $20/MWh cycling cost.
func DefaultBatteryConfig() BatteryConfig {
	return BatteryConfig{
		BatterySize: 100,
		Duration:    4,
		Efficiency:  0.87,
		CyclingCost: 20,
	}
}

func (c BatteryConfig) Validate() error {
	switch {
	case !finite(c.BatterySize) || c.BatterySize <= 0:
		return invalid("battery_size", "must be a finite number > 0, got %v", c.BatterySize)
	case !finite(c.Duration) || c.Duration <= 0:
		return invalid("duration", "must be a finite number > 0, got %v", c.Duration)
	case !finite(c.Efficiency) || c.Efficiency <= 0 || c.Efficiency > 1:
		return invalid("efficiency", "must be in (0, 1], got %v", c.Efficiency)
	case !finite(c.CyclingCost) || c.CyclingCost < 0:
		return invalid("cycling_cost", "must be a finite number >= 0, got %v", c.CyclingCost)
	}
	return nil
}

// EnergyMWh is the usable energy capacity.
func (c BatteryConfig) EnergyMWh() float64 {
	return c.BatterySize * c.Duration
}

// Params converts the economic configuration into the physical parameters
// used when a schedule is replayed hour by hour. The round-trip efficiency is
// split evenly between the two legs and the per-cycle cost is spread over
// charge + discharge throughput.
func (c BatteryConfig) Params() BatteryParams {
	legEff := math.Sqrt(c.Efficiency)
	return BatteryParams{
		EnergyCapacityMWh:     c.EnergyMWh(),
		PowerCapacityMW:       c.BatterySize,
		ChargeEfficiency:      legEff,
		DischargeEfficiency:   legEff,
		MinSOC:                0,
		MaxSOC:                1,
		DegradationCostPerMWh: c.CyclingCost / 2,
	}
}

// BatteryParams defines the physical parameters used by the replay engine.
// - SOC: fraction 0..1
// - DegradationCostPerMWh: $/MWh throughput (charge + discharge)
type BatteryParams struct {
	EnergyCapacityMWh     float64
	PowerCapacityMW       float64
	ChargeEfficiency      float64
	DischargeEfficiency   float64
	MinSOC                float64
	MaxSOC                float64
	DegradationCostPerMWh float64
}

// Battery bundles params with mutable state of charge.
type Battery struct {
	Params BatteryParams
	SOC    float64
}

func NewBattery(params BatteryParams, initialSOC float64) (*Battery, error) {
	b := &Battery{Params: params, SOC: initialSOC}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Battery) Validate() error {
	p := b.Params
	if p.EnergyCapacityMWh <= 0 {
		return errors.New("EnergyCapacityMWh must be > 0")
	}
	if p.PowerCapacityMW <= 0 {
		return errors.New("PowerCapacityMW must be > 0")
	}
	if p.ChargeEfficiency <= 0 || p.ChargeEfficiency > 1 {
		return errors.New("ChargeEfficiency must be in (0, 1]")
	}
	if p.DischargeEfficiency <= 0 || p.DischargeEfficiency > 1 {
		return errors.New("DischargeEfficiency must be in (0, 1]")
	}
	if p.MinSOC < 0 || p.MaxSOC > 1 || p.MinSOC > p.MaxSOC {
		return errors.New("MinSOC/MaxSOC must satisfy 0<=MinSOC<=MaxSOC<=1")
	}
	if b.SOC < p.MinSOC || b.SOC > p.MaxSOC {
		return errors.New("initial SOC must be within [MinSOC, MaxSOC]")
	}
	if p.DegradationCostPerMWh < 0 {
		return errors.New("DegradationCostPerMWh must be >= 0")
	}
	return nil
}

// Dispatch is a requested power setpoint for one interval.
// Positive MW = discharge to grid, negative MW = charge from grid.
type Dispatch struct {
	PowerMW float64
}

// IntervalResult captures what happened in one interval.
type IntervalResult struct {
	PowerMW           float64 // realized power (may be clipped)
	EnergyToGridMWh   float64
	EnergyFromGridMWh float64
	ThroughputMWh     float64
	SOCStart          float64
	SOCEnd            float64
	PNL               float64 // $ incl. degradation
}

// ApplyDispatch applies a dispatch for one interval of durationHours at the
// given price, clipping the request to the power rating and the SOC window.
func (b *Battery) ApplyDispatch(price float64, d Dispatch, durationHours float64) (IntervalResult, error) {
	if durationHours <= 0 {
		return IntervalResult{}, errors.New("durationHours must be > 0")
	}

	p := math.Max(-b.Params.PowerCapacityMW, math.Min(b.Params.PowerCapacityMW, d.PowerMW))
	res := IntervalResult{SOCStart: b.SOC}
	capacity := b.Params.EnergyCapacityMWh

	switch {
	case p < 0:
		fromGrid := math.Min(-p*durationHours, b.maxChargeFromGridMWh(durationHours))
		b.SOC = clamp01(b.SOC + fromGrid*b.Params.ChargeEfficiency/capacity)
		res.PowerMW = -fromGrid / durationHours
		res.EnergyFromGridMWh = fromGrid
		res.ThroughputMWh = fromGrid
	case p > 0:
		toGrid := math.Min(p*durationHours, b.maxDischargeToGridMWh(durationHours))
		b.SOC = clamp01(b.SOC - toGrid/b.Params.DischargeEfficiency/capacity)
		res.PowerMW = toGrid / durationHours
		res.EnergyToGridMWh = toGrid
		res.ThroughputMWh = toGrid
	}

	res.SOCEnd = b.SOC
	res.PNL = b.IntervalPnL(price, res.EnergyFromGridMWh, res.EnergyToGridMWh)
	return res, nil
}

// IntervalPnL computes interval PnL from grid-side energies.
func (b *Battery) IntervalPnL(price, energyFromGridMWh, energyToGridMWh float64) float64 {
	revenue := price * energyToGridMWh
	cost := price * energyFromGridMWh
	degradation := b.Params.DegradationCostPerMWh * (energyFromGridMWh + energyToGridMWh)
	return revenue - cost - degradation
}

func (b *Battery) maxChargeFromGridMWh(durationHours float64) float64 {
	storable := (b.Params.MaxSOC - b.SOC) * b.Params.EnergyCapacityMWh
	if storable <= 0 {
		return 0
	}
	return math.Min(storable/b.Params.ChargeEfficiency, b.Params.PowerCapacityMW*durationHours)
}

func (b *Battery) maxDischargeToGridMWh(durationHours float64) float64 {
	withdrawable := (b.SOC - b.Params.MinSOC) * b.Params.EnergyCapacityMWh
	if withdrawable <= 0 {
		return 0
	}
	return math.Min(withdrawable*b.Params.DischargeEfficiency, b.Params.PowerCapacityMW*durationHours)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
