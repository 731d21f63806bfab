package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatteryConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultBatteryConfig().Validate())

	tests := []struct {
		name  string
		mut   func(*BatteryConfig)
		field string
	}{
		{"zero size", func(c *BatteryConfig) { c.BatterySize = 0 }, "battery_size"},
		{"NaN size", func(c *BatteryConfig) { c.BatterySize = math.NaN() }, "battery_size"},
		{"zero duration", func(c *BatteryConfig) { c.Duration = 0 }, "duration"},
		{"infinite duration", func(c *BatteryConfig) { c.Duration = math.Inf(1) }, "duration"},
		{"zero efficiency", func(c *BatteryConfig) { c.Efficiency = 0 }, "efficiency"},
		{"efficiency above one", func(c *BatteryConfig) { c.Efficiency = 1.01 }, "efficiency"},
		{"negative cycling cost", func(c *BatteryConfig) { c.CyclingCost = -1 }, "cycling_cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBatteryConfig()
			tt.mut(&cfg)
			err := cfg.Validate()
			var inputErr *InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	edge := DefaultBatteryConfig()
	edge.Efficiency = 1
	edge.CyclingCost = 0
	assert.NoError(t, edge.Validate())
}

func TestValidatePrices(t *testing.T) {
	day := make([]float64, HoursPerDay)
	assert.NoError(t, ValidatePrices(day))

	day[3] = -25 // negative prices happen and are valid
	assert.NoError(t, ValidatePrices(day))

	assert.Error(t, ValidatePrices(day[:23]))
	day[7] = math.NaN()
	assert.Error(t, ValidatePrices(day))
}

func TestValidateSchedule(t *testing.T) {
	s := make([]BatteryAction, HoursPerDay)
	for h := range s {
		s[h] = BatteryAction{Hour: h, Action: ActionIdle, Price: 10}
	}
	require.NoError(t, ValidateSchedule(s))

	s[2] = BatteryAction{Hour: 2, Action: ActionCharge, Power: -5, Price: 10}
	s[9] = BatteryAction{Hour: 9, Action: ActionDischarge, Power: 5, Price: 40}
	require.NoError(t, ValidateSchedule(s))

	bad := append([]BatteryAction(nil), s...)
	bad[4].Action = "hold"
	assert.Error(t, ValidateSchedule(bad))

	bad = append([]BatteryAction(nil), s...)
	bad[4].Power = 3
	assert.Error(t, ValidateSchedule(bad))

	bad = append([]BatteryAction(nil), s...)
	bad[11].Price = math.Inf(-1)
	assert.Error(t, ValidateSchedule(bad))
}

func TestActionFromPower(t *testing.T) {
	assert.Equal(t, ActionCharge, ActionFromPower(-0.1))
	assert.Equal(t, ActionIdle, ActionFromPower(0))
	assert.Equal(t, ActionDischarge, ActionFromPower(2))
	assert.False(t, Action("").Valid())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.35, Round2(2.345))
	assert.Equal(t, -2.35, Round2(-2.345))
	assert.Equal(t, 100.0, Round2(99.999))
	assert.True(t, math.IsNaN(Round2(math.NaN())))
}

func TestProfitResult_PerUnitEnergy(t *testing.T) {
	cfg := BatteryConfig{BatterySize: 50, Duration: 2, Efficiency: 0.9}
	assert.Equal(t, 12.5, ProfitResult{NetProfit: 1250}.PerUnitEnergy(cfg))
	assert.Equal(t, 0.0, ProfitResult{NetProfit: 1250}.PerUnitEnergy(BatteryConfig{}))
}

func TestBatteryConfig_Params(t *testing.T) {
	p := BatteryConfig{BatterySize: 25, Duration: 4, Efficiency: 0.81, CyclingCost: 10}.Params()
	assert.Equal(t, 100.0, p.EnergyCapacityMWh)
	assert.Equal(t, 25.0, p.PowerCapacityMW)
	assert.InDelta(t, 0.9, p.ChargeEfficiency, 1e-12)
	assert.InDelta(t, 0.9, p.DischargeEfficiency, 1e-12)
	assert.Equal(t, 5.0, p.DegradationCostPerMWh)
}

func TestBattery_ApplyDispatchClipsToPowerAndSOC(t *testing.T) {
	cfg := BatteryConfig{BatterySize: 10, Duration: 2, Efficiency: 1, CyclingCost: 4}
	b, err := NewBattery(cfg.Params(), 0)
	require.NoError(t, err)

	res, err := b.ApplyDispatch(30, Dispatch{PowerMW: -10}, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.EnergyFromGridMWh)
	assert.Equal(t, 0.5, res.SOCEnd)
	assert.Equal(t, -320.0, res.PNL) // -300 energy, -20 degradation

	// request above rating is clipped to 10 MW
	res, err = b.ApplyDispatch(30, Dispatch{PowerMW: -50}, 1)
	require.NoError(t, err)
	assert.Equal(t, -10.0, res.PowerMW)
	assert.Equal(t, 1.0, res.SOCEnd)

	// full battery cannot charge
	res, err = b.ApplyDispatch(30, Dispatch{PowerMW: -10}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.PowerMW)
	assert.Equal(t, 0.0, res.PNL)

	res, err = b.ApplyDispatch(50, Dispatch{PowerMW: 10}, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.EnergyToGridMWh)
	assert.Equal(t, 0.5, res.SOCEnd)
	assert.Equal(t, 480.0, res.PNL)

	_, err = b.ApplyDispatch(50, Dispatch{PowerMW: 10}, 0)
	assert.Error(t, err)
}

func TestNewBattery_RejectsBadParams(t *testing.T) {
	_, err := NewBattery(BatteryParams{}, 0)
	assert.Error(t, err)

	p := DefaultBatteryConfig().Params()
	_, err = NewBattery(p, 1.5)
	assert.Error(t, err)
}

func TestPriceCurve_Intervals(t *testing.T) {
	loc := time.FixedZone("EPT", -5*3600)
	curve := PriceCurve{
		Zone:   "PSEG",
		Date:   time.Date(2024, 7, 15, 13, 30, 0, 0, loc),
		Prices: make([]float64, HoursPerDay),
	}
	curve.Prices[5] = 42

	iv := curve.Intervals()
	require.Len(t, iv, HoursPerDay)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, loc), iv[0].Start)
	assert.Equal(t, 5, iv[5].Hour)
	assert.Equal(t, 42.0, iv[5].Price)
	assert.Equal(t, "PSEG", iv[5].Zone)
	assert.Equal(t, 1.0, iv[5].DurationHours())
}
