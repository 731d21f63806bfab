package strategy

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridalpha/internal/model"
)

// duckCurve is a typical day: cheap overnight, a solar dip at noon and an
// evening peak.
var duckCurve = []float64{
	28, 25, 22, 21, 23, 30, 42, 55, // 0-7
	48, 40, 33, 27, 24, 26, 31, 38, // 8-15
	52, 74, 96, 88, 70, 51, 40, 33, // 16-23
}

func testConfig() model.BatteryConfig {
	return model.BatteryConfig{BatterySize: 100, Duration: 4, Efficiency: 0.87, CyclingCost: 20}
}

func hoursWith(schedule []model.BatteryAction, action model.Action) []int {
	var out []int
	for _, a := range schedule {
		if a.Action == action {
			out = append(out, a.Hour)
		}
	}
	return out
}

func TestComputeSchedule_Completeness(t *testing.T) {
	schedule, err := ComputeSchedule(duckCurve, testConfig())
	require.NoError(t, err)
	require.Len(t, schedule, 24)

	seen := map[int]bool{}
	for i, a := range schedule {
		assert.Equal(t, i, a.Hour, "schedule must be ordered by hour")
		assert.False(t, seen[a.Hour], "duplicate hour %d", a.Hour)
		seen[a.Hour] = true
		assert.Equal(t, duckCurve[i], a.Price)
	}
}

func TestComputeSchedule_PowerSignMatchesAction(t *testing.T) {
	cfg := testConfig()
	schedule, err := ComputeSchedule(duckCurve, cfg)
	require.NoError(t, err)

	for _, a := range schedule {
		switch a.Action {
		case model.ActionCharge:
			assert.Equal(t, -cfg.BatterySize, a.Power)
		case model.ActionDischarge:
			assert.Equal(t, cfg.BatterySize, a.Power)
		case model.ActionIdle:
			assert.Equal(t, 0.0, a.Power)
		default:
			t.Fatalf("unexpected action %q at hour %d", a.Action, a.Hour)
		}
	}
}

func TestComputeSchedule_DuckCurveSelection(t *testing.T) {
	schedule, err := ComputeSchedule(duckCurve, testConfig())
	require.NoError(t, err)

	// Cheapest four hours overall: 3 (21), 2 (22), 4 (23), 12 (24).
	assert.Equal(t, []int{2, 3, 4, 12}, hoursWith(schedule, model.ActionCharge))
	// Dearest four after hour 12: 18 (96), 19 (88), 17 (74), 20 (70).
	assert.Equal(t, []int{17, 18, 19, 20}, hoursWith(schedule, model.ActionDischarge))
}

func TestComputeSchedule_ChargePrecedesDischarge(t *testing.T) {
	curves := [][]float64{
		duckCurve,
		// cheapest hours at the very end of the day
		{50, 52, 54, 56, 58, 60, 62, 64, 66, 68, 70, 72, 74, 76, 78, 80, 40, 30, 20, 10, 9, 8, 7, 6},
		// monotonically falling prices: nothing to gain, but ordering must hold
		{99, 95, 90, 85, 80, 75, 70, 65, 60, 55, 50, 45, 40, 35, 30, 25, 20, 15, 10, 5, 4, 3, 2, 1},
	}
	for _, duration := range []float64{1, 2, 4, 8, 12, 20} {
		for _, prices := range curves {
			cfg := testConfig()
			cfg.Duration = duration
			schedule, err := ComputeSchedule(prices, cfg)
			require.NoError(t, err)

			charge := hoursWith(schedule, model.ActionCharge)
			discharge := hoursWith(schedule, model.ActionDischarge)
			k := LegHours(duration)
			require.Len(t, charge, k)
			require.Len(t, discharge, k)
			assert.Less(t, charge[len(charge)-1], discharge[0],
				"duration %v: last charge hour must precede first discharge hour", duration)
		}
	}
}

func TestComputeSchedule_LateCheapHoursFallBackToEarlierWindow(t *testing.T) {
	prices := []float64{50, 52, 54, 56, 58, 60, 62, 64, 66, 68, 70, 72, 74, 76, 78, 80, 40, 30, 20, 10, 9, 8, 7, 6}
	cfg := testConfig()
	cfg.Duration = 2

	schedule, err := ComputeSchedule(prices, cfg)
	require.NoError(t, err)

	// Hours 22 and 23 are cheapest but leave no room to discharge; the search
	// is limited to hours 0..21, where 20 (9) and 21 (8) are cheapest.
	assert.Equal(t, []int{20, 21}, hoursWith(schedule, model.ActionCharge))
	assert.Equal(t, []int{22, 23}, hoursWith(schedule, model.ActionDischarge))
}

func TestComputeSchedule_TiesPreferEarlierHours(t *testing.T) {
	prices := make([]float64, 24)
	for h := range prices {
		prices[h] = 30
	}
	prices[10], prices[11], prices[12] = 80, 80, 80
	cfg := testConfig()
	cfg.Duration = 2

	schedule, err := ComputeSchedule(prices, cfg)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, hoursWith(schedule, model.ActionCharge))
	assert.Equal(t, []int{10, 11}, hoursWith(schedule, model.ActionDischarge))
}

func TestComputeSchedule_Deterministic(t *testing.T) {
	a, err := ComputeSchedule(duckCurve, testConfig())
	require.NoError(t, err)
	b, err := ComputeSchedule(duckCurve, testConfig())
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, ja, jb)
}

func TestComputeSchedule_DoesNotMutateInput(t *testing.T) {
	prices := append([]float64(nil), duckCurve...)
	_, err := ComputeSchedule(prices, testConfig())
	require.NoError(t, err)
	assert.Equal(t, duckCurve, prices)
}

func TestComputeSchedule_FlatCurveStaysIdle(t *testing.T) {
	prices := make([]float64, 24)
	for h := range prices {
		prices[h] = 42.5
	}
	schedule, err := ComputeSchedule(prices, testConfig())
	require.NoError(t, err)

	for _, a := range schedule {
		assert.Equal(t, model.ActionIdle, a.Action)
		assert.Equal(t, 0.0, a.Power)
		assert.Equal(t, 42.5, a.Price)
	}
}

func TestComputeSchedule_SubHourDurationIsIdle(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 0.5

	schedule, err := ComputeSchedule(duckCurve, cfg)
	require.NoError(t, err)
	assert.Empty(t, hoursWith(schedule, model.ActionCharge))
	assert.Empty(t, hoursWith(schedule, model.ActionDischarge))
}

func TestComputeSchedule_InvalidInput(t *testing.T) {
	nanCurve := append([]float64(nil), duckCurve...)
	nanCurve[5] = math.NaN()
	infCurve := append([]float64(nil), duckCurve...)
	infCurve[9] = math.Inf(1)

	badEff := testConfig()
	badEff.Efficiency = 0
	overEff := testConfig()
	overEff.Efficiency = 1.2
	badSize := testConfig()
	badSize.BatterySize = -1
	badCost := testConfig()
	badCost.CyclingCost = -5

	tests := []struct {
		name   string
		prices []float64
		cfg    model.BatteryConfig
		field  string
	}{
		{"too few prices", duckCurve[:23], testConfig(), "prices"},
		{"too many prices", append(append([]float64(nil), duckCurve...), 1), testConfig(), "prices"},
		{"nil prices", nil, testConfig(), "prices"},
		{"NaN price", nanCurve, testConfig(), "prices"},
		{"infinite price", infCurve, testConfig(), "prices"},
		{"zero efficiency", duckCurve, badEff, "efficiency"},
		{"efficiency above one", duckCurve, overEff, "efficiency"},
		{"negative size", duckCurve, badSize, "battery_size"},
		{"negative cycling cost", duckCurve, badCost, "cycling_cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := ComputeSchedule(tt.prices, tt.cfg)
			assert.Nil(t, schedule)

			var inputErr *model.InvalidInputError
			require.True(t, errors.As(err, &inputErr), "expected InvalidInputError, got %v", err)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestLegHours(t *testing.T) {
	assert.Equal(t, 0, LegHours(0.5))
	assert.Equal(t, 1, LegHours(1))
	assert.Equal(t, 4, LegHours(4.9))
	assert.Equal(t, 12, LegHours(12))
	assert.Equal(t, 12, LegHours(30))
}
