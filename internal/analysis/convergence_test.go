package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridalpha/internal/model"
)

func shifted(c model.PriceCurve, by float64, hours int) model.PriceCurve {
	out := model.PriceCurve{Zone: c.Zone, Date: c.Date, Prices: make([]float64, hours)}
	for h := range out.Prices {
		out.Prices[h] = c.Prices[h] + by
	}
	return out
}

func TestClassifySpread(t *testing.T) {
	assert.Equal(t, EventScarcity, ClassifySpread(50.01))
	assert.Equal(t, EventNormal, ClassifySpread(50))
	assert.Equal(t, EventNormal, ClassifySpread(0))
	assert.Equal(t, EventNormal, ClassifySpread(-50))
	assert.Equal(t, EventOversupply, ClassifySpread(-50.01))
}

func TestDominantSignal(t *testing.T) {
	assert.Equal(t, SignalVirtualSeller, DominantSignal([]float64{-1, -2, -3, -4, 5}))
	assert.Equal(t, SignalVirtualBuyer, DominantSignal([]float64{1, 2, 3, 4, -5}))
	// exactly 60% is not enough
	assert.Equal(t, SignalMixed, DominantSignal([]float64{-1, -1, -1, 1, 1}))
	// flat hours count for neither side
	assert.Equal(t, SignalMixed, DominantSignal([]float64{0, 0, 0, -1, -1}))
	assert.Equal(t, SignalMixed, DominantSignal(nil))
}

func TestConvergence(t *testing.T) {
	da := peakCurve("PSEG", 30, 10, 50)
	rt := shifted(da, -5, model.HoursPerDay)
	rt.Prices[18] = 120 // +70 over DA
	rt.Prices[3] = -45  // -55 under DA

	s, err := Convergence(da, rt)
	require.NoError(t, err)

	assert.Equal(t, "PSEG", s.Zone)
	assert.Equal(t, 24, s.TotalHours)
	require.Len(t, s.Hourly, 24)
	assert.Equal(t, ConvergenceHour{Hour: 18, DAPrice: 50, RTPrice: 120, Spread: 70, Event: EventScarcity}, s.Hourly[18])
	assert.Equal(t, EventOversupply, s.Hourly[3].Event)
	assert.Equal(t, EventNormal, s.Hourly[0].Event)
	assert.Equal(t, 1, s.ScarcityHours)
	assert.Equal(t, 1, s.OversupplyHours)
	assert.Equal(t, 70.0, s.MaxSpread)
	assert.Equal(t, -55.0, s.MinSpread)
	// (22*-5 + 70 - 55) / 24
	assert.Equal(t, -3.96, s.AvgSpread)
	assert.Equal(t, SignalVirtualSeller, s.DominantSignal)
	assert.Equal(t, SignalVirtualSeller.Narrative(), s.Narrative)
}

func TestConvergence_PartialDay(t *testing.T) {
	da := peakCurve("BGE", 30, 10, 50)
	s, err := Convergence(da, shifted(da, 10, 10))
	require.NoError(t, err)

	assert.Equal(t, 10, s.TotalHours)
	assert.Len(t, s.Hourly, 10)
	assert.Equal(t, 10.0, s.AvgSpread)
	assert.Equal(t, SignalVirtualBuyer, s.DominantSignal)
	assert.Contains(t, s.Narrative, "virtual buyers")
}

func TestConvergence_NoRealTime(t *testing.T) {
	s, err := Convergence(peakCurve("BGE", 30, 10, 50), model.PriceCurve{})
	require.NoError(t, err)
	assert.Zero(t, s.TotalHours)
	assert.Empty(t, s.Hourly)
	assert.Equal(t, SignalMixed, s.DominantSignal)
	assert.NotEmpty(t, s.Narrative)
}

func TestConvergence_InvalidInput(t *testing.T) {
	da := peakCurve("BGE", 30, 10, 50)

	_, err := Convergence(model.PriceCurve{Prices: da.Prices[:5]}, da)
	assert.Error(t, err)

	long := model.PriceCurve{Prices: append(append([]float64(nil), da.Prices...), 1)}
	_, err = Convergence(da, long)
	var inputErr *model.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "rt_prices", inputErr.Field)
}
