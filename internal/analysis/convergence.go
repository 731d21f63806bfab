package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gridalpha/internal/model"
)

// Spread cut points in $/MWh for flagging an hour's real-time minus
// day-ahead price.
const (
	ScarcityThreshold   = 50.0
	OversupplyThreshold = -50.0
)

// dominantShare is the fraction of hours that must move the same way for the
// day to have a dominant virtual trading direction.
const dominantShare = 0.60

type ConvergenceEvent string

const (
	EventScarcity   ConvergenceEvent = "Scarcity"
	EventOversupply ConvergenceEvent = "Oversupply"
	EventNormal     ConvergenceEvent = "Normal"
)

type VirtualSignal string

const (
	SignalVirtualSeller VirtualSignal = "VIRTUAL_SELLER"
	SignalVirtualBuyer  VirtualSignal = "VIRTUAL_BUYER"
	SignalMixed         VirtualSignal = "MIXED"
)

var narratives = map[VirtualSignal]string{
	SignalVirtualSeller: "Wind and solar suppressed Real-Time prices below Day-Ahead forecasts; virtual sellers who sold RT and bought DA were profitable.",
	SignalVirtualBuyer:  "Demand exceeded forecasts and pushed Real-Time prices above Day-Ahead commitments; virtual buyers were profitable.",
	SignalMixed:         "Mixed convergence signals with no dominant virtual trading direction today.",
}

// Narrative is the one-line market story for a signal.
func (s VirtualSignal) Narrative() string {
	return narratives[s]
}

type ConvergenceHour struct {
	Hour    int              `json:"hour"`
	DAPrice float64          `json:"da_price"`
	RTPrice float64          `json:"rt_price"`
	Spread  float64          `json:"spread"`
	Event   ConvergenceEvent `json:"event_flag"`
}

type ConvergenceSummary struct {
	Zone            string            `json:"zone"`
	Hourly          []ConvergenceHour `json:"hourly"`
	AvgSpread       float64           `json:"avg_spread"`
	MaxSpread       float64           `json:"max_spread"`
	MinSpread       float64           `json:"min_spread"`
	ScarcityHours   int               `json:"scarcity_hours"`
	OversupplyHours int               `json:"oversupply_hours"`
	TotalHours      int               `json:"total_hours"`
	DominantSignal  VirtualSignal     `json:"dominant_signal"`
	Narrative       string            `json:"market_narrative"`
}

// ClassifySpread flags one hour's RT - DA spread.
func ClassifySpread(spread float64) ConvergenceEvent {
	switch {
	case spread > ScarcityThreshold:
		return EventScarcity
	case spread < OversupplyThreshold:
		return EventOversupply
	default:
		return EventNormal
	}
}

// DominantSignal reads the virtual trading direction off hourly spreads.
// RT below DA pays virtual sellers, RT above DA pays virtual buyers; a side
// needs more than 60% of the hours to dominate.
func DominantSignal(spreads []float64) VirtualSignal {
	n := len(spreads)
	if n == 0 {
		return SignalMixed
	}
	below, above := 0, 0
	for _, s := range spreads {
		switch {
		case s < 0:
			below++
		case s > 0:
			above++
		}
	}
	switch {
	case float64(below)/float64(n) > dominantShare:
		return SignalVirtualSeller
	case float64(above)/float64(n) > dominantShare:
		return SignalVirtualBuyer
	default:
		return SignalMixed
	}
}

// Convergence compares a day-ahead curve with the real-time prices of the
// same day. Only hours present in both are compared; rt may be shorter than
// 24 hours while the day is still being published.
func Convergence(da, rt model.PriceCurve) (ConvergenceSummary, error) {
	if err := da.Validate(); err != nil {
		return ConvergenceSummary{}, err
	}
	if len(rt.Prices) > model.HoursPerDay {
		return ConvergenceSummary{}, &model.InvalidInputError{
			Field:  "rt_prices",
			Reason: fmt.Sprintf("expected at most %d hourly prices, got %d", model.HoursPerDay, len(rt.Prices)),
		}
	}

	out := ConvergenceSummary{Zone: da.Zone}
	n := len(rt.Prices)
	if n == 0 {
		out.DominantSignal = SignalMixed
		out.Narrative = SignalMixed.Narrative()
		out.Hourly = []ConvergenceHour{}
		return out, nil
	}

	spreads := make([]float64, n)
	out.Hourly = make([]ConvergenceHour, n)
	for h := 0; h < n; h++ {
		spread := model.Round2(rt.Prices[h] - da.Prices[h])
		spreads[h] = spread
		ev := ClassifySpread(spread)
		switch ev {
		case EventScarcity:
			out.ScarcityHours++
		case EventOversupply:
			out.OversupplyHours++
		}
		out.Hourly[h] = ConvergenceHour{
			Hour:    h,
			DAPrice: da.Prices[h],
			RTPrice: rt.Prices[h],
			Spread:  spread,
			Event:   ev,
		}
	}

	out.TotalHours = n
	out.AvgSpread = model.Round2(stat.Mean(spreads, nil))
	out.MaxSpread = floats.Max(spreads)
	out.MinSpread = floats.Min(spreads)
	out.DominantSignal = DominantSignal(spreads)
	out.Narrative = out.DominantSignal.Narrative()
	return out, nil
}
