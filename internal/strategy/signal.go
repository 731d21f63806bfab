package strategy

// Signal grades how attractive arbitrage is for a given profit per MWh.
type Signal string

const (
	SignalStrong   Signal = "STRONG"
	SignalModerate Signal = "MODERATE"
	SignalWeak     Signal = "WEAK"
)

// Default cut points in $/MWh. The upper bound of each band is inclusive:
// exactly 10 is MODERATE and exactly 0 is WEAK.
const (
	DefaultStrongAbove   = 10.0
	DefaultModerateAbove = 0.0
)

// Thresholds are the classifier cut points. A value must be strictly
// greater than a cut point to reach that band.
type Thresholds struct {
	Strong   float64 `json:"strong_above" yaml:"strong_above"`
	Moderate float64 `json:"moderate_above" yaml:"moderate_above"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Strong: DefaultStrongAbove, Moderate: DefaultModerateAbove}
}

// ClassifyArbitrageSignal maps profit per unit energy to a signal.
// NaN falls through to WEAK.
func ClassifyArbitrageSignal(profitPerUnitEnergy float64, th Thresholds) Signal {
	switch {
	case profitPerUnitEnergy > th.Strong:
		return SignalStrong
	case profitPerUnitEnergy > th.Moderate:
		return SignalModerate
	default:
		return SignalWeak
	}
}

// SpreadLabel returns the label used by the price-spread views.
func (s Signal) SpreadLabel() string {
	switch s {
	case SignalStrong:
		return "FAVORABLE"
	case SignalModerate:
		return "MARGINAL"
	default:
		return "UNFAVORABLE"
	}
}
