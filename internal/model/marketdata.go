package model

import (
	"errors"
	"time"
)

// HoursPerDay is the length of every price curve and schedule.
const HoursPerDay = 24

// Source tells the dashboard where a price curve came from.
type Source string

const (
	SourceLive   Source = "LIVE"
	SourceCached Source = "CACHED"
	SourceStored Source = "STORED"
	SourceDemo   Source = "DEMO"
	SourceInput  Source = "INPUT"
)

// ErrCurveNotFound is returned by curve stores on a miss.
var ErrCurveNotFound = errors.New("price curve not found")

// PriceCurve is one day of hourly prices ($/MWh) for one zone.
// Prices[h] is the price for hour-of-day h.
type PriceCurve struct {
	Zone   string    `json:"zone"`
	Date   time.Time `json:"date"`
	Prices []float64 `json:"prices"`
	Source Source    `json:"source,omitempty"`
}

// ValidatePrices checks that prices is a complete, finite day.
func ValidatePrices(prices []float64) error {
	if len(prices) != HoursPerDay {
		return invalid("prices", "must contain exactly %d hourly values, got %d", HoursPerDay, len(prices))
	}
	for h, p := range prices {
		if !finite(p) {
			return invalid("prices", "hour %d is not a finite number (%v)", h, p)
		}
	}
	return nil
}

func (c PriceCurve) Validate() error {
	return ValidatePrices(c.Prices)
}

// HourlyInterval is one hour of a price curve, anchored to wall-clock time.
type HourlyInterval struct {
	Hour  int
	Start time.Time
	End   time.Time
	Zone  string
	Price float64
}

func (i HourlyInterval) DurationHours() float64 {
	return i.End.Sub(i.Start).Hours()
}

// Intervals expands the curve into hourly intervals starting at local
// midnight of Date.
func (c PriceCurve) Intervals() []HourlyInterval {
	day := time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), 0, 0, 0, 0, c.Date.Location())
	out := make([]HourlyInterval, len(c.Prices))
	for h, p := range c.Prices {
		start := day.Add(time.Duration(h) * time.Hour)
		out[h] = HourlyInterval{
			Hour:  h,
			Start: start,
			End:   start.Add(time.Hour),
			Zone:  c.Zone,
			Price: p,
		}
	}
	return out
}
