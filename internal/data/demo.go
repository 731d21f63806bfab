package data

import (
	"hash/fnv"
	"time"

	"gridalpha/internal/model"
)

// demoShape is a summer duck curve in $/MWh: overnight trough, solar dip
// around noon, evening ramp.
var demoShape = [model.HoursPerDay]float64{
	24, 22, 20, 19, 20, 24, 32, 41,
	38, 33, 29, 26, 24, 25, 28, 34,
	45, 62, 78, 72, 58, 44, 35, 28,
}

// DemoCurve returns a synthetic but stable curve for zone and date, used
// when no real data is available. The same inputs always give the same
// prices.
func DemoCurve(zone string, date time.Time) model.PriceCurve {
	day := DayOf(date)
	h := fnv.New64a()
	h.Write([]byte(zone))
	h.Write([]byte(day.Format(feedDateLayout)))
	seed := h.Sum64()

	// level in [0.85, 1.15), peak sharpness in [0.9, 1.3)
	level := 0.85 + float64(seed%300)/1000
	peak := 0.9 + float64((seed/300)%400)/1000

	prices := make([]float64, model.HoursPerDay)
	for hr, base := range demoShape {
		p := base * level
		if base > 40 {
			p = 40*level + (base-40)*level*peak
		}
		// small deterministic ripple per hour
		p += float64(int((seed>>uint(hr%32))&7)-3) * 0.25
		prices[hr] = model.Round2(p)
	}
	return model.PriceCurve{
		Zone:   zone,
		Date:   day,
		Prices: prices,
		Source: model.SourceDemo,
	}
}

// DemoRealTimeCurve deviates from DemoCurve the way real-time prices drift
// from the day-ahead forecast: softer midday on solar output and a sharper
// evening ramp. Like DemoCurve it is deterministic.
func DemoRealTimeCurve(zone string, date time.Time) model.PriceCurve {
	c := DemoCurve(zone, date)
	h := fnv.New64a()
	h.Write([]byte("rt|" + zone))
	h.Write([]byte(c.Date.Format(feedDateLayout)))
	seed := h.Sum64()

	// evening ramp surprise in [0, 70)
	surprise := float64(seed % 70)
	for hr, p := range c.Prices {
		switch {
		case hr >= 10 && hr <= 15:
			p *= 0.8
		case hr >= 17 && hr <= 20:
			p += surprise * (1 - float64(hr-17)/4)
		}
		p += float64(int((seed>>uint((hr+7)%32))&7)-3) * 0.5
		c.Prices[hr] = model.Round2(p)
	}
	return c
}
