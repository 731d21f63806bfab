package strategy

import (
	"math"
	"sort"

	"gridalpha/internal/model"
)

// MaxLegHours caps the number of charge (and discharge) hours so that both
// legs fit in one day.
const MaxLegHours = model.HoursPerDay / 2

// LegHours is the number of charge hours, and equally discharge hours, a
// battery of the given duration gets in one day: whole hours of energy at
// rated power, capped at MaxLegHours.
func LegHours(duration float64) int {
	k := int(math.Floor(duration))
	if k < 0 {
		return 0
	}
	if k > MaxLegHours {
		return MaxLegHours
	}
	return k
}

// ComputeSchedule partitions a 24-hour price curve into charge, discharge
// and idle hours.
//
// The policy is symmetric and chronological:
//   - k = LegHours(cfg.Duration) hours are charged and k hours discharged.
//   - Charge hours are the k cheapest hours in [0, 24-k), so at least k
//     hours always remain after the last charge hour.
//   - Discharge hours are the k most expensive hours strictly after the
//     last charge hour.
//
// A flat curve has no spread to capture and stays idle all day. Equal
// prices rank the earlier hour first. The result is ordered by hour
// and depends only on its inputs.
func ComputeSchedule(prices []float64, cfg model.BatteryConfig) ([]model.BatteryAction, error) {
	if err := model.ValidatePrices(prices); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	schedule := make([]model.BatteryAction, model.HoursPerDay)
	for h, p := range prices {
		schedule[h] = model.BatteryAction{Hour: h, Action: model.ActionIdle, Price: p}
	}

	k := LegHours(cfg.Duration)
	if k == 0 || flat(prices) {
		return schedule, nil
	}

	charge := cheapest(prices, 0, model.HoursPerDay-k, k)
	lastCharge := charge[len(charge)-1]
	discharge := dearest(prices, lastCharge+1, model.HoursPerDay, k)

	for _, h := range charge {
		schedule[h].Action = model.ActionCharge
		schedule[h].Power = -cfg.BatterySize
	}
	for _, h := range discharge {
		schedule[h].Action = model.ActionDischarge
		schedule[h].Power = cfg.BatterySize
	}
	return schedule, nil
}

func flat(prices []float64) bool {
	for _, p := range prices[1:] {
		if p != prices[0] {
			return false
		}
	}
	return true
}

// cheapest returns the n lowest-priced hours in [from, to), ascending by hour.
func cheapest(prices []float64, from, to, n int) []int {
	return pick(prices, from, to, n, func(a, b float64) bool { return a < b })
}

// dearest returns the n highest-priced hours in [from, to), ascending by hour.
func dearest(prices []float64, from, to, n int) []int {
	return pick(prices, from, to, n, func(a, b float64) bool { return a > b })
}

func pick(prices []float64, from, to, n int, better func(a, b float64) bool) []int {
	hours := make([]int, 0, to-from)
	for h := from; h < to; h++ {
		hours = append(hours, h)
	}
	// hours starts in ascending order, so a stable sort keeps earlier hours
	// ahead on ties.
	sort.SliceStable(hours, func(i, j int) bool {
		return better(prices[hours[i]], prices[hours[j]])
	})
	if n > len(hours) {
		n = len(hours)
	}
	out := hours[:n]
	sort.Ints(out)
	return out
}
