package strategy

import (
	"fmt"

	"gridalpha/internal/model"
)

// ScheduleStrategy replays a computed day schedule. Each interval gets the
// power setpoint of the schedule entry for its hour-of-day; hours outside the
// schedule stay idle.
type ScheduleStrategy struct {
	byHour map[int]model.BatteryAction
}

func NewScheduleStrategy(schedule []model.BatteryAction) (*ScheduleStrategy, error) {
	if err := model.ValidateSchedule(schedule); err != nil {
		return nil, fmt.Errorf("replay schedule: %w", err)
	}
	byHour := make(map[int]model.BatteryAction, len(schedule))
	for _, a := range schedule {
		byHour[a.Hour] = a
	}
	return &ScheduleStrategy{byHour: byHour}, nil
}

func (s *ScheduleStrategy) Name() string { return "schedule" }

func (s *ScheduleStrategy) Decide(ctx Context) model.Dispatch {
	a, ok := s.byHour[ctx.Interval.Hour]
	if !ok {
		return model.Dispatch{PowerMW: 0}
	}
	return model.Dispatch{PowerMW: a.Power}
}
