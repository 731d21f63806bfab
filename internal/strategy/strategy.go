package strategy

import "gridalpha/internal/model"

type Context struct {
	Index    int
	Interval model.HourlyInterval
	Battery  *model.Battery
}

// Strategy decides the dispatch for each interval of a replay.
type Strategy interface {
	Name() string
	Decide(ctx Context) model.Dispatch
}
