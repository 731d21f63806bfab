package model

// Action is the operating mode of the battery for one hour.
// Keep these values stable; they appear in API responses and CSV output.
type Action string

const (
	ActionCharge    Action = "charge"
	ActionIdle      Action = "idle"
	ActionDischarge Action = "discharge"
)

// ActionFromPower maps a signed power setpoint to an action.
// Convention: negative = charge from grid, positive = discharge to grid.
func ActionFromPower(power float64) Action {
	switch {
	case power < 0:
		return ActionCharge
	case power > 0:
		return ActionDischarge
	default:
		return ActionIdle
	}
}

func (a Action) Valid() bool {
	switch a {
	case ActionCharge, ActionIdle, ActionDischarge:
		return true
	}
	return false
}
