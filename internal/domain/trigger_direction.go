package domain

import "fmt"

type TriggerDirection string

const (
	DirectionEnter TriggerDirection = "enter"
	DirectionExit  TriggerDirection = "exit"
	DirectionBoth  TriggerDirection = "both"
)

func NewTriggerDirection(d string) (TriggerDirection, error) {
	switch d {
	case string(DirectionEnter), string(DirectionExit), string(DirectionBoth):
		return TriggerDirection(d), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTriggerDirection, d)
	}
}

// Transition is a region event as delivered by the spatial trigger service.
type Transition string

const (
	TransitionEnter Transition = "enter"
	TransitionExit  Transition = "exit"
	TransitionDwell Transition = "dwell"
)

func NewTransition(t string) (Transition, error) {
	switch t {
	case string(TransitionEnter), string(TransitionExit), string(TransitionDwell):
		return Transition(t), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTriggerDirection, t)
	}
}

// Matches reports whether a delivered transition satisfies the configured
// direction. Dwell counts as continued presence, so it only satisfies
// enter-facing configurations.
func (d TriggerDirection) Matches(t Transition) bool {
	switch t {
	case TransitionEnter, TransitionDwell:
		return d == DirectionEnter || d == DirectionBoth
	case TransitionExit:
		return d == DirectionExit || d == DirectionBoth
	default:
		return false
	}
}
