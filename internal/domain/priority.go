package domain

import "fmt"

// Priority and category classify reminders for presentation only; they carry
// no scheduling weight.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func NewPriority(p string) (Priority, error) {
	if p == "" {
		return PriorityNormal, nil
	}

	switch p {
	case string(PriorityLow), string(PriorityNormal), string(PriorityHigh), string(PriorityUrgent):
		return Priority(p), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, p)
	}
}
