package domain

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func NewStatus(s string) (Status, error) {
	switch s {
	case string(StatusPending), string(StatusCompleted), string(StatusCancelled):
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidReminderStatus, s)
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
