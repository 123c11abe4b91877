package app

import (
	"context"
)

type ReminderUseCase interface {
	CreateTimeReminder(ctx context.Context, input CreateTimeReminderInput) (ReminderOutput, error)
	CreateLocationReminder(ctx context.Context, input CreateLocationReminderInput) (ReminderOutput, error)
	ListReminders(ctx context.Context) (RemindersOutput, error)
	DeleteReminder(ctx context.Context, input DeleteReminderInput) error
	SnoozeReminder(ctx context.Context, input SnoozeReminderInput) error
	SnoozeUntilLeave(ctx context.Context, input SnoozeUntilLeaveInput) error
}
