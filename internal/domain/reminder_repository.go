package domain

import "context"

type ReminderRepository interface {
	Save(ctx context.Context, reminder *Reminder) error
	FindByID(ctx context.Context, id ReminderID) (*Reminder, error)
	FindBySpatialHandle(ctx context.Context, handle string) (*Reminder, error)
	// ActiveTimeBased returns pending time-based reminders ordered by
	// scheduled time.
	ActiveTimeBased(ctx context.Context) ([]*Reminder, error)
	// ActiveLocationBased returns pending location-based reminders.
	ActiveLocationBased(ctx context.Context) ([]*Reminder, error)
	List(ctx context.Context) ([]*Reminder, error)
	Update(ctx context.Context, reminder *Reminder) error
	Delete(ctx context.Context, id ReminderID) error
	WithTx(ctx context.Context, fn func(repo ReminderRepository) error) error
}
