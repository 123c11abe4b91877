package domain

import "context"

type AlarmRepository interface {
	Save(ctx context.Context, alarm *Alarm) error
	FindByID(ctx context.Context, id AlarmID) (*Alarm, error)
	ListEnabled(ctx context.Context) ([]*Alarm, error)
	List(ctx context.Context) ([]*Alarm, error)
	Update(ctx context.Context, alarm *Alarm) error
	Delete(ctx context.Context, id AlarmID) error
}
