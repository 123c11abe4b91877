package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

type RepeatDaysJSONB []int

func (d *RepeatDaysJSONB) Scan(value interface{}) error {
	if value == nil {
		*d = nil

		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan RepeatDaysJSONB: expected []byte")
	}

	return json.Unmarshal(bytes, d)
}

func (d RepeatDaysJSONB) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal([]int{})
	}

	return json.Marshal(d)
}

type AlarmModel struct {
	ID                    string          `gorm:"column:id;type:uuid;primaryKey"`
	Label                 string          `gorm:"column:label;type:varchar(255)"`
	Hour                  int             `gorm:"column:hour;type:integer;not null"`
	Minute                int             `gorm:"column:minute;type:integer;not null"`
	Enabled               bool            `gorm:"column:enabled;type:boolean;not null;default:true;index:idx_alarms_enabled"`
	RepeatDays            RepeatDaysJSONB `gorm:"column:repeat_days;type:jsonb;not null"`
	SoundRef              string          `gorm:"column:sound_ref;type:varchar(255)"`
	Vibrate               bool            `gorm:"column:vibrate;type:boolean;not null;default:false"`
	SnoozeCount           int             `gorm:"column:snooze_count;type:integer;not null;default:0"`
	SnoozeDurationMinutes int             `gorm:"column:snooze_duration_minutes;type:integer;not null"`
	LastTriggeredAt       *time.Time      `gorm:"column:last_triggered_at;type:timestamptz"`
	NextTriggerAt         *time.Time      `gorm:"column:next_trigger_at;type:timestamptz;index:idx_alarms_next_trigger_at"`
	CreatedAt             time.Time       `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (AlarmModel) TableName() string {
	return "alarms"
}

func (m *AlarmModel) ToEntity() (*domain.Alarm, error) {
	alarmID, err := domain.AlarmIDFromString(m.ID)
	if err != nil {
		return nil, err
	}

	return domain.ReconstituteAlarm(
		alarmID,
		m.Label,
		m.Hour,
		m.Minute,
		m.Enabled,
		intsToWeekdays(m.RepeatDays),
		m.SoundRef,
		m.Vibrate,
		m.SnoozeCount,
		m.SnoozeDurationMinutes,
		m.LastTriggeredAt,
		m.NextTriggerAt,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func FromAlarmEntity(e *domain.Alarm) *AlarmModel {
	return &AlarmModel{
		ID:                    e.ID().String(),
		Label:                 e.Label(),
		Hour:                  e.Hour(),
		Minute:                e.Minute(),
		Enabled:               e.IsEnabled(),
		RepeatDays:            RepeatDaysJSONB(weekdaysToInts(e.RepeatDays())),
		SoundRef:              e.SoundRef(),
		Vibrate:               e.Vibrate(),
		SnoozeCount:           e.SnoozeCount(),
		SnoozeDurationMinutes: e.SnoozeDurationMinutes(),
		LastTriggeredAt:       e.LastTriggeredAt(),
		NextTriggerAt:         e.NextTriggerAt(),
		CreatedAt:             e.CreatedAt(),
		UpdatedAt:             e.UpdatedAt(),
	}
}
