package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

type TimeConstraintJSON struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	DaysOfWeek []int  `json:"days_of_week,omitempty"`
}

type LocationJSONB struct {
	Latitude         float64             `json:"latitude"`
	Longitude        float64             `json:"longitude"`
	RadiusMeters     float64             `json:"radius_meters"`
	PlaceName        string              `json:"place_name,omitempty"`
	PlaceCategory    string              `json:"place_category,omitempty"`
	TriggerDirection string              `json:"trigger_direction"`
	RecurrencePolicy string              `json:"recurrence_policy"`
	TimeConstraint   *TimeConstraintJSON `json:"time_constraint,omitempty"`
}

func (l *LocationJSONB) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan LocationJSONB: expected []byte")
	}

	return json.Unmarshal(bytes, l)
}

func (l LocationJSONB) Value() (driver.Value, error) {
	return json.Marshal(l)
}

type RecurrenceRuleJSONB struct {
	Type           string     `json:"type"`
	Interval       int        `json:"interval"`
	DaysOfWeek     []int      `json:"days_of_week,omitempty"`
	DayOfMonth     int        `json:"day_of_month,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	MaxOccurrences int        `json:"max_occurrences,omitempty"`
}

func (r *RecurrenceRuleJSONB) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan RecurrenceRuleJSONB: expected []byte")
	}

	return json.Unmarshal(bytes, r)
}

func (r RecurrenceRuleJSONB) Value() (driver.Value, error) {
	return json.Marshal(r)
}

type ReminderModel struct {
	ID              string               `gorm:"column:id;type:uuid;primaryKey"`
	Kind            string               `gorm:"column:kind;type:varchar(32);not null;index:idx_reminders_kind"`
	Message         string               `gorm:"column:message;type:text;not null"`
	ScheduledTime   *time.Time           `gorm:"column:scheduled_time;type:timestamptz;index:idx_reminders_scheduled_time"`
	Location        *LocationJSONB       `gorm:"column:location;type:jsonb"`
	Status          string               `gorm:"column:status;type:varchar(32);not null;index:idx_reminders_status"`
	RecurrenceRule  *RecurrenceRuleJSONB `gorm:"column:recurrence_rule;type:jsonb"`
	Priority        string               `gorm:"column:priority;type:varchar(32);not null"`
	Category        string               `gorm:"column:category;type:varchar(255)"`
	SpatialHandle   *string              `gorm:"column:spatial_handle;type:varchar(255);index:idx_reminders_spatial_handle"`
	SnoozedUntil    *time.Time           `gorm:"column:snoozed_until;type:timestamptz"`
	SnoozeCount     int                  `gorm:"column:snooze_count;type:integer;not null;default:0"`
	LastTriggeredAt *time.Time           `gorm:"column:last_triggered_at;type:timestamptz"`
	TriggerCount    int                  `gorm:"column:trigger_count;type:integer;not null;default:0"`
	CreatedAt       time.Time            `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (ReminderModel) TableName() string {
	return "reminders"
}

func (m *ReminderModel) ToEntity() (*domain.Reminder, error) {
	reminderID, err := domain.ReminderIDFromString(m.ID)
	if err != nil {
		return nil, err
	}

	kind, err := domain.NewKind(m.Kind)
	if err != nil {
		return nil, err
	}

	status, err := domain.NewStatus(m.Status)
	if err != nil {
		return nil, err
	}

	priority, err := domain.NewPriority(m.Priority)
	if err != nil {
		return nil, err
	}

	var location *domain.LocationTrigger

	if m.Location != nil {
		loc, err := m.Location.toDomain()
		if err != nil {
			return nil, err
		}

		location = &loc
	}

	var rule *domain.RecurrenceRule

	if m.RecurrenceRule != nil {
		r, err := m.RecurrenceRule.toDomain()
		if err != nil {
			return nil, err
		}

		rule = &r
	}

	spatialHandle := ""
	if m.SpatialHandle != nil {
		spatialHandle = *m.SpatialHandle
	}

	return domain.ReconstituteReminder(
		reminderID,
		kind,
		m.Message,
		m.ScheduledTime,
		location,
		status,
		rule,
		priority,
		m.Category,
		spatialHandle,
		m.SnoozedUntil,
		m.SnoozeCount,
		m.LastTriggeredAt,
		m.TriggerCount,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func (l *LocationJSONB) toDomain() (domain.LocationTrigger, error) {
	direction, err := domain.NewTriggerDirection(l.TriggerDirection)
	if err != nil {
		return domain.LocationTrigger{}, err
	}

	policy, err := domain.NewRecurrencePolicy(l.RecurrencePolicy)
	if err != nil {
		return domain.LocationTrigger{}, err
	}

	var constraint *domain.TimeConstraint

	if l.TimeConstraint != nil {
		tc, err := domain.NewTimeConstraint(
			l.TimeConstraint.Start,
			l.TimeConstraint.End,
			intsToWeekdays(l.TimeConstraint.DaysOfWeek),
		)
		if err != nil {
			return domain.LocationTrigger{}, err
		}

		constraint = &tc
	}

	return domain.NewLocationTrigger(
		l.Latitude,
		l.Longitude,
		l.RadiusMeters,
		l.PlaceName,
		l.PlaceCategory,
		direction,
		policy,
		constraint,
	)
}

func (r *RecurrenceRuleJSONB) toDomain() (domain.RecurrenceRule, error) {
	ruleType, err := domain.NewRecurrenceType(r.Type)
	if err != nil {
		return domain.RecurrenceRule{}, err
	}

	return domain.NewRecurrenceRule(
		ruleType,
		r.Interval,
		intsToWeekdays(r.DaysOfWeek),
		r.DayOfMonth,
		r.EndDate,
		r.MaxOccurrences,
	)
}

func FromReminderEntity(e *domain.Reminder) *ReminderModel {
	var location *LocationJSONB

	if loc := e.Location(); loc != nil {
		var constraint *TimeConstraintJSON

		if tc := loc.TimeConstraint(); tc != nil {
			constraint = &TimeConstraintJSON{
				Start:      tc.Start(),
				End:        tc.End(),
				DaysOfWeek: weekdaysToInts(tc.DaysOfWeek()),
			}
		}

		location = &LocationJSONB{
			Latitude:         loc.Latitude(),
			Longitude:        loc.Longitude(),
			RadiusMeters:     loc.RadiusMeters(),
			PlaceName:        loc.PlaceName(),
			PlaceCategory:    loc.PlaceCategory(),
			TriggerDirection: string(loc.Direction()),
			RecurrencePolicy: string(loc.Policy()),
			TimeConstraint:   constraint,
		}
	}

	var rule *RecurrenceRuleJSONB

	if r := e.RecurrenceRule(); r != nil {
		rule = &RecurrenceRuleJSONB{
			Type:           string(r.Type()),
			Interval:       r.Interval(),
			DaysOfWeek:     weekdaysToInts(r.DaysOfWeek()),
			DayOfMonth:     r.DayOfMonth(),
			EndDate:        r.EndDate(),
			MaxOccurrences: r.MaxOccurrences(),
		}
	}

	var spatialHandle *string

	if h := e.SpatialHandle(); h != "" {
		spatialHandle = &h
	}

	return &ReminderModel{
		ID:              e.ID().String(),
		Kind:            string(e.Kind()),
		Message:         e.Message(),
		ScheduledTime:   e.ScheduledTime(),
		Location:        location,
		Status:          string(e.Status()),
		RecurrenceRule:  rule,
		Priority:        string(e.Priority()),
		Category:        e.Category(),
		SpatialHandle:   spatialHandle,
		SnoozedUntil:    e.SnoozedUntil(),
		SnoozeCount:     e.SnoozeCount(),
		LastTriggeredAt: e.LastTriggeredAt(),
		TriggerCount:    e.TriggerCount(),
		CreatedAt:       e.CreatedAt(),
		UpdatedAt:       e.UpdatedAt(),
	}
}

func intsToWeekdays(days []int) []time.Weekday {
	if len(days) == 0 {
		return nil
	}

	weekdays := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		weekdays = append(weekdays, time.Weekday(d%7))
	}

	return weekdays
}

func weekdaysToInts(days []time.Weekday) []int {
	if len(days) == 0 {
		return nil
	}

	ints := make([]int, 0, len(days))
	for _, d := range days {
		ints = append(ints, int(d))
	}

	return ints
}
