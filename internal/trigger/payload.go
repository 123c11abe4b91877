package trigger

import (
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
	"github.com/KasumiMercury/primind-trigger-engine/internal/infra/pubsub"
)

func reminderFireEvent(r *domain.Reminder, firedAt time.Time, snoozeActions []time.Duration) *pubsub.FireEvent {
	return &pubsub.FireEvent{
		ID:            r.ID().String(),
		Source:        string(SourceReminder),
		Title:         "Reminder",
		Body:          r.Message(),
		Priority:      string(r.Priority()),
		FiredAt:       firedAt,
		SnoozeActions: snoozeActions,
	}
}

func locationFireEvent(r *domain.Reminder, loc *domain.LocationTrigger, firedAt time.Time, snoozeActions []time.Duration) *pubsub.FireEvent {
	return &pubsub.FireEvent{
		ID:            r.ID().String(),
		Source:        string(SourceReminder),
		Title:         fmt.Sprintf("Reminder near %s", loc.Place()),
		Body:          r.Message(),
		Priority:      string(r.Priority()),
		FiredAt:       firedAt,
		SnoozeActions: snoozeActions,
	}
}

func alarmFireEvent(a *domain.Alarm, firedAt time.Time, snoozeActions []time.Duration) *pubsub.FireEvent {
	title := a.Label()
	if title == "" {
		title = "Alarm"
	}

	return &pubsub.FireEvent{
		ID:            a.ID().String(),
		Source:        string(SourceAlarm),
		Title:         title,
		Body:          fmt.Sprintf("It's %02d:%02d", a.Hour(), a.Minute()),
		SoundRef:      a.SoundRef(),
		Vibrate:       a.Vibrate(),
		FiredAt:       firedAt,
		SnoozeActions: snoozeActions,
	}
}
