package app

type CreateAlarmInput struct {
	Label                 string
	Hour                  int
	Minute                int
	RepeatDays            []int
	SoundRef              string
	Vibrate               bool
	SnoozeDurationMinutes int
}

type SetAlarmEnabledInput struct {
	ID      string
	Enabled bool
}

type DeleteAlarmInput struct {
	ID string
}

type SnoozeAlarmInput struct {
	ID string
}
