package handler

type CreateAlarmRequest struct {
	Label                 string `json:"label"`
	Hour                  int    `json:"hour" binding:"min=0,max=23"`
	Minute                int    `json:"minute" binding:"min=0,max=59"`
	RepeatDays            []int  `json:"repeat_days" binding:"omitempty,dive,min=0,max=6"`
	SoundRef              string `json:"sound_ref"`
	Vibrate               bool   `json:"vibrate"`
	SnoozeDurationMinutes int    `json:"snooze_duration_minutes" binding:"omitempty,min=1"`
}

type SetAlarmEnabledRequest struct {
	Enabled bool `json:"enabled"`
}
