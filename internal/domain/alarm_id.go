package domain

import (
	"github.com/google/uuid"
)

type AlarmID struct {
	value uuid.UUID
}

func NewAlarmID() AlarmID {
	return AlarmID{value: uuid.New()}
}

func AlarmIDFromString(s string) (AlarmID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return AlarmID{}, ErrInvalidAlarmID
	}

	return AlarmID{value: id}, nil
}

func (a AlarmID) String() string {
	return a.value.String()
}

func (a AlarmID) IsZero() bool {
	return a.value == uuid.Nil
}

func (a AlarmID) Equals(other AlarmID) bool {
	return a.value == other.value
}
