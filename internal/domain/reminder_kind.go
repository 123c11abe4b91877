package domain

import "fmt"

type Kind string

const (
	KindTimeBased     Kind = "time_based"
	KindLocationBased Kind = "location_based"
)

func NewKind(k string) (Kind, error) {
	switch k {
	case string(KindTimeBased), string(KindLocationBased):
		return Kind(k), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidReminderKind, k)
	}
}
