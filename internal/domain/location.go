package domain

// LocationTrigger describes the monitored region and firing rules of a
// location-based reminder.
type LocationTrigger struct {
	latitude       float64
	longitude      float64
	radiusMeters   float64
	placeName      string
	placeCategory  string
	direction      TriggerDirection
	policy         RecurrencePolicy
	timeConstraint *TimeConstraint
}

func NewLocationTrigger(
	latitude, longitude, radiusMeters float64,
	placeName, placeCategory string,
	direction TriggerDirection,
	policy RecurrencePolicy,
	timeConstraint *TimeConstraint,
) (LocationTrigger, error) {
	if latitude < -90 || latitude > 90 {
		return LocationTrigger{}, ErrInvalidLatitude
	}

	if longitude < -180 || longitude > 180 {
		return LocationTrigger{}, ErrInvalidLongitude
	}

	if radiusMeters <= 0 {
		return LocationTrigger{}, ErrInvalidRadius
	}

	if placeName == "" && placeCategory == "" {
		return LocationTrigger{}, ErrMissingPlace
	}

	return LocationTrigger{
		latitude:       latitude,
		longitude:      longitude,
		radiusMeters:   radiusMeters,
		placeName:      placeName,
		placeCategory:  placeCategory,
		direction:      direction,
		policy:         policy,
		timeConstraint: timeConstraint,
	}, nil
}

func (l LocationTrigger) Latitude() float64 {
	return l.latitude
}

func (l LocationTrigger) Longitude() float64 {
	return l.longitude
}

func (l LocationTrigger) RadiusMeters() float64 {
	return l.radiusMeters
}

func (l LocationTrigger) PlaceName() string {
	return l.placeName
}

func (l LocationTrigger) PlaceCategory() string {
	return l.placeCategory
}

func (l LocationTrigger) Direction() TriggerDirection {
	return l.direction
}

func (l LocationTrigger) Policy() RecurrencePolicy {
	return l.policy
}

func (l LocationTrigger) TimeConstraint() *TimeConstraint {
	return l.timeConstraint
}

// Place returns the human-facing name of the region for notification copy.
func (l LocationTrigger) Place() string {
	if l.placeName != "" {
		return l.placeName
	}

	return l.placeCategory
}
