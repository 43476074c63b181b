package dto

// SetLocationDto updates a worker's current position.
type SetLocationDto struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (d SetLocationDto) Validate() error {
	return ValidateLatLng(d.Latitude, d.Longitude)
}

// SetAvailabilityDto flips a worker online or offline. The pointer keeps
// a missing field distinguishable from an explicit false.
type SetAvailabilityDto struct {
	IsAvailable *bool `json:"is_available"`
}
