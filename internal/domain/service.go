package domain

import "time"

// ServiceType is the tier a scheduled train runs as. The set is open;
// intercity and sprinter cover the network this was built against.
type ServiceType string

const (
	Intercity ServiceType = "IC"
	Sprinter  ServiceType = "SPR"
)

// Service is a single scheduled train leg: one departure from one station
// arriving at another. Loaded once from the timetable and never mutated.
type Service struct {
	ID          string
	Origin      string
	Destination string
	Type        ServiceType
	Departure   time.Time
	Arrival     time.Time
	DistanceKm  float64
}

// Duration returns the scheduled travel time of the leg.
func (s Service) Duration() time.Duration {
	return s.Arrival.Sub(s.Departure)
}
