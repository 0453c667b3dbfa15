package domain

// Immutable reference data describing one station on the rail network.
// Coordinates are optional and only consumed by visualization tooling.
type Station struct {
	Code string
	Name string
	Lat  float64
	Lon  float64
}
