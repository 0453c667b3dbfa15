package ports

import (
	"context"

	"rail-route-service/internal/domain"
)

// Port: boundary to the timetable ingestion collaborator. Implementations
// return fully normalized reference data; the search core never parses
// raw timetables itself.
type TimetableRepository interface {
	// Retrieve all stations known to the network.
	ListStations(ctx context.Context) ([]domain.Station, error)
	// Retrieve the hub-to-hub sections with their published lengths.
	ListSections(ctx context.Context) ([]domain.Section, error)
	// Retrieve all scheduled services for one timetable snapshot version.
	ListServices(ctx context.Context, version string) ([]domain.Service, error)
}
