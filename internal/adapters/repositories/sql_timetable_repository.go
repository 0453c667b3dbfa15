package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rail-route-service/internal/domain"
	"rail-route-service/internal/platform/obs"
)

// SQL-backed implementation of the TimetableRepository port. The queries
// stay within the dialect both SQLite and Postgres share ($N parameters,
// plain selects), so one adapter serves either driver.
type SQLTimetableRepository struct {
	DB *sql.DB
}

func NewSQLTimetableRepository(db *sql.DB) *SQLTimetableRepository {
	return &SQLTimetableRepository{DB: db}
}

// Return all stations, ordered by code.
func (s *SQLTimetableRepository) ListStations(ctx context.Context) (_ []domain.Station, err error) {
	defer obs.Time(ctx, "repo.ListStations")(&err)

	if s.DB == nil {
		return nil, errors.New("timetable repository: DB is nil")
	}

	query := `
	SELECT code, name, lat, lon
	FROM stations
	ORDER BY code;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stations: query stations table: %w", err)
	}
	defer rows.Close()

	stations := make([]domain.Station, 0, 64)
	for rows.Next() {
		var st domain.Station
		if err := rows.Scan(&st.Code, &st.Name, &st.Lat, &st.Lon); err != nil {
			return nil, fmt.Errorf("list stations: scan row: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stations: row iteration: %w", err)
	}

	return stations, nil
}

// Return all sections with their published per-type lengths.
func (s *SQLTimetableRepository) ListSections(ctx context.Context) (_ []domain.Section, err error) {
	defer obs.Time(ctx, "repo.ListSections")(&err)

	if s.DB == nil {
		return nil, errors.New("timetable repository: DB is nil")
	}

	query := `
	SELECT section_id, stations
	FROM sections
	ORDER BY section_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sections: query sections table: %w", err)
	}
	defer rows.Close()

	sections := make([]domain.Section, 0, 64)
	for rows.Next() {
		var sec domain.Section
		var chain string
		if err := rows.Scan(&sec.ID, &chain); err != nil {
			return nil, fmt.Errorf("list sections: scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(chain), &sec.Stations); err != nil {
			return nil, fmt.Errorf("list sections: section %q station chain: %w", sec.ID, err)
		}
		sec.LengthKm = make(map[domain.ServiceType]float64)
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sections: row iteration: %w", err)
	}

	lengthQuery := `
	SELECT section_id, service_type, length_km
	FROM section_lengths;
	`
	lengthRows, err := s.DB.QueryContext(ctx, lengthQuery)
	if err != nil {
		return nil, fmt.Errorf("list sections: query section_lengths table: %w", err)
	}
	defer lengthRows.Close()

	byID := make(map[string]int, len(sections))
	for i, sec := range sections {
		byID[sec.ID] = i
	}

	for lengthRows.Next() {
		var id, serviceType string
		var km float64
		if err := lengthRows.Scan(&id, &serviceType, &km); err != nil {
			return nil, fmt.Errorf("list sections: scan length row: %w", err)
		}
		i, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("list sections: length row references unknown section %q", id)
		}
		sections[i].LengthKm[domain.ServiceType(serviceType)] = km
	}
	if err := lengthRows.Err(); err != nil {
		return nil, fmt.Errorf("list sections: length row iteration: %w", err)
	}

	return sections, nil
}

// Return all services of one timetable snapshot, ordered by departure.
func (s *SQLTimetableRepository) ListServices(ctx context.Context, version string) (_ []domain.Service, err error) {
	defer obs.Time(ctx, "repo.ListServices")(&err)

	if s.DB == nil {
		return nil, errors.New("timetable repository: DB is nil")
	}

	query := `
	SELECT service_id, origin, destination, service_type, departure, arrival, distance_km
	FROM services
	WHERE version = $1
	ORDER BY departure, service_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, version)
	if err != nil {
		return nil, fmt.Errorf("list services: query services table: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0, 256)
	for rows.Next() {
		var svc domain.Service
		var serviceType, departure, arrival string
		if err := rows.Scan(&svc.ID, &svc.Origin, &svc.Destination, &serviceType, &departure, &arrival, &svc.DistanceKm); err != nil {
			return nil, fmt.Errorf("list services: scan row: %w", err)
		}
		svc.Type = domain.ServiceType(serviceType)
		if svc.Departure, err = time.Parse(time.RFC3339, departure); err != nil {
			return nil, fmt.Errorf("list services: service %q departure: %w", svc.ID, err)
		}
		if svc.Arrival, err = time.Parse(time.RFC3339, arrival); err != nil {
			return nil, fmt.Errorf("list services: service %q arrival: %w", svc.ID, err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list services: row iteration: %w", err)
	}

	return services, nil
}
