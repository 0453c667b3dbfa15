package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type StationSeed struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type SectionSeed struct {
	ID       string             `json:"id"`
	Stations []string           `json:"stations"`
	Lengths  map[string]float64 `json:"lengths"`
}

type ServiceSeed struct {
	ID          string    `json:"id"`
	Version     string    `json:"version"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Type        string    `json:"type"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	DistanceKm  float64   `json:"distance_km"`
}

type TimetableSeed struct {
	Stations []StationSeed `json:"stations"`
	Sections []SectionSeed `json:"sections"`
	Services []ServiceSeed `json:"services"`
}

// Populate the database with timetable data from a JSON file. Existing
// rows with the same keys are replaced, so re-seeding is idempotent.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	seed, err := loadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed timetable: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed timetable: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stationStmt, err := tx.Prepare(`
	INSERT INTO stations (code, name, lat, lon)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name, lat = EXCLUDED.lat, lon = EXCLUDED.lon;
	`)
	if err != nil {
		return fmt.Errorf("seed timetable: prepare station insert: %w", err)
	}
	defer stationStmt.Close()

	for _, st := range seed.Stations {
		if _, err := stationStmt.Exec(st.Code, st.Name, st.Lat, st.Lon); err != nil {
			return fmt.Errorf("seed timetable: insert station %q: %w", st.Code, err)
		}
	}

	sectionStmt, err := tx.Prepare(`
	INSERT INTO sections (section_id, stations)
	VALUES ($1, $2)
	ON CONFLICT (section_id) DO UPDATE
	SET stations = EXCLUDED.stations;
	`)
	if err != nil {
		return fmt.Errorf("seed timetable: prepare section insert: %w", err)
	}
	defer sectionStmt.Close()

	lengthStmt, err := tx.Prepare(`
	INSERT INTO section_lengths (section_id, service_type, length_km)
	VALUES ($1, $2, $3)
	ON CONFLICT (section_id, service_type) DO UPDATE
	SET length_km = EXCLUDED.length_km;
	`)
	if err != nil {
		return fmt.Errorf("seed timetable: prepare length insert: %w", err)
	}
	defer lengthStmt.Close()

	for _, sec := range seed.Sections {
		chain, err := json.Marshal(sec.Stations)
		if err != nil {
			return fmt.Errorf("seed timetable: marshal section %q stations: %w", sec.ID, err)
		}
		if _, err := sectionStmt.Exec(sec.ID, string(chain)); err != nil {
			return fmt.Errorf("seed timetable: insert section %q: %w", sec.ID, err)
		}
		for serviceType, km := range sec.Lengths {
			if _, err := lengthStmt.Exec(sec.ID, serviceType, km); err != nil {
				return fmt.Errorf("seed timetable: insert length %s/%s: %w", sec.ID, serviceType, err)
			}
		}
	}

	serviceStmt, err := tx.Prepare(`
	INSERT INTO services (version, service_id, origin, destination, service_type, departure, arrival, distance_km)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (version, service_id) DO UPDATE
	SET origin = EXCLUDED.origin, destination = EXCLUDED.destination,
		service_type = EXCLUDED.service_type, departure = EXCLUDED.departure,
		arrival = EXCLUDED.arrival, distance_km = EXCLUDED.distance_km;
	`)
	if err != nil {
		return fmt.Errorf("seed timetable: prepare service insert: %w", err)
	}
	defer serviceStmt.Close()

	for _, svc := range seed.Services {
		if _, err := serviceStmt.Exec(
			svc.Version, svc.ID, svc.Origin, svc.Destination, svc.Type,
			svc.Departure.Format(time.RFC3339), svc.Arrival.Format(time.RFC3339),
			svc.DistanceKm,
		); err != nil {
			return fmt.Errorf("seed timetable: insert service %q: %w", svc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed timetable: commit tx: %w", err)
	}

	return nil
}

func loadSeed(jsonPath string) (*TimetableSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", jsonPath, err)
	}

	var seed TimetableSeed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	for i, st := range seed.Stations {
		if strings.TrimSpace(st.Code) == "" {
			return nil, fmt.Errorf("station at index %d: code cannot be empty", i)
		}
	}

	for i, sec := range seed.Sections {
		if strings.TrimSpace(sec.ID) == "" {
			return nil, fmt.Errorf("section at index %d: id cannot be empty", i)
		}
		if len(sec.Stations) < 2 {
			return nil, fmt.Errorf("section %q: needs at least two bounding hubs", sec.ID)
		}
		if len(sec.Lengths) == 0 {
			return nil, fmt.Errorf("section %q: needs at least one published length", sec.ID)
		}
	}

	for i, svc := range seed.Services {
		if strings.TrimSpace(svc.ID) == "" {
			return nil, fmt.Errorf("service at index %d: id cannot be empty", i)
		}
		if svc.Version == "" || svc.Origin == "" || svc.Destination == "" || svc.Type == "" {
			return nil, fmt.Errorf("service %q: version, origin, destination and type are required", svc.ID)
		}
		if !svc.Arrival.After(svc.Departure) {
			return nil, fmt.Errorf("service %q: arrival must be after departure", svc.ID)
		}
	}

	return &seed, nil
}
