package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the timetable schema. The DDL sticks to types and clauses
// that SQLite and Postgres interpret identically, so the same schema
// serves the embedded store and the shared one.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStations := `
	CREATE TABLE IF NOT EXISTS stations (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat  REAL NOT NULL DEFAULT 0,
		lon  REAL NOT NULL DEFAULT 0
	);
	`

	createSections := `
	CREATE TABLE IF NOT EXISTS sections (
		section_id TEXT PRIMARY KEY,
		stations   TEXT NOT NULL
	);
	`

	createSectionLengths := `
	CREATE TABLE IF NOT EXISTS section_lengths (
		section_id   TEXT NOT NULL,
		service_type TEXT NOT NULL,
		length_km    REAL NOT NULL,
		PRIMARY KEY (section_id, service_type)
	);
	`

	createServices := `
	CREATE TABLE IF NOT EXISTS services (
		version      TEXT NOT NULL,
		service_id   TEXT NOT NULL,
		origin       TEXT NOT NULL,
		destination  TEXT NOT NULL,
		service_type TEXT NOT NULL,
		departure    TEXT NOT NULL,
		arrival      TEXT NOT NULL,
		distance_km  REAL NOT NULL,
		PRIMARY KEY (version, service_id)
	);
	`

	createServicesIndex := `
	CREATE INDEX IF NOT EXISTS idx_services_version_origin_departure
	ON services(version, origin, departure);
	`

	statements := []string{
		createStations,
		createSections,
		createSectionLengths,
		createServices,
		createServicesIndex,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
