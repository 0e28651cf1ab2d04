package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		driver_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		capacity DOUBLE PRECISION NOT NULL CHECK (capacity > 0),
		vehicle_type TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createUnloadingPointsQuery := `
	CREATE TABLE IF NOT EXISTS unloading_points (
		point_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createBookingsQuery := `
	CREATE TABLE IF NOT EXISTS bookings (
		booking_id TEXT PRIMARY KEY,
		pickup_date DATE NOT NULL,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		cargo_volume DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (cargo_volume >= 0),
		time_slot TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL DEFAULT '',
		driver_id TEXT REFERENCES drivers (driver_id),
		sequence_position INTEGER,
		status TEXT NOT NULL DEFAULT 'pending'
	);
	`

	createUnloadingStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_unloading_stops (
		pickup_date DATE NOT NULL,
		driver_id TEXT NOT NULL REFERENCES drivers (driver_id),
		stop_index INTEGER NOT NULL,
		after_sequence INTEGER NOT NULL,
		unloading_point_id TEXT NOT NULL REFERENCES unloading_points (point_id),
		unloading_point_name TEXT NOT NULL,
		PRIMARY KEY (pickup_date, driver_id, stop_index)
	);
	`

	createResidualLoadsQuery := `
	CREATE TABLE IF NOT EXISTS driver_residual_loads (
		driver_id TEXT NOT NULL REFERENCES drivers (driver_id),
		pickup_date DATE NOT NULL,
		residual_load DOUBLE PRECISION NOT NULL CHECK (residual_load >= 0),
		PRIMARY KEY (driver_id, pickup_date)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_bookings_date_driver
	ON bookings (pickup_date, driver_id);
	`

	statements := []string{
		createDriversQuery,
		createUnloadingPointsQuery,
		createBookingsQuery,
		createUnloadingStopsQuery,
		createResidualLoadsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DriverSeed struct {
	DriverID    string  `json:"driver_id"`
	Name        string  `json:"name"`
	Capacity    float64 `json:"capacity"`
	VehicleType string  `json:"vehicle_type"`
}

type UnloadingPointSeed struct {
	PointID string  `json:"point_id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type BookingSeed struct {
	BookingID    string   `json:"booking_id"`
	PickupDate   string   `json:"pickup_date"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	CargoVolume  float64  `json:"cargo_volume"`
	TimeSlot     string   `json:"time_slot"`
	Address      string   `json:"address"`
	CustomerName string   `json:"customer_name"`
}

type Seed struct {
	Drivers         []DriverSeed         `json:"drivers"`
	UnloadingPoints []UnloadingPointSeed `json:"unloading_points"`
	Bookings        []BookingSeed        `json:"bookings"`
}

// Validate checks seed rows before anything is written.
func (s Seed) Validate() error {
	for i, d := range s.Drivers {
		if strings.TrimSpace(d.DriverID) == "" {
			return fmt.Errorf("driver at index %d: driver_id cannot be empty", i+1)
		}
		if d.Capacity <= 0 {
			return fmt.Errorf("driver %q: capacity must be > 0, got %v", d.DriverID, d.Capacity)
		}
	}

	for i, p := range s.UnloadingPoints {
		if strings.TrimSpace(p.PointID) == "" {
			return fmt.Errorf("unloading point at index %d: point_id cannot be empty", i+1)
		}
	}

	for i, b := range s.Bookings {
		if strings.TrimSpace(b.BookingID) == "" {
			return fmt.Errorf("booking at index %d: booking_id cannot be empty", i+1)
		}
		if _, err := time.Parse(time.DateOnly, b.PickupDate); err != nil {
			return fmt.Errorf("booking %q: invalid pickup_date %q: %w", b.BookingID, b.PickupDate, err)
		}
		if b.CargoVolume < 0 {
			return fmt.Errorf("booking %q: cargo_volume must be >= 0, got %v", b.BookingID, b.CargoVolume)
		}
	}

	return nil
}

// Populate the database with drivers, unloading points and bookings from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	if err := data.Validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range data.Drivers {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO drivers (driver_id, name, capacity, vehicle_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (driver_id) DO UPDATE
		SET name = EXCLUDED.name,
			capacity = EXCLUDED.capacity,
			vehicle_type = EXCLUDED.vehicle_type;
		`, d.DriverID, d.Name, d.Capacity, d.VehicleType); err != nil {
			return fmt.Errorf("seed: insert driver_id=%q: %w", d.DriverID, err)
		}
	}

	for _, p := range data.UnloadingPoints {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO unloading_points (point_id, name, lat, lng)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (point_id) DO UPDATE
		SET name = EXCLUDED.name,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng;
		`, p.PointID, p.Name, p.Lat, p.Lng); err != nil {
			return fmt.Errorf("seed: insert point_id=%q: %w", p.PointID, err)
		}
	}

	for _, b := range data.Bookings {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (booking_id, pickup_date, lat, lng, cargo_volume, time_slot, address, customer_name)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (booking_id) DO NOTHING;
		`, b.BookingID, b.PickupDate, b.Lat, b.Lng, b.CargoVolume, b.TimeSlot, b.Address, b.CustomerName); err != nil {
			return fmt.Errorf("seed: insert booking_id=%q: %w", b.BookingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
