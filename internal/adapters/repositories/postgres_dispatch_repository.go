package repositories

import (
	"context"
	"database/sql"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/ports"
	"errors"
	"fmt"
	"time"
)

// Postgres-backed implementation of the DispatchRepository port.
type PostgresDispatchRepository struct{ DB *sql.DB }

func NewPostgresDispatchRepository(db *sql.DB) *PostgresDispatchRepository {
	return &PostgresDispatchRepository{DB: db}
}

const selectBookingColumns = `
	SELECT
		booking_id,
		lat,
		lng,
		cargo_volume,
		time_slot,
		address,
		customer_name
	FROM bookings
`

// Return bookings for date with no driver assigned yet.
func (s *PostgresDispatchRepository) ListUnassignedOrders(ctx context.Context, date time.Time) ([]domain.Order, error) {
	if s.DB == nil {
		return nil, errors.New("postgres dispatch repository: DB is nil")
	}

	query := selectBookingColumns + `
	WHERE pickup_date = $1::date
		AND driver_id IS NULL
		AND status <> 'cancelled'
	ORDER BY booking_id;
	`
	orders, err := s.queryOrders(ctx, query, date.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("list unassigned orders: %w", err)
	}
	return orders, nil
}

// Return bookings for date assigned to vehicleID that carry coordinates.
func (s *PostgresDispatchRepository) ListAssignedOrders(ctx context.Context, date time.Time, vehicleID string) ([]domain.Order, error) {
	if s.DB == nil {
		return nil, errors.New("postgres dispatch repository: DB is nil")
	}

	query := selectBookingColumns + `
	WHERE pickup_date = $1::date
		AND driver_id = $2
		AND status <> 'cancelled'
		AND lat IS NOT NULL
		AND lng IS NOT NULL
	ORDER BY sequence_position NULLS LAST, booking_id;
	`
	orders, err := s.queryOrders(ctx, query, date.Format(time.DateOnly), vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list assigned orders: %w", err)
	}
	return orders, nil
}

func (s *PostgresDispatchRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		var o domain.Order
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&o.ID, &lat, &lng, &o.CargoVolume, &o.TimeSlot, &o.Address, &o.CustomerName); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		// NULL coordinates map to the zero pair, which the optimizer treats as unset.
		o.Location = domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return orders, nil
}

// Return all active drivers with their vehicles.
func (s *PostgresDispatchRepository) ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("postgres dispatch repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		name,
		capacity,
		vehicle_type
	FROM drivers
	WHERE active
	ORDER BY driver_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active vehicles: query drivers table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0, 8)
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Capacity, &v.VehicleType); err != nil {
			return nil, fmt.Errorf("list active vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}

// Return a single driver's vehicle.
func (s *PostgresDispatchRepository) GetVehicle(ctx context.Context, vehicleID string) (domain.Vehicle, error) {
	if s.DB == nil {
		return domain.Vehicle{}, errors.New("postgres dispatch repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		name,
		capacity,
		vehicle_type
	FROM drivers
	WHERE driver_id = $1;
	`
	var v domain.Vehicle
	err := s.DB.QueryRowContext(ctx, query, vehicleID).
		Scan(&v.ID, &v.Name, &v.Capacity, &v.VehicleType)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Vehicle{}, fmt.Errorf("get vehicle %q: %w", vehicleID, ports.ErrNotFound)
	}
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("get vehicle %q: %w", vehicleID, err)
	}

	return v, nil
}

// Return the residual load saved for vehicleID on the latest date before date.
// Routes saved for date itself never count, so re-optimizing a day is repeatable.
func (s *PostgresDispatchRepository) CarriedLoad(ctx context.Context, vehicleID string, date time.Time) (float64, error) {
	if s.DB == nil {
		return 0, errors.New("postgres dispatch repository: DB is nil")
	}

	query := `
	SELECT residual_load
	FROM driver_residual_loads
	WHERE driver_id = $1
		AND pickup_date < $2::date
	ORDER BY pickup_date DESC
	LIMIT 1;
	`
	var load float64
	err := s.DB.QueryRowContext(ctx, query, vehicleID, date.Format(time.DateOnly)).Scan(&load)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("carried load %q: %w", vehicleID, err)
	}

	return load, nil
}

// Return all active unloading points.
func (s *PostgresDispatchRepository) ListActiveUnloadingPoints(ctx context.Context) ([]domain.UnloadingPoint, error) {
	if s.DB == nil {
		return nil, errors.New("postgres dispatch repository: DB is nil")
	}

	query := `
	SELECT
		point_id,
		name,
		lat,
		lng
	FROM unloading_points
	WHERE active
	ORDER BY point_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unloading points: query unloading_points table: %w", err)
	}
	defer rows.Close()

	points := make([]domain.UnloadingPoint, 0, 4)
	for rows.Next() {
		var p domain.UnloadingPoint
		if err := rows.Scan(&p.ID, &p.Name, &p.Location.Lat, &p.Location.Lng); err != nil {
			return nil, fmt.Errorf("list unloading points: scan row: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unloading points: row iteration: %w", err)
	}

	return points, nil
}

// Persist vehicle assignments and sequence positions in one transaction.
func (s *PostgresDispatchRepository) ApplyAssignments(ctx context.Context, date time.Time, assignments []domain.Assignment) error {
	if s.DB == nil {
		return errors.New("postgres dispatch repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply assignments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	UPDATE bookings
	SET driver_id = $1,
		sequence_position = $2,
		status = 'assigned'
	WHERE booking_id = $3
		AND pickup_date = $4::date
		AND status <> 'cancelled';
	`)
	if err != nil {
		return fmt.Errorf("apply assignments: prepare update: %w", err)
	}
	defer stmt.Close()

	day := date.Format(time.DateOnly)
	for _, a := range assignments {
		for _, o := range a.Orders {
			res, err := stmt.ExecContext(ctx, a.VehicleID, o.SequencePosition, o.OrderID, day)
			if err != nil {
				return fmt.Errorf("apply assignments: update booking_id=%q: %w", o.OrderID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("apply assignments: rows affected booking_id=%q: %w", o.OrderID, err)
			}
			if n == 0 {
				return fmt.Errorf("apply assignments: booking %q on %s: %w", o.OrderID, day, ports.ErrNotFound)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply assignments: commit tx: %w", err)
	}

	return nil
}

// Persist a re-optimized route: sequence positions, unloading stops and the
// residual load left aboard at the end of date.
func (s *PostgresDispatchRepository) SaveRoute(ctx context.Context, date time.Time, plan domain.VehiclePlan) error {
	if s.DB == nil {
		return errors.New("postgres dispatch repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	day := date.Format(time.DateOnly)

	seqStmt, err := tx.PrepareContext(ctx, `
	UPDATE bookings
	SET sequence_position = $1
	WHERE booking_id = $2
		AND driver_id = $3
		AND pickup_date = $4::date;
	`)
	if err != nil {
		return fmt.Errorf("save route: prepare sequence update: %w", err)
	}
	defer seqStmt.Close()

	for _, st := range plan.Stops {
		if _, err := seqStmt.ExecContext(ctx, st.SequencePosition, st.Order.ID, plan.VehicleID, day); err != nil {
			return fmt.Errorf("save route: update booking_id=%q: %w", st.Order.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
	DELETE FROM route_unloading_stops
	WHERE pickup_date = $1::date
		AND driver_id = $2;
	`, day, plan.VehicleID); err != nil {
		return fmt.Errorf("save route: clear unloading stops: %w", err)
	}

	stopStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_unloading_stops (
		pickup_date,
		driver_id,
		stop_index,
		after_sequence,
		unloading_point_id,
		unloading_point_name
	)
	VALUES ($1::date, $2, $3, $4, $5, $6);
	`)
	if err != nil {
		return fmt.Errorf("save route: prepare unloading stop insert: %w", err)
	}
	defer stopStmt.Close()

	for i, u := range plan.UnloadingStops {
		if _, err := stopStmt.ExecContext(ctx, day, plan.VehicleID, i+1, u.AfterSequence, u.UnloadingPointID, u.UnloadingPointName); err != nil {
			return fmt.Errorf("save route: insert unloading stop #%d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO driver_residual_loads (driver_id, pickup_date, residual_load)
	VALUES ($1, $2::date, $3)
	ON CONFLICT (driver_id, pickup_date) DO UPDATE
	SET residual_load = EXCLUDED.residual_load;
	`, plan.VehicleID, day, plan.ResidualLoad); err != nil {
		return fmt.Errorf("save route: upsert residual load: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save route: commit tx: %w", err)
	}

	return nil
}
