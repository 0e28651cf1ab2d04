package ports

import (
	"context"
	"dispatch-route-service/internal/domain"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAssignment = errors.New("invalid assignment")
)

// Port: a boundary for loading dispatch inputs and persisting dispatch decisions.
type DispatchRepository interface {
	// Retrieve bookings for date that have no vehicle assigned yet.
	ListUnassignedOrders(ctx context.Context, date time.Time) ([]domain.Order, error)
	// Retrieve vehicles available for routing.
	ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error)
	// Retrieve unloading points available for detours.
	ListActiveUnloadingPoints(ctx context.Context) ([]domain.UnloadingPoint, error)
	// Retrieve bookings for date already assigned to vehicleID.
	ListAssignedOrders(ctx context.Context, date time.Time, vehicleID string) ([]domain.Order, error)
	// Retrieve a single vehicle; returns ErrNotFound when it does not exist.
	GetVehicle(ctx context.Context, vehicleID string) (domain.Vehicle, error)
	// Retrieve the load vehicleID still carries when date starts: the residual
	// of its latest saved route before date, or 0.
	CarriedLoad(ctx context.Context, vehicleID string, date time.Time) (float64, error)
	// Persist operator-approved assignments and sequence positions.
	ApplyAssignments(ctx context.Context, date time.Time, assignments []domain.Assignment) error
	// Persist a re-optimized route: sequence positions, unloading stops and the residual load for date.
	SaveRoute(ctx context.Context, date time.Time, plan domain.VehiclePlan) error
}
