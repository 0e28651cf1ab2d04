package services

import (
	"context"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/logging"
	"dispatch-route-service/internal/platform/metrics"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DispatchService connects the optimizer to storage and the directions service.
type DispatchService struct {
	repo      ports.DispatchRepository
	optimizer *Optimizer
	estimator *PlanEstimator
	log       *zap.Logger
}

// NewDispatchService wires the service. estimator may be nil to skip travel
// estimates.
func NewDispatchService(
	repo ports.DispatchRepository,
	optimizer *Optimizer,
	estimator *PlanEstimator,
	log *zap.Logger,
) *DispatchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DispatchService{repo: repo, optimizer: optimizer, estimator: estimator, log: log}
}

// Propose computes a dispatch plan for date without persisting anything.
func (s *DispatchService) Propose(ctx context.Context, date time.Time) (_ domain.DispatchResult, err error) {
	defer obs.Time(ctx, s.log, "dispatch.Propose")(&err)
	defer recordRun("propose", &err)

	orders, err := s.repo.ListUnassignedOrders(ctx, date)
	if err != nil {
		return domain.DispatchResult{}, fmt.Errorf("propose dispatch: list unassigned orders: %w", err)
	}

	vehicles, err := s.repo.ListActiveVehicles(ctx)
	if err != nil {
		return domain.DispatchResult{}, fmt.Errorf("propose dispatch: list active vehicles: %w", err)
	}

	points, err := s.repo.ListActiveUnloadingPoints(ctx)
	if err != nil {
		return domain.DispatchResult{}, fmt.Errorf("propose dispatch: list unloading points: %w", err)
	}

	res := s.optimizer.Propose(orders, vehicles, points)

	// Travel estimates never fail the proposal.
	s.estimator.EstimatePlans(ctx, res.Plans, points)

	for _, u := range res.Unassigned {
		metrics.DispatchUnassigned.WithLabelValues(u.Reason).Inc()
	}
	recordWarnings(res.Warnings)

	logging.FromContext(ctx, s.log).Info("dispatch proposed",
		zap.String("date", date.Format(time.DateOnly)),
		zap.Int("orders", res.Stats.TotalOrders),
		zap.Int("assigned", res.Stats.AssignedOrders),
		zap.Int("unassigned", res.Stats.UnassignedOrders),
		zap.Int("vehicles", res.Stats.VehiclesUsed),
		zap.Float64("distance_km", res.Stats.TotalDistanceKm),
	)

	return res, nil
}

// Apply validates and persists operator-approved assignments for date.
// It does not re-run the optimizer.
func (s *DispatchService) Apply(ctx context.Context, date time.Time, assignments []domain.Assignment) (err error) {
	defer obs.Time(ctx, s.log, "dispatch.Apply")(&err)
	defer recordRun("apply", &err)

	if err := ValidateAssignments(assignments); err != nil {
		return fmt.Errorf("apply dispatch: %w", err)
	}

	for _, a := range assignments {
		if _, err := s.repo.GetVehicle(ctx, a.VehicleID); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return fmt.Errorf("apply dispatch: vehicle %q: %w", a.VehicleID, ports.ErrNotFound)
			}
			return fmt.Errorf("apply dispatch: get vehicle %q: %w", a.VehicleID, err)
		}
	}

	if err := s.repo.ApplyAssignments(ctx, date, assignments); err != nil {
		return fmt.Errorf("apply dispatch: persist assignments: %w", err)
	}

	logging.FromContext(ctx, s.log).Info("dispatch applied",
		zap.String("date", date.Format(time.DateOnly)),
		zap.Int("vehicles", len(assignments)),
	)

	return nil
}

// ReoptimizeRoute re-sequences the stops already assigned to vehicleID on date,
// persists the new sequence, unloading stops and carried-over load, and
// returns the result.
func (s *DispatchService) ReoptimizeRoute(ctx context.Context, date time.Time, vehicleID string) (_ domain.ReoptimizeResult, err error) {
	defer obs.Time(ctx, s.log, "dispatch.ReoptimizeRoute")(&err)
	defer recordRun("reoptimize", &err)

	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return domain.ReoptimizeResult{}, fmt.Errorf("reoptimize route: vehicle id must not be empty: %w", ports.ErrInvalidAssignment)
	}

	vehicle, err := s.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return domain.ReoptimizeResult{}, fmt.Errorf("reoptimize route: get vehicle %q: %w", vehicleID, err)
	}

	orders, err := s.repo.ListAssignedOrders(ctx, date, vehicleID)
	if err != nil {
		return domain.ReoptimizeResult{}, fmt.Errorf("reoptimize route: list assigned orders: %w", err)
	}

	points, err := s.repo.ListActiveUnloadingPoints(ctx)
	if err != nil {
		return domain.ReoptimizeResult{}, fmt.Errorf("reoptimize route: list unloading points: %w", err)
	}

	carried, err := s.repo.CarriedLoad(ctx, vehicleID, date)
	if err != nil {
		return domain.ReoptimizeResult{}, fmt.Errorf("reoptimize route: carried load: %w", err)
	}

	res := s.optimizer.Reoptimize(orders, vehicle, carried, points)

	if err := s.repo.SaveRoute(ctx, date, res.Plan); err != nil {
		return domain.ReoptimizeResult{}, fmt.Errorf("reoptimize route: save route: %w", err)
	}
	recordWarnings(res.Warnings)

	logging.FromContext(ctx, s.log).Info("route reoptimized",
		zap.String("date", date.Format(time.DateOnly)),
		zap.String("vehicle_id", vehicleID),
		zap.Int("stops", len(res.Plan.Stops)),
		zap.Int("unloading_stops", len(res.Plan.UnloadingStops)),
		zap.Float64("distance_km", res.Plan.TotalDistanceKm),
		zap.Float64("residual_load", res.Plan.ResidualLoad),
	)

	return res, nil
}

// ValidateAssignments checks identifiers and sequence positions.
// Violations wrap ports.ErrInvalidAssignment.
func ValidateAssignments(assignments []domain.Assignment) error {
	if len(assignments) == 0 {
		return fmt.Errorf("no assignments given: %w", ports.ErrInvalidAssignment)
	}

	seenVehicles := make(map[string]struct{}, len(assignments))
	seenOrders := make(map[string]struct{})
	for i, a := range assignments {
		vid := strings.TrimSpace(a.VehicleID)
		if vid == "" {
			return fmt.Errorf("assignment #%d: vehicle id must not be empty: %w", i+1, ports.ErrInvalidAssignment)
		}
		if _, ok := seenVehicles[vid]; ok {
			return fmt.Errorf("assignment #%d: vehicle %q listed twice: %w", i+1, vid, ports.ErrInvalidAssignment)
		}
		seenVehicles[vid] = struct{}{}

		positions := make(map[int]struct{}, len(a.Orders))
		for _, o := range a.Orders {
			oid := strings.TrimSpace(o.OrderID)
			if oid == "" {
				return fmt.Errorf("vehicle %q: order id must not be empty: %w", vid, ports.ErrInvalidAssignment)
			}
			if _, ok := seenOrders[oid]; ok {
				return fmt.Errorf("vehicle %q: order %q assigned twice: %w", vid, oid, ports.ErrInvalidAssignment)
			}
			seenOrders[oid] = struct{}{}

			if o.SequencePosition < 1 {
				return fmt.Errorf("vehicle %q: order %q: sequence position must be >= 1: %w", vid, oid, ports.ErrInvalidAssignment)
			}
			if _, ok := positions[o.SequencePosition]; ok {
				return fmt.Errorf("vehicle %q: sequence position %d used twice: %w", vid, o.SequencePosition, ports.ErrInvalidAssignment)
			}
			positions[o.SequencePosition] = struct{}{}
		}
	}

	return nil
}

func recordRun(op string, errp *error) {
	outcome := "ok"
	if errp != nil && *errp != nil {
		outcome = "error"
	}
	metrics.DispatchRuns.WithLabelValues(op, outcome).Inc()
}

func recordWarnings(warnings []domain.Warning) {
	for _, w := range warnings {
		metrics.DispatchWarnings.WithLabelValues(w.Code).Inc()
	}
}
