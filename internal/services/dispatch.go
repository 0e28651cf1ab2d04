package services

import (
	"dispatch-route-service/internal/domain"
)

// Propose builds a dispatch plan for all orders across all vehicles.
//
// Orders without coordinates are excluded up front. The rest are clustered,
// and each non-empty cluster is routed and checked for unloading stops using
// its paired vehicle's capacity and an empty starting load. Orders left out
// of every plan are reported with a reason; empty inputs yield an empty plan,
// never an error.
func (o *Optimizer) Propose(
	orders []domain.Order,
	vehicles []domain.Vehicle,
	points []domain.UnloadingPoint,
) domain.DispatchResult {
	res := domain.DispatchResult{
		Plans:      []domain.VehiclePlan{},
		Unassigned: []domain.Unassigned{},
		Warnings:   []domain.Warning{},
	}

	valid := make([]domain.Order, 0, len(orders))
	for _, ord := range orders {
		if !ord.Location.IsSet() {
			res.Unassigned = append(res.Unassigned, domain.Unassigned{OrderID: ord.ID, Reason: domain.ReasonNoCoordinates})
			continue
		}
		valid = append(valid, ord)
	}

	if len(vehicles) == 0 {
		for _, ord := range valid {
			res.Unassigned = append(res.Unassigned, domain.Unassigned{OrderID: ord.ID, Reason: domain.ReasonNoVehicleAvailable})
		}
		res.Stats = o.stats(len(orders), res)
		return res
	}

	placed := make(map[string]struct{}, len(valid))
	for _, ca := range o.ClusterOrders(valid, vehicles) {
		if len(ca.Cluster.Orders) == 0 {
			continue
		}

		if ca.Vehicle == nil {
			for _, ord := range ca.Cluster.Orders {
				placed[ord.ID] = struct{}{}
				res.Unassigned = append(res.Unassigned, domain.Unassigned{OrderID: ord.ID, Reason: domain.ReasonClusterAssignmentFailed})
			}
			continue
		}

		plan, warnings := o.planVehicle(ca.Cluster.Orders, *ca.Vehicle, points, 0)
		for _, s := range plan.Stops {
			placed[s.Order.ID] = struct{}{}
		}
		res.Plans = append(res.Plans, plan)
		res.Warnings = append(res.Warnings, warnings...)
	}

	for _, ord := range valid {
		if _, ok := placed[ord.ID]; !ok {
			res.Unassigned = append(res.Unassigned, domain.Unassigned{OrderID: ord.ID, Reason: domain.ReasonNoClusterAssignment})
		}
	}

	res.Stats = o.stats(len(orders), res)
	return res
}

// Reoptimize re-sequences the orders already assigned to one vehicle and
// re-plans its unloading stops. Assignment is never changed.
func (o *Optimizer) Reoptimize(
	orders []domain.Order,
	vehicle domain.Vehicle,
	initialLoad float64,
	points []domain.UnloadingPoint,
) domain.ReoptimizeResult {
	res := domain.ReoptimizeResult{
		Skipped:  []domain.Unassigned{},
		Warnings: []domain.Warning{},
	}

	valid := make([]domain.Order, 0, len(orders))
	for _, ord := range orders {
		if !ord.Location.IsSet() {
			res.Skipped = append(res.Skipped, domain.Unassigned{OrderID: ord.ID, Reason: domain.ReasonNoCoordinates})
			continue
		}
		valid = append(valid, ord)
	}

	plan, warnings := o.planVehicle(valid, vehicle, points, initialLoad)
	res.Plan = plan
	res.Warnings = append(res.Warnings, warnings...)
	return res
}

// planVehicle routes orders for one vehicle and schedules its unloading stops.
func (o *Optimizer) planVehicle(
	orders []domain.Order,
	vehicle domain.Vehicle,
	points []domain.UnloadingPoint,
	initialLoad float64,
) (domain.VehiclePlan, []domain.Warning) {
	route := o.OptimizeRoute(orders)
	unloading := o.InsertUnloadingStops(route, vehicle, points, initialLoad)

	plan := domain.VehiclePlan{
		VehicleID:       vehicle.ID,
		VehicleName:     vehicle.Name,
		VehicleCapacity: vehicle.Capacity,
		Stops:           make([]domain.PlannedStop, 0, len(route)),
		UnloadingStops:  unloading.Stops,
		TotalDistanceKm: o.RouteDistance(route),
		PeakLoad:        unloading.PeakLoad,
		ResidualLoad:    unloading.ResidualLoad,
	}

	for i, ord := range route {
		plan.Stops = append(plan.Stops, domain.PlannedStop{Order: ord, SequencePosition: i + 1})
		plan.TotalLoad += ord.CargoVolume
	}
	if len(route) > 0 {
		plan.LegCount = len(route) - 1 + len(unloading.Stops)
	}

	return plan, unloading.Warnings
}

func (o *Optimizer) stats(total int, res domain.DispatchResult) domain.DispatchStats {
	s := domain.DispatchStats{
		TotalOrders:      total,
		UnassignedOrders: len(res.Unassigned),
		VehiclesUsed:     len(res.Plans),
	}

	distance := 0.0
	for _, p := range res.Plans {
		s.AssignedOrders += len(p.Stops)
		distance += p.TotalDistanceKm
	}
	s.TotalDistanceKm = roundTenth(distance)

	return s
}
