package services

import (
	"dispatch-route-service/internal/domain"
	"fmt"
	"math"
)

// InsertUnloadingStops walks an ordered route and schedules detours to
// unloading points so that the running cargo volume stays within capacity.
//
// The running load starts at initialLoad. After adding each stop's volume, a
// detour is scheduled right after that stop when the load already exceeds
// capacity, or when the next stop's volume would push it over. The load then
// resets to zero. The unloading point minimizing
// dist(stop, point) + dist(point, nextStop) is chosen (just dist(stop, point)
// after the final stop).
//
// Overflow is never rejected: orders larger than the vehicle and routes with
// no unloading points available only produce warnings.
func (o *Optimizer) InsertUnloadingStops(
	route []domain.Order,
	vehicle domain.Vehicle,
	points []domain.UnloadingPoint,
	initialLoad float64,
) domain.UnloadingPlan {
	plan := domain.UnloadingPlan{
		Stops:    []domain.UnloadingStop{},
		Warnings: []domain.Warning{},
	}

	load := initialLoad
	peak := load
	overflowWarned := false

	for i, ord := range route {
		if ord.CargoVolume > vehicle.Capacity {
			plan.Warnings = append(plan.Warnings, o.warn(domain.Warning{
				Code:      domain.WarnOrderExceedsCapacity,
				VehicleID: vehicle.ID,
				OrderID:   ord.ID,
				Message: fmt.Sprintf("order cargo volume %.2f exceeds vehicle capacity %.2f",
					ord.CargoVolume, vehicle.Capacity),
			}))
		}

		load += ord.CargoVolume
		peak = max(peak, load)

		hasNext := i+1 < len(route)
		over := load > vehicle.Capacity
		if !over && !(hasNext && load+route[i+1].CargoVolume > vehicle.Capacity) {
			continue
		}

		if len(points) == 0 {
			if over && !overflowWarned {
				overflowWarned = true
				plan.Warnings = append(plan.Warnings, o.warn(domain.Warning{
					Code:      domain.WarnCapacityNoUnloading,
					VehicleID: vehicle.ID,
					OrderID:   ord.ID,
					Message: fmt.Sprintf("running load %.2f exceeds vehicle capacity %.2f and no unloading point is available",
						load, vehicle.Capacity),
				}))
			}
			continue
		}

		var next *domain.Coordinates
		if hasNext {
			next = &route[i+1].Location
		}
		p := bestUnloadingPoint(ord.Location, next, points)

		plan.Stops = append(plan.Stops, domain.UnloadingStop{
			AfterSequence:      i + 1,
			UnloadingPointID:   p.ID,
			UnloadingPointName: p.Name,
		})
		load = 0
	}

	plan.PeakLoad = peak
	plan.ResidualLoad = load
	return plan
}

// bestUnloadingPoint returns the point with the smallest detour from current
// towards next. points must not be empty.
func bestUnloadingPoint(current domain.Coordinates, next *domain.Coordinates, points []domain.UnloadingPoint) domain.UnloadingPoint {
	best := 0
	bestCost := math.MaxFloat64
	for i, p := range points {
		cost := Haversine(current, p.Location)
		if next != nil {
			cost += Haversine(p.Location, *next)
		}
		if cost < bestCost {
			best = i
			bestCost = cost
		}
	}
	return points[best]
}
