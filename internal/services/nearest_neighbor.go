package services

import (
	"dispatch-route-service/internal/domain"
	"math"
)

// Order stops using a greedy nearest-neighbor construction.
//
// The route starts at the northernmost order, a deterministic stand-in for the
// start of a typical collection run, and repeatedly moves to the closest
// unvisited order by estimated road distance.
// It does not attempt global route optimization; OptimizeRoute refines the
// result with 2-opt.
func (o *Optimizer) NearestNeighborRoute(orders []domain.Order) []domain.Order {
	n := len(orders)
	route := make([]domain.Order, 0, n)
	if n == 0 {
		return route
	}

	start := 0
	for i := 1; i < n; i++ {
		if orders[i].Location.Lat > orders[start].Location.Lat {
			start = i
		}
	}

	visited := make([]bool, n)
	visited[start] = true
	route = append(route, orders[start])
	current := start

	for len(route) < n {
		best := -1
		minDist := math.MaxFloat64

		// Select next stop by minimum travel distance (greedy step).
		// Strict comparison keeps the earliest input order on ties.
		for i := range orders {
			if visited[i] {
				continue
			}
			d := o.travelKm(orders[current].Location, orders[i].Location)
			if d < minDist {
				minDist = d
				best = i
			}
		}

		visited[best] = true
		route = append(route, orders[best])
		current = best
	}

	return route
}
