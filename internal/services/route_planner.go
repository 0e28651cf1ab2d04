package services

import (
	"dispatch-route-service/internal/domain"
)

// OptimizeRoute returns orders reordered into a short open route.
//
// Routes of up to two orders are returned as-is. Longer routes are built by
// NearestNeighborRoute and refined by 2-opt. The input slice is never
// modified; the result is always a fresh slice.
func (o *Optimizer) OptimizeRoute(orders []domain.Order) []domain.Order {
	if len(orders) <= 2 {
		return append([]domain.Order(nil), orders...)
	}

	return o.improveTwoOpt(o.NearestNeighborRoute(orders))
}

// RouteDistance returns the estimated road distance (km, one decimal) of
// visiting orders in sequence.
func (o *Optimizer) RouteDistance(orders []domain.Order) float64 {
	return roundTenth(o.routeKm(orders))
}

func (o *Optimizer) routeKm(orders []domain.Order) float64 {
	total := 0.0
	for i := 0; i+1 < len(orders); i++ {
		total += o.travelKm(orders[i].Location, orders[i+1].Location)
	}
	return total
}

// improveTwoOpt applies 2-opt moves until a full scan finds no move that
// shortens the route by more than ImprovementEpsilonKm, or MaxTwoOptScans
// scans have run.
func (o *Optimizer) improveTwoOpt(route []domain.Order) []domain.Order {
	best := append([]domain.Order(nil), route...)
	n := len(best)

	for scan := 0; scan < o.opts.MaxTwoOptScans; scan++ {
		improved := false

		// Edges (i, i+1) and (j, j+1) must not share a node.
		for i := 0; i < n-3; i++ {
			for j := i + 2; j < n-1; j++ {
				a, b := best[i].Location, best[i+1].Location
				c, d := best[j].Location, best[j+1].Location

				delta := o.travelKm(a, c) + o.travelKm(b, d) -
					o.travelKm(a, b) - o.travelKm(c, d)
				if delta < -o.opts.ImprovementEpsilonKm {
					reverseSegment(best, i+1, j)
					improved = true
				}
			}
		}

		if !improved {
			break
		}
	}

	return best
}

// reverseSegment reverses route[from..to] inclusive.
func reverseSegment(route []domain.Order, from, to int) {
	for from < to {
		route[from], route[to] = route[to], route[from]
		from++
		to--
	}
}
