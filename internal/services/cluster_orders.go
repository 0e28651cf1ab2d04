package services

import (
	"cmp"
	"dispatch-route-service/internal/domain"
	"math"
	"slices"
)

// ClusterOrders partitions orders into geographic groups, one per vehicle,
// and pairs each group with a vehicle.
//
// k = min(len(vehicles), len(orders)) centroids are seeded with a
// farthest-point heuristic and refined by at most MaxClusterRounds rounds of
// k-means. Vehicles sorted by capacity (descending) are then paired with
// clusters sorted by total load (descending). The pairing is a ranking, not a
// feasibility check: a cluster may still exceed its vehicle's capacity, which
// InsertUnloadingStops resolves downstream.
//
// Orders must have coordinates set. Returned assignments are ordered by
// cluster load, heaviest first.
func (o *Optimizer) ClusterOrders(orders []domain.Order, vehicles []domain.Vehicle) []domain.ClusterAssignment {
	if len(orders) == 0 || len(vehicles) == 0 {
		return nil
	}

	k := min(len(vehicles), len(orders))
	centroids := seedCentroids(orders, k)

	var membership []int
	for round := 0; round < o.opts.MaxClusterRounds; round++ {
		next := nearestCentroids(orders, centroids)
		if membership != nil && slices.Equal(next, membership) {
			break
		}
		membership = next
		centroids = recomputeCentroids(orders, membership, centroids)
	}

	clusters := make([]domain.Cluster, k)
	for i := range clusters {
		clusters[i].Centroid = centroids[i]
		clusters[i].Orders = []domain.Order{}
	}
	for i, ord := range orders {
		c := &clusters[membership[i]]
		c.Orders = append(c.Orders, ord)
		c.TotalLoad += ord.CargoVolume
	}

	// Stable sorts keep input order on equal capacity/load.
	ranked := slices.Clone(vehicles)
	slices.SortStableFunc(ranked, func(a, b domain.Vehicle) int {
		return cmp.Compare(b.Capacity, a.Capacity)
	})
	slices.SortStableFunc(clusters, func(a, b domain.Cluster) int {
		return cmp.Compare(b.TotalLoad, a.TotalLoad)
	})

	out := make([]domain.ClusterAssignment, 0, len(clusters))
	for i, c := range clusters {
		ca := domain.ClusterAssignment{Cluster: c}
		if i < len(ranked) {
			v := ranked[i]
			ca.Vehicle = &v
		}
		out = append(out, ca)
	}

	return out
}

// seedCentroids picks k orders as initial centroids: first the order closest
// to the mean position of all orders, then repeatedly the order farthest from
// every centroid chosen so far.
func seedCentroids(orders []domain.Order, k int) []domain.Coordinates {
	mean := meanLocation(orders)

	first := 0
	firstDist := Haversine(orders[0].Location, mean)
	for i := 1; i < len(orders); i++ {
		if d := Haversine(orders[i].Location, mean); d < firstDist {
			first = i
			firstDist = d
		}
	}

	chosen := make([]bool, len(orders))
	chosen[first] = true
	centroids := make([]domain.Coordinates, 0, k)
	centroids = append(centroids, orders[first].Location)

	for len(centroids) < k {
		pick := -1
		pickDist := -1.0
		for i, ord := range orders {
			if chosen[i] {
				continue
			}
			minDist := math.MaxFloat64
			for _, c := range centroids {
				minDist = min(minDist, Haversine(ord.Location, c))
			}
			if minDist > pickDist {
				pick = i
				pickDist = minDist
			}
		}

		chosen[pick] = true
		centroids = append(centroids, orders[pick].Location)
	}

	return centroids
}

// nearestCentroids returns, per order, the index of its closest centroid.
func nearestCentroids(orders []domain.Order, centroids []domain.Coordinates) []int {
	out := make([]int, len(orders))
	for i, ord := range orders {
		best := 0
		bestDist := Haversine(ord.Location, centroids[0])
		for c := 1; c < len(centroids); c++ {
			if d := Haversine(ord.Location, centroids[c]); d < bestDist {
				best = c
				bestDist = d
			}
		}
		out[i] = best
	}
	return out
}

// recomputeCentroids moves each centroid to the mean position of its members.
// A centroid without members keeps its previous position.
func recomputeCentroids(orders []domain.Order, membership []int, prev []domain.Coordinates) []domain.Coordinates {
	sums := make([]domain.Coordinates, len(prev))
	counts := make([]int, len(prev))
	for i, ord := range orders {
		c := membership[i]
		sums[c].Lat += ord.Location.Lat
		sums[c].Lng += ord.Location.Lng
		counts[c]++
	}

	out := make([]domain.Coordinates, len(prev))
	for c := range out {
		if counts[c] == 0 {
			out[c] = prev[c]
			continue
		}
		out[c] = domain.Coordinates{
			Lat: sums[c].Lat / float64(counts[c]),
			Lng: sums[c].Lng / float64(counts[c]),
		}
	}
	return out
}

func meanLocation(orders []domain.Order) domain.Coordinates {
	var sum domain.Coordinates
	for _, ord := range orders {
		sum.Lat += ord.Location.Lat
		sum.Lng += ord.Location.Lng
	}
	n := float64(len(orders))
	return domain.Coordinates{Lat: sum.Lat / n, Lng: sum.Lng / n}
}
