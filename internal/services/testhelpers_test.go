package services

import (
	"dispatch-route-service/internal/domain"
	"slices"
)

func order(id string, lat, lng, volume float64) domain.Order {
	return domain.Order{ID: id, Location: domain.Coordinates{Lat: lat, Lng: lng}, CargoVolume: volume}
}

func ids(orders []domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func sortedIDs(orders []domain.Order) []string {
	out := ids(orders)
	slices.Sort(out)
	return out
}

// scatter returns n orders on a deterministic pseudo-random grid around Tokyo.
func scatter(n int) []domain.Order {
	out := make([]domain.Order, 0, n)
	seed := uint32(7)
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed%10000) / 10000
	}
	for i := 0; i < n; i++ {
		id := "o" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		out = append(out, order(id, 35.55+next()*0.25, 139.55+next()*0.35, 0.5+next()*2))
	}
	return out
}
