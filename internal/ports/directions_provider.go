package ports

import (
	"context"
	"dispatch-route-service/internal/domain"
)

// Contract for estimating road-network travel along an ordered list of waypoints.
type DirectionsProvider interface {
	// Return travel distance and estimated duration visiting waypoints in order.
	EstimateRoute(ctx context.Context, waypoints []domain.Coordinates) (domain.RouteEstimate, error)
}

// Optional store for previously fetched route estimates.
type EstimateCache interface {
	// Return the cached estimate for key; ok is false on a miss.
	Get(ctx context.Context, key string) (est domain.RouteEstimate, ok bool, err error)
	// Store an estimate under key.
	Put(ctx context.Context, key string, est domain.RouteEstimate) error
}
