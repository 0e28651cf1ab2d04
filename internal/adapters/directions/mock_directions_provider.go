package directions

import (
	"context"
	"dispatch-route-service/internal/domain"
	"errors"
	"sync/atomic"
)

// MockDirectionsProvider returns a fixed estimate per waypoint count and
// counts calls.
type MockDirectionsProvider struct {
	MetersPerLeg  int
	SecondsPerLeg int
	Err           error

	calls atomic.Int64
}

func NewMockDirectionsProvider(metersPerLeg, secondsPerLeg int) *MockDirectionsProvider {
	return &MockDirectionsProvider{MetersPerLeg: metersPerLeg, SecondsPerLeg: secondsPerLeg}
}

func (p *MockDirectionsProvider) EstimateRoute(ctx context.Context, waypoints []domain.Coordinates) (domain.RouteEstimate, error) {
	p.calls.Add(1)
	if p.Err != nil {
		return domain.RouteEstimate{}, p.Err
	}
	if len(waypoints) == 0 {
		return domain.RouteEstimate{}, errors.New("no waypoints")
	}

	legs := len(waypoints) - 1
	return domain.RouteEstimate{
		DistanceMeters:  legs * p.MetersPerLeg,
		DurationSeconds: legs * p.SecondsPerLeg,
	}, nil
}

// Calls returns how many times EstimateRoute has been invoked.
func (p *MockDirectionsProvider) Calls() int { return int(p.calls.Load()) }
