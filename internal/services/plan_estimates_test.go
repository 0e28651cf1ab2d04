package services

import (
	"context"
	"dispatch-route-service/internal/adapters/directions"
	"dispatch-route-service/internal/domain"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryEstimateCache struct {
	mu      sync.Mutex
	entries map[string]domain.RouteEstimate
	getErr  error
}

func newMemoryEstimateCache() *memoryEstimateCache {
	return &memoryEstimateCache{entries: map[string]domain.RouteEstimate{}}
}

func (c *memoryEstimateCache) Get(ctx context.Context, key string) (domain.RouteEstimate, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return domain.RouteEstimate{}, false, c.getErr
	}
	est, ok := c.entries[key]
	return est, ok, nil
}

func (c *memoryEstimateCache) Put(ctx context.Context, key string, est domain.RouteEstimate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = est
	return nil
}

func planFor(vehicleID string, orders ...domain.Order) domain.VehiclePlan {
	p := domain.VehiclePlan{VehicleID: vehicleID}
	for i, o := range orders {
		p.Stops = append(p.Stops, domain.PlannedStop{Order: o, SequencePosition: i + 1})
	}
	return p
}

func TestWaypointsIncludeUnloadingDetours(t *testing.T) {
	plan := planFor("v",
		order("s1", 35.0, 139.0, 1),
		order("s2", 35.1, 139.0, 1),
		order("s3", 35.2, 139.0, 1),
	)
	plan.UnloadingStops = []domain.UnloadingStop{
		{AfterSequence: 1, UnloadingPointID: "p-way"},
		{AfterSequence: 3, UnloadingPointID: "gone"},
	}

	got := Waypoints(plan, []domain.UnloadingPoint{onTheWay})

	assert.Equal(t, []domain.Coordinates{
		{Lat: 35.0, Lng: 139.0},
		onTheWay.Location,
		{Lat: 35.1, Lng: 139.0},
		{Lat: 35.2, Lng: 139.0},
	}, got)
}

func TestEstimateKey(t *testing.T) {
	a := []domain.Coordinates{{Lat: 35.0, Lng: 139.0}, {Lat: 35.1, Lng: 139.1}}
	b := []domain.Coordinates{{Lat: 35.1, Lng: 139.1}, {Lat: 35.0, Lng: 139.0}}

	assert.Equal(t, EstimateKey(a), EstimateKey(a))
	assert.NotEqual(t, EstimateKey(a), EstimateKey(b), "key must depend on visit order")
	assert.Regexp(t, `^estimate:[0-9a-f]+$`, EstimateKey(a))
}

func TestEstimatePlansUsesCache(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(1000, 120)
	cache := newMemoryEstimateCache()
	est := NewPlanEstimator(provider, cache, nil)

	plans := []domain.VehiclePlan{
		planFor("v1", order("a", 35.0, 139.0, 1), order("b", 35.1, 139.0, 1), order("c", 35.2, 139.0, 1)),
		planFor("v2", order("d", 35.5, 139.5, 1), order("e", 35.6, 139.5, 1)),
	}

	est.EstimatePlans(context.Background(), plans, nil)

	require.NotNil(t, plans[0].Estimate)
	assert.Equal(t, domain.RouteEstimate{DistanceMeters: 2000, DurationSeconds: 240}, *plans[0].Estimate)
	require.NotNil(t, plans[1].Estimate)
	assert.Equal(t, 1000, plans[1].Estimate.DistanceMeters)
	assert.Equal(t, 2, provider.Calls())
	assert.Len(t, cache.entries, 2)

	plans[0].Estimate = nil
	est.EstimatePlans(context.Background(), plans[:1], nil)
	require.NotNil(t, plans[0].Estimate)
	assert.Equal(t, 2, provider.Calls(), "second lookup must be served from cache")
}

func TestEstimatePlansFailuresAreRecordedNotReturned(t *testing.T) {
	provider := &directions.MockDirectionsProvider{Err: errors.New("upstream down")}
	cache := newMemoryEstimateCache()
	cache.getErr = errors.New("cache offline")
	est := NewPlanEstimator(provider, cache, nil)

	plans := []domain.VehiclePlan{
		planFor("v1", order("a", 35.0, 139.0, 1), order("b", 35.1, 139.0, 1)),
	}
	est.EstimatePlans(context.Background(), plans, nil)

	assert.Nil(t, plans[0].Estimate)
	assert.Contains(t, plans[0].EstimateError, "upstream down")
	assert.Empty(t, cache.entries)
}

func TestEstimatePlansSingleStopNeedsNoLookup(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(1000, 120)
	est := NewPlanEstimator(provider, nil, nil)

	plans := []domain.VehiclePlan{planFor("v1", order("a", 35.0, 139.0, 1))}
	est.EstimatePlans(context.Background(), plans, nil)

	assert.Nil(t, plans[0].Estimate)
	assert.Empty(t, plans[0].EstimateError)
	assert.Zero(t, provider.Calls())
}

func TestEstimatePlansNilEstimator(t *testing.T) {
	var est *PlanEstimator
	plans := []domain.VehiclePlan{planFor("v1", order("a", 35.0, 139.0, 1), order("b", 35.1, 139.0, 1))}

	assert.NotPanics(t, func() { est.EstimatePlans(context.Background(), plans, nil) })
	assert.Nil(t, plans[0].Estimate)
}
