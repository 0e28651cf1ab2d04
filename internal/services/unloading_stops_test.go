package services

import (
	"dispatch-route-service/internal/domain"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nearButBehind = domain.UnloadingPoint{ID: "p-near", Name: "Near", Location: domain.Coordinates{Lat: 35.0, Lng: 138.95}}
	onTheWay      = domain.UnloadingPoint{ID: "p-way", Name: "On the way", Location: domain.Coordinates{Lat: 35.02, Lng: 139.1}}
)

func TestInsertUnloadingStopsLookaheadChoosesPointTowardsNextStop(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	route := []domain.Order{
		order("s1", 35.0, 139.0, 2),
		order("s2", 35.0, 139.2, 2),
	}
	vehicle := domain.Vehicle{ID: "v", Capacity: 3}

	plan := opt.InsertUnloadingStops(route, vehicle, []domain.UnloadingPoint{nearButBehind, onTheWay}, 0)

	require.Equal(t, []domain.UnloadingStop{
		{AfterSequence: 1, UnloadingPointID: "p-way", UnloadingPointName: "On the way"},
	}, plan.Stops)
	assert.Equal(t, 2.0, plan.PeakLoad)
	assert.Equal(t, 2.0, plan.ResidualLoad)
	assert.Empty(t, plan.Warnings)
}

func TestInsertUnloadingStopsFinalStopUsesNearestPoint(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	route := []domain.Order{
		order("s1", 35.0, 139.2, 2),
		order("s2", 35.0, 139.0, 4),
	}
	vehicle := domain.Vehicle{ID: "v", Capacity: 3}

	plan := opt.InsertUnloadingStops(route, vehicle, []domain.UnloadingPoint{onTheWay, nearButBehind}, 0)

	require.Len(t, plan.Stops, 2)
	assert.Equal(t, 1, plan.Stops[0].AfterSequence)
	assert.Equal(t, 2, plan.Stops[1].AfterSequence)
	assert.Equal(t, "p-near", plan.Stops[1].UnloadingPointID)
	assert.Equal(t, 4.0, plan.PeakLoad)
	assert.Zero(t, plan.ResidualLoad)

	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, domain.WarnOrderExceedsCapacity, plan.Warnings[0].Code)
	assert.Equal(t, "s2", plan.Warnings[0].OrderID)
	assert.Equal(t, "v", plan.Warnings[0].VehicleID)
}

func TestInsertUnloadingStopsWithoutPointsOnlyWarns(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	route := []domain.Order{
		order("s1", 35.0, 139.0, 2),
		order("s2", 35.1, 139.0, 2),
		order("s3", 35.2, 139.0, 2),
		order("s4", 35.3, 139.0, 2),
	}
	vehicle := domain.Vehicle{ID: "v", Capacity: 5}

	plan := opt.InsertUnloadingStops(route, vehicle, nil, 0)

	assert.Empty(t, plan.Stops)
	assert.Equal(t, 8.0, plan.PeakLoad)
	assert.Equal(t, 8.0, plan.ResidualLoad)
	require.Len(t, plan.Warnings, 1, "overflow without unloading points is reported once")
	assert.Equal(t, domain.WarnCapacityNoUnloading, plan.Warnings[0].Code)
	assert.Equal(t, "s3", plan.Warnings[0].OrderID)
}

func TestInsertUnloadingStopsHonoursInitialLoad(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	route := []domain.Order{
		order("s1", 35.0, 139.0, 1),
		order("s2", 35.0, 139.2, 1),
	}
	vehicle := domain.Vehicle{ID: "v", Capacity: 5}

	plan := opt.InsertUnloadingStops(route, vehicle, []domain.UnloadingPoint{onTheWay}, 4)

	require.Len(t, plan.Stops, 1)
	assert.Equal(t, 1, plan.Stops[0].AfterSequence)
	assert.Equal(t, 5.0, plan.PeakLoad)
	assert.Equal(t, 1.0, plan.ResidualLoad)
}

func TestInsertUnloadingStopsNoOverflow(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	route := []domain.Order{
		order("s1", 35.0, 139.0, 1),
		order("s2", 35.0, 139.2, 1.5),
	}
	plan := opt.InsertUnloadingStops(route, domain.Vehicle{ID: "v", Capacity: 5}, []domain.UnloadingPoint{onTheWay}, 0)

	assert.NotNil(t, plan.Stops)
	assert.Empty(t, plan.Stops)
	assert.NotNil(t, plan.Warnings)
	assert.Equal(t, 2.5, plan.ResidualLoad)

	empty := opt.InsertUnloadingStops(nil, domain.Vehicle{ID: "v", Capacity: 5}, nil, 1.5)
	assert.Empty(t, empty.Stops)
	assert.Equal(t, 1.5, empty.ResidualLoad)
}

func TestInsertUnloadingStopsKeepsRunningLoadWithinCapacity(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)
	r := rand.New(rand.NewSource(1))
	points := []domain.UnloadingPoint{onTheWay, nearButBehind}

	for run := 0; run < 50; run++ {
		capacity := 2 + r.Float64()*8
		n := 1 + r.Intn(25)
		route := make([]domain.Order, 0, n)
		for i := 0; i < n; i++ {
			route = append(route, order("s", 35+r.Float64(), 139+r.Float64(), r.Float64()*capacity))
		}

		plan := opt.InsertUnloadingStops(route, domain.Vehicle{ID: "v", Capacity: capacity}, points, 0)

		resetAfter := make(map[int]bool, len(plan.Stops))
		for _, s := range plan.Stops {
			resetAfter[s.AfterSequence] = true
		}

		load := 0.0
		for i, o := range route {
			load += o.CargoVolume
			require.LessOrEqual(t, load, capacity, "run %d: load exceeded capacity at stop %d", run, i+1)
			if resetAfter[i+1] {
				load = 0
			}
		}
		assert.InDelta(t, plan.ResidualLoad, load, 1e-9)
		assert.Empty(t, plan.Warnings)
	}
}
