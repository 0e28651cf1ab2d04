package services

import (
	"dispatch-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeRouteShortInputsAreReturnedAsIs(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	assert.Empty(t, opt.OptimizeRoute(nil))

	in := []domain.Order{
		order("south", 35.0, 139.0, 1),
		order("north", 36.0, 139.0, 1),
	}
	out := opt.OptimizeRoute(in)
	assert.Equal(t, []string{"south", "north"}, ids(out))

	out[0].ID = "changed"
	assert.Equal(t, "south", in[0].ID, "result must not alias the input")
}

func TestNearestNeighborStartsNorthernmost(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	route := opt.NearestNeighborRoute([]domain.Order{
		order("a", 35.60, 139.70, 1),
		order("b", 35.80, 139.70, 1),
		order("c", 35.70, 139.70, 1),
		order("d", 35.50, 139.70, 1),
	})

	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(route))
}

func TestNearestNeighborTieKeepsInputOrder(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	// "east" and "west" are equidistant from the start.
	route := opt.NearestNeighborRoute([]domain.Order{
		order("start", 35.75, 139.5, 1),
		order("east", 35.5, 139.75, 1),
		order("west", 35.5, 139.25, 1),
	})

	assert.Equal(t, []string{"start", "east", "west"}, ids(route))
}

func TestTwoOptRemovesCrossing(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	a := order("a", 35.0, 139.0, 1)
	b := order("b", 35.1, 139.1, 1)
	c := order("c", 35.0, 139.1, 1)
	d := order("d", 35.1, 139.0, 1)

	crossed := []domain.Order{a, b, c, d}
	improved := opt.improveTwoOpt(crossed)

	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(improved))
	assert.Less(t, opt.RouteDistance(improved), opt.RouteDistance(crossed))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(crossed), "input must not be mutated")
}

func TestOptimizeRouteProperties(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	for _, n := range []int{3, 5, 8, 13, 30} {
		orders := scatter(n)
		before := ids(orders)

		route := opt.OptimizeRoute(orders)

		require.Len(t, route, n)
		assert.Equal(t, sortedIDs(orders), sortedIDs(route), "route must be a permutation of the input")
		assert.LessOrEqual(t, opt.RouteDistance(route), opt.RouteDistance(opt.NearestNeighborRoute(orders)))
		assert.Equal(t, before, ids(orders), "input must not be mutated")
		assert.Equal(t, ids(route), ids(opt.OptimizeRoute(orders)), "runs must be deterministic")
	}
}

func TestRouteDistance(t *testing.T) {
	opt := NewOptimizer(DefaultOptions(), nil)

	route := []domain.Order{
		order("a", 35.0, 139.0, 1),
		order("b", 36.0, 139.0, 1),
	}
	// 111.19 km great-circle times 1.4.
	assert.Equal(t, 155.7, opt.RouteDistance(route))
	assert.Zero(t, opt.RouteDistance(route[:1]))
	assert.Zero(t, opt.RouteDistance(nil))

	straight := NewOptimizer(Options{DetourMultiplier: 1}, nil)
	assert.Equal(t, 111.2, straight.RouteDistance(route))
}
