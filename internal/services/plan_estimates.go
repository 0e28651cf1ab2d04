package services

import (
	"context"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/logging"
	"dispatch-route-service/internal/platform/metrics"
	"dispatch-route-service/internal/ports"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultMaxInFlight = 4

// PlanEstimator augments vehicle plans with road-network travel estimates.
// Estimates are best-effort: failures are recorded on the plan, never returned.
type PlanEstimator struct {
	Provider    ports.DirectionsProvider
	Cache       ports.EstimateCache
	MaxInFlight int
	Log         *zap.Logger
}

func NewPlanEstimator(provider ports.DirectionsProvider, cache ports.EstimateCache, log *zap.Logger) *PlanEstimator {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlanEstimator{
		Provider:    provider,
		Cache:       cache,
		MaxInFlight: defaultMaxInFlight,
		Log:         log,
	}
}

// EstimatePlans fills Estimate (or EstimateError) on every plan in place.
func (e *PlanEstimator) EstimatePlans(ctx context.Context, plans []domain.VehiclePlan, points []domain.UnloadingPoint) {
	if e == nil || e.Provider == nil || len(plans) == 0 {
		return
	}

	limit := e.MaxInFlight
	if limit <= 0 {
		limit = defaultMaxInFlight
	}

	var g errgroup.Group
	g.SetLimit(limit)

	// Each goroutine writes only its own plan index.
	for i := range plans {
		i := i
		waypoints := Waypoints(plans[i], points)
		// A single stop has no legs to estimate; Estimate stays nil.
		if len(waypoints) < 2 {
			continue
		}
		g.Go(func() error {
			est, err := e.estimate(ctx, waypoints)
			if err != nil {
				logging.FromContext(ctx, e.Log).Warn("route estimate failed",
					zap.String("vehicle_id", plans[i].VehicleID),
					zap.Error(err),
				)
				plans[i].EstimateError = err.Error()
				return nil
			}
			plans[i].Estimate = &est
			return nil
		})
	}

	_ = g.Wait()
}

func (e *PlanEstimator) estimate(ctx context.Context, waypoints []domain.Coordinates) (domain.RouteEstimate, error) {
	key := EstimateKey(waypoints)
	if e.Cache != nil {
		est, ok, err := e.Cache.Get(ctx, key)
		if err != nil {
			logging.FromContext(ctx, e.Log).Warn("estimate cache read failed", zap.Error(err))
		} else if ok {
			metrics.DirectionsRequests.WithLabelValues("hit").Inc()
			return est, nil
		}
	}

	est, err := e.Provider.EstimateRoute(ctx, waypoints)
	if err != nil {
		metrics.DirectionsRequests.WithLabelValues("error").Inc()
		return domain.RouteEstimate{}, fmt.Errorf("estimate route: %w", err)
	}
	metrics.DirectionsRequests.WithLabelValues("fetched").Inc()

	if e.Cache != nil {
		if err := e.Cache.Put(ctx, key, est); err != nil {
			logging.FromContext(ctx, e.Log).Warn("estimate cache write failed", zap.Error(err))
		}
	}

	return est, nil
}

// Waypoints lists the coordinates a vehicle visits in order, including
// detours to unloading points.
func Waypoints(plan domain.VehiclePlan, points []domain.UnloadingPoint) []domain.Coordinates {
	byID := make(map[string]domain.Coordinates, len(points))
	for _, p := range points {
		byID[p.ID] = p.Location
	}

	detours := make(map[int][]domain.Coordinates, len(plan.UnloadingStops))
	for _, u := range plan.UnloadingStops {
		if loc, ok := byID[u.UnloadingPointID]; ok {
			detours[u.AfterSequence] = append(detours[u.AfterSequence], loc)
		}
	}

	out := make([]domain.Coordinates, 0, len(plan.Stops)+len(plan.UnloadingStops))
	for _, s := range plan.Stops {
		out = append(out, s.Order.Location)
		out = append(out, detours[s.SequencePosition]...)
	}
	return out
}

// EstimateKey derives a stable cache key from an ordered waypoint list.
func EstimateKey(waypoints []domain.Coordinates) string {
	h := xxhash.New()
	buf := make([]byte, 0, 32)
	for _, w := range waypoints {
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, w.Lat, 'f', 6, 64)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, w.Lng, 'f', 6, 64)
		buf = append(buf, ';')
		_, _ = h.Write(buf)
	}
	return "estimate:" + strconv.FormatUint(h.Sum64(), 16)
}
