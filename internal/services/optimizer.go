package services

import (
	"dispatch-route-service/internal/domain"

	"go.uber.org/zap"
)

// Optimizer builds dispatch plans from orders, vehicles and unloading points.
//
// It performs no I/O and holds no mutable state, so a single Optimizer may be
// shared by concurrent callers. Runs are deterministic for a given input.
type Optimizer struct {
	opts Options
	log  *zap.Logger
}

// NewOptimizer fills zero options with defaults. Values Validate would reject
// also fall back to their defaults.
func NewOptimizer(opts Options, log *zap.Logger) *Optimizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Optimizer{opts: opts.WithDefaults().sanitize(), log: log}
}

func (o *Optimizer) Options() Options { return o.opts }

// travelKm estimates road distance between two points.
func (o *Optimizer) travelKm(a, b domain.Coordinates) float64 {
	return Haversine(a, b) * o.opts.DetourMultiplier
}

func (o *Optimizer) warn(w domain.Warning) domain.Warning {
	o.log.Warn(w.Message,
		zap.String("code", w.Code),
		zap.String("vehicle_id", w.VehicleID),
		zap.String("order_id", w.OrderID),
	)
	return w
}
