package domain

// Reasons attached to orders that did not make it into any plan.
const (
	ReasonNoCoordinates           = "no coordinates"
	ReasonNoClusterAssignment     = "no cluster assignment"
	ReasonNoVehicleAvailable      = "no vehicle available"
	ReasonClusterAssignmentFailed = "cluster assignment failed"
)

// Warning codes emitted by the optimizer. Warnings never abort a run.
const (
	WarnOrderExceedsCapacity = "order_exceeds_capacity"
	WarnCapacityNoUnloading  = "capacity_exceeded_no_unloading_point"
)

// Cluster is a geographic group of orders pending vehicle assignment.
type Cluster struct {
	Centroid  Coordinates
	Orders    []Order
	TotalLoad float64
}

// ClusterAssignment pairs a cluster with the vehicle chosen for it.
// Vehicle is nil when no vehicle could be paired.
type ClusterAssignment struct {
	Cluster Cluster
	Vehicle *Vehicle
}

// UnloadingStop is a detour scheduled after the stop at AfterSequence (1-based).
type UnloadingStop struct {
	AfterSequence      int
	UnloadingPointID   string
	UnloadingPointName string
}

// UnloadingPlan is the output of the unloading-stop pass over one route.
type UnloadingPlan struct {
	Stops        []UnloadingStop
	PeakLoad     float64
	ResidualLoad float64
	Warnings     []Warning
}

// PlannedStop is an order at its position in a vehicle's route.
type PlannedStop struct {
	Order            Order
	SequencePosition int
}

// RouteEstimate is a road-network travel estimate from an external
// directions service.
type RouteEstimate struct {
	DistanceMeters  int
	DurationSeconds int
}

// VehiclePlan is the read-only result for one vehicle.
type VehiclePlan struct {
	VehicleID       string
	VehicleName     string
	VehicleCapacity float64
	Stops           []PlannedStop
	UnloadingStops  []UnloadingStop
	TotalDistanceKm float64
	TotalLoad       float64
	PeakLoad        float64
	ResidualLoad    float64
	LegCount        int

	// Populated by the dispatch service on a best-effort basis.
	Estimate      *RouteEstimate
	EstimateError string
}

// Orders returns the plan's orders in route order.
func (p VehiclePlan) Orders() []Order {
	out := make([]Order, 0, len(p.Stops))
	for _, s := range p.Stops {
		out = append(out, s.Order)
	}
	return out
}

// Unassigned records an order left out of every plan and why.
type Unassigned struct {
	OrderID string
	Reason  string
}

// Warning is an operational diagnostic raised while planning.
type Warning struct {
	Code      string
	VehicleID string
	OrderID   string
	Message   string
}

// DispatchStats aggregates a proposal run.
type DispatchStats struct {
	TotalOrders      int
	AssignedOrders   int
	UnassignedOrders int
	VehiclesUsed     int
	TotalDistanceKm  float64
}

// DispatchResult is the full output of a proposal run.
type DispatchResult struct {
	Plans      []VehiclePlan
	Unassigned []Unassigned
	Warnings   []Warning
	Stats      DispatchStats
}

// ReoptimizeResult is the output of re-sequencing one vehicle's stops.
type ReoptimizeResult struct {
	Plan     VehiclePlan
	Skipped  []Unassigned
	Warnings []Warning
}

// OrderSequence is a persisted position of one order within a route.
type OrderSequence struct {
	OrderID          string
	SequencePosition int
}

// Assignment is an operator-approved route for one vehicle.
type Assignment struct {
	VehicleID   string
	VehicleName string
	Orders      []OrderSequence
}
