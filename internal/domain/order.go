package domain

// Order is a single pickup booking to be routed.
// Orders are inputs to the optimizer and are never mutated by it.
type Order struct {
	ID           string
	Location     Coordinates
	CargoVolume  float64
	TimeSlot     string
	Address      string
	CustomerName string
}

// Vehicle is a routable driver/vehicle pair.
// Capacity and Order.CargoVolume share the same (volumetric) unit.
type Vehicle struct {
	ID          string
	Name        string
	Capacity    float64
	VehicleType string
}

// UnloadingPoint is a depot or drop-off site a vehicle can detour to.
type UnloadingPoint struct {
	ID       string
	Name     string
	Location Coordinates
}
