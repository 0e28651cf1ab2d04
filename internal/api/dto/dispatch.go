package dto

// ProposeRequest asks for a dispatch proposal for one date (YYYY-MM-DD).
type ProposeRequest struct {
	Date string `json:"date"`
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PlannedStopResponse struct {
	OrderID          string              `json:"order_id"`
	SequencePosition int                 `json:"sequence_position"`
	Location         CoordinatesResponse `json:"location"`
	CargoVolume      float64             `json:"cargo_volume"`
	TimeSlot         string              `json:"time_slot,omitempty"`
	Address          string              `json:"address,omitempty"`
	CustomerName     string              `json:"customer_name,omitempty"`
}

type UnloadingStopResponse struct {
	AfterSequence      int    `json:"after_sequence"`
	UnloadingPointID   string `json:"unloading_point_id"`
	UnloadingPointName string `json:"unloading_point_name"`
}

type RouteEstimateResponse struct {
	DistanceMeters  int `json:"distance_meters"`
	DurationSeconds int `json:"duration_seconds"`
}

type VehiclePlanResponse struct {
	VehicleID       string                  `json:"vehicle_id"`
	VehicleName     string                  `json:"vehicle_name"`
	VehicleCapacity float64                 `json:"vehicle_capacity"`
	Stops           []PlannedStopResponse   `json:"stops"`
	UnloadingStops  []UnloadingStopResponse `json:"unloading_stops"`
	TotalDistanceKm float64                 `json:"total_distance_km"`
	TotalLoad       float64                 `json:"total_load"`
	PeakLoad        float64                 `json:"peak_load"`
	ResidualLoad    float64                 `json:"residual_load"`
	LegCount        int                     `json:"leg_count"`
	Estimate        *RouteEstimateResponse  `json:"estimate,omitempty"`
	EstimateError   string                  `json:"estimate_error,omitempty"`
}

type UnassignedResponse struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type WarningResponse struct {
	Code      string `json:"code"`
	VehicleID string `json:"vehicle_id,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
	Message   string `json:"message"`
}

type StatsResponse struct {
	TotalOrders      int     `json:"total_orders"`
	AssignedOrders   int     `json:"assigned_orders"`
	UnassignedOrders int     `json:"unassigned_orders"`
	VehiclesUsed     int     `json:"vehicles_used"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
}

type ProposeResponse struct {
	Date       string                `json:"date"`
	Plans      []VehiclePlanResponse `json:"plans"`
	Unassigned []UnassignedResponse  `json:"unassigned"`
	Warnings   []WarningResponse     `json:"warnings"`
	Stats      StatsResponse         `json:"stats"`
}

type OrderSequenceRequest struct {
	ID               string `json:"id"`
	SequencePosition int    `json:"sequence_position"`
}

type AssignmentRequest struct {
	VehicleID   string                 `json:"vehicle_id"`
	VehicleName string                 `json:"vehicle_name"`
	Orders      []OrderSequenceRequest `json:"orders"`
}

// ApplyRequest persists operator-approved assignments for one date.
type ApplyRequest struct {
	Date        string              `json:"date"`
	Assignments []AssignmentRequest `json:"assignments"`
}

type ApplyResponse struct {
	Applied int `json:"applied"`
}

// ReoptimizeRequest re-sequences one vehicle's route for one date.
type ReoptimizeRequest struct {
	Date      string `json:"date"`
	VehicleID string `json:"vehicle_id"`
}

type ReoptimizeResponse struct {
	Date     string               `json:"date"`
	Plan     VehiclePlanResponse  `json:"plan"`
	Skipped  []UnassignedResponse `json:"skipped"`
	Warnings []WarningResponse    `json:"warnings"`
}
