package handlers

import (
	"context"
	"dispatch-route-service/internal/api/dto"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/logging"
	"dispatch-route-service/internal/ports"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DispatchService is the application surface the dispatch endpoints call.
type DispatchService interface {
	Propose(ctx context.Context, date time.Time) (domain.DispatchResult, error)
	Apply(ctx context.Context, date time.Time, assignments []domain.Assignment) error
	ReoptimizeRoute(ctx context.Context, date time.Time, vehicleID string) (domain.ReoptimizeResult, error)
}

// DispatchHandler exposes the propose, apply and reoptimize endpoints.
type DispatchHandler struct {
	Service DispatchService
	Log     *zap.Logger
}

// Propose returns a read-only dispatch plan for the requested date.
func (h *DispatchHandler) Propose(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	var req dto.ProposeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	date, ok := h.parseDate(w, r, req.Date)
	if !ok {
		return
	}

	res, err := h.Service.Propose(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, "propose dispatch failed", err)
		return
	}

	out := dto.ProposeResponse{
		Date:       date.Format(time.DateOnly),
		Plans:      make([]dto.VehiclePlanResponse, 0, len(res.Plans)),
		Unassigned: toUnassignedResponses(res.Unassigned),
		Warnings:   toWarningResponses(res.Warnings),
		Stats: dto.StatsResponse{
			TotalOrders:      res.Stats.TotalOrders,
			AssignedOrders:   res.Stats.AssignedOrders,
			UnassignedOrders: res.Stats.UnassignedOrders,
			VehiclesUsed:     res.Stats.VehiclesUsed,
			TotalDistanceKm:  res.Stats.TotalDistanceKm,
		},
	}
	for _, p := range res.Plans {
		out.Plans = append(out.Plans, toVehiclePlanResponse(p))
	}

	writeJSON(w, r, h.Log, http.StatusOK, out)
}

// Apply persists operator-approved assignments.
func (h *DispatchHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPut) {
		return
	}

	var req dto.ApplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	date, ok := h.parseDate(w, r, req.Date)
	if !ok {
		return
	}

	assignments := make([]domain.Assignment, 0, len(req.Assignments))
	applied := 0
	for _, a := range req.Assignments {
		orders := make([]domain.OrderSequence, 0, len(a.Orders))
		for _, o := range a.Orders {
			orders = append(orders, domain.OrderSequence{OrderID: o.ID, SequencePosition: o.SequencePosition})
		}
		applied += len(orders)
		assignments = append(assignments, domain.Assignment{
			VehicleID:   a.VehicleID,
			VehicleName: a.VehicleName,
			Orders:      orders,
		})
	}

	if err := h.Service.Apply(r.Context(), date, assignments); err != nil {
		h.writeServiceError(w, r, "apply dispatch failed", err)
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, dto.ApplyResponse{Applied: applied})
}

// Reoptimize re-sequences one vehicle's already assigned route.
func (h *DispatchHandler) Reoptimize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	var req dto.ReoptimizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	date, ok := h.parseDate(w, r, req.Date)
	if !ok {
		return
	}

	if strings.TrimSpace(req.VehicleID) == "" {
		writeError(w, r, h.Log, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	res, err := h.Service.ReoptimizeRoute(r.Context(), date, req.VehicleID)
	if err != nil {
		h.writeServiceError(w, r, "reoptimize route failed", err)
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, dto.ReoptimizeResponse{
		Date:     date.Format(time.DateOnly),
		Plan:     toVehiclePlanResponse(res.Plan),
		Skipped:  toUnassignedResponses(res.Skipped),
		Warnings: toWarningResponses(res.Warnings),
	})
}

func (h *DispatchHandler) parseDate(w http.ResponseWriter, r *http.Request, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		writeError(w, r, h.Log, http.StatusBadRequest, "date is required")
		return time.Time{}, false
	}

	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// writeServiceError maps service errors to HTTP statuses. Internal details
// are logged, never returned.
func (h *DispatchHandler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, ports.ErrInvalidAssignment):
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, h.Log, http.StatusNotFound, err.Error())
	default:
		if h.Log != nil {
			logging.FromContext(r.Context(), h.Log).Error(msg, zap.Error(err))
		}
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
	}
}

func toVehiclePlanResponse(p domain.VehiclePlan) dto.VehiclePlanResponse {
	out := dto.VehiclePlanResponse{
		VehicleID:       p.VehicleID,
		VehicleName:     p.VehicleName,
		VehicleCapacity: p.VehicleCapacity,
		Stops:           make([]dto.PlannedStopResponse, 0, len(p.Stops)),
		UnloadingStops:  make([]dto.UnloadingStopResponse, 0, len(p.UnloadingStops)),
		TotalDistanceKm: p.TotalDistanceKm,
		TotalLoad:       p.TotalLoad,
		PeakLoad:        p.PeakLoad,
		ResidualLoad:    p.ResidualLoad,
		LegCount:        p.LegCount,
		EstimateError:   p.EstimateError,
	}

	for _, s := range p.Stops {
		out.Stops = append(out.Stops, dto.PlannedStopResponse{
			OrderID:          s.Order.ID,
			SequencePosition: s.SequencePosition,
			Location:         dto.CoordinatesResponse{Lat: s.Order.Location.Lat, Lng: s.Order.Location.Lng},
			CargoVolume:      s.Order.CargoVolume,
			TimeSlot:         s.Order.TimeSlot,
			Address:          s.Order.Address,
			CustomerName:     s.Order.CustomerName,
		})
	}

	for _, u := range p.UnloadingStops {
		out.UnloadingStops = append(out.UnloadingStops, dto.UnloadingStopResponse{
			AfterSequence:      u.AfterSequence,
			UnloadingPointID:   u.UnloadingPointID,
			UnloadingPointName: u.UnloadingPointName,
		})
	}

	if p.Estimate != nil {
		out.Estimate = &dto.RouteEstimateResponse{
			DistanceMeters:  p.Estimate.DistanceMeters,
			DurationSeconds: p.Estimate.DurationSeconds,
		}
	}

	return out
}

func toUnassignedResponses(in []domain.Unassigned) []dto.UnassignedResponse {
	out := make([]dto.UnassignedResponse, 0, len(in))
	for _, u := range in {
		out = append(out, dto.UnassignedResponse{OrderID: u.OrderID, Reason: u.Reason})
	}
	return out
}

func toWarningResponses(in []domain.Warning) []dto.WarningResponse {
	out := make([]dto.WarningResponse, 0, len(in))
	for _, w := range in {
		out = append(out, dto.WarningResponse{
			Code:      w.Code,
			VehicleID: w.VehicleID,
			OrderID:   w.OrderID,
			Message:   w.Message,
		})
	}
	return out
}
