package handlers

import (
	"net/http"

	"courier-dispatch/internal/logx"
)

// RouteHandler plans visiting orders for a courier.
type RouteHandler struct {
	planner routePlanner
	logger  logx.Logger
}

// NewRouteHandler creates a RouteHandler.
func NewRouteHandler(logger logx.Logger, planner routePlanner) *RouteHandler {
	return &RouteHandler{planner: planner, logger: logger}
}

// Plan handles POST /couriers/{id}/route.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	courierID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req planRouteRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	plan, err := h.planner.Plan(r.Context(), courierID, req.Start, req.OrderIDs)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, planToResponse(plan))
}
