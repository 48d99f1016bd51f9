package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/lifecycle"
)

// OrderHandler exposes delivery lifecycle events.
type OrderHandler struct {
	uc     lifecycleUsecase
	logger logx.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(logger logx.Logger, uc lifecycleUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, logger: logger}
}

type eventFunc func(ctx context.Context, orderID string, req orderEventRequest) (lifecycle.Result, error)

func (h *OrderHandler) event(apply eventFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "id"))
		if orderID == "" {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
			return
		}
		var req orderEventRequest
		if ok := decodeJSON(h.logger, w, r, &req); !ok {
			return
		}
		if req.CourierID <= 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier id")
			return
		}

		res, err := apply(r.Context(), orderID, req)
		if err != nil {
			writeAppError(h.logger, w, r, err)
			return
		}
		writeJSON(h.logger, w, r, http.StatusOK, resultToResponse(res))
	}
}

// ArrivedAtStore handles POST /orders/{id}/arrived-at-store.
func (h *OrderHandler) ArrivedAtStore() http.HandlerFunc {
	return h.event(func(ctx context.Context, id string, req orderEventRequest) (lifecycle.Result, error) {
		return h.uc.ArrivedAtStore(ctx, id, req.CourierID)
	})
}

// Pickup handles POST /orders/{id}/pickup with the pickup code.
func (h *OrderHandler) Pickup() http.HandlerFunc {
	return h.event(func(ctx context.Context, id string, req orderEventRequest) (lifecycle.Result, error) {
		return h.uc.ConfirmPickupCode(ctx, id, req.CourierID, req.Code)
	})
}

// Depart handles POST /orders/{id}/depart.
func (h *OrderHandler) Depart() http.HandlerFunc {
	return h.event(func(ctx context.Context, id string, req orderEventRequest) (lifecycle.Result, error) {
		return h.uc.Depart(ctx, id, req.CourierID)
	})
}

// ArrivedAtCustomer handles POST /orders/{id}/arrived-at-customer.
func (h *OrderHandler) ArrivedAtCustomer() http.HandlerFunc {
	return h.event(func(ctx context.Context, id string, req orderEventRequest) (lifecycle.Result, error) {
		return h.uc.ArrivedAtCustomer(ctx, id, req.CourierID)
	})
}

// Deliver handles POST /orders/{id}/deliver with the delivery code.
func (h *OrderHandler) Deliver() http.HandlerFunc {
	return h.event(func(ctx context.Context, id string, req orderEventRequest) (lifecycle.Result, error) {
		return h.uc.ConfirmDeliveryCode(ctx, id, req.CourierID, req.Code)
	})
}

// Cancel handles POST /orders/{id}/cancel.
func (h *OrderHandler) Cancel() http.HandlerFunc {
	return h.event(func(ctx context.Context, id string, req orderEventRequest) (lifecycle.Result, error) {
		return h.uc.Cancel(ctx, id, req.CourierID, req.Reason)
	})
}

// Status handles GET /orders/{id}/status.
func (h *OrderHandler) Status(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(chi.URLParam(r, "id"))
	if orderID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	v, err := h.uc.Status(r.Context(), orderID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, statusToResponse(v))
}
