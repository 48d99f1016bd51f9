package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// SessionHandler serves the courier device surface: session control, positions,
// the notification queue and the live track stream.
type SessionHandler struct {
	uc      sessionUsecase
	stream  trackStream
	origins []string
	logger  logx.Logger
}

// NewSessionHandler creates a SessionHandler. origins restricts websocket peers; empty allows same-origin only.
func NewSessionHandler(logger logx.Logger, uc sessionUsecase, stream trackStream, origins []string) *SessionHandler {
	return &SessionHandler{uc: uc, stream: stream, origins: origins, logger: logger}
}

// Start handles POST /couriers/{id}/session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	started, err := h.uc.Start(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	status := http.StatusOK
	if started {
		status = http.StatusCreated
	}
	writeJSON(h.logger, w, r, status, sessionResponse{CourierID: id, Started: started})
}

// Stop handles DELETE /couriers/{id}/session.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.uc.Stop(id); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Positions handles POST /couriers/{id}/positions. A body holding only stale fixes is not an error.
func (h *SessionHandler) Positions(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req positionsRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if len(req.Fixes) == 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "no fixes")
		return
	}

	err = h.uc.ApplyFixes(r.Context(), id, req.Fixes)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusAccepted, positionsResponse{Accepted: true})
	case errors.Is(err, apperr.ErrStaleFix):
		writeJSON(h.logger, w, r, http.StatusOK, positionsResponse{Accepted: false})
	default:
		writeAppError(h.logger, w, r, err)
	}
}

// Trail handles GET /couriers/{id}/trail.
func (h *SessionHandler) Trail(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	trail, err := h.uc.Trail(id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	if trail == nil {
		trail = []domain.Coordinates{}
	}
	writeJSON(h.logger, w, r, http.StatusOK, trail)
}

// Notifications handles GET /couriers/{id}/notifications.
func (h *SessionHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	items, err := h.uc.Pending(id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, notificationsToResponse(items))
}

// AcceptOffer handles POST /couriers/{id}/notifications/{itemID}/accept.
func (h *SessionHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := h.itemParams(w, r)
	if !ok {
		return
	}
	h.resolved(w, r, h.uc.AcceptOffer(r.Context(), id, itemID))
}

// RejectOffer handles POST /couriers/{id}/notifications/{itemID}/reject.
func (h *SessionHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := h.itemParams(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	h.resolved(w, r, h.uc.RejectOffer(r.Context(), id, itemID, req.Reason))
}

// ConfirmMessage handles POST /couriers/{id}/notifications/{itemID}/confirm.
func (h *SessionHandler) ConfirmMessage(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := h.itemParams(w, r)
	if !ok {
		return
	}
	h.resolved(w, r, h.uc.ConfirmMessage(r.Context(), id, itemID))
}

// Track handles GET /couriers/{id}/track and upgrades to a websocket.
func (h *SessionHandler) Track(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	h.stream.Serve(r.Context(), w, r, id, h.origins)
}

func (h *SessionHandler) itemParams(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return 0, "", false
	}
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid item id")
		return 0, "", false
	}
	return id, itemID, true
}

func (h *SessionHandler) resolved(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
