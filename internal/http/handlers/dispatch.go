package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// DispatchHandler serves order dispatch endpoints.
type DispatchHandler struct {
	usecase dispatchUsecase
	logger  logx.Logger
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(logger logx.Logger, uc dispatchUsecase) *DispatchHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DispatchHandler{usecase: uc, logger: logger}
}

// Dispatch handles POST /dispatch. The search runs in the background; poll
// GET /orders/{id}/assignment for the result.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	att := req.attempt()
	if err := h.usecase.Submit(r.Context(), att); err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	orderID := strings.TrimSpace(att.OrderID)
	w.Header().Set("Location", "/orders/"+orderID+"/assignment")
	writeJSON(h.logger, w, r, http.StatusAccepted, orderStatusResponse{
		OrderID: orderID,
		Status:  string(domain.AssignmentSearching),
	})
}

// Accept handles POST /orders/{id}/accept. It answers 409 "too late" when the
// partner's acceptance window is closed.
func (h *DispatchHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	orderID := chi.URLParam(r, "id")
	if err := h.usecase.Accept(r.Context(), orderID, req.PartnerID); err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderStatusResponse{
		OrderID:   strings.TrimSpace(orderID),
		PartnerID: strings.TrimSpace(req.PartnerID),
		Status:    "accepted",
	})
}

// Cancel handles POST /orders/{id}/cancel.
func (h *DispatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if err := h.usecase.Cancel(r.Context(), orderID); err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusAccepted, orderStatusResponse{
		OrderID: strings.TrimSpace(orderID),
		Status:  "cancelling",
	})
}

// Assignment handles GET /orders/{id}/assignment.
func (h *DispatchHandler) Assignment(w http.ResponseWriter, r *http.Request) {
	a, err := h.usecase.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(a))
}
