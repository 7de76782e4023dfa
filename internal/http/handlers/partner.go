package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/partner"
)

// PartnerHandler serves partner location and availability endpoints.
type PartnerHandler struct {
	usecase partnerUsecase
	logger  logx.Logger
}

// NewPartnerHandler creates a new PartnerHandler.
func NewPartnerHandler(logger logx.Logger, uc partnerUsecase) *PartnerHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &PartnerHandler{usecase: uc, logger: logger}
}

// UpdateLocation handles PUT /partners/{id}/location.
func (h *PartnerHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if err := h.usecase.UpdateLocation(r.Context(), chi.URLParam(r, "id"), req.point()); err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GoOffline handles DELETE /partners/{id}/location.
func (h *PartnerHandler) GoOffline(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.GoOffline(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAvailable handles POST /partners/{id}/available.
func (h *PartnerHandler) MarkAvailable(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.MarkAvailable(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Nearby handles GET /partners/nearby?lat=&lon=&radius=&unit=&available=.
func (h *PartnerHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid lat")
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid lon")
		return
	}
	radius, err := strconv.ParseFloat(q.Get("radius"), 64)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid radius")
		return
	}
	unit, err := domain.ParseUnit(q.Get("unit"))
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid unit")
		return
	}
	onlyAvailable := false
	if s := q.Get("available"); s != "" {
		if onlyAvailable, err = strconv.ParseBool(s); err != nil {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid available")
			return
		}
	}

	list, err := h.usecase.Nearby(r.Context(), partner.NearbyQuery{
		Origin:        domain.Point{Lat: lat, Lon: lon},
		Radius:        radius,
		Unit:          unit,
		OnlyAvailable: onlyAvailable,
	})
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, candidatesToResponse(list))
}
