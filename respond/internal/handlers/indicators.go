package handlers

import (
	"net/http"

	"github.com/axisir/axisir-stack/respond/internal/models"
)

// ListIndicators handles GET /indicators?timeFrame=
func (h *Handler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := h.svc.Indicators.List(r.Context(), r.URL.Query().Get("timeFrame"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, indicators, "Indicators found")
}

// GetIndicator handles GET /indicators/{id}
func (h *Handler) GetIndicator(w http.ResponseWriter, r *http.Request) {
	iocID, valid := pathID(w, r, "id")
	if !valid {
		return
	}

	indicator, err := h.svc.Indicators.GetByID(r.Context(), iocID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, indicator, "Indicator found")
}

// CreateIndicator handles POST /indicators/create
func (h *Handler) CreateIndicator(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIndicatorRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Indicators.Create(r.Context(), &req, actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, res, "Indicator created", nil)
}

// UpdateIndicator handles POST /indicators/update
func (h *Handler) UpdateIndicator(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateIndicatorRequest
	if !h.decode(w, r, &req) {
		return
	}

	indicator, err := h.svc.Indicators.Update(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, indicator, "Indicator updated")
}

// DeleteIndicator handles DELETE /indicators/{id}. Only the links are removed.
func (h *Handler) DeleteIndicator(w http.ResponseWriter, r *http.Request) {
	iocID, valid := pathID(w, r, "id")
	if !valid {
		return
	}

	n, err := h.svc.Indicators.DeleteLinks(r.Context(), iocID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, map[string]int64{"iocId": iocID, "deleted": n}, "Indicator deleted")
}
