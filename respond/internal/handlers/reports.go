package handlers

import (
	"net/http"

	"github.com/axisir/axisir-stack/common/httputil"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

// ListReports handles GET /reports?companyId=
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	var companyID *int64
	if raw := r.URL.Query().Get("companyId"); raw != "" {
		id, err := httputil.ParseID(raw)
		if err != nil {
			httputil.WriteJSONAPIValidationError(w, "companyId must be a positive integer")
			return
		}
		companyID = &id
	}

	reports, err := h.svc.Reports.List(r.Context(), companyID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, reports, "Reports found")
}

// GetReport handles GET /reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID, valid := pathID(w, r, "id")
	if !valid {
		return
	}

	report, err := h.svc.Reports.GetByID(r.Context(), reportID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, report, "Report found")
}

// CreateReport handles POST /reports/create
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	report, err := h.svc.Reports.Create(r.Context(), &req, actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, report, "Report created", nil)
}
