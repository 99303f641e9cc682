package handlers

import (
	"net/http"

	"github.com/axisir/axisir-stack/common/httputil"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

// ListIncidentsByCompany handles GET /incidents/getByCompanyId/{companyId}
func (h *Handler) ListIncidentsByCompany(w http.ResponseWriter, r *http.Request) {
	companyID, valid := pathID(w, r, "companyId")
	if !valid {
		return
	}

	incidents, err := h.svc.Incidents.ListByCompany(r.Context(), companyID, r.URL.Query().Get("timeFrame"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, incidents, "Incidents found")
}

// GetIncident handles GET /incidents/getById/{id}
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	caseID, valid := pathID(w, r, "id")
	if !valid {
		return
	}

	incident, err := h.svc.Incidents.GetByID(r.Context(), caseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, incident, "Incident found")
}

// GetIncidentIOCs handles GET /incidents/getIoc?caseIds=1,2&timeFrame=
func (h *Handler) GetIncidentIOCs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	caseIDs, err := httputil.ParseIDList(q["caseIds"]...)
	if err != nil {
		httputil.WriteJSONAPIValidationError(w, "caseIds must be a comma-separated list of positive integers")
		return
	}

	iocs, err := h.svc.Incidents.GetIOCs(r.Context(), caseIDs, q.Get("timeFrame"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, iocs, "IOCs found")
}

// CreateIncident handles POST /incidents/create
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIncidentRequest
	if !h.decode(w, r, &req) {
		return
	}

	incident, err := h.svc.Incidents.Create(r.Context(), &req, actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, incident, "Incident created", nil)
}

// UpdateIncident handles POST /incidents/update
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateIncidentRequest
	if !h.decode(w, r, &req) {
		return
	}

	incident, err := h.svc.Incidents.Update(r.Context(), &req, actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, incident, "Incident updated")
}
