package handlers

import (
	"net/http"

	"github.com/axisir/axisir-stack/respond/internal/models"
)

// ListTasksByIncident handles GET /tasks/getByIncidentId/{incidentId}
func (h *Handler) ListTasksByIncident(w http.ResponseWriter, r *http.Request) {
	caseID, valid := pathID(w, r, "incidentId")
	if !valid {
		return
	}

	tasks, err := h.svc.Tasks.ListByIncident(r.Context(), caseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, tasks, "Tasks found")
}

// ListTasks handles POST /tasks/getAllTasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var req models.ListTasksRequest
	if !h.decode(w, r, &req) {
		return
	}

	tasks, err := h.svc.Tasks.ListByCases(r.Context(), req.CaseIDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, tasks, "Tasks found")
}

// GetTask handles GET /tasks/getById/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, valid := pathID(w, r, "id")
	if !valid {
		return
	}

	task, err := h.svc.Tasks.GetByID(r.Context(), taskID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, task, "Task found")
}

// CreateTask handles POST /tasks/create
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.svc.Tasks.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, task, "Task created", nil)
}

// UpdateTask handles POST /tasks/update
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.svc.Tasks.Update(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, task, "Task updated")
}
