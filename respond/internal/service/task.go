package service

import (
	"context"
	"strings"

	"github.com/axisir/axisir-stack/respond/internal/models"
)

// TaskService handles response tasks.
type TaskService struct {
	*core
	tasks     TaskStore
	incidents IncidentStore
}

// ListByIncident returns the tasks of caseID. The incident must exist.
func (s *TaskService) ListByIncident(ctx context.Context, caseID int64) ([]models.TaskDetail, error) {
	if _, err := s.incidents.GetByID(ctx, caseID); err != nil {
		return nil, fromRepo(err, "An error occurred while fetching tasks.")
	}
	out, err := s.tasks.ListByCases(ctx, []int64{caseID})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching tasks.")
	}
	return out, nil
}

// ListByCases returns the tasks of every case in caseIDs.
func (s *TaskService) ListByCases(ctx context.Context, caseIDs []int64) ([]models.TaskDetail, error) {
	if len(caseIDs) == 0 {
		return nil, badRequest("caseIds", "caseIds is required")
	}
	out, err := s.tasks.ListByCases(ctx, caseIDs)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching tasks.")
	}
	return out, nil
}

func (s *TaskService) GetByID(ctx context.Context, taskID int64) (*models.TaskDetail, error) {
	out, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching task.")
	}
	return out, nil
}

func (s *TaskService) Create(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, badRequest("title", "title is required")
	}
	out, err := s.tasks.Create(ctx, &models.Task{
		CaseID:       req.CaseID,
		IOCID:        req.IOCID,
		AssetID:      req.AssetID,
		AssetGroupID: req.AssetGroupID,
		Assignee:     req.Assignee,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		DueDate:      req.DueDate,
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while creating task.")
	}
	return out, nil
}

// Update writes the supplied fields of task req.TaskID.
func (s *TaskService) Update(ctx context.Context, req *models.UpdateTaskRequest) (*models.Task, error) {
	if req.TaskID == 0 {
		return nil, badRequest("taskId", "taskId is required")
	}
	out, err := s.tasks.Update(ctx, req)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while updating task.")
	}
	return out, nil
}
