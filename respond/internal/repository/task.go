package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

var taskColumns = []string{
	"task_id", "case_id", "ioc_id", "asset_id", "asset_group_id", "assignee", "title",
	"description", "priority", "status", "due_date", "created_at", "updated_at",
}

// TaskRepo persists tasks.
type TaskRepo struct{ base }

func NewTaskRepo(pool database.Querier) *TaskRepo {
	return &TaskRepo{base{pool}}
}

// Create inserts t and returns the stored row.
func (r *TaskRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	b := psql.Insert("task").
		Columns("case_id", "ioc_id", "asset_id", "asset_group_id", "assignee", "title", "description", "priority", "status", "due_date").
		Values(t.CaseID, t.IOCID, t.AssetID, t.AssetGroupID, t.Assignee, t.Title, t.Description, t.Priority, t.Status, t.DueDate).
		Suffix("RETURNING " + joinColumns(taskColumns))

	out, err := selectOne[models.Task](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create task", nil)
	}
	return out, nil
}

// Update writes the non-nil fields of req to req.TaskID.
func (r *TaskRepo) Update(ctx context.Context, req *models.UpdateTaskRequest) (*models.Task, error) {
	set := map[string]any{"updated_at": sq.Expr("NOW()")}
	optional := map[string]any{
		"case_id":        req.CaseID,
		"ioc_id":         req.IOCID,
		"asset_id":       req.AssetID,
		"asset_group_id": req.AssetGroupID,
		"assignee":       req.Assignee,
		"title":          req.Title,
		"description":    req.Description,
		"priority":       req.Priority,
		"status":         req.Status,
		"due_date":       req.DueDate,
	}
	for col, v := range optional {
		if !isNilPtr(v) {
			set[col] = v
		}
	}

	b := psql.Update("task").SetMap(set).
		Where(sq.Eq{"task_id": int64(req.TaskID)}).
		Suffix("RETURNING " + joinColumns(taskColumns))

	out, err := selectOne[models.Task](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "update task", ErrTaskNotFound)
	}
	return out, nil
}

func taskDetailSelect() sq.SelectBuilder {
	return psql.Select(qualify("t", taskColumns)...).
		Columns("i.title AS incident_title", "a.name AS asset_name").
		From("task t").
		LeftJoin("incident i ON i.case_id = t.case_id").
		LeftJoin("asset a ON a.asset_id = t.asset_id")
}

// GetByID returns the task with its incident title and asset name.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*models.TaskDetail, error) {
	out, err := selectOne[models.TaskDetail](ctx, r.q(ctx), taskDetailSelect().Where(sq.Eq{"t.task_id": id}))
	if err != nil {
		return nil, mapError(err, "get task", ErrTaskNotFound)
	}
	return out, nil
}

// ListByCases returns the tasks of every case in caseIDs.
func (r *TaskRepo) ListByCases(ctx context.Context, caseIDs []int64) ([]models.TaskDetail, error) {
	if len(caseIDs) == 0 {
		return []models.TaskDetail{}, nil
	}
	b := taskDetailSelect().Where(sq.Eq{"t.case_id": caseIDs}).OrderBy("t.task_id")
	out, err := selectAll[models.TaskDetail](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list tasks", nil)
	}
	return out, nil
}

// isNilPtr reports whether v is a typed nil pointer.
func isNilPtr(v any) bool {
	switch p := v.(type) {
	case *int64:
		return p == nil
	case *string:
		return p == nil
	case *time.Time:
		return p == nil
	default:
		return v == nil
	}
}
