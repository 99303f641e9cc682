package models

import "time"

// Task is a unit of response work, optionally tied to a case, IOC, asset or group.
type Task struct {
	TaskID       int64      `db:"task_id" json:"taskId"`
	CaseID       *int64     `db:"case_id" json:"caseId,omitempty"`
	IOCID        *int64     `db:"ioc_id" json:"iocId,omitempty"`
	AssetID      *int64     `db:"asset_id" json:"assetId,omitempty"`
	AssetGroupID *int64     `db:"asset_group_id" json:"assetGroupId,omitempty"`
	Assignee     *int64     `db:"assignee" json:"assignee,omitempty"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Priority     *string    `db:"priority" json:"priority,omitempty"`
	Status       *string    `db:"status" json:"status,omitempty"`
	DueDate      *time.Time `db:"due_date" json:"dueDate,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// TaskDetail is a task with the title of its incident and the name of its asset.
type TaskDetail struct {
	Task
	IncidentTitle *string `db:"incident_title" json:"incidentTitle,omitempty"`
	AssetName     *string `db:"asset_name" json:"assetName,omitempty"`
}

// CreateTaskRequest is the body of POST /tasks/create.
type CreateTaskRequest struct {
	CaseID       *int64     `json:"caseId"`
	IOCID        *int64     `json:"iocId"`
	AssetID      *int64     `json:"assetId"`
	AssetGroupID *int64     `json:"assetGroupId"`
	Assignee     *int64     `json:"assignee"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority"`
	Status       *string    `json:"status"`
	DueDate      *time.Time `json:"dueDate"`
}

// UpdateTaskRequest is the body of POST /tasks/update. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	TaskID       FlexibleID `json:"taskId"`
	CaseID       *int64     `json:"caseId"`
	IOCID        *int64     `json:"iocId"`
	AssetID      *int64     `json:"assetId"`
	AssetGroupID *int64     `json:"assetGroupId"`
	Assignee     *int64     `json:"assignee"`
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority"`
	Status       *string    `json:"status"`
	DueDate      *time.Time `json:"dueDate"`
}

// ListTasksRequest is the body of POST /tasks/getAllTasks.
type ListTasksRequest struct {
	CaseIDs []int64 `json:"caseIds"`
}
