package models

import "time"

// StatusClosed is the only incident status with a side effect: it sets closedAt.
const StatusClosed = "CLOSED"

// Incident is a tracked security case, scoped to a company.
// ClosedAt is non-nil exactly when Status is StatusClosed.
type Incident struct {
	CaseID      int64      `db:"case_id" json:"caseId"`
	CompanyID   int64      `db:"company_id" json:"companyId"`
	Assignee    *int64     `db:"assignee" json:"assignee,omitempty"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Status      string     `db:"status" json:"status"`
	Priority    *string    `db:"priority" json:"priority,omitempty"`
	TLP         *string    `db:"tlp" json:"tlp,omitempty"`
	OpenedAt    time.Time  `db:"opened_at" json:"openedAt"`
	ClosedAt    *time.Time `db:"closed_at" json:"closedAt"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsClosed reports whether the status is the closing sentinel.
func (i *Incident) IsClosed() bool {
	return i.Status == StatusClosed
}

// IncidentSummary is a list row: the incident plus its assignee's display name.
type IncidentSummary struct {
	Incident
	AssigneeName *string `db:"assignee_name" json:"assigneeName,omitempty"`
}

// IncidentDetail is a single incident with its assignee and reports attached.
type IncidentDetail struct {
	Incident
	AssigneeName *string      `json:"assigneeName,omitempty"`
	AssigneeUser *UserSummary `json:"assigneeUser,omitempty"`
	Reports      []Report     `json:"reports"`
}

// CreateIncidentRequest is the body of POST /incidents/create.
type CreateIncidentRequest struct {
	CompanyID   FlexibleID `json:"companyId"`
	Assignee    *int64     `json:"assignee"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    *string    `json:"priority"`
	TLP         *string    `json:"tlp"`
	OpenedAt    *time.Time `json:"openedAt"`
	ClosedAt    *time.Time `json:"closedAt"`
}

// UpdateIncidentRequest is the body of POST /incidents/update. Nil fields are
// left unchanged; "assignee": null unassigns the incident.
type UpdateIncidentRequest struct {
	CaseID      FlexibleID `json:"caseId"`
	Assignee    OptionalID `json:"assignee"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	TLP         *string    `json:"tlp"`
	OpenedAt    *time.Time `json:"openedAt"`
	ClosedAt    *time.Time `json:"closedAt"`
}
