package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/respond/internal/models"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
)

var incidentColumns = []string{
	"case_id", "company_id", "assignee", "title", "description", "status", "priority",
	"tlp", "opened_at", "closed_at", "created_at", "updated_at",
}

// assigneeNameExpr is "first last" when either is set, else the username.
// It is NULL when the incident has no assignee.
const assigneeNameExpr = "COALESCE(NULLIF(TRIM(CONCAT_WS(' ', u.first_name, u.last_name)), ''), u.username) AS assignee_name"

// IncidentRepo persists incidents.
type IncidentRepo struct{ base }

func NewIncidentRepo(pool database.Querier) *IncidentRepo {
	return &IncidentRepo{base{pool}}
}

// Create inserts inc and returns the stored row.
func (r *IncidentRepo) Create(ctx context.Context, inc *models.Incident) (*models.Incident, error) {
	b := psql.Insert("incident").
		Columns("company_id", "assignee", "title", "description", "status", "priority", "tlp", "opened_at", "closed_at").
		Values(inc.CompanyID, inc.Assignee, inc.Title, inc.Description, inc.Status, inc.Priority, inc.TLP, inc.OpenedAt, inc.ClosedAt).
		Suffix("RETURNING " + joinColumns(incidentColumns))

	out, err := selectOne[models.Incident](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create incident", nil)
	}
	return out, nil
}

// Update overwrites every mutable column of inc.CaseID.
func (r *IncidentRepo) Update(ctx context.Context, inc *models.Incident) (*models.Incident, error) {
	b := psql.Update("incident").SetMap(map[string]any{
		"assignee":    inc.Assignee,
		"title":       inc.Title,
		"description": inc.Description,
		"status":      inc.Status,
		"priority":    inc.Priority,
		"tlp":         inc.TLP,
		"opened_at":   inc.OpenedAt,
		"closed_at":   inc.ClosedAt,
		"updated_at":  sq.Expr("NOW()"),
	}).
		Where(sq.Eq{"case_id": inc.CaseID}).
		Suffix("RETURNING " + joinColumns(incidentColumns))

	out, err := selectOne[models.Incident](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "update incident", ErrIncidentNotFound)
	}
	return out, nil
}

func (r *IncidentRepo) GetByID(ctx context.Context, id int64) (*models.Incident, error) {
	b := psql.Select(incidentColumns...).From("incident").Where(sq.Eq{"case_id": id})
	out, err := selectOne[models.Incident](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get incident", ErrIncidentNotFound)
	}
	return out, nil
}

// ListByCompany returns the incidents of companyID opened inside w, newest
// first, with the assignee's display name left-joined in.
func (r *IncidentRepo) ListByCompany(ctx context.Context, companyID int64, w timeframe.Window) ([]models.IncidentSummary, error) {
	b := psql.Select(qualify("i", incidentColumns)...).
		Column(assigneeNameExpr).
		From("incident i").
		LeftJoin("users u ON u.user_id = i.assignee").
		Where(sq.Eq{"i.company_id": companyID}).
		Where(w.Predicate("i.opened_at")).
		OrderBy("i.opened_at DESC", "i.case_id DESC")

	out, err := selectAll[models.IncidentSummary](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list incidents", nil)
	}
	return out, nil
}
