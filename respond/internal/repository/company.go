package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

var companyColumns = []string{
	"company_id", "cin", "name", "industry", "address", "primary_email",
	"primary_phone", "is_active", "description", "created_at", "updated_at",
}

// CompanyRepo persists companies.
type CompanyRepo struct{ base }

func NewCompanyRepo(pool database.Querier) *CompanyRepo {
	return &CompanyRepo{base{pool}}
}

// Create inserts c and returns the stored row.
func (r *CompanyRepo) Create(ctx context.Context, c *models.Company) (*models.Company, error) {
	b := psql.Insert("company").
		Columns("cin", "name", "industry", "address", "primary_email", "primary_phone", "description").
		Values(c.CIN, c.Name, c.Industry, c.Address, c.PrimaryEmail, c.PrimaryPhone, c.Description).
		Suffix("RETURNING " + joinColumns(companyColumns))

	out, err := selectOne[models.Company](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create company", nil)
	}
	return out, nil
}

// GetByID returns ErrCompanyNotFound when id does not exist.
func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	b := psql.Select(companyColumns...).From("company").Where(sq.Eq{"company_id": id})
	out, err := selectOne[models.Company](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get company", ErrCompanyNotFound)
	}
	return out, nil
}

// Exists reports whether company id exists.
func (r *CompanyRepo) Exists(ctx context.Context, id int64) (bool, error) {
	ok, err := exists(ctx, r.q(ctx), psql.Select("1").From("company").Where(sq.Eq{"company_id": id}))
	if err != nil {
		return false, mapError(err, "company exists", nil)
	}
	return ok, nil
}

// ListForUser returns the companies userID holds a role in.
func (r *CompanyRepo) ListForUser(ctx context.Context, userID int64) ([]models.CompanyMembership, error) {
	b := psql.Select(qualify("c", companyColumns)...).
		Columns("ur.role_id", "r.name AS role_name").
		From("company c").
		Join("user_role ur ON ur.company_id = c.company_id").
		Join("role r ON r.role_id = ur.role_id").
		Where(sq.Eq{"ur.user_id": userID}).
		OrderBy("c.company_id")

	out, err := selectAll[models.CompanyMembership](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list companies for user", nil)
	}
	return out, nil
}
