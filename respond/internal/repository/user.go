package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

var userColumns = []string{
	"user_id", "username", "email", "password", "is_active", "first_name",
	"last_name", "position", "created_at", "updated_at",
}

// UserRepo persists users, their company roles and pending invitations.
type UserRepo struct{ base }

func NewUserRepo(pool database.Querier) *UserRepo {
	return &UserRepo{base{pool}}
}

// Create inserts u. Duplicate usernames or emails yield ErrUsernameExists / ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	b := psql.Insert("users").
		Columns("username", "email", "password", "first_name", "last_name", "position").
		Values(u.Username, u.Email, u.Password, u.FirstName, u.LastName, u.Position).
		Suffix("RETURNING " + joinColumns(userColumns))

	out, err := selectOne[models.User](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create user", nil)
	}
	return out, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, sq.Eq{"user_id": id})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, sq.Eq{"username": username})
}

// GetByEmail matches case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, sq.Expr("LOWER(email) = ?", strings.ToLower(email)))
}

func (r *UserRepo) getBy(ctx context.Context, pred sq.Sqlizer) (*models.User, error) {
	b := psql.Select(userColumns...).From("users").Where(pred)
	out, err := selectOne[models.User](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get user", ErrUserNotFound)
	}
	return out, nil
}

// UserUpdate lists the columns to change. Nil fields are left unchanged.
// PasswordHash is already hashed.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Position     *string
	IsActive     *bool
}

// Update applies upd to user id and returns the stored row.
func (r *UserRepo) Update(ctx context.Context, id int64, upd UserUpdate) (*models.User, error) {
	b := psql.Update("users").Set("updated_at", sq.Expr("NOW()"))
	if upd.Email != nil {
		b = b.Set("email", *upd.Email)
	}
	if upd.PasswordHash != nil {
		b = b.Set("password", *upd.PasswordHash)
	}
	if upd.FirstName != nil {
		b = b.Set("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		b = b.Set("last_name", *upd.LastName)
	}
	if upd.Position != nil {
		b = b.Set("position", *upd.Position)
	}
	if upd.IsActive != nil {
		b = b.Set("is_active", *upd.IsActive)
	}
	b = b.Where(sq.Eq{"user_id": id}).Suffix("RETURNING " + joinColumns(userColumns))

	out, err := selectOne[models.User](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "update user", ErrUserNotFound)
	}
	return out, nil
}

// ListByCompany returns every user holding a role in companyID.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID int64) ([]models.CompanyUser, error) {
	b := psql.Select(
		"u.user_id", "u.username", "u.email", "u.first_name", "u.last_name",
		"u.position", "u.is_active", "ur.role_id", "r.name AS role_name",
	).
		From("users u").
		Join("user_role ur ON ur.user_id = u.user_id").
		Join("role r ON r.role_id = ur.role_id").
		Where(sq.Eq{"ur.company_id": companyID}).
		OrderBy("u.user_id")

	out, err := selectAll[models.CompanyUser](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list users by company", nil)
	}
	return out, nil
}

// ListRoles returns every defined role.
func (r *UserRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	out, err := selectAll[models.Role](ctx, r.q(ctx), psql.Select("role_id", "name").From("role").OrderBy("role_id"))
	if err != nil {
		return nil, mapError(err, "list roles", nil)
	}
	return out, nil
}

// GetRole returns ErrRoleNotFound when roleID does not exist.
func (r *UserRepo) GetRole(ctx context.Context, roleID int64) (*models.Role, error) {
	b := psql.Select("role_id", "name").From("role").Where(sq.Eq{"role_id": roleID})
	out, err := selectOne[models.Role](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get role", ErrRoleNotFound)
	}
	return out, nil
}

// GetRoleByName returns ErrRoleNotFound when no role is called name.
func (r *UserRepo) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	b := psql.Select("role_id", "name").From("role").Where(sq.Eq{"name": name})
	out, err := selectOne[models.Role](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get role by name", ErrRoleNotFound)
	}
	return out, nil
}

func userRoleSelect() sq.SelectBuilder {
	return psql.Select("ur.id", "ur.company_id", "ur.role_id", "ur.user_id", "r.name AS role_name").
		From("user_role ur").
		Join("role r ON r.role_id = ur.role_id")
}

// RolesForUser returns every role grant of userID across companies.
func (r *UserRepo) RolesForUser(ctx context.Context, userID int64) ([]models.UserRole, error) {
	b := userRoleSelect().Where(sq.Eq{"ur.user_id": userID}).OrderBy("ur.id")
	out, err := selectAll[models.UserRole](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list user roles", nil)
	}
	return out, nil
}

// RoleInCompany returns the grant of userID in companyID, or ErrRoleNotFound.
func (r *UserRepo) RoleInCompany(ctx context.Context, userID, companyID int64) (*models.UserRole, error) {
	b := userRoleSelect().
		Where(sq.Eq{"ur.user_id": userID, "ur.company_id": companyID}).
		OrderBy("ur.id").
		Limit(1)
	out, err := selectOne[models.UserRole](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get user role", ErrRoleNotFound)
	}
	return out, nil
}

// GrantRole inserts a role grant and returns its id.
func (r *UserRepo) GrantRole(ctx context.Context, companyID, roleID, userID int64) (int64, error) {
	b := psql.Insert("user_role").
		Columns("company_id", "role_id", "user_id").
		Values(companyID, roleID, userID).
		Suffix("RETURNING id")

	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := r.q(ctx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapError(err, "grant role", nil)
	}
	return id, nil
}

// ChangeRole sets the role of userID in companyID. It returns ErrRoleNotFound
// when the user has no grant in that company.
func (r *UserRepo) ChangeRole(ctx context.Context, companyID, userID, roleID int64) error {
	b := psql.Update("user_role").
		Set("role_id", roleID).
		Where(sq.Eq{"company_id": companyID, "user_id": userID})
	n, err := execute(ctx, r.q(ctx), b)
	if err != nil {
		return mapError(err, "change role", nil)
	}
	if n == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// CreateInvitation stages a role grant for email.
func (r *UserRepo) CreateInvitation(ctx context.Context, email string, roleID, companyID int64) (*models.InvitedUser, error) {
	b := psql.Insert("invited_user").
		Columns("email", "role_id", "company_id").
		Values(strings.ToLower(email), roleID, companyID).
		Suffix("RETURNING id, email, role_id, company_id, registered, created_at")
	out, err := selectOne[models.InvitedUser](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create invitation", nil)
	}
	return out, nil
}

// PendingInvitations returns unregistered invitations for email, oldest first.
func (r *UserRepo) PendingInvitations(ctx context.Context, email string) ([]models.InvitedUser, error) {
	b := psql.Select("id", "email", "role_id", "company_id", "registered", "created_at").
		From("invited_user").
		Where(sq.Expr("LOWER(email) = ?", strings.ToLower(email))).
		Where(sq.Eq{"registered": false}).
		OrderBy("id")
	out, err := selectAll[models.InvitedUser](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list invitations", nil)
	}
	return out, nil
}

// MarkInvitationRegistered flags invitation id as consumed.
func (r *UserRepo) MarkInvitationRegistered(ctx context.Context, id int64) error {
	_, err := execute(ctx, r.q(ctx), psql.Update("invited_user").Set("registered", true).Where(sq.Eq{"id": id}))
	return mapError(err, "mark invitation registered", nil)
}
