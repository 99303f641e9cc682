package service

import (
	"context"
	"errors"
	"strings"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/models"
	"github.com/axisir/axisir-stack/respond/internal/repository"
)

// CompanyService handles companies and the roles users hold in them.
type CompanyService struct {
	*core
	tx        TxRunner
	companies CompanyStore
	users     UserStore
}

// ListForUser returns the companies userID holds a role in.
func (s *CompanyService) ListForUser(ctx context.Context, userID int64) ([]models.CompanyMembership, error) {
	out, err := s.companies.ListForUser(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching companies.")
	}
	return out, nil
}

// Create inserts the company and grants the creating user the ADMIN role in it.
func (s *CompanyService) Create(ctx context.Context, req *models.CreateCompanyRequest, actorID int64) (*models.Company, error) {
	if strings.TrimSpace(req.CIN) == "" {
		return nil, badRequest("cin", "cin is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, badRequest("name", "name is required")
	}

	var out *models.Company
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.companies.Create(ctx, &models.Company{
			CIN:          req.CIN,
			Name:         req.Name,
			Industry:     req.Industry,
			Address:      req.Address,
			PrimaryEmail: req.PrimaryEmail,
			PrimaryPhone: req.PrimaryPhone,
			Description:  req.Description,
			IsActive:     true,
		})
		if err != nil {
			return err
		}
		admin, err := s.users.GetRoleByName(ctx, models.RoleAdmin)
		if err != nil {
			return internal("An error occurred while creating company.", err)
		}
		if _, err := s.users.GrantRole(ctx, c.CompanyID, admin.RoleID, actorID); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while creating company.")
	}
	s.logger.InfoContext(ctx, "company created", logging.CompanyID(out.CompanyID), logging.UserID(actorID))
	return out, nil
}

// AssignUserRole grants roleId in companyId to the user registered under
// email. Only an admin of the company may do this.
func (s *CompanyService) AssignUserRole(ctx context.Context, req *models.AssignUserRoleRequest, actorID int64) (*models.UserRole, error) {
	if req.CompanyID == 0 || req.RoleID == 0 || strings.TrimSpace(req.Email) == "" {
		return nil, badRequest("", "companyId, email and roleId are required")
	}
	companyID, roleID := int64(req.CompanyID), int64(req.RoleID)

	if err := requireCompany(ctx, s.companies, companyID); err != nil {
		return nil, err
	}
	if err := requireAdmin(ctx, s.users, actorID, companyID); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while assigning role.")
	}
	role, err := s.users.GetRole(ctx, roleID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while assigning role.")
	}

	id, err := s.users.GrantRole(ctx, companyID, roleID, u.UserID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while assigning role.")
	}
	s.logger.InfoContext(ctx, "role assigned",
		logging.CompanyID(companyID), logging.UserID(u.UserID), "role", role.Name)
	return &models.UserRole{ID: id, CompanyID: companyID, RoleID: roleID, UserID: u.UserID, RoleName: role.Name}, nil
}

// requireAdmin returns Forbidden unless userID holds the ADMIN role in companyID.
func requireAdmin(ctx context.Context, users UserStore, userID, companyID int64) error {
	ur, err := users.RoleInCompany(ctx, userID, companyID)
	if errors.Is(err, repository.ErrRoleNotFound) {
		return forbidden("You do not have permission to manage this company")
	}
	if err != nil {
		return fromRepo(err, "An error occurred while checking permissions.")
	}
	if ur.RoleName != models.RoleAdmin {
		return forbidden("You do not have permission to manage this company")
	}
	return nil
}
