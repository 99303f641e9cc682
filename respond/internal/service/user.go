package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/metrics"
	"github.com/axisir/axisir-stack/respond/internal/models"
	"github.com/axisir/axisir-stack/respond/internal/repository"
	"github.com/axisir/axisir-stack/respond/internal/tokens"
)

const invalidCredentials = "Invalid username or password"

// UserService handles accounts, sessions, invitations and role grants.
type UserService struct {
	*core
	tx        TxRunner
	users     UserStore
	tokens    TokenStore
	companies CompanyStore
	gen       *tokens.Generator
	cost      int
}

func (s *UserService) hash(password string) (string, error) {
	cost := s.cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching user.")
	}
	return u, nil
}

func (s *UserService) ListRoles(ctx context.Context) ([]models.Role, error) {
	out, err := s.users.ListRoles(ctx)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching roles.")
	}
	return out, nil
}

// ListByCompany returns the users holding a role in companyID.
func (s *UserService) ListByCompany(ctx context.Context, companyID int64) ([]models.CompanyUser, error) {
	if err := requireCompany(ctx, s.companies, companyID); err != nil {
		return nil, err
	}
	out, err := s.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching users.")
	}
	return out, nil
}

// Login checks the password and opens a session.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	if req.Username == "" || req.Password == "" {
		return nil, badRequest("", "username and password are required")
	}
	u, err := s.users.GetByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, unauthorized(invalidCredentials, err)
	}
	if err != nil {
		return nil, fromRepo(err, "An error occurred while logging in.")
	}
	if !u.IsActive {
		return nil, unauthorized(invalidCredentials, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, unauthorized(invalidCredentials, err)
	}
	return s.openSession(ctx, u)
}

// openSession issues a token for u, whitelists it and loads u's roles.
func (s *UserService) openSession(ctx context.Context, u *models.User) (*models.Session, error) {
	token, err := s.gen.Generate(u.UserID, u.Username)
	if err != nil {
		return nil, internal("An error occurred while logging in.", err)
	}
	if err := s.tokens.Save(ctx, token, u.UserID); err != nil {
		return nil, fromRepo(err, "An error occurred while logging in.")
	}
	sess, err := s.session(ctx, u)
	if err != nil {
		return nil, err
	}
	sess.Token = token
	s.logger.InfoContext(ctx, "user logged in", logging.UserID(u.UserID))
	return sess, nil
}

func (s *UserService) session(ctx context.Context, u *models.User) (*models.Session, error) {
	roles, err := s.users.RolesForUser(ctx, u.UserID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while loading roles.")
	}
	if roles == nil {
		roles = []models.UserRole{}
	}
	return &models.Session{User: models.SessionUser{UserID: u.UserID, Username: u.Username, Roles: roles}}, nil
}

// Authenticate validates token and checks it has not been revoked.
func (s *UserService) Authenticate(ctx context.Context, token string) (*tokens.Claims, error) {
	if token == "" {
		return nil, unauthorized("Access denied. No token provided.", nil)
	}
	claims, err := s.gen.Validate(token)
	if err != nil {
		return nil, unauthorized("Invalid token.", err)
	}
	if _, err := s.tokens.Find(ctx, token); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, unauthorized("Invalid token.", err)
		}
		return nil, fromRepo(err, "An error occurred while checking token.")
	}
	return claims, nil
}

// TokenLogin resumes the session of a still-whitelisted token.
func (s *UserService) TokenLogin(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, unauthorized("Invalid token.", err)
	}
	if err != nil {
		return nil, fromRepo(err, "An error occurred while logging in.")
	}
	sess, err := s.session(ctx, u)
	if err != nil {
		return nil, err
	}
	sess.Token = token
	return sess, nil
}

// Logout revokes token. Revoking an unknown token succeeds.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return badRequest("token", "token is required")
	}
	n, err := s.tokens.Delete(ctx, token)
	if err != nil {
		return fromRepo(err, "An error occurred while logging out.")
	}
	s.logger.DebugContext(ctx, "token revoked", "rows", n)
	return nil
}

// Signup creates the user, attaches their pending invitations and logs them
// in. Each invitation is applied in its own transaction; one that fails is
// reported as a warning and does not undo the others or the signup.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*Result[*models.Session], error) {
	switch {
	case strings.TrimSpace(req.Username) == "":
		return nil, badRequest("username", "username is required")
	case strings.TrimSpace(req.Email) == "":
		return nil, badRequest("email", "email is required")
	case req.Password == "":
		return nil, badRequest("password", "password is required")
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, internal("An error occurred while signing up.", err)
	}
	u, err := s.users.Create(ctx, &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while signing up.")
	}
	s.logger.InfoContext(ctx, "user signed up", logging.UserID(u.UserID))

	res := &Result[*models.Session]{}
	res.Warnings = s.attachInvitations(ctx, u)

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	res.Value = sess
	return res, nil
}

func (s *UserService) attachInvitations(ctx context.Context, u *models.User) []string {
	invites, err := s.users.PendingInvitations(ctx, u.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load invitations", logging.UserID(u.UserID), logging.Error(err))
		return []string{"pending invitations could not be loaded"}
	}

	var warnings []string
	for _, inv := range invites {
		err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := s.users.GrantRole(ctx, inv.CompanyID, inv.RoleID, u.UserID); err != nil {
				return err
			}
			return s.users.MarkInvitationRegistered(ctx, inv.ID)
		})
		if err != nil {
			metrics.InvitationsAttached.WithLabelValues("failed").Inc()
			s.logger.WarnContext(ctx, "failed to attach invitation",
				logging.UserID(u.UserID), logging.CompanyID(inv.CompanyID), "invitation_id", inv.ID, logging.Error(err))
			warnings = append(warnings, fmt.Sprintf("invitation to company %d could not be applied", inv.CompanyID))
			continue
		}
		metrics.InvitationsAttached.WithLabelValues("attached").Inc()
	}
	return warnings
}

// Update changes the caller's own account details.
func (s *UserService) Update(ctx context.Context, userID int64, req *models.UpdateUserRequest, actorID int64) (*models.User, error) {
	if userID != actorID {
		return nil, forbidden("You can only update your own account")
	}
	upd := repository.UserUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
		IsActive:  req.IsActive,
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, badRequest("password", "password must not be empty")
		}
		hash, err := s.hash(*req.Password)
		if err != nil {
			return nil, internal("An error occurred while updating user.", err)
		}
		upd.PasswordHash = &hash
	}

	u, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while updating user.")
	}
	return u, nil
}

// Invite grants req.Role in companyID to req.Email. A user who already
// exists gets the role immediately; otherwise an invitation is stored and
// applied at signup.
func (s *UserService) Invite(ctx context.Context, companyID int64, req *models.InviteUserRequest, actorID int64) (*models.InviteResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Role == 0 {
		return nil, badRequest("", "email and role are required")
	}
	if err := requireCompany(ctx, s.companies, companyID); err != nil {
		return nil, err
	}
	if err := requireAdmin(ctx, s.users, actorID, companyID); err != nil {
		return nil, err
	}
	role, err := s.users.GetRole(ctx, int64(req.Role))
	if err != nil {
		return nil, fromRepo(err, "An error occurred while inviting user.")
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		id, err := s.users.GrantRole(ctx, companyID, role.RoleID, existing.UserID)
		if err != nil {
			return nil, fromRepo(err, "An error occurred while inviting user.")
		}
		s.logger.InfoContext(ctx, "existing user granted role",
			logging.CompanyID(companyID), logging.UserID(existing.UserID), "role", role.Name)
		return &models.InviteResult{Granted: &models.UserRole{
			ID: id, CompanyID: companyID, RoleID: role.RoleID, UserID: existing.UserID, RoleName: role.Name,
		}}, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fromRepo(err, "An error occurred while inviting user.")
	}

	inv, err := s.users.CreateInvitation(ctx, req.Email, role.RoleID, companyID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while inviting user.")
	}
	s.logger.InfoContext(ctx, "user invited", logging.CompanyID(companyID), "invitation_id", inv.ID)
	return &models.InviteResult{Invitation: inv}, nil
}

// ChangeRole replaces a user's role in a company. The caller must be an admin there.
func (s *UserService) ChangeRole(ctx context.Context, req *models.ChangeUserRoleRequest, actorID int64) error {
	if req.CompanyID == 0 || req.UserID == 0 || req.RoleID == 0 {
		return badRequest("", "companyId, userId and roleId are required")
	}
	companyID := int64(req.CompanyID)
	if err := requireAdmin(ctx, s.users, actorID, companyID); err != nil {
		return err
	}
	if _, err := s.users.GetRole(ctx, int64(req.RoleID)); err != nil {
		return fromRepo(err, "An error occurred while changing role.")
	}
	if err := s.users.ChangeRole(ctx, companyID, int64(req.UserID), int64(req.RoleID)); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return notFound("User has no role in this company", err)
		}
		return fromRepo(err, "An error occurred while changing role.")
	}
	s.logger.InfoContext(ctx, "user role changed",
		logging.CompanyID(companyID), logging.UserID(int64(req.UserID)), "role_id", int64(req.RoleID))
	return nil
}
