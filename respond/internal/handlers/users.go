package handlers

import (
	"net/http"

	"github.com/axisir/axisir-stack/common/httputil"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

// =============================================================================
// Accounts (companies)
// =============================================================================

// ListCompaniesForUser handles GET /accounts/getByUserId for the caller.
func (h *Handler) ListCompaniesForUser(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.Companies.ListForUser(r.Context(), actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, companies, "Companies found")
}

// CreateCompany handles POST /accounts/create
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCompanyRequest
	if !h.decode(w, r, &req) {
		return
	}

	company, err := h.svc.Companies.Create(r.Context(), &req, actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, company, "Company created", nil)
}

// AssignUserRole handles POST /accounts/assignUserRoleToCompany
func (h *Handler) AssignUserRole(w http.ResponseWriter, r *http.Request) {
	var req models.AssignUserRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	grant, err := h.svc.Companies.AssignUserRole(r.Context(), &req, actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, grant, "Role assigned")
}

// =============================================================================
// Users
// =============================================================================

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, valid := pathID(w, r, "id")
	if !valid {
		return
	}

	user, err := h.svc.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, user, "User found")
}

// ListRoles handles GET /users/getRoles/all
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.Users.ListRoles(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, roles, "Roles found")
}

// ListUsersByCompany handles GET /users/getByCompanyId/{companyId}
func (h *Handler) ListUsersByCompany(w http.ResponseWriter, r *http.Request) {
	companyID, valid := pathID(w, r, "companyId")
	if !valid {
		return
	}

	users, err := h.svc.Users.ListByCompany(r.Context(), companyID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, users, "Users found")
}

// Login handles POST /users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.svc.Users.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, session, "Login successful")
}

// requestToken reads the token from the body, falling back to the bearer header.
func (h *Handler) requestToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.TokenRequest
	if !h.decodeOptional(w, r, &req) {
		return "", false
	}
	if req.Token == "" {
		req.Token, _ = httputil.BearerToken(r)
	}
	return req.Token, true
}

// TokenLogin handles POST /users/tokenLogin
func (h *Handler) TokenLogin(w http.ResponseWriter, r *http.Request) {
	token, valid := h.requestToken(w, r)
	if !valid {
		return
	}

	session, err := h.svc.Users.TokenLogin(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, session, "Login successful")
}

// Logout handles POST /users/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, valid := h.requestToken(w, r)
	if !valid {
		return
	}

	if err := h.svc.Users.Logout(r.Context(), token); err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, nil, "Logout successful")
}

// Signup handles POST /users/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Users.Signup(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, res.Value, "Signup successful", res.Warnings)
}

// UpdateUser handles POST /users/update/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, valid := pathID(w, r, "id")
	if !valid {
		return
	}
	var req models.UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.svc.Users.Update(r.Context(), userID, &req, actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, user, "User updated")
}

// InviteUser handles POST /users/inviteUser/{companyId}
func (h *Handler) InviteUser(w http.ResponseWriter, r *http.Request) {
	companyID, valid := pathID(w, r, "companyId")
	if !valid {
		return
	}
	var req models.InviteUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Users.Invite(r.Context(), companyID, &req, actorID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if res.Granted != nil {
		ok(w, res, "User added to company")
		return
	}
	created(w, res, "Invitation sent", nil)
}

// ChangeUserRole handles POST /users/changeUserRole
func (h *Handler) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	var req models.ChangeUserRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.Users.ChangeRole(r.Context(), &req, actorID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, nil, "Role changed")
}
