package models

import (
	"strings"
	"time"
)

// User is an analyst account. Password holds the bcrypt hash and is never serialised.
type User struct {
	UserID    int64     `db:"user_id" json:"userId"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	FirstName *string   `db:"first_name" json:"firstName,omitempty"`
	LastName  *string   `db:"last_name" json:"lastName,omitempty"`
	Position  *string   `db:"position" json:"position,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the public subset of a user embedded in other payloads.
type UserSummary struct {
	UserID    int64   `db:"user_id" json:"userId"`
	Username  string  `db:"username" json:"username"`
	Email     string  `db:"email" json:"email,omitempty"`
	FirstName *string `db:"first_name" json:"firstName,omitempty"`
	LastName  *string `db:"last_name" json:"lastName,omitempty"`
}

// DisplayName returns "First Last" when either name is set, else the username.
func DisplayName(username string, first, last *string) string {
	var parts []string
	for _, p := range []*string{first, last} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	if len(parts) == 0 {
		return username
	}
	return strings.Join(parts, " ")
}

// Summary returns the public subset of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// Role is a named permission level (e.g. ADMIN, ANALYST).
type Role struct {
	RoleID int64  `db:"role_id" json:"roleId"`
	Name   string `db:"name" json:"name"`
}

// UserRole grants a role to a user within a company.
type UserRole struct {
	ID        int64  `db:"id" json:"id"`
	CompanyID int64  `db:"company_id" json:"companyId"`
	RoleID    int64  `db:"role_id" json:"roleId"`
	UserID    int64  `db:"user_id" json:"userId"`
	RoleName  string `db:"role_name" json:"roleName"`
}

// CompanyUser is a user listed under a company together with their role.
type CompanyUser struct {
	UserSummary
	Position *string `db:"position" json:"position,omitempty"`
	IsActive bool    `db:"is_active" json:"isActive"`
	RoleID   int64   `db:"role_id" json:"roleId"`
	RoleName string  `db:"role_name" json:"roleName"`
}

// InvitedUser stages a role grant for an email that has not signed up yet.
type InvitedUser struct {
	ID         int64     `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	RoleID     int64     `db:"role_id" json:"roleId"`
	CompanyID  int64     `db:"company_id" json:"companyId"`
	Registered bool      `db:"registered" json:"registered"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// WhitelistedToken is an issued token that has not been revoked.
type WhitelistedToken struct {
	ID        int64     `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	UserID    int64     `db:"user_id" json:"userId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Session is returned by login and signup.
type Session struct {
	User  SessionUser `json:"user"`
	Token string      `json:"token,omitempty"`
}

// SessionUser is the user part of a Session.
type SessionUser struct {
	UserID   int64      `json:"userId"`
	Username string     `json:"username"`
	Roles    []UserRole `json:"roles"`
}

// SignupRequest is the body of POST /users/signup.
type SignupRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Position  *string `json:"position"`
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenRequest is the body of POST /users/tokenLogin and /users/logout.
// The bearer header is used when Token is empty.
type TokenRequest struct {
	Token string `json:"token"`
}

// UpdateUserRequest is the body of POST /users/update/{id}. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Position  *string `json:"position"`
	IsActive  *bool   `json:"isActive"`
}

// InviteUserRequest is the body of POST /users/inviteUser/{companyId}.
type InviteUserRequest struct {
	Email string     `json:"email"`
	Role  FlexibleID `json:"role"`
}

// ChangeUserRoleRequest is the body of POST /users/changeUserRole.
type ChangeUserRoleRequest struct {
	CompanyID FlexibleID `json:"companyId"`
	UserID    FlexibleID `json:"userId"`
	RoleID    FlexibleID `json:"roleId"`
}

// InviteResult reports what an invitation did: a user who already exists is
// granted the role at once, anyone else gets a pending invitation.
type InviteResult struct {
	Granted    *UserRole    `json:"granted,omitempty"`
	Invitation *InvitedUser `json:"invitation,omitempty"`
}
