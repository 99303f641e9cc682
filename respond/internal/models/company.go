package models

import "time"

// Company is a customer organisation. It owns assets, groups, incidents and reports.
type Company struct {
	CompanyID    int64     `db:"company_id" json:"companyId"`
	CIN          string    `db:"cin" json:"cin"`
	Name         string    `db:"name" json:"name"`
	Industry     *string   `db:"industry" json:"industry,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	PrimaryEmail *string   `db:"primary_email" json:"primaryEmail,omitempty"`
	PrimaryPhone *string   `db:"primary_phone" json:"primaryPhone,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	Description  *string   `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// CompanyMembership is a company as seen by one of its users.
type CompanyMembership struct {
	Company
	RoleID   int64  `db:"role_id" json:"roleId"`
	RoleName string `db:"role_name" json:"roleName"`
}

// CreateCompanyRequest is the body of POST /accounts/create.
type CreateCompanyRequest struct {
	CIN          string  `json:"cin"`
	Name         string  `json:"name"`
	Industry     *string `json:"industry"`
	Address      *string `json:"address"`
	PrimaryEmail *string `json:"primaryEmail"`
	PrimaryPhone *string `json:"primaryPhone"`
	Description  *string `json:"description"`
}

// AssignUserRoleRequest is the body of POST /accounts/assignUserRoleToCompany.
type AssignUserRoleRequest struct {
	CompanyID FlexibleID `json:"companyId"`
	Email     string     `json:"email"`
	RoleID    FlexibleID `json:"roleId"`
}
