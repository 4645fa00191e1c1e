package dto

import "github.com/spec-kit/itsm-service/internal/domain"

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	OrganizationSlug string `json:"organization_slug"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	OrganizationSlug string             `json:"organization_slug"`
	SubjectType      domain.SubjectType `json:"subject_type"`
	Email            string             `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CompanyRequest payload for client-company management.
type CompanyRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	IsActive     *bool  `json:"is_active"`
}

// CompanyResponse payload.
type CompanyResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	IsActive     bool   `json:"is_active"`
}

// StaffCreateRequest payload.
type StaffCreateRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     domain.StaffRole `json:"role"`
}

// StaffResponse payload.
type StaffResponse struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   domain.StaffRole `json:"role"`
	Active bool             `json:"active"`
}

// UserCreateRequest payload for admin-provisioned end-users.
type UserCreateRequest struct {
	CompanyID *string `json:"company_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
}

// UserResponse payload.
type UserResponse struct {
	ID        string  `json:"id"`
	CompanyID *string `json:"company_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Status    string  `json:"status"`
}
