package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// StaffHandler exposes staff auth and organization management endpoints.
type StaffHandler struct {
	authService  *service.AuthService
	staffService *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService, staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{authService: authService, staffService: staffService}
}

// Login handles POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OrganizationSlug == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("organization_slug, email, password required", nil)
	}
	result, err := h.authService.LoginStaff(c.Context(), req.OrganizationSlug, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"staff_id": result.SubjectID,
		"auth":     dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
	}})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *StaffHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OrganizationSlug == "" || req.Email == "" {
		return apperrors.NewValidationError("organization_slug and email required", nil)
	}
	subject := req.SubjectType
	if subject == "" {
		subject = domain.SubjectTypeStaff
	}
	token, err := h.authService.RequestPasswordReset(c.Context(), req.OrganizationSlug, subject, req.Email)
	if err != nil {
		return err
	}
	// Token would normally leave through email only; it is returned here
	// because no mail transport is wired.
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"reset_token": token}})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *StaffHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new password required", nil)
	}
	if err := h.authService.CompletePasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset"}})
}

// ChangePassword handles POST /auth/password/change.
func (h *StaffHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	subject := service.AuthSubject{Type: principal.SubjectType}
	switch principal.SubjectType {
	case domain.SubjectTypeUser:
		subject.ID = principal.User.ID
	case domain.SubjectTypeStaff:
		subject.ID = principal.Staff.ID
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}
	if err := h.authService.ChangePassword(c.Context(), subject, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}

// CreateCompany handles POST /staff/companies.
func (h *StaffHandler) CreateCompany(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.staffService.CreateCompany(c.Context(), staff, service.CompanyInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": companyResponse(company)})
}

// UpdateCompany handles PUT /staff/companies/:id.
func (h *StaffHandler) UpdateCompany(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.staffService.UpdateCompany(c.Context(), staff, c.Params("id"), service.CompanyInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// ListCompanies handles GET /staff/companies.
func (h *StaffHandler) ListCompanies(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	companies, err := h.staffService.ListCompanies(c.Context(), staff)
	if err != nil {
		return err
	}
	resp := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		resp = append(resp, companyResponse(&companies[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateStaff handles POST /staff/members.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.staffService.CreateStaff(c.Context(), staff, service.StaffCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(member)})
}

// ListStaff handles GET /staff/members.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	members, err := h.staffService.ListStaff(c.Context(), staff, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.StaffResponse, 0, len(members))
	for i := range members {
		resp = append(resp, staffResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// DeactivateStaff handles POST /staff/members/:id/deactivate.
func (h *StaffHandler) DeactivateStaff(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	member, err := h.staffService.DeactivateStaff(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(member)})
}

// CreateUser handles POST /staff/users.
func (h *StaffHandler) CreateUser(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.staffService.CreateUser(c.Context(), staff, service.UserCreateInput{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

func companyResponse(company *domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:           company.ID,
		Name:         company.Name,
		ContactEmail: company.ContactEmail,
		IsActive:     company.IsActive,
	}
}

func staffResponse(staff *domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:     staff.ID,
		Name:   staff.Name,
		Email:  staff.Email,
		Role:   staff.Role,
		Active: staff.Active,
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		CompanyID: user.CompanyID,
		Name:      user.Name,
		Email:     user.Email,
		Status:    string(user.Status),
	}
}
