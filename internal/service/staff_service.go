package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// StaffService manages organizations, client companies, and staff accounts.
type StaffService struct {
	organizations repository.OrganizationRepository
	companies     repository.CompanyRepository
	staff         repository.StaffRepository
	users         repository.UserRepository
	bcryptCost    int
	logger        *zap.Logger
}

// StaffDependencies bundles requirements for the staff service.
type StaffDependencies struct {
	OrganizationRepo repository.OrganizationRepository
	CompanyRepo      repository.CompanyRepository
	StaffRepo        repository.StaffRepository
	UserRepo         repository.UserRepository
	BcryptCost       int
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies, logger *zap.Logger) *StaffService {
	return &StaffService{
		organizations: deps.OrganizationRepo,
		companies:     deps.CompanyRepo,
		staff:         deps.StaffRepo,
		users:         deps.UserRepo,
		bcryptCost:    deps.BcryptCost,
		logger:        logger,
	}
}

// CompanyInput describes client-company payload.
type CompanyInput struct {
	Name         string
	ContactEmail string
	IsActive     *bool
}

// StaffCreateInput describes a new staff account.
type StaffCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.StaffRole
}

// UserCreateInput describes a new end-user account.
type UserCreateInput struct {
	CompanyID *string
	Name      string
	Email     string
	Password  string
}

// requireAdmin gates admin-only operations: calendar and SLA policy writes,
// breach resets, and account management.
func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil {
		return apperrors.NewUnauthorized("staff context required")
	}
	if actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateCompany registers a client company inside the actor's organization.
func (s *StaffService) CreateCompany(ctx context.Context, actor *domain.StaffMember, input CompanyInput) (*domain.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("company name is required", nil)
	}
	company := &domain.Company{
		OrganizationID: actor.OrganizationID,
		Name:           name,
		ContactEmail:   strings.TrimSpace(input.ContactEmail),
		IsActive:       true,
	}
	if input.IsActive != nil {
		company.IsActive = *input.IsActive
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// UpdateCompany edits a client company.
func (s *StaffService) UpdateCompany(ctx context.Context, actor *domain.StaffMember, companyID string, input CompanyInput) (*domain.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if company.OrganizationID != actor.OrganizationID {
		return nil, apperrors.NewForbidden("company belongs to another organization")
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		company.Name = name
	}
	if email := strings.TrimSpace(input.ContactEmail); email != "" {
		company.ContactEmail = email
	}
	if input.IsActive != nil {
		company.IsActive = *input.IsActive
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// ListCompanies returns the actor's organization companies.
func (s *StaffService) ListCompanies(ctx context.Context, actor *domain.StaffMember) ([]domain.Company, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	companies, err := s.companies.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return companies, nil
}

// CreateStaff provisions a staff account in the actor's organization.
func (s *StaffService) CreateStaff(ctx context.Context, actor *domain.StaffMember, input StaffCreateInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateAccountInput(input.Name, input.Email, input.Password); err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = domain.StaffRoleAgent
	}
	switch role {
	case domain.StaffRoleAgent, domain.StaffRoleManager, domain.StaffRoleAdmin:
	default:
		return nil, apperrors.NewValidationError("unknown staff role", map[string]any{"role": role})
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	member := &domain.StaffMember{
		OrganizationID: actor.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Email:          normalizeEmail(input.Email),
		PasswordHash:   hash,
		Role:           role,
		Active:         true,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// DeactivateStaff disables a staff account without deleting its history.
func (s *StaffService) DeactivateStaff(ctx context.Context, actor *domain.StaffMember, staffID string) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if actor.ID == staffID {
		return nil, apperrors.NewConflict("cannot deactivate own account", nil)
	}
	member, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if member.OrganizationID != actor.OrganizationID {
		return nil, apperrors.NewForbidden("staff belongs to another organization")
	}
	member.Active = false
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// ListStaff returns staff accounts in the actor's organization.
func (s *StaffService) ListStaff(ctx context.Context, actor *domain.StaffMember, limit, offset int) ([]domain.StaffMember, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	members, err := s.staff.ListByOrganization(ctx, actor.OrganizationID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// CreateUser provisions an end-user account in the actor's organization.
func (s *StaffService) CreateUser(ctx context.Context, actor *domain.StaffMember, input UserCreateInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateAccountInput(input.Name, input.Email, input.Password); err != nil {
		return nil, err
	}
	if input.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, *input.CompanyID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if company.OrganizationID != actor.OrganizationID {
			return nil, apperrors.NewForbidden("company belongs to another organization")
		}
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := &domain.User{
		OrganizationID: actor.OrganizationID,
		CompanyID:      input.CompanyID,
		Name:           strings.TrimSpace(input.Name),
		Email:          normalizeEmail(input.Email),
		PasswordHash:   hash,
		Status:         domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func validateAccountInput(name, email, password string) error {
	details := map[string]any{}
	if strings.TrimSpace(name) == "" {
		details["name"] = "required"
	}
	if !strings.Contains(email, "@") {
		details["email"] = "invalid"
	}
	if len(password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid account input", details)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
