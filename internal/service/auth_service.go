package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

const defaultPasswordResetTTL = 30 * time.Minute

// AuthService handles login and password reset for both end-users and staff.
// Logins are scoped by organization slug so the same email can exist in two
// tenants without colliding.
type AuthService struct {
	organizations repository.OrganizationRepository
	users         repository.UserRepository
	staff         repository.StaffRepository
	resets        repository.PasswordResetRepository
	tokens        *auth.TokenManager
	bcryptCost    int
	resetTTL      time.Duration
	logger        *zap.Logger
}

// AuthDependencies bundles requirements for the auth service.
type AuthDependencies struct {
	OrganizationRepo        repository.OrganizationRepository
	UserRepo                repository.UserRepository
	StaffRepo               repository.StaffRepository
	ResetRepo               repository.PasswordResetRepository
	Tokens                  *auth.TokenManager
	BcryptCost              int
	PasswordResetTTLMinutes int
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies, logger *zap.Logger) *AuthService {
	resetTTL := time.Duration(deps.PasswordResetTTLMinutes) * time.Minute
	if resetTTL <= 0 {
		resetTTL = defaultPasswordResetTTL
	}
	return &AuthService{
		organizations: deps.OrganizationRepo,
		users:         deps.UserRepo,
		staff:         deps.StaffRepo,
		resets:        deps.ResetRepo,
		tokens:        deps.Tokens,
		bcryptCost:    deps.BcryptCost,
		resetTTL:      resetTTL,
		logger:        logger,
	}
}

// LoginResult carries a signed token and its expiry.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Subject   domain.SubjectType
	SubjectID string
}

// LoginUser authenticates an end-user within an organization.
func (s *AuthService) LoginUser(ctx context.Context, orgSlug, email, password string) (*LoginResult, error) {
	org, err := s.activeOrganization(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, org.ID, normalizeEmail(email))
	if err != nil {
		return nil, invalidCredentials()
	}
	if user.Status != domain.UserStatusActive {
		return nil, invalidCredentials()
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, invalidCredentials()
	}
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, domain.SubjectTypeUser, org.ID, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Subject: domain.SubjectTypeUser, SubjectID: user.ID}, nil
}

// LoginStaff authenticates a staff member within an organization.
func (s *AuthService) LoginStaff(ctx context.Context, orgSlug, email, password string) (*LoginResult, error) {
	org, err := s.activeOrganization(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	member, err := s.staff.GetByEmail(ctx, org.ID, normalizeEmail(email))
	if err != nil {
		return nil, invalidCredentials()
	}
	if !member.Active {
		return nil, invalidCredentials()
	}
	if err := auth.ComparePassword(member.PasswordHash, password); err != nil {
		return nil, invalidCredentials()
	}
	role := member.Role
	token, expiresAt, err := s.tokens.GenerateToken(member.ID, domain.SubjectTypeStaff, org.ID, &role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Subject: domain.SubjectTypeStaff, SubjectID: member.ID}, nil
}

// RequestPasswordReset issues a single-use reset token. The return value is
// identical whether or not the account exists, so the endpoint does not leak
// which emails are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, orgSlug string, subject domain.SubjectType, email string) (string, error) {
	org, err := s.activeOrganization(ctx, orgSlug)
	if err != nil {
		return "", err
	}
	subjectID, ok := s.lookupSubject(ctx, org.ID, subject, email)
	if !ok {
		return "", nil
	}
	token := &repository.PasswordResetToken{
		SubjectType: subject,
		SubjectID:   subjectID,
		Token:       uuid.NewString(),
		ExpiresAt:   time.Now().UTC().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return "", apperrors.MapError(err)
	}
	return token.Token, nil
}

// CompletePasswordReset consumes a reset token and sets the new password.
func (s *AuthService) CompletePasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		return apperrors.NewValidationError("invalid or expired reset token", nil)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("invalid or expired reset token", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	switch token.SubjectType {
	case domain.SubjectTypeUser:
		user, err := s.users.GetByID(ctx, token.SubjectID)
		if err != nil {
			return apperrors.MapError(err)
		}
		user.PasswordHash = hash
		if err := s.users.Update(ctx, user); err != nil {
			return apperrors.MapError(err)
		}
	case domain.SubjectTypeStaff:
		member, err := s.staff.GetByID(ctx, token.SubjectID)
		if err != nil {
			return apperrors.MapError(err)
		}
		member.PasswordHash = hash
		if err := s.staff.Update(ctx, member); err != nil {
			return apperrors.MapError(err)
		}
	default:
		return apperrors.NewValidationError("invalid or expired reset token", nil)
	}
	return apperrors.MapError(s.resets.MarkUsed(ctx, token.ID))
}

// AuthSubject identifies the caller of an authenticated password change.
type AuthSubject struct {
	Type domain.SubjectType
	ID   string
}

// ChangePassword verifies the current password before replacing it.
func (s *AuthService) ChangePassword(ctx context.Context, subject AuthSubject, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	switch subject.Type {
	case domain.SubjectTypeUser:
		user, err := s.users.GetByID(ctx, subject.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
			return invalidCredentials()
		}
		user.PasswordHash = hash
		return apperrors.MapError(s.users.Update(ctx, user))
	case domain.SubjectTypeStaff:
		member, err := s.staff.GetByID(ctx, subject.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := auth.ComparePassword(member.PasswordHash, currentPassword); err != nil {
			return invalidCredentials()
		}
		member.PasswordHash = hash
		return apperrors.MapError(s.staff.Update(ctx, member))
	}
	return apperrors.NewUnauthorized("unknown subject")
}

func (s *AuthService) activeOrganization(ctx context.Context, slug string) (*domain.Organization, error) {
	org, err := s.organizations.GetBySlug(ctx, slug)
	if err != nil {
		return nil, invalidCredentials()
	}
	if !org.IsActive {
		return nil, invalidCredentials()
	}
	return org, nil
}

func (s *AuthService) lookupSubject(ctx context.Context, organizationID string, subject domain.SubjectType, email string) (string, bool) {
	email = normalizeEmail(email)
	switch subject {
	case domain.SubjectTypeUser:
		user, err := s.users.GetByEmail(ctx, organizationID, email)
		if err != nil {
			return "", false
		}
		return user.ID, true
	case domain.SubjectTypeStaff:
		member, err := s.staff.GetByEmail(ctx, organizationID, email)
		if err != nil {
			return "", false
		}
		return member.ID, true
	}
	return "", false
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized("invalid credentials")
}
