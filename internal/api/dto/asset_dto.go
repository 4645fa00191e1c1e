package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// AssetRequest payload.
type AssetRequest struct {
	CompanyID      *string          `json:"company_id"`
	Kind           domain.AssetKind `json:"kind"`
	Name           string           `json:"name"`
	SerialNumber   *string          `json:"serial_number"`
	AssignedUserID *string          `json:"assigned_user_id"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	Metadata       map[string]any   `json:"metadata"`
}

// AssetResponse payload.
type AssetResponse struct {
	ID             string           `json:"id"`
	CompanyID      *string          `json:"company_id"`
	Kind           domain.AssetKind `json:"kind"`
	Name           string           `json:"name"`
	SerialNumber   *string          `json:"serial_number"`
	AssignedUserID *string          `json:"assigned_user_id"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	Metadata       map[string]any   `json:"metadata"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
