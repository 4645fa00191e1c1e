package domain

import "time"

// AssetKind separates managed devices from software licenses.
type AssetKind string

const (
	AssetKindDevice  AssetKind = "DEVICE"
	AssetKindLicense AssetKind = "LICENSE"
)

// Asset is a managed device or license belonging to a client company.
type Asset struct {
	ID             string
	OrganizationID string
	CompanyID      *string
	Kind           AssetKind
	Name           string
	SerialNumber   *string
	AssignedUserID *string
	ExpiresAt      *time.Time
	Metadata       map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
