package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// SavedFilterRequest payload.
type SavedFilterRequest struct {
	Name       string                  `json:"name"`
	EntityType domain.FilterEntityType `json:"entity_type"`
	Config     map[string]any          `json:"config"`
	Shared     bool                    `json:"shared"`
}

// SavedFilterResponse representation.
type SavedFilterResponse struct {
	ID         string                  `json:"id"`
	StaffID    string                  `json:"staff_id"`
	Name       string                  `json:"name"`
	EntityType domain.FilterEntityType `json:"entity_type"`
	Config     map[string]any          `json:"config"`
	Shared     bool                    `json:"shared"`
	CreatedAt  time.Time               `json:"created_at"`
}
