package dto

import "time"

// UserLoginRequest payload for login. Organization slug scopes the lookup so
// the same email may exist in several tenants.
type UserLoginRequest struct {
	OrganizationSlug string `json:"organization_slug"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
