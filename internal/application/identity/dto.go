package identity

import (
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/infrastructure/auth"
)

// LoginInput contains the credentials of a login attempt
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is an issued access token and the principal it belongs to
type LoginResult struct {
	*auth.Token
	User     *platform.User     `json:"user,omitempty"`
	Admin    *platform.Admin    `json:"admin,omitempty"`
	Business *platform.Business `json:"business,omitempty"`
}

// Profile is the caller as returned by /auth/me
type Profile struct {
	User     *platform.User     `json:"user,omitempty"`
	Admin    *platform.Admin    `json:"admin,omitempty"`
	Business *platform.Business `json:"business,omitempty"`
}

// ResetPasswordInput contains a reset token and the new password
type ResetPasswordInput struct {
	Token    string
	Password string
}

// CreateBusinessInput contains the business and its owner account
type CreateBusinessInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Plan    platform.BusinessPlan

	OwnerName     string
	OwnerEmail    string
	OwnerPhone    string
	OwnerPassword string
}

// CreateBusinessResult is a provisioned business and its owner
type CreateBusinessResult struct {
	Business *platform.Business `json:"business"`
	Owner    *platform.User     `json:"owner"`
}

// AdminBootstrap describes the administrator seeded on first start
type AdminBootstrap struct {
	Name     string
	Email    string
	Password string
}
