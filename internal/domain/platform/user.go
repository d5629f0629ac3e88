package platform

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the caller role carried in access tokens.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsBusinessRole reports whether r belongs to a business user.
func (r Role) IsBusinessRole() bool {
	switch r {
	case RoleOwner, RoleManager, RoleStaff:
		return true
	}
	return false
}

// IsPlatformRole reports whether r belongs to a platform administrator.
func (r Role) IsPlatformRole() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// bcrypt.DefaultCost keeps login latency near 100ms
const bcryptCost = bcrypt.DefaultCost

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a business login. BusinessID routes the user's requests to the
// business store; BranchID is an optional finer-grained reference.
type User struct {
	shared.BaseEntity
	BusinessID   *uuid.UUID `gorm:"type:uuid;index" json:"businessId,omitempty"`
	BranchID     *uuid.UUID `gorm:"type:uuid" json:"branchId,omitempty"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	Email        string     `gorm:"size:200;not null;uniqueIndex" json:"email"`
	Phone        string     `gorm:"size:50" json:"phone,omitempty"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	Role         Role       `gorm:"size:20;not null" json:"role"`
	Status       UserStatus `gorm:"size:20;not null" json:"status"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active business user with a hashed password.
func NewUser(businessID uuid.UUID, name, email, phone, password string, role Role) (*User, error) {
	if !role.IsBusinessRole() {
		return nil, shared.NewValidationError("invalid user role %q", role)
	}
	u := &User{
		BaseEntity: shared.NewBaseEntity(),
		BusinessID: &businessID,
		Name:       strings.TrimSpace(name),
		Email:      NormalizeEmail(email),
		Phone:      strings.TrimSpace(phone),
		Role:       role,
		Status:     UserStatusActive,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks required fields.
func (u *User) Validate() error {
	if u.Name == "" {
		return shared.NewValidationError("user name is required")
	}
	if !emailPattern.MatchString(u.Email) {
		return shared.NewValidationError("invalid email %q", u.Email)
	}
	return nil
}

// SetPassword validates and hashes a new password.
func (u *User) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CanLogin reports whether the user is allowed to authenticate.
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}

// RecordLogin stamps the last successful login.
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// TenantID returns the business reference used for routing, falling back
// to the branch reference. Empty means the user has no tenant.
func (u *User) TenantID() string {
	if u.BusinessID != nil && *u.BusinessID != uuid.Nil {
		return u.BusinessID.String()
	}
	if u.BranchID != nil && *u.BranchID != uuid.Nil {
		return u.BranchID.String()
	}
	return ""
}

// NormalizeEmail lower-cases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword validates password strength and returns its bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", shared.NewValidationError("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > 72 {
		return "", shared.NewValidationError("password cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewInternalError("failed to hash password")
	}
	return string(hash), nil
}
