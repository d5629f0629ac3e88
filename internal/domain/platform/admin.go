package platform

import (
	"strings"
	"time"

	"github.com/salon-crm/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Admin is a platform administrator. Admins operate across tenants and
// never carry a business reference.
type Admin struct {
	shared.BaseEntity
	Name         string     `gorm:"size:200;not null" json:"name"`
	Email        string     `gorm:"size:200;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	Role         Role       `gorm:"size:20;not null" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// TableName returns the table name for GORM
func (Admin) TableName() string {
	return "admins"
}

// NewAdmin creates an active administrator.
func NewAdmin(name, email, password string, role Role) (*Admin, error) {
	if role == "" {
		role = RoleAdmin
	}
	if !role.IsPlatformRole() {
		return nil, shared.NewValidationError("invalid admin role %q", role)
	}
	a := &Admin{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Email:      NormalizeEmail(email),
		Role:       role,
		IsActive:   true,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = hash
	return a, nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (a *Admin) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last successful login.
func (a *Admin) RecordLogin(at time.Time) {
	a.LastLoginAt = &at
	a.Touch()
}

// Validate checks required fields.
func (a *Admin) Validate() error {
	if a.Name == "" {
		return shared.NewValidationError("admin name is required")
	}
	if !emailPattern.MatchString(a.Email) {
		return shared.NewValidationError("invalid email %q", a.Email)
	}
	if !a.Role.IsPlatformRole() {
		return shared.NewValidationError("invalid admin role %q", a.Role)
	}
	return nil
}
