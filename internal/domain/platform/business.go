package platform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
)

// BusinessStatus represents the lifecycle state of a tenant business
type BusinessStatus string

const (
	BusinessStatusActive    BusinessStatus = "active"
	BusinessStatusInactive  BusinessStatus = "inactive"
	BusinessStatusSuspended BusinessStatus = "suspended"
)

// IsValid reports whether s is a known status.
func (s BusinessStatus) IsValid() bool {
	switch s {
	case BusinessStatusActive, BusinessStatusInactive, BusinessStatusSuspended:
		return true
	}
	return false
}

// BusinessPlan is the subscription tier of a business
type BusinessPlan string

const (
	BusinessPlanFree       BusinessPlan = "free"
	BusinessPlanBasic      BusinessPlan = "basic"
	BusinessPlanPro        BusinessPlan = "pro"
	BusinessPlanEnterprise BusinessPlan = "enterprise"
)

// IsValid reports whether p is a known plan.
func (p BusinessPlan) IsValid() bool {
	switch p {
	case BusinessPlanFree, BusinessPlanBasic, BusinessPlanPro, BusinessPlanEnterprise:
		return true
	}
	return false
}

// BusinessCodePrefix prefixes every generated business code.
const BusinessCodePrefix = "BIZ"

var businessCodePattern = regexp.MustCompile(`^BIZ\d{4,}$`)

// FormatBusinessCode renders the n-th business code, e.g. 7 -> BIZ0007.
func FormatBusinessCode(n int) string {
	return fmt.Sprintf("%s%04d", BusinessCodePrefix, n)
}

// ParseBusinessCode returns the sequence number of a generated code.
func ParseBusinessCode(code string) (int, bool) {
	if !businessCodePattern.MatchString(code) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(code, BusinessCodePrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsValidBusinessCode reports whether code has the BIZ#### shape.
func IsValidBusinessCode(code string) bool {
	return businessCodePattern.MatchString(code)
}

// Business is one salon or spa organization. Its ID is the tenant
// identifier used to name the business's isolated store.
type Business struct {
	shared.BaseEntity
	Code    string         `gorm:"size:16;not null;uniqueIndex" json:"code"`
	Name    string         `gorm:"size:200;not null" json:"name"`
	Phone   string         `gorm:"size:50" json:"phone,omitempty"`
	Email   string         `gorm:"size:200" json:"email,omitempty"`
	Address string         `gorm:"size:500" json:"address,omitempty"`
	Status  BusinessStatus `gorm:"size:20;not null;index" json:"status"`
	Plan    BusinessPlan   `gorm:"size:20;not null" json:"plan"`
	OwnerID *uuid.UUID     `gorm:"type:uuid" json:"ownerId,omitempty"`
}

// TableName returns the table name for GORM
func (Business) TableName() string {
	return "businesses"
}

// NewBusiness creates an active business without a code; the code is
// assigned by the provisioning flow once the sequence is known.
func NewBusiness(name, phone, email, address string, plan BusinessPlan) (*Business, error) {
	if plan == "" {
		plan = BusinessPlanFree
	}
	b := &Business{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Phone:      strings.TrimSpace(phone),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Address:    strings.TrimSpace(address),
		Status:     BusinessStatusActive,
		Plan:       plan,
	}
	if err := b.validateFields(); err != nil {
		return nil, err
	}
	return b, nil
}

// AssignCode sets the business code for sequence n.
func (b *Business) AssignCode(n int) {
	b.Code = FormatBusinessCode(n)
}

// TenantID returns the identifier used for store routing.
func (b *Business) TenantID() string {
	return b.ID.String()
}

// SetOwner links the owning user.
func (b *Business) SetOwner(userID uuid.UUID) {
	b.OwnerID = &userID
	b.Touch()
}

// SetStatus changes the lifecycle state.
func (b *Business) SetStatus(status BusinessStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("invalid business status %q", status)
	}
	b.Status = status
	b.Touch()
	return nil
}

// SetPlan changes the subscription tier.
func (b *Business) SetPlan(plan BusinessPlan) error {
	if !plan.IsValid() {
		return shared.NewValidationError("invalid business plan %q", plan)
	}
	b.Plan = plan
	b.Touch()
	return nil
}

// IsActive reports whether the business may use tenant routes.
func (b *Business) IsActive() bool {
	return b.Status == BusinessStatusActive
}

// Validate checks the persisted invariants.
func (b *Business) Validate() error {
	if err := b.validateFields(); err != nil {
		return err
	}
	if b.Code != "" && !IsValidBusinessCode(b.Code) {
		return shared.NewValidationError("business code %q must match BIZ####", b.Code)
	}
	return nil
}

func (b *Business) validateFields() error {
	if b.Name == "" {
		return shared.NewValidationError("business name is required")
	}
	if len(b.Name) > 200 {
		return shared.NewValidationError("business name cannot exceed 200 characters")
	}
	if b.Email != "" && !emailPattern.MatchString(b.Email) {
		return shared.NewValidationError("invalid business email %q", b.Email)
	}
	if !b.Status.IsValid() {
		return shared.NewValidationError("invalid business status %q", b.Status)
	}
	if !b.Plan.IsValid() {
		return shared.NewValidationError("invalid business plan %q", b.Plan)
	}
	return nil
}
