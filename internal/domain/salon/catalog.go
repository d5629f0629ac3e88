package salon

import (
	"strings"

	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Service is a bookable treatment on the menu.
type Service struct {
	shared.BaseEntity
	Name        string          `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Category    string          `gorm:"size:100;index" json:"category,omitempty"`
	Duration    int             `gorm:"not null;default:30" json:"duration"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Description string          `gorm:"size:2000" json:"description,omitempty"`
	Status      Status          `gorm:"size:20;not null" json:"status"`
}

// TableName returns the table name for GORM
func (Service) TableName() string {
	return "services"
}

// ApplyDefaults fills fields a create request may omit.
func (s *Service) ApplyDefaults() {
	s.Name = strings.TrimSpace(s.Name)
	if s.Status == "" {
		s.Status = StatusActive
	}
	if s.Duration == 0 {
		s.Duration = 30
	}
}

// Validate checks required fields.
func (s *Service) Validate() error {
	if s.Name == "" {
		return shared.NewValidationError("service name is required")
	}
	if s.Duration <= 0 {
		return shared.NewValidationError("service duration must be positive")
	}
	if s.Price.IsNegative() {
		return shared.NewValidationError("service price cannot be negative")
	}
	if !s.Status.IsValid() {
		return shared.NewValidationError("invalid service status %q", s.Status)
	}
	return nil
}

// Product is a retail or back-bar item with tracked stock.
type Product struct {
	shared.BaseEntity
	Name     string          `gorm:"size:200;not null;index" json:"name"`
	SKU      string          `gorm:"column:sku;size:64;not null;uniqueIndex" json:"sku"`
	Category string          `gorm:"size:100;index" json:"category,omitempty"`
	Price    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Cost     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"cost"`
	Stock    int64           `gorm:"not null;default:0" json:"stock"`
	MinStock int64           `gorm:"not null;default:0" json:"minStock"`
	Status   Status          `gorm:"size:20;not null" json:"status"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ApplyDefaults fills fields a create request may omit.
func (p *Product) ApplyDefaults() {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	if p.Status == "" {
		p.Status = StatusActive
	}
}

// Validate checks required fields.
func (p *Product) Validate() error {
	if p.Name == "" {
		return shared.NewValidationError("product name is required")
	}
	if p.SKU == "" {
		return shared.NewValidationError("product sku is required")
	}
	if p.Price.IsNegative() || p.Cost.IsNegative() {
		return shared.NewValidationError("product price and cost cannot be negative")
	}
	if p.Stock < 0 {
		return shared.NewValidationError("product stock cannot be negative")
	}
	if p.MinStock < 0 {
		return shared.NewValidationError("product minStock cannot be negative")
	}
	if !p.Status.IsValid() {
		return shared.NewValidationError("invalid product status %q", p.Status)
	}
	return nil
}

// IsLowStock reports whether stock is at or below the reorder level.
func (p *Product) IsLowStock() bool {
	return p.MinStock > 0 && p.Stock <= p.MinStock
}

// Staff is an employee who performs services.
type Staff struct {
	shared.BaseEntity
	Name           string          `gorm:"size:200;not null;index" json:"name"`
	Phone          string          `gorm:"size:50;not null;uniqueIndex" json:"phone"`
	Email          string          `gorm:"size:200" json:"email,omitempty"`
	Role           string          `gorm:"size:50" json:"role,omitempty"`
	Specialties    []string        `gorm:"serializer:json" json:"specialties,omitempty"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commissionRate"`
	Status         Status          `gorm:"size:20;not null" json:"status"`
}

// TableName returns the table name for GORM
func (Staff) TableName() string {
	return "staff"
}

// ApplyDefaults fills fields a create request may omit.
func (s *Staff) ApplyDefaults() {
	s.Name = strings.TrimSpace(s.Name)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if s.Status == "" {
		s.Status = StatusActive
	}
}

var hundred = decimal.NewFromInt(100)

// Validate checks required fields.
func (s *Staff) Validate() error {
	if s.Name == "" {
		return shared.NewValidationError("staff name is required")
	}
	if s.Phone == "" {
		return shared.NewValidationError("staff phone is required")
	}
	if !validEmail(s.Email) {
		return shared.NewValidationError("invalid email %q", s.Email)
	}
	if s.CommissionRate.IsNegative() || s.CommissionRate.GreaterThan(hundred) {
		return shared.NewValidationError("commissionRate must be between 0 and 100")
	}
	if !s.Status.IsValid() {
		return shared.NewValidationError("invalid staff status %q", s.Status)
	}
	return nil
}
