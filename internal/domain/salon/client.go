package salon

import (
	"regexp"
	"strings"
	"time"

	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the active flag shared by the catalog entities and clients.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validEmail(email string) bool {
	return email == "" || emailPattern.MatchString(email)
}

// Client is a customer of the business.
type Client struct {
	shared.BaseEntity
	Name        string          `gorm:"size:200;not null;index" json:"name"`
	Phone       string          `gorm:"size:50;not null;uniqueIndex" json:"phone"`
	Email       string          `gorm:"size:200" json:"email,omitempty"`
	Gender      string          `gorm:"size:20" json:"gender,omitempty"`
	DateOfBirth string          `gorm:"size:10" json:"dateOfBirth,omitempty"`
	Address     string          `gorm:"size:500" json:"address,omitempty"`
	Notes       string          `gorm:"size:2000" json:"notes,omitempty"`
	VisitCount  int64           `gorm:"not null;default:0" json:"visitCount"`
	TotalSpent  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"totalSpent"`
	LastVisitAt *time.Time      `json:"lastVisitAt,omitempty"`
	Status      Status          `gorm:"size:20;not null" json:"status"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// ApplyDefaults fills fields a create request may omit.
func (c *Client) ApplyDefaults() {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Status == "" {
		c.Status = StatusActive
	}
}

// Validate checks required fields.
func (c *Client) Validate() error {
	if c.Name == "" {
		return shared.NewValidationError("client name is required")
	}
	if c.Phone == "" {
		return shared.NewValidationError("client phone is required")
	}
	if !validEmail(c.Email) {
		return shared.NewValidationError("invalid email %q", c.Email)
	}
	if c.DateOfBirth != "" {
		if _, err := shared.ParseBusinessDate(c.DateOfBirth); err != nil {
			return shared.NewValidationError("dateOfBirth must be YYYY-MM-DD")
		}
	}
	if !c.Status.IsValid() {
		return shared.NewValidationError("invalid client status %q", c.Status)
	}
	return nil
}

// RecordVisit adds a completed sale to the client's history.
func (c *Client) RecordVisit(amount decimal.Decimal, at time.Time) {
	c.VisitCount++
	c.TotalSpent = c.TotalSpent.Add(amount)
	at = at.UTC()
	c.LastVisitAt = &at
	c.Touch()
}
