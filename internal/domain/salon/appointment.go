package salon

import (
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the state of a booking
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// IsValid reports whether s is a known status.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// Appointment is a booked service slot.
type Appointment struct {
	shared.BaseEntity
	ClientID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"clientId"`
	StaffID   *uuid.UUID        `gorm:"type:uuid;index" json:"staffId,omitempty"`
	ServiceID *uuid.UUID        `gorm:"type:uuid" json:"serviceId,omitempty"`
	StartTime time.Time         `gorm:"not null;index" json:"startTime"`
	Duration  int               `gorm:"not null" json:"duration"`
	Price     decimal.Decimal   `gorm:"type:decimal(14,2);not null;default:0" json:"price"`
	Status    AppointmentStatus `gorm:"size:20;not null;index" json:"status"`
	Notes     string            `gorm:"size:2000" json:"notes,omitempty"`
}

// TableName returns the table name for GORM
func (Appointment) TableName() string {
	return "appointments"
}

// ApplyDefaults fills fields a create request may omit.
func (a *Appointment) ApplyDefaults() {
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
	if a.Duration == 0 {
		a.Duration = 30
	}
	a.StartTime = a.StartTime.UTC()
}

// EndTime returns the end of the slot.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.Duration) * time.Minute)
}

// Validate checks required fields.
func (a *Appointment) Validate() error {
	if a.ClientID == uuid.Nil {
		return shared.NewValidationError("appointment clientId is required")
	}
	if a.StartTime.IsZero() {
		return shared.NewValidationError("appointment startTime is required")
	}
	if a.Duration <= 0 {
		return shared.NewValidationError("appointment duration must be positive")
	}
	if a.Price.IsNegative() {
		return shared.NewValidationError("appointment price cannot be negative")
	}
	if !a.Status.IsValid() {
		return shared.NewValidationError("invalid appointment status %q", a.Status)
	}
	return nil
}
