package salon

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Expense is money paid out by the business.
type Expense struct {
	shared.BaseEntity
	Category     string          `gorm:"size:100;not null;index" json:"category"`
	Description  string          `gorm:"size:500" json:"description,omitempty"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaymentMode  PaymentMode     `gorm:"size:20;not null" json:"paymentMode"`
	ExpenseTime  time.Time       `gorm:"not null" json:"expenseTime"`
	BusinessDate string          `gorm:"size:10;not null;index" json:"date"`
	Vendor       string          `gorm:"size:200" json:"vendor,omitempty"`
	Notes        string          `gorm:"size:2000" json:"notes,omitempty"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"createdBy,omitempty"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// StampBusinessDate fills a missing expense time with now and a missing
// business date with the day of the expense time in loc. Sales use the
// same location, so both land on the same business day.
func (e *Expense) StampBusinessDate(now time.Time, loc *time.Location) {
	if e.ExpenseTime.IsZero() {
		e.ExpenseTime = now
	}
	if strings.TrimSpace(e.BusinessDate) == "" {
		e.BusinessDate = shared.BusinessDate(e.ExpenseTime, loc)
	}
}

// ApplyDefaults normalizes the category and fills the payment mode and
// time. The business date is stamped by the caller, which knows the
// business timezone.
func (e *Expense) ApplyDefaults() {
	e.Category = strings.TrimSpace(e.Category)
	if e.PaymentMode == "" {
		e.PaymentMode = PaymentCash
	}
	if e.ExpenseTime.IsZero() {
		e.ExpenseTime = time.Now()
	}
	e.ExpenseTime = e.ExpenseTime.UTC()
}

// IsCash reports whether the expense left the cash drawer.
func (e *Expense) IsCash() bool {
	return e.PaymentMode == PaymentCash
}

// Validate checks required fields.
func (e *Expense) Validate() error {
	if e.Category == "" {
		return shared.NewValidationError("expense category is required")
	}
	if !e.Amount.IsPositive() {
		return shared.NewValidationError("expense amount must be positive")
	}
	if !e.PaymentMode.IsValid() {
		return shared.NewValidationError("invalid payment mode %q", e.PaymentMode)
	}
	if _, err := shared.ParseBusinessDate(e.BusinessDate); err != nil {
		return err
	}
	return nil
}
