package cashregistry

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShiftType is the cash count event of a business day
type ShiftType string

const (
	ShiftOpening ShiftType = "opening"
	ShiftClosing ShiftType = "closing"
)

// IsValid reports whether s is a known shift.
func (s ShiftType) IsValid() bool {
	return s == ShiftOpening || s == ShiftClosing
}

// Status is the verification state of an entry
type Status string

const (
	StatusUnverified Status = "unverified"
	StatusVerified   Status = "verified"
)

// Reason tags attached to computed differences.
const (
	ReasonBalanced         = "Balanced"
	ReasonManualAdjustment = "Manual adjustment required"
	ReasonDifference       = "Difference detected"
)

// Entry is the cash count of one shift of one business day. A day holds at
// most one opening and one closing entry.
type Entry struct {
	shared.BaseEntity
	BusinessDate  string         `gorm:"size:10;not null;uniqueIndex:idx_cash_registry_date_shift" json:"date"`
	ShiftType     ShiftType      `gorm:"size:10;not null;uniqueIndex:idx_cash_registry_date_shift" json:"shiftType"`
	Denominations []Denomination `gorm:"serializer:json" json:"denominations"`

	OpeningBalance  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"openingBalance"`
	ClosingBalance  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"closingBalance"`
	CashCollected   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"cashCollected"`
	ExpenseValue    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"expenseValue"`
	ExpectedBalance decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"expectedCashBalance"`

	BalanceDifference       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balanceDifference"`
	BalanceDifferenceReason string          `gorm:"size:50" json:"balanceDifferenceReason"`

	OnlineCash                decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"onlineCash"`
	PosCash                   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"posCash"`
	OnlinePosDifference       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"onlinePosDifference"`
	OnlinePosDifferenceReason string          `gorm:"size:50" json:"onlinePosDifferenceReason"`

	Notes      string     `gorm:"size:1000" json:"notes,omitempty"`
	Status     Status     `gorm:"size:20;not null;index" json:"status"`
	VerifiedBy *uuid.UUID `gorm:"type:uuid" json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid" json:"createdBy,omitempty"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "cash_registry_entries"
}

// NewEntry creates an unverified entry for date and shift.
func NewEntry(date string, shift ShiftType, createdBy *uuid.UUID) (*Entry, error) {
	if _, err := shared.ParseBusinessDate(date); err != nil {
		return nil, err
	}
	if !shift.IsValid() {
		return nil, shared.NewValidationError("invalid shift type %q", shift)
	}
	return &Entry{
		BaseEntity:   shared.NewBaseEntity(),
		BusinessDate: strings.TrimSpace(date),
		ShiftType:    shift,
		Status:       StatusUnverified,
		CreatedBy:    createdBy,
	}, nil
}

// ApplyOpening records the opening count. The counted total becomes the
// day's opening balance; no reconciliation happens.
func (e *Entry) ApplyOpening(denoms []Denomination) error {
	if err := e.EnsureEditable(); err != nil {
		return err
	}
	if e.ShiftType != ShiftOpening {
		return shared.NewInvalidStateError("entry is not an opening shift")
	}
	total, err := TotalDenominations(denoms)
	if err != nil {
		return err
	}
	e.Denominations = denoms
	e.OpeningBalance = total
	e.Touch()
	return nil
}

// ClosingInput carries the figures a closing count is reconciled against.
type ClosingInput struct {
	Denominations  []Denomination
	OpeningBalance decimal.Decimal
	CashCollected  decimal.Decimal
	ExpenseValue   decimal.Decimal
	OnlineCash     decimal.Decimal
	PosCash        decimal.Decimal
}

// ApplyClosing records the closing count and reconciles it.
func (e *Entry) ApplyClosing(in ClosingInput) error {
	if err := e.EnsureEditable(); err != nil {
		return err
	}
	if e.ShiftType != ShiftClosing {
		return shared.NewInvalidStateError("entry is not a closing shift")
	}
	counted, err := TotalDenominations(in.Denominations)
	if err != nil {
		return err
	}
	r := Reconcile(ReconcileInput{
		Opening:       in.OpeningBalance,
		CashCollected: in.CashCollected,
		ExpenseValue:  in.ExpenseValue,
		Counted:       counted,
		OnlineCash:    in.OnlineCash,
		PosCash:       in.PosCash,
	})

	e.Denominations = in.Denominations
	e.OpeningBalance = in.OpeningBalance
	e.ClosingBalance = counted
	e.CashCollected = in.CashCollected
	e.ExpenseValue = in.ExpenseValue
	e.ExpectedBalance = r.ExpectedBalance
	e.BalanceDifference = r.BalanceDifference
	e.BalanceDifferenceReason = r.BalanceReason
	e.OnlineCash = in.OnlineCash
	e.PosCash = in.PosCash
	e.OnlinePosDifference = r.OnlinePosDifference
	e.OnlinePosDifferenceReason = r.OnlinePosReason
	e.Touch()
	return nil
}

// HasDifference reports whether either computed difference is nonzero.
func (e *Entry) HasDifference() bool {
	return !e.BalanceDifference.IsZero() || !e.OnlinePosDifference.IsZero()
}

// IsVerified reports whether the entry has been verified.
func (e *Entry) IsVerified() bool {
	return e.Status == StatusVerified
}

// Verify moves the entry to verified. An entry with a difference needs a
// note; an already verified entry is rejected.
func (e *Entry) Verify(by uuid.UUID, note string, at time.Time) error {
	if e.IsVerified() {
		return shared.NewInvalidStateError("cash registry entry is already verified")
	}
	note = strings.TrimSpace(note)
	if e.HasDifference() && note == "" {
		return shared.NewValidationError("notes are required to verify an entry with a cash difference")
	}
	if note != "" {
		e.Notes = note
	}
	at = at.UTC()
	e.Status = StatusVerified
	e.VerifiedBy = &by
	e.VerifiedAt = &at
	e.Touch()
	return nil
}

// EnsureDeletable rejects deleting a verified entry.
func (e *Entry) EnsureDeletable() error {
	if e.IsVerified() {
		return shared.NewInvalidStateError("verified cash registry entries cannot be deleted")
	}
	return nil
}

// EnsureEditable rejects re-submitting a verified entry.
func (e *Entry) EnsureEditable() error {
	if e.IsVerified() {
		return shared.NewInvalidStateError("verified cash registry entries cannot be modified")
	}
	return nil
}

// Validate checks the persisted invariants.
func (e *Entry) Validate() error {
	if _, err := shared.ParseBusinessDate(e.BusinessDate); err != nil {
		return err
	}
	if !e.ShiftType.IsValid() {
		return shared.NewValidationError("invalid shift type %q", e.ShiftType)
	}
	if e.Status != StatusUnverified && e.Status != StatusVerified {
		return shared.NewValidationError("invalid status %q", e.Status)
	}
	return nil
}
