package salon

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMode is how a sale or expense was paid
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentCard   PaymentMode = "card"
	PaymentOnline PaymentMode = "online"
)

// IsValid reports whether m is a known mode.
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

// ItemType distinguishes services from products on a bill
type ItemType string

const (
	ItemService ItemType = "service"
	ItemProduct ItemType = "product"
)

// SaleStatus represents the state of a sale
type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SaleCancelled SaleStatus = "cancelled"
)

// SaleItem is one line of a bill.
type SaleItem struct {
	Type      ItemType        `json:"type"`
	RefID     *uuid.UUID      `json:"refId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// Payment is one tender applied to a sale.
type Payment struct {
	Mode   PaymentMode     `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

// Sale is a completed point-of-sale bill.
type Sale struct {
	shared.BaseEntity
	BillNumber   string          `gorm:"size:40;not null;uniqueIndex" json:"billNumber"`
	ClientID     *uuid.UUID      `gorm:"type:uuid;index" json:"clientId,omitempty"`
	ClientName   string          `gorm:"size:200" json:"clientName,omitempty"`
	StaffID      *uuid.UUID      `gorm:"type:uuid;index" json:"staffId,omitempty"`
	SaleTime     time.Time       `gorm:"not null" json:"saleTime"`
	BusinessDate string          `gorm:"size:10;not null;index" json:"date"`
	Items        []SaleItem      `gorm:"serializer:json" json:"items"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	Discount     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"discount"`
	Tax          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"tax"`
	GrandTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"grandTotal"`
	Payments     []Payment       `gorm:"serializer:json" json:"payments"`
	Status       SaleStatus      `gorm:"size:20;not null;index" json:"status"`
	Notes        string          `gorm:"size:2000" json:"notes,omitempty"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"createdBy,omitempty"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleDraft is the caller-supplied part of a sale.
type SaleDraft struct {
	ClientID     *uuid.UUID
	ClientName   string
	StaffID      *uuid.UUID
	SaleTime     time.Time
	BusinessDate string
	Items        []SaleItem
	Discount     decimal.Decimal
	Payments     []Payment
	Notes        string
	CreatedBy    *uuid.UUID
}

// NewSale prices a draft: line totals, subtotal, discount, tax at taxRate
// percent and grand total. Payments must cover the grand total exactly.
func NewSale(draft SaleDraft, taxRate decimal.Decimal) (*Sale, error) {
	if len(draft.Items) == 0 {
		return nil, shared.NewValidationError("a sale needs at least one item")
	}
	if draft.SaleTime.IsZero() {
		draft.SaleTime = time.Now()
	}
	draft.SaleTime = draft.SaleTime.UTC()
	date := strings.TrimSpace(draft.BusinessDate)
	if date == "" {
		date = shared.BusinessDate(draft.SaleTime, time.UTC)
	} else if _, err := shared.ParseBusinessDate(date); err != nil {
		return nil, err
	}

	items := make([]SaleItem, len(draft.Items))
	subtotal := decimal.Zero
	for i, item := range draft.Items {
		if item.Type != ItemService && item.Type != ItemProduct {
			return nil, shared.NewValidationError("item %d: invalid type %q", i+1, item.Type)
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, shared.NewValidationError("item %d: name is required", i+1)
		}
		if item.Quantity <= 0 {
			return nil, shared.NewValidationError("item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("item %d: unit price cannot be negative", i+1)
		}
		if item.Type == ItemProduct && item.RefID == nil {
			return nil, shared.NewValidationError("item %d: product items need a refId", i+1)
		}
		item.Total = item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		subtotal = subtotal.Add(item.Total)
		items[i] = item
	}

	if draft.Discount.IsNegative() || draft.Discount.GreaterThan(subtotal) {
		return nil, shared.NewValidationError("discount must be between 0 and the subtotal")
	}
	taxable := subtotal.Sub(draft.Discount)
	tax := taxable.Mul(taxRate).Div(hundred).Round(2)
	grand := taxable.Add(tax)

	if len(draft.Payments) == 0 {
		return nil, shared.NewValidationError("a sale needs at least one payment")
	}
	paid := decimal.Zero
	for i, p := range draft.Payments {
		if !p.Mode.IsValid() {
			return nil, shared.NewValidationError("payment %d: invalid mode %q", i+1, p.Mode)
		}
		if !p.Amount.IsPositive() {
			return nil, shared.NewValidationError("payment %d: amount must be positive", i+1)
		}
		paid = paid.Add(p.Amount)
	}
	if !paid.Equal(grand) {
		return nil, shared.NewValidationError("payments total %s does not match grand total %s", paid.StringFixed(2), grand.StringFixed(2))
	}

	return &Sale{
		BaseEntity:   shared.NewBaseEntity(),
		ClientID:     draft.ClientID,
		ClientName:   strings.TrimSpace(draft.ClientName),
		StaffID:      draft.StaffID,
		SaleTime:     draft.SaleTime,
		BusinessDate: date,
		Items:        items,
		Subtotal:     subtotal,
		Discount:     draft.Discount,
		Tax:          tax,
		GrandTotal:   grand,
		Payments:     draft.Payments,
		Status:       SaleCompleted,
		Notes:        strings.TrimSpace(draft.Notes),
		CreatedBy:    draft.CreatedBy,
	}, nil
}

// FormatBillNumber renders a day-scoped bill number, e.g. S-20260314-0003.
func FormatBillNumber(prefix, date string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, strings.ReplaceAll(date, "-", ""), seq)
}

// AmountByMode sums the payments made in mode.
func (s *Sale) AmountByMode(mode PaymentMode) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		if p.Mode == mode {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// CashAmount sums the cash payments.
func (s *Sale) CashAmount() decimal.Decimal {
	return s.AmountByMode(PaymentCash)
}

// IsCompleted reports whether the sale counts toward the books.
func (s *Sale) IsCompleted() bool {
	return s.Status == SaleCompleted
}

// Cancel voids a completed sale.
func (s *Sale) Cancel() error {
	if s.Status == SaleCancelled {
		return shared.NewInvalidStateError("sale is already cancelled")
	}
	s.Status = SaleCancelled
	s.Touch()
	return nil
}

// ProductQuantities totals product quantities per product id.
func (s *Sale) ProductQuantities() map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64)
	for _, item := range s.Items {
		if item.Type == ItemProduct && item.RefID != nil {
			out[*item.RefID] += item.Quantity
		}
	}
	return out
}

// Validate checks the persisted invariants.
func (s *Sale) Validate() error {
	if s.BillNumber == "" {
		return shared.NewValidationError("sale bill number is required")
	}
	if len(s.Items) == 0 {
		return shared.NewValidationError("a sale needs at least one item")
	}
	if _, err := shared.ParseBusinessDate(s.BusinessDate); err != nil {
		return err
	}
	if s.Status != SaleCompleted && s.Status != SaleCancelled {
		return shared.NewValidationError("invalid sale status %q", s.Status)
	}
	return nil
}

// Receipt is the customer-facing record issued for a sale.
type Receipt struct {
	shared.BaseEntity
	ReceiptNumber string          `gorm:"size:40;not null;uniqueIndex" json:"receiptNumber"`
	SaleID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"saleId"`
	ClientName    string          `gorm:"size:200" json:"clientName,omitempty"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	Payments      []Payment       `gorm:"serializer:json" json:"payments"`
	IssuedAt      time.Time       `gorm:"not null" json:"issuedAt"`
}

// TableName returns the table name for GORM
func (Receipt) TableName() string {
	return "receipts"
}

// NewReceipt issues a receipt for sale.
func NewReceipt(sale *Sale, number string) *Receipt {
	return &Receipt{
		BaseEntity:    shared.NewBaseEntity(),
		ReceiptNumber: number,
		SaleID:        sale.ID,
		ClientName:    sale.ClientName,
		Total:         sale.GrandTotal,
		Payments:      sale.Payments,
		IssuedAt:      sale.SaleTime,
	}
}

// Validate checks required fields.
func (r *Receipt) Validate() error {
	if r.ReceiptNumber == "" || r.SaleID == uuid.Nil {
		return shared.NewValidationError("receipt needs a number and a sale")
	}
	return nil
}
