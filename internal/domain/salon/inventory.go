package salon

import (
	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
)

// InventoryTransactionType is the cause of a stock movement
type InventoryTransactionType string

const (
	InventorySale       InventoryTransactionType = "sale"
	InventoryRestock    InventoryTransactionType = "restock"
	InventoryAdjustment InventoryTransactionType = "adjustment"
)

// IsValid reports whether t is a known type.
func (t InventoryTransactionType) IsValid() bool {
	switch t {
	case InventorySale, InventoryRestock, InventoryAdjustment:
		return true
	}
	return false
}

// InventoryTransaction records one signed stock movement of a product.
type InventoryTransaction struct {
	shared.BaseEntity
	ProductID   uuid.UUID                `gorm:"type:uuid;not null;index" json:"productId"`
	Type        InventoryTransactionType `gorm:"size:20;not null;index" json:"type"`
	Quantity    int64                    `gorm:"not null" json:"quantity"`
	StockAfter  int64                    `gorm:"not null" json:"stockAfter"`
	ReferenceID *uuid.UUID               `gorm:"type:uuid;index" json:"referenceId,omitempty"`
	Notes       string                   `gorm:"size:500" json:"notes,omitempty"`
	CreatedBy   *uuid.UUID               `gorm:"type:uuid" json:"createdBy,omitempty"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewInventoryTransaction records a movement of quantity (negative for
// outbound) leaving stockAfter on hand.
func NewInventoryTransaction(productID uuid.UUID, typ InventoryTransactionType, quantity, stockAfter int64, ref *uuid.UUID, notes string) (*InventoryTransaction, error) {
	tx := &InventoryTransaction{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Type:        typ,
		Quantity:    quantity,
		StockAfter:  stockAfter,
		ReferenceID: ref,
		Notes:       notes,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Validate checks required fields.
func (t *InventoryTransaction) Validate() error {
	if t.ProductID == uuid.Nil {
		return shared.NewValidationError("inventory transaction needs a product")
	}
	if !t.Type.IsValid() {
		return shared.NewValidationError("invalid inventory transaction type %q", t.Type)
	}
	if t.Quantity == 0 {
		return shared.NewValidationError("inventory quantity cannot be zero")
	}
	if t.StockAfter < 0 {
		return shared.NewValidationError("insufficient stock")
	}
	return nil
}
