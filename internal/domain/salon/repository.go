package salon

import (
	"context"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/cashregistry"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClientRepository persists clients of one tenant store.
type ClientRepository interface {
	shared.CRUDRepository[Client]
	RecordVisit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// ProductRepository persists products of one tenant store.
type ProductRepository interface {
	shared.CRUDRepository[Product]
	// AdjustStock applies delta atomically and returns the stock after it.
	// A movement that would leave negative stock is rejected.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}

// SaleRepository persists sales of one tenant store.
type SaleRepository interface {
	shared.CRUDRepository[Sale]
	FindByBusinessDate(ctx context.Context, date string) ([]Sale, error)
	CountByBusinessDate(ctx context.Context, date string) (int64, error)
}

// ReceiptRepository persists receipts of one tenant store.
type ReceiptRepository interface {
	shared.CRUDRepository[Receipt]
	FindBySaleID(ctx context.Context, saleID uuid.UUID) (*Receipt, error)
}

// ExpenseRepository persists expenses of one tenant store.
type ExpenseRepository interface {
	shared.CRUDRepository[Expense]
	FindByBusinessDate(ctx context.Context, date string) ([]Expense, error)
}

// InventoryTransactionRepository persists stock movements.
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *InventoryTransaction) error
	List(ctx context.Context, filter shared.Filter) ([]InventoryTransaction, int64, error)
}

// SettingsRepository reads and writes the settings document.
type SettingsRepository interface {
	Get(ctx context.Context) (*BusinessSettings, error)
	Save(ctx context.Context, settings *BusinessSettings) error
}

// Repositories is the set of entity handles of one tenant store.
type Repositories struct {
	Clients               ClientRepository
	Appointments          shared.CRUDRepository[Appointment]
	Sales                 SaleRepository
	Receipts              ReceiptRepository
	Products              ProductRepository
	Services              shared.CRUDRepository[Service]
	Staff                 shared.CRUDRepository[Staff]
	CashRegistry          cashregistry.Repository
	Expenses              ExpenseRepository
	InventoryTransactions InventoryTransactionRepository
	Settings              SettingsRepository
}
