package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewGormAppointmentRepository creates the appointment repository
func NewGormAppointmentRepository(db *gorm.DB) *GormRepository[salon.Appointment] {
	return NewGormRepository[salon.Appointment](db, "Appointment", ListOptions{
		SearchColumns: []string{"notes"},
		SortFields:    AppointmentSortFields,
		DefaultSort:   "start_time",
		FilterColumns: map[string]string{
			"status":    "status",
			"clientId":  "client_id",
			"staffId":   "staff_id",
			"serviceId": "service_id",
		},
	})
}

// NewGormServiceRepository creates the service catalog repository
func NewGormServiceRepository(db *gorm.DB) *GormRepository[salon.Service] {
	return NewGormRepository[salon.Service](db, "Service", ListOptions{
		SearchColumns: []string{"name", "category"},
		SortFields:    ServiceSortFields,
		FilterColumns: map[string]string{"status": "status", "category": "category"},
	})
}

// NewGormStaffRepository creates the staff repository
func NewGormStaffRepository(db *gorm.DB) *GormRepository[salon.Staff] {
	return NewGormRepository[salon.Staff](db, "Staff", ListOptions{
		SearchColumns: []string{"name", "phone", "email", "role"},
		SortFields:    StaffSortFields,
		FilterColumns: map[string]string{"status": "status", "role": "role"},
	})
}

// GormClientRepository implements salon.ClientRepository
type GormClientRepository struct {
	*GormRepository[salon.Client]
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{NewGormRepository[salon.Client](db, "Client", ListOptions{
		SearchColumns: []string{"name", "phone", "email"},
		SortFields:    ClientSortFields,
		FilterColumns: map[string]string{"status": "status", "gender": "gender"},
	})}
}

// RecordVisit increments the visit counters of a client in place.
func (r *GormClientRepository) RecordVisit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&salon.Client{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"visit_count":   gorm.Expr("visit_count + 1"),
			"total_spent":   gorm.Expr("total_spent + ?", amount),
			"last_visit_at": now,
			"updated_at":    now,
		})
	if result.Error != nil {
		return translateError(result.Error, "Client")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Client")
	}
	return nil
}

// GormProductRepository implements salon.ProductRepository
type GormProductRepository struct {
	*GormRepository[salon.Product]
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{NewGormRepository[salon.Product](db, "Product", ListOptions{
		SearchColumns: []string{"name", "sku", "category"},
		SortFields:    ProductSortFields,
		FilterColumns: map[string]string{"status": "status", "category": "category"},
	})}
}

// AdjustStock applies delta with a conditional update so concurrent sales
// cannot drive stock below zero.
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var stock int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&salon.Product{}).
			Where("id = ? AND stock + ? >= 0", id, delta).
			Updates(map[string]any{
				"stock":      gorm.Expr("stock + ?", delta),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var product salon.Product
			if err := tx.Select("id", "stock").First(&product, "id = ?", id).Error; err != nil {
				return err
			}
			return shared.NewValidationError("insufficient stock for product %s: %d on hand", id, product.Stock)
		}
		var stocks []int64
		if err := tx.Model(&salon.Product{}).Where("id = ?", id).Pluck("stock", &stocks).Error; err != nil {
			return err
		}
		if len(stocks) == 0 {
			return gorm.ErrRecordNotFound
		}
		stock = stocks[0]
		return nil
	})
	if err != nil {
		return 0, translateError(err, "Product")
	}
	return stock, nil
}

// GormSaleRepository implements salon.SaleRepository
type GormSaleRepository struct {
	*GormRepository[salon.Sale]
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{NewGormRepository[salon.Sale](db, "Sale", ListOptions{
		SearchColumns: []string{"bill_number", "client_name"},
		SortFields:    SaleSortFields,
		DefaultSort:   "sale_time",
		FilterColumns: map[string]string{
			"status":   "status",
			"date":     "business_date",
			"clientId": "client_id",
			"staffId":  "staff_id",
		},
	})}
}

// FindByBusinessDate returns every sale of one business day
func (r *GormSaleRepository) FindByBusinessDate(ctx context.Context, date string) ([]salon.Sale, error) {
	var sales []salon.Sale
	if err := r.db.WithContext(ctx).
		Where("business_date = ?", date).
		Order("sale_time ASC").
		Find(&sales).Error; err != nil {
		return nil, translateError(err, "Sale")
	}
	return sales, nil
}

// CountByBusinessDate counts the sales of one business day, cancelled ones included
func (r *GormSaleRepository) CountByBusinessDate(ctx context.Context, date string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&salon.Sale{}).
		Where("business_date = ?", date).
		Count(&n).Error; err != nil {
		return 0, translateError(err, "Sale")
	}
	return n, nil
}

// GormReceiptRepository implements salon.ReceiptRepository
type GormReceiptRepository struct {
	*GormRepository[salon.Receipt]
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{NewGormRepository[salon.Receipt](db, "Receipt", ListOptions{
		SearchColumns: []string{"receipt_number", "client_name"},
		SortFields:    ReceiptSortFields,
		DefaultSort:   "issued_at",
	})}
}

// FindBySaleID finds the receipt issued for a sale
func (r *GormReceiptRepository) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*salon.Receipt, error) {
	var receipt salon.Receipt
	if err := r.db.WithContext(ctx).First(&receipt, "sale_id = ?", saleID).Error; err != nil {
		return nil, translateError(err, "Receipt")
	}
	return &receipt, nil
}

// GormExpenseRepository implements salon.ExpenseRepository
type GormExpenseRepository struct {
	*GormRepository[salon.Expense]
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{NewGormRepository[salon.Expense](db, "Expense", ListOptions{
		SearchColumns: []string{"category", "description", "vendor"},
		SortFields:    ExpenseSortFields,
		DefaultSort:   "expense_time",
		FilterColumns: map[string]string{
			"category":    "category",
			"date":        "business_date",
			"paymentMode": "payment_mode",
		},
	})}
}

// FindByBusinessDate returns every expense of one business day
func (r *GormExpenseRepository) FindByBusinessDate(ctx context.Context, date string) ([]salon.Expense, error) {
	var expenses []salon.Expense
	if err := r.db.WithContext(ctx).
		Where("business_date = ?", date).
		Order("expense_time ASC").
		Find(&expenses).Error; err != nil {
		return nil, translateError(err, "Expense")
	}
	return expenses, nil
}

// GormInventoryTransactionRepository implements salon.InventoryTransactionRepository
type GormInventoryTransactionRepository struct {
	*GormRepository[salon.InventoryTransaction]
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{NewGormRepository[salon.InventoryTransaction](db, "Inventory transaction", ListOptions{
		SearchColumns: []string{"notes"},
		SortFields:    InventoryTransactionSortFields,
		FilterColumns: map[string]string{"productId": "product_id", "type": "type"},
	})}
}

// GormSettingsRepository implements salon.SettingsRepository
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the settings document of the store
func (r *GormSettingsRepository) Get(ctx context.Context) (*salon.BusinessSettings, error) {
	var settings salon.BusinessSettings
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error; err != nil {
		return nil, translateError(err, "Business settings")
	}
	return &settings, nil
}

// Save creates the settings document or overwrites the existing one
func (r *GormSettingsRepository) Save(ctx context.Context, settings *salon.BusinessSettings) error {
	existing, err := r.Get(ctx)
	switch {
	case err == nil:
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
		return updateAll(ctx, r.db, settings, "Business settings")
	case errors.Is(err, shared.ErrNotFound):
		settings.Touch()
		return translateError(r.db.WithContext(ctx).Create(settings).Error, "Business settings")
	default:
		return err
	}
}
