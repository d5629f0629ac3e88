package persistence

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/salon-crm/backend/internal/domain/cashregistry"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Schema binds an entity name to its table model and repository constructor.
type Schema struct {
	Name  string
	Model any
	Bind  func(db *gorm.DB) any
}

// BindObserver receives model binding events.
type BindObserver interface {
	ModelBound(ctx context.Context, storeName, entity string, elapsed time.Duration, err error)
}

// Main store schemas
var (
	BusinessSchema = Schema{Name: "Business", Model: &platform.Business{}, Bind: func(db *gorm.DB) any { return NewGormBusinessRepository(db) }}
	UserSchema     = Schema{Name: "User", Model: &platform.User{}, Bind: func(db *gorm.DB) any { return NewGormUserRepository(db) }}
	AdminSchema    = Schema{Name: "Admin", Model: &platform.Admin{}, Bind: func(db *gorm.DB) any { return NewGormAdminRepository(db) }}
	ResetSchema    = Schema{Name: "PasswordResetToken", Model: &platform.PasswordResetToken{}, Bind: func(db *gorm.DB) any { return NewGormPasswordResetTokenRepository(db) }}
)

// Tenant store schemas
var (
	ClientSchema       = Schema{Name: "Client", Model: &salon.Client{}, Bind: func(db *gorm.DB) any { return NewGormClientRepository(db) }}
	AppointmentSchema  = Schema{Name: "Appointment", Model: &salon.Appointment{}, Bind: func(db *gorm.DB) any { return NewGormAppointmentRepository(db) }}
	SaleSchema         = Schema{Name: "Sale", Model: &salon.Sale{}, Bind: func(db *gorm.DB) any { return NewGormSaleRepository(db) }}
	ReceiptSchema      = Schema{Name: "Receipt", Model: &salon.Receipt{}, Bind: func(db *gorm.DB) any { return NewGormReceiptRepository(db) }}
	ProductSchema      = Schema{Name: "Product", Model: &salon.Product{}, Bind: func(db *gorm.DB) any { return NewGormProductRepository(db) }}
	ServiceSchema      = Schema{Name: "Service", Model: &salon.Service{}, Bind: func(db *gorm.DB) any { return NewGormServiceRepository(db) }}
	StaffSchema        = Schema{Name: "Staff", Model: &salon.Staff{}, Bind: func(db *gorm.DB) any { return NewGormStaffRepository(db) }}
	CashRegistrySchema = Schema{Name: "CashRegistry", Model: &cashregistry.Entry{}, Bind: func(db *gorm.DB) any { return NewGormCashRegistryRepository(db) }}
	ExpenseSchema      = Schema{Name: "Expense", Model: &salon.Expense{}, Bind: func(db *gorm.DB) any { return NewGormExpenseRepository(db) }}
	InventorySchema    = Schema{Name: "InventoryTransaction", Model: &salon.InventoryTransaction{}, Bind: func(db *gorm.DB) any { return NewGormInventoryTransactionRepository(db) }}
	SettingsSchema     = Schema{Name: "BusinessSettings", Model: &salon.BusinessSettings{}, Bind: func(db *gorm.DB) any { return NewGormSettingsRepository(db) }}
)

// ModelFactory caches one bound repository per (store, entity). The first
// request for a pair migrates the table into the store.
type ModelFactory struct {
	mu       sync.RWMutex
	handles  map[string]boundModel
	group    singleflight.Group
	observer BindObserver
}

// boundModel is a handle and the connection it was bound on. A handle is
// only served for that same connection.
type boundModel struct {
	conn   *store.Connection
	handle any
}

// NewModelFactory creates an empty factory. observer may be nil.
func NewModelFactory(observer BindObserver) *ModelFactory {
	return &ModelFactory{
		handles:  make(map[string]boundModel),
		observer: observer,
	}
}

func modelKey(storeName, entity string) string {
	return storeName + "/" + entity
}

func flightKey(key string, conn *store.Connection) string {
	return fmt.Sprintf("%s@%p", key, conn)
}

// GetModel returns the cached handle for schema on conn, binding it on
// first use.
func (f *ModelFactory) GetModel(ctx context.Context, conn *store.Connection, schema Schema) (any, error) {
	key := modelKey(conn.Name, schema.Name)
	if h, ok := f.lookup(key, conn); ok {
		return h, nil
	}

	ch := f.group.DoChan(flightKey(key, conn), func() (any, error) {
		if h, ok := f.lookup(key, conn); ok {
			return h, nil
		}
		bindCtx := context.WithoutCancel(ctx)
		start := time.Now()
		err := conn.DB.WithContext(bindCtx).AutoMigrate(schema.Model)
		if f.observer != nil {
			f.observer.ModelBound(bindCtx, conn.Name, schema.Name, time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("bind %s on %s: %w", schema.Name, conn.Name, err)
		}
		h := schema.Bind(conn.DB)

		f.mu.Lock()
		defer f.mu.Unlock()
		if conn.Closed() {
			return nil, fmt.Errorf("bind %s on %s: %w", schema.Name, conn.Name, store.ErrConnectionClosed)
		}
		f.handles[key] = boundModel{conn: conn, handle: h}
		return h, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("bind %s on %s: %w", schema.Name, conn.Name, ctx.Err())
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (f *ModelFactory) lookup(key string, conn *store.Connection) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.handles[key]
	if !ok || m.conn != conn {
		return nil, false
	}
	return m.handle, true
}

// getTyped binds schema and asserts the handle type.
func getTyped[T any](ctx context.Context, f *ModelFactory, conn *store.Connection, schema Schema) (T, error) {
	var zero T
	h, err := f.GetModel(ctx, conn, schema)
	if err != nil {
		return zero, err
	}
	typed, ok := h.(T)
	if !ok {
		return zero, fmt.Errorf("model %s bound as %T", schema.Name, h)
	}
	return typed, nil
}

// CreateBusinessModels binds every tenant entity on conn.
func (f *ModelFactory) CreateBusinessModels(ctx context.Context, conn *store.Connection) (*salon.Repositories, error) {
	var (
		repos salon.Repositories
		err   error
	)
	if repos.Clients, err = getTyped[*GormClientRepository](ctx, f, conn, ClientSchema); err != nil {
		return nil, err
	}
	if repos.Appointments, err = getTyped[*GormRepository[salon.Appointment]](ctx, f, conn, AppointmentSchema); err != nil {
		return nil, err
	}
	if repos.Sales, err = getTyped[*GormSaleRepository](ctx, f, conn, SaleSchema); err != nil {
		return nil, err
	}
	if repos.Receipts, err = getTyped[*GormReceiptRepository](ctx, f, conn, ReceiptSchema); err != nil {
		return nil, err
	}
	if repos.Products, err = getTyped[*GormProductRepository](ctx, f, conn, ProductSchema); err != nil {
		return nil, err
	}
	if repos.Services, err = getTyped[*GormRepository[salon.Service]](ctx, f, conn, ServiceSchema); err != nil {
		return nil, err
	}
	if repos.Staff, err = getTyped[*GormRepository[salon.Staff]](ctx, f, conn, StaffSchema); err != nil {
		return nil, err
	}
	if repos.CashRegistry, err = getTyped[*GormCashRegistryRepository](ctx, f, conn, CashRegistrySchema); err != nil {
		return nil, err
	}
	if repos.Expenses, err = getTyped[*GormExpenseRepository](ctx, f, conn, ExpenseSchema); err != nil {
		return nil, err
	}
	if repos.InventoryTransactions, err = getTyped[*GormInventoryTransactionRepository](ctx, f, conn, InventorySchema); err != nil {
		return nil, err
	}
	if repos.Settings, err = getTyped[*GormSettingsRepository](ctx, f, conn, SettingsSchema); err != nil {
		return nil, err
	}
	return &repos, nil
}

// CreateMainModels binds every main-store entity on conn.
func (f *ModelFactory) CreateMainModels(ctx context.Context, conn *store.Connection) (*platform.Repositories, error) {
	var (
		repos platform.Repositories
		err   error
	)
	if repos.Businesses, err = getTyped[*GormBusinessRepository](ctx, f, conn, BusinessSchema); err != nil {
		return nil, err
	}
	if repos.Users, err = getTyped[*GormUserRepository](ctx, f, conn, UserSchema); err != nil {
		return nil, err
	}
	if repos.Admins, err = getTyped[*GormAdminRepository](ctx, f, conn, AdminSchema); err != nil {
		return nil, err
	}
	if repos.PasswordResetTokens, err = getTyped[*GormPasswordResetTokenRepository](ctx, f, conn, ResetSchema); err != nil {
		return nil, err
	}
	return &repos, nil
}

// ClearModelsForConnection drops every handle bound on conn's store.
func (f *ModelFactory) ClearModelsForConnection(conn *store.Connection) {
	prefix := conn.Name + "/"
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, m := range f.handles {
		if strings.HasPrefix(key, prefix) && m.conn == conn {
			delete(f.handles, key)
		}
	}
}

// Len returns the number of cached handles.
func (f *ModelFactory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.handles)
}
