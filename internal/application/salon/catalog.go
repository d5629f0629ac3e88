package salon

import (
	"context"
	"time"

	"github.com/salon-crm/backend/internal/domain/salon"
)

// Typed CRUD services of the catalog entities.
type (
	ClientService      = CRUDService[salon.Client, *salon.Client]
	AppointmentService = CRUDService[salon.Appointment, *salon.Appointment]
	ServiceCatalog     = CRUDService[salon.Service, *salon.Service]
	ProductService     = CRUDService[salon.Product, *salon.Product]
	StaffService       = CRUDService[salon.Staff, *salon.Staff]
	ExpenseService     = CRUDService[salon.Expense, *salon.Expense]
)

// NewClientService keeps visit statistics out of client edits; they only
// move when a sale is recorded.
func NewClientService(repos *salon.Repositories) *ClientService {
	return NewCRUDService[salon.Client](repos.Clients).
		WithPreserved(func(dst, src *salon.Client) {
			dst.VisitCount = src.VisitCount
			dst.TotalSpent = src.TotalSpent
			dst.LastVisitAt = src.LastVisitAt
		})
}

func NewAppointmentService(repos *salon.Repositories) *AppointmentService {
	return NewCRUDService[salon.Appointment](repos.Appointments)
}

func NewServiceCatalog(repos *salon.Repositories) *ServiceCatalog {
	return NewCRUDService[salon.Service](repos.Services)
}

// NewProductService keeps stock out of product edits; stock moves through
// InventoryService and sales.
func NewProductService(repos *salon.Repositories) *ProductService {
	return NewCRUDService[salon.Product](repos.Products).
		WithPreserved(func(dst, src *salon.Product) {
			dst.Stock = src.Stock
		})
}

func NewStaffService(repos *salon.Repositories) *StaffService {
	return NewCRUDService[salon.Staff](repos.Staff)
}

// NewExpenseService dates expenses in the business timezone, the way sales
// are dated, so the closing shift counts both against the same day.
func NewExpenseService(repos *salon.Repositories) *ExpenseService {
	return newExpenseService(repos, time.Now)
}

func newExpenseService(repos *salon.Repositories, now func() time.Time) *ExpenseService {
	return NewCRUDService[salon.Expense](repos.Expenses).
		WithPrepare(func(ctx context.Context, e *salon.Expense) error {
			settings, err := loadSettings(ctx, repos.Settings)
			if err != nil {
				return err
			}
			e.StampBusinessDate(now(), settingsLocation(settings))
			return nil
		})
}
