package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/cashregistry"
	"github.com/salon-crm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const cashRegistryEntity = "Cash registry entry"

// GormCashRegistryRepository implements cashregistry.Repository
type GormCashRegistryRepository struct {
	db *gorm.DB
}

// NewGormCashRegistryRepository creates a new GormCashRegistryRepository
func NewGormCashRegistryRepository(db *gorm.DB) *GormCashRegistryRepository {
	return &GormCashRegistryRepository{db: db}
}

// FindByID finds an entry by its ID
func (r *GormCashRegistryRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashregistry.Entry, error) {
	var entry cashregistry.Entry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translateError(err, cashRegistryEntity)
	}
	return &entry, nil
}

// FindByDateAndShift finds the entry of one shift of one day
func (r *GormCashRegistryRepository) FindByDateAndShift(ctx context.Context, date string, shift cashregistry.ShiftType) (*cashregistry.Entry, error) {
	var entry cashregistry.Entry
	if err := r.db.WithContext(ctx).
		Where("business_date = ? AND shift_type = ?", date, shift).
		First(&entry).Error; err != nil {
		return nil, translateError(err, cashRegistryEntity)
	}
	return &entry, nil
}

// FindByDate returns the entries of one day, opening first
func (r *GormCashRegistryRepository) FindByDate(ctx context.Context, date string) ([]cashregistry.Entry, error) {
	var entries []cashregistry.Entry
	if err := r.db.WithContext(ctx).
		Where("business_date = ?", date).
		Order("shift_type DESC").
		Find(&entries).Error; err != nil {
		return nil, translateError(err, cashRegistryEntity)
	}
	return entries, nil
}

// List returns one page of entries, newest day first by default
func (r *GormCashRegistryRepository) List(ctx context.Context, filter cashregistry.ListFilter) ([]cashregistry.Entry, int64, error) {
	f := filter.Filter.Normalize()
	if filter.Filter.OrderBy == "" {
		f.OrderBy = "business_date"
	}
	query := r.db.WithContext(ctx).Model(&cashregistry.Entry{})
	if filter.From != "" {
		query = query.Where("business_date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("business_date <= ?", filter.To)
	}
	if filter.ShiftType != "" {
		query = query.Where("shift_type = ?", filter.ShiftType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, cashRegistryEntity)
	}

	entries := make([]cashregistry.Entry, 0, f.Limit)
	sortField := ValidateSortField(f.OrderBy, CashRegistrySortFields, "business_date")
	if err := query.
		Order(sortField + " " + ValidateSortOrder(f.OrderDir)).
		Order("shift_type DESC").
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&entries).Error; err != nil {
		return nil, 0, translateError(err, cashRegistryEntity)
	}
	return entries, total, nil
}

// Save inserts a new entry or overwrites an existing one
func (r *GormCashRegistryRepository) Save(ctx context.Context, entry *cashregistry.Entry) error {
	if entry.ID != uuid.Nil {
		err := updateAll(ctx, r.db, entry, cashRegistryEntity)
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
	}
	entry.Touch()
	return translateError(r.db.WithContext(ctx).Create(entry).Error, cashRegistryEntity)
}

// Delete removes an entry by ID
func (r *GormCashRegistryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&cashregistry.Entry{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, cashRegistryEntity)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(cashRegistryEntity)
	}
	return nil
}
