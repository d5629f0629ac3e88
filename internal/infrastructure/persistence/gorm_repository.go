package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ListOptions describes which columns a GormRepository may search, sort and
// filter on.
type ListOptions struct {
	// SearchColumns are matched case-insensitively against Filter.Search.
	SearchColumns []string
	SortFields    map[string]bool
	DefaultSort   string
	// FilterColumns maps an external filter key to a column.
	FilterColumns map[string]string
}

// GormRepository implements shared.CRUDRepository for one entity of one
// store.
type GormRepository[T any] struct {
	db     *gorm.DB
	entity string
	opts   ListOptions
}

// NewGormRepository creates a repository for T named entity.
func NewGormRepository[T any](db *gorm.DB, entity string, opts ListOptions) *GormRepository[T] {
	if opts.SortFields == nil {
		opts.SortFields = CommonSortFields
	}
	if opts.DefaultSort == "" {
		opts.DefaultSort = "created_at"
	}
	return &GormRepository[T]{db: db, entity: entity, opts: opts}
}

// DB returns the store handle the repository is bound to.
func (r *GormRepository[T]) DB() *gorm.DB {
	return r.db
}

// FindByID finds a record by its ID
func (r *GormRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, translateError(err, r.entity)
	}
	return &entity, nil
}

// List returns one page of records matching the filter and the total count.
func (r *GormRepository[T]) List(ctx context.Context, filter shared.Filter) ([]T, int64, error) {
	filter = filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(new(T)), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, r.entity)
	}

	items := make([]T, 0, filter.Limit)
	sortField := ValidateSortField(filter.OrderBy, r.opts.SortFields, r.opts.DefaultSort)
	sortOrder := ValidateSortOrder(filter.OrderDir)
	if err := query.
		Order(sortField + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, translateError(err, r.entity)
	}
	return items, total, nil
}

// applyFilter applies search and whitelisted equality filters. Unknown
// filter keys are ignored.
func (r *GormRepository[T]) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" && len(r.opts.SearchColumns) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		conds := make([]string, len(r.opts.SearchColumns))
		args := make([]any, len(r.opts.SearchColumns))
		for i, col := range r.opts.SearchColumns {
			conds[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
			args[i] = pattern
		}
		query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	for key, value := range filter.Filters {
		col, ok := r.opts.FilterColumns[key]
		if !ok || value == nil || value == "" {
			continue
		}
		query = query.Where(col+" = ?", value)
	}
	return query
}

// Create inserts a new record.
func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	if rec, ok := any(entity).(shared.Record); ok {
		rec.Touch()
	}
	return translateError(r.db.WithContext(ctx).Create(entity).Error, r.entity)
}

// Update writes every column of an existing record.
func (r *GormRepository[T]) Update(ctx context.Context, entity *T) error {
	return updateAll(ctx, r.db, entity, r.entity)
}

// Delete removes a record by ID
func (r *GormRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, r.entity)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(r.entity)
	}
	return nil
}

// Count returns the number of records
func (r *GormRepository[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&n).Error; err != nil {
		return 0, translateError(err, r.entity)
	}
	return n, nil
}

// updateAll saves every column of entity except its identity.
func updateAll(ctx context.Context, db *gorm.DB, entity any, name string) error {
	if rec, ok := entity.(shared.Record); ok {
		rec.Touch()
	}
	result := db.WithContext(ctx).Model(entity).Select("*").Omit("id", "created_at").Updates(entity)
	if result.Error != nil {
		return translateError(result.Error, name)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(name)
	}
	return nil
}
