package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBusinessRepository implements platform.BusinessRepository
type GormBusinessRepository struct {
	*GormRepository[platform.Business]
}

// NewGormBusinessRepository creates a new GormBusinessRepository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{NewGormRepository[platform.Business](db, "Business", ListOptions{
		SearchColumns: []string{"name", "code", "email", "phone"},
		SortFields:    BusinessSortFields,
		FilterColumns: map[string]string{"status": "status", "plan": "plan"},
	})}
}

// FindByCode finds a business by its BIZ#### code
func (r *GormBusinessRepository) FindByCode(ctx context.Context, code string) (*platform.Business, error) {
	var business platform.Business
	if err := r.db.WithContext(ctx).First(&business, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error; err != nil {
		return nil, translateError(err, "Business")
	}
	return &business, nil
}

// MaxCodeSequence returns the highest code sequence in use.
func (r *GormBusinessRepository) MaxCodeSequence(ctx context.Context) (int, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&platform.Business{}).Pluck("code", &codes).Error; err != nil {
		return 0, translateError(err, "Business")
	}
	maxSeq := 0
	for _, code := range codes {
		if n, ok := platform.ParseBusinessCode(code); ok && n > maxSeq {
			maxSeq = n
		}
	}
	return maxSeq, nil
}

// GormUserRepository implements platform.UserRepository
type GormUserRepository struct {
	*GormRepository[platform.User]
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{NewGormRepository[platform.User](db, "User", ListOptions{
		SearchColumns: []string{"name", "email"},
		SortFields:    UserSortFields,
		FilterColumns: map[string]string{"role": "role", "status": "status"},
	})}
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*platform.User, error) {
	var user platform.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", platform.NormalizeEmail(email)).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return &user, nil
}

// ExistsByEmail reports whether a user with the email exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&platform.User{}).
		Where("email = ?", platform.NormalizeEmail(email)).
		Count(&n).Error; err != nil {
		return false, translateError(err, "User")
	}
	return n > 0, nil
}

// ListByBusiness lists the users of one business
func (r *GormUserRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]platform.User, int64, error) {
	scoped := NewGormRepository[platform.User](r.db.Where("business_id = ?", businessID), "User", r.opts)
	return scoped.List(ctx, filter)
}

// GormAdminRepository implements platform.AdminRepository
type GormAdminRepository struct {
	*GormRepository[platform.Admin]
}

// NewGormAdminRepository creates a new GormAdminRepository
func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{NewGormRepository[platform.Admin](db, "Admin", ListOptions{})}
}

// FindByEmail finds an administrator by email
func (r *GormAdminRepository) FindByEmail(ctx context.Context, email string) (*platform.Admin, error) {
	var admin platform.Admin
	if err := r.db.WithContext(ctx).First(&admin, "email = ?", platform.NormalizeEmail(email)).Error; err != nil {
		return nil, translateError(err, "Admin")
	}
	return &admin, nil
}

// GormPasswordResetTokenRepository implements platform.PasswordResetTokenRepository
type GormPasswordResetTokenRepository struct {
	db *gorm.DB
}

// NewGormPasswordResetTokenRepository creates a new GormPasswordResetTokenRepository
func NewGormPasswordResetTokenRepository(db *gorm.DB) *GormPasswordResetTokenRepository {
	return &GormPasswordResetTokenRepository{db: db}
}

// Create stores a hashed token
func (r *GormPasswordResetTokenRepository) Create(ctx context.Context, token *platform.PasswordResetToken) error {
	token.Touch()
	return translateError(r.db.WithContext(ctx).Create(token).Error, "Reset token")
}

// FindByHash finds a token by the hash of its plaintext
func (r *GormPasswordResetTokenRepository) FindByHash(ctx context.Context, hash string) (*platform.PasswordResetToken, error) {
	var token platform.PasswordResetToken
	if err := r.db.WithContext(ctx).First(&token, "token_hash = ?", hash).Error; err != nil {
		return nil, translateError(err, "Reset token")
	}
	return &token, nil
}

// Update saves a token, typically after it was used
func (r *GormPasswordResetTokenRepository) Update(ctx context.Context, token *platform.PasswordResetToken) error {
	return updateAll(ctx, r.db, token, "Reset token")
}

// DeleteExpired removes tokens that expired before the given time
func (r *GormPasswordResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&platform.PasswordResetToken{})
	if result.Error != nil {
		return 0, translateError(result.Error, "Reset token")
	}
	return result.RowsAffected, nil
}
