package platform

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
)

// BusinessRepository persists businesses in the main store.
type BusinessRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Business, error)
	FindByCode(ctx context.Context, code string) (*Business, error)
	List(ctx context.Context, filter shared.Filter) ([]Business, int64, error)
	Create(ctx context.Context, business *Business) error
	Update(ctx context.Context, business *Business) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MaxCodeSequence returns the highest BIZ#### sequence in use, 0 if none.
	MaxCodeSequence(ctx context.Context) (int, error)
}

// UserRepository persists business users in the main store.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]User, int64, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AdminRepository persists platform administrators.
type AdminRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Admin, error)
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	Create(ctx context.Context, admin *Admin) error
	Update(ctx context.Context, admin *Admin) error
	Count(ctx context.Context) (int64, error)
}

// PasswordResetTokenRepository persists hashed reset tokens.
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	FindByHash(ctx context.Context, hash string) (*PasswordResetToken, error)
	Update(ctx context.Context, token *PasswordResetToken) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Repositories is the set of main-store entity handles.
type Repositories struct {
	Businesses          BusinessRepository
	Users               UserRepository
	Admins              AdminRepository
	PasswordResetTokens PasswordResetTokenRepository
}
