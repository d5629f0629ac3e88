package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockBusinessRepository is a mock implementation of platform.BusinessRepository
type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*platform.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Business), args.Error(1)
}

func (m *MockBusinessRepository) FindByCode(ctx context.Context, code string) (*platform.Business, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Business), args.Error(1)
}

func (m *MockBusinessRepository) List(ctx context.Context, filter shared.Filter) ([]platform.Business, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]platform.Business), args.Get(1).(int64), args.Error(2)
}

func (m *MockBusinessRepository) Create(ctx context.Context, business *platform.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *MockBusinessRepository) Update(ctx context.Context, business *platform.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *MockBusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBusinessRepository) MaxCodeSequence(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockUserRepository is a mock implementation of platform.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*platform.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*platform.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]platform.User, int64, error) {
	args := m.Called(ctx, businessID, filter)
	return args.Get(0).([]platform.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Create(ctx context.Context, user *platform.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *platform.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAdminRepository is a mock implementation of platform.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*platform.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Admin), args.Error(1)
}

func (m *MockAdminRepository) FindByEmail(ctx context.Context, email string) (*platform.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Admin), args.Error(1)
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *platform.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) Update(ctx context.Context, admin *platform.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockResetTokenRepository is a mock implementation of
// platform.PasswordResetTokenRepository
type MockResetTokenRepository struct {
	mock.Mock
}

func (m *MockResetTokenRepository) Create(ctx context.Context, token *platform.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockResetTokenRepository) FindByHash(ctx context.Context, hash string) (*platform.PasswordResetToken, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.PasswordResetToken), args.Error(1)
}

func (m *MockResetTokenRepository) Update(ctx context.Context, token *platform.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// mockRepos bundles the mocks behind a resolver.
type mockRepos struct {
	businesses *MockBusinessRepository
	users      *MockUserRepository
	admins     *MockAdminRepository
	resets     *MockResetTokenRepository
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		businesses: new(MockBusinessRepository),
		users:      new(MockUserRepository),
		admins:     new(MockAdminRepository),
		resets:     new(MockResetTokenRepository),
	}
}

func (m *mockRepos) MainRepositories(context.Context) (*platform.Repositories, error) {
	return &platform.Repositories{
		Businesses:          m.businesses,
		Users:               m.users,
		Admins:              m.admins,
		PasswordResetTokens: m.resets,
	}, nil
}

func (m *mockRepos) BusinessRepositories(context.Context, string) (*salon.Repositories, error) {
	return nil, shared.NewInternalError("tenant stores are not available in this test")
}

func (m *mockRepos) assertExpectations(t mock.TestingT) {
	m.businesses.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.admins.AssertExpectations(t)
	m.resets.AssertExpectations(t)
}
