package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/application/tenancy"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/auth"
	"github.com/salon-crm/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "Password123"

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-32-characters-long",
		Expiration: time.Hour,
		Issuer:     "test-issuer",
	})
}

// Helper function to create auth service
func createAuthService(repos *mockRepos, cfg AuthServiceConfig) (*AuthService, *auth.InMemoryTokenBlacklist) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(repos, newJWTService(), blacklist, cfg, zap.NewNop()), blacklist
}

func createTestBusiness(t *testing.T) *platform.Business {
	t.Helper()
	b, err := platform.NewBusiness("Glow Studio", "", "", "", platform.BusinessPlanBasic)
	require.NoError(t, err)
	b.AssignCode(1)
	return b
}

func createTestUser(t *testing.T, businessID uuid.UUID) *platform.User {
	t.Helper()
	u, err := platform.NewUser(businessID, "Owner", "owner@glow.test", "", testPassword, platform.RoleOwner)
	require.NoError(t, err)
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	business := createTestBusiness(t)
	user := createTestUser(t, business.ID)

	repos.users.On("FindByEmail", ctx, "owner@glow.test").Return(user, nil)
	repos.businesses.On("FindByID", ctx, business.ID).Return(business, nil)
	repos.users.On("Update", ctx, mock.AnythingOfType("*platform.User")).Return(nil)

	svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
	result, err := svc.Login(ctx, LoginInput{Email: " Owner@Glow.test ", Password: testPassword})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, business.ID, result.Business.ID)
	assert.NotNil(t, user.LastLoginAt)

	claims, err := newJWTService().ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, business.ID.String(), claims.TenantID())
	assert.Equal(t, string(platform.RoleOwner), claims.Role)
	assert.False(t, claims.IsAdmin())
	repos.assertExpectations(t)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	repos.users.On("FindByEmail", ctx, "nobody@glow.test").Return(nil, shared.NewNotFoundError("User"))

	svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
	_, err := svc.Login(ctx, LoginInput{Email: "nobody@glow.test", Password: testPassword})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	user := createTestUser(t, uuid.New())
	repos.users.On("FindByEmail", ctx, user.Email).Return(user, nil)

	svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
	_, err := svc.Login(ctx, LoginInput{Email: user.Email, Password: "WrongPassword"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	repos.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*platform.User, *platform.Business)
	}{
		{
			name: "inactive user",
			setup: func(u *platform.User, _ *platform.Business) {
				u.Status = platform.UserStatusInactive
			},
		},
		{
			name: "suspended business",
			setup: func(_ *platform.User, b *platform.Business) {
				require.NoError(t, b.SetStatus(platform.BusinessStatusSuspended))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repos := newMockRepos()
			business := createTestBusiness(t)
			user := createTestUser(t, business.ID)
			tt.setup(user, business)

			repos.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
			repos.businesses.On("FindByID", ctx, business.ID).Return(business, nil).Maybe()

			svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
			_, err := svc.Login(ctx, LoginInput{Email: user.Email, Password: testPassword})
			assert.ErrorIs(t, err, shared.ErrForbidden)
		})
	}
}

func TestAuthService_AdminLogin(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	admin, err := platform.NewAdmin("Root", "root@platform.test", testPassword, platform.RoleSuperAdmin)
	require.NoError(t, err)

	repos.admins.On("FindByEmail", ctx, "root@platform.test").Return(admin, nil)
	repos.admins.On("Update", ctx, admin).Return(nil)

	svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
	result, err := svc.AdminLogin(ctx, LoginInput{Email: "root@platform.test", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, result.Admin.ID)
	assert.Nil(t, result.User)

	claims, err := newJWTService().ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Empty(t, claims.TenantID())
	assert.Equal(t, string(platform.RoleSuperAdmin), claims.Role)

	_, err = svc.AdminLogin(ctx, LoginInput{Email: "root@platform.test", Password: "nope-nope"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	repos.assertExpectations(t)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, blacklist := createAuthService(newMockRepos(), DefaultAuthServiceConfig())

	id := tenancy.Identity{
		UserID:    uuid.New(),
		TokenID:   uuid.NewString(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, svc.Logout(ctx, id))

	revoked, err := blacklist.IsBlacklisted(ctx, id.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)

	expired := tenancy.Identity{UserID: uuid.New(), TokenID: uuid.NewString(), ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, svc.Logout(ctx, expired))
	revoked, err = blacklist.IsBlacklisted(ctx, expired.TokenID)
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.ErrorIs(t, svc.Logout(ctx, tenancy.Identity{}), shared.ErrValidation)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	business := createTestBusiness(t)
	user := createTestUser(t, business.ID)
	repos.users.On("FindByID", ctx, user.ID).Return(user, nil)
	repos.businesses.On("FindByID", ctx, business.ID).Return(business, nil)

	svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
	profile, err := svc.Me(ctx, tenancy.Identity{UserID: user.ID, BusinessID: business.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.User.ID)
	assert.Equal(t, business.Code, profile.Business.Code)
	assert.Nil(t, profile.Admin)
	repos.assertExpectations(t)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		repos := newMockRepos()
		repos.users.On("FindByEmail", ctx, "ghost@glow.test").Return(nil, shared.NewNotFoundError("User"))

		svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
		token, err := svc.ForgotPassword(ctx, "ghost@glow.test")
		require.NoError(t, err)
		assert.Empty(t, token)
		repos.resets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("token returned outside production", func(t *testing.T) {
		repos := newMockRepos()
		user := createTestUser(t, uuid.New())
		var stored *platform.PasswordResetToken
		repos.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
		repos.resets.On("Create", ctx, mock.AnythingOfType("*platform.PasswordResetToken")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*platform.PasswordResetToken)
			}).Return(nil)

		svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
		token, err := svc.ForgotPassword(ctx, user.Email)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.NotNil(t, stored)
		assert.Equal(t, platform.HashResetToken(token), stored.TokenHash)
		assert.Equal(t, user.ID, stored.UserID)
	})

	t.Run("token withheld in production", func(t *testing.T) {
		repos := newMockRepos()
		user := createTestUser(t, uuid.New())
		repos.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
		repos.resets.On("Create", ctx, mock.Anything).Return(nil)

		svc, _ := createAuthService(repos, AuthServiceConfig{ExposeResetToken: false})
		token, err := svc.ForgotPassword(ctx, user.Email)
		require.NoError(t, err)
		assert.Empty(t, token)
		repos.resets.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	user := createTestUser(t, uuid.New())
	plain, token, err := platform.NewPasswordResetToken(user.ID, time.Hour, time.Now())
	require.NoError(t, err)

	repos.resets.On("FindByHash", ctx, platform.HashResetToken(plain)).Return(token, nil)
	repos.resets.On("Update", ctx, token).Return(nil)
	repos.users.On("FindByID", ctx, user.ID).Return(user, nil)
	repos.users.On("Update", ctx, user).Return(nil)

	svc, blacklist := createAuthService(repos, DefaultAuthServiceConfig())
	issuedBefore := time.Now().Add(-time.Minute)

	require.NoError(t, svc.ResetPassword(ctx, ResetPasswordInput{Token: plain, Password: "NewPassword456"}))
	assert.True(t, user.VerifyPassword("NewPassword456"))
	assert.NotNil(t, token.UsedAt)

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated)

	err = svc.ResetPassword(ctx, ResetPasswordInput{Token: plain, Password: "AnotherPass789"})
	assert.ErrorIs(t, err, shared.ErrValidation)
	repos.assertExpectations(t)
}

func TestAuthService_ResetPassword_UnknownToken(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	repos.resets.On("FindByHash", ctx, mock.Anything).Return(nil, shared.NewNotFoundError("Password reset token"))

	svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
	err := svc.ResetPassword(ctx, ResetPasswordInput{Token: "deadbeef", Password: "NewPassword456"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	err = svc.ResetPassword(ctx, ResetPasswordInput{Token: "  ", Password: "NewPassword456"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAuthService_PruneResetTokens(t *testing.T) {
	ctx := context.Background()
	repos := newMockRepos()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repos.resets.On("DeleteExpired", ctx, now).Return(int64(3), nil).Once()
	repos.resets.On("DeleteExpired", ctx, now).Return(int64(0), errors.New("db down")).Once()

	svc, _ := createAuthService(repos, DefaultAuthServiceConfig())
	svc.now = func() time.Time { return now }

	n, err := svc.PruneResetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = svc.PruneResetTokens(ctx)
	assert.EqualError(t, err, "db down")
	repos.assertExpectations(t)
}
