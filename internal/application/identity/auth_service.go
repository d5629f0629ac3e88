// Package identity holds authentication of business users and platform
// administrators, and the provisioning of new businesses.
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/salon-crm/backend/internal/application/tenancy"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// MainResolver hands out the main store repositories.
type MainResolver interface {
	MainRepositories(ctx context.Context) (*platform.Repositories, error)
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	ResetTokenTTL time.Duration
	// ExposeResetToken returns the plaintext reset token from
	// ForgotPassword. Only outside production, where there is no mailer.
	ExposeResetToken bool
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		ResetTokenTTL:    platform.DefaultResetTokenTTL,
		ExposeResetToken: true,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	resolver   MainResolver
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	resolver MainResolver,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = platform.DefaultResetTokenTTL
	}
	return &AuthService{
		resolver:   resolver,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates a business user and issues an access token carrying
// the user's business reference.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return nil, err
	}

	email := platform.NormalizeEmail(input.Email)
	user, err := repos.Users.FindByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("Login attempt for unknown email", zap.String("email", email))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}
	if !user.CanLogin() {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewAuthorizationError("Account is not active")
	}

	var business *platform.Business
	if user.BusinessID != nil {
		business, err = repos.Businesses.FindByID(ctx, *user.BusinessID)
		if err != nil {
			return nil, err
		}
		if !business.IsActive() {
			s.logger.Warn("Login attempt for non-active business",
				zap.String("business_id", business.ID.String()),
				zap.String("status", string(business.Status)))
			return nil, shared.NewAuthorizationError("Business is " + string(business.Status))
		}
	}

	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID:     user.ID,
		BusinessID: user.BusinessID,
		BranchID:   user.BranchID,
		Email:      user.Email,
		Role:       string(user.Role),
		Kind:       auth.PrincipalUser,
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewInternalError("Failed to generate authentication token")
	}

	user.RecordLogin(s.now().UTC())
	if err := repos.Users.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID()))
	return &LoginResult{Token: token, User: user, Business: business}, nil
}

// AdminLogin authenticates a platform administrator.
func (s *AuthService) AdminLogin(ctx context.Context, input LoginInput) (*LoginResult, error) {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return nil, err
	}

	admin, err := repos.Admins.FindByEmail(ctx, platform.NormalizeEmail(input.Email))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid admin password attempt", zap.String("admin_id", admin.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, shared.NewAuthorizationError("Account is not active")
	}

	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID: admin.ID,
		Email:  admin.Email,
		Role:   string(admin.Role),
		Kind:   auth.PrincipalAdmin,
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewInternalError("Failed to generate authentication token")
	}

	admin.RecordLogin(s.now().UTC())
	if err := repos.Admins.Update(ctx, admin); err != nil {
		s.logger.Error("Failed to update admin after successful login", zap.Error(err))
	}

	s.logger.Info("Admin logged in successfully", zap.String("admin_id", admin.ID.String()))
	return &LoginResult{Token: token, Admin: admin}, nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, id tenancy.Identity) error {
	if id.TokenID == "" {
		return shared.NewValidationError("token has no id")
	}
	ttl := id.RemainingTTL(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, id.TokenID, ttl); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return shared.NewInternalError("Failed to revoke token")
	}
	s.logger.Info("User logged out", zap.String("user_id", id.UserID.String()))
	return nil
}

// Me returns the caller's account and, for business users, the business.
func (s *AuthService) Me(ctx context.Context, id tenancy.Identity) (*Profile, error) {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return nil, err
	}
	if id.Admin {
		admin, err := repos.Admins.FindByID(ctx, id.UserID)
		if err != nil {
			return nil, err
		}
		return &Profile{Admin: admin}, nil
	}

	user, err := repos.Users.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user}
	if user.BusinessID != nil {
		business, err := repos.Businesses.FindByID(ctx, *user.BusinessID)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		profile.Business = business
	}
	return profile, nil
}

// ForgotPassword creates a single-use reset token for the account behind
// email. Unknown emails succeed silently. The plaintext token is returned
// only when the service is configured to expose it.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return "", err
	}
	email = platform.NormalizeEmail(email)
	if email == "" {
		return "", shared.NewValidationError("email is required")
	}

	user, err := repos.Users.FindByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Info("Password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	plain, token, err := platform.NewPasswordResetToken(user.ID, s.config.ResetTokenTTL, s.now())
	if err != nil {
		return "", err
	}
	if err := repos.PasswordResetTokens.Create(ctx, token); err != nil {
		return "", err
	}

	s.logger.Info("Password reset token issued", zap.String("user_id", user.ID.String()))
	if !s.config.ExposeResetToken {
		return "", nil
	}
	return plain, nil
}

// ResetPassword consumes a reset token, sets the new password and revokes
// every token issued to the user before now.
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return err
	}
	plain := strings.TrimSpace(input.Token)
	if plain == "" {
		return shared.NewValidationError("reset token is required")
	}

	now := s.now()
	token, err := repos.PasswordResetTokens.FindByHash(ctx, platform.HashResetToken(plain))
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewValidationError("invalid or expired reset token")
		}
		return err
	}
	if !token.IsUsable(now) {
		return shared.NewValidationError("invalid or expired reset token")
	}

	user, err := repos.Users.FindByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(input.Password); err != nil {
		return err
	}
	if err := token.MarkUsed(now); err != nil {
		return err
	}
	if err := repos.PasswordResetTokens.Update(ctx, token); err != nil {
		return err
	}
	if err := repos.Users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.jwtService.Expiration()); err != nil {
		s.logger.Error("Failed to revoke tokens after password reset",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	s.logger.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// PruneResetTokens deletes reset tokens that expired before now.
func (s *AuthService) PruneResetTokens(ctx context.Context) (int64, error) {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return 0, err
	}
	n, err := repos.PasswordResetTokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Expired reset tokens pruned", zap.Int64("count", n))
	}
	return n, nil
}
