package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/application/tenancy"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const maxCodeAttempts = 5

// StatusInvalidator drops cached business statuses.
type StatusInvalidator interface {
	Invalidate(businessID string)
}

// ProvisioningService creates businesses and manages their lifecycle
type ProvisioningService struct {
	resolver tenancy.Resolver
	statuses StatusInvalidator
	logger   *zap.Logger
}

// NewProvisioningService creates a new provisioning service. statuses may
// be nil when no status cache is in use.
func NewProvisioningService(resolver tenancy.Resolver, statuses StatusInvalidator, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{resolver: resolver, statuses: statuses, logger: logger}
}

// CreateBusiness registers a business with its owner account and prepares
// the business's store with default settings. Partial work is rolled back
// when a later step fails.
func (s *ProvisioningService) CreateBusiness(ctx context.Context, input CreateBusinessInput) (*CreateBusinessResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "provisioning", "create_business")
	defer span.End()

	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return nil, err
	}

	business, err := platform.NewBusiness(input.Name, input.Phone, input.Email, input.Address, input.Plan)
	if err != nil {
		return nil, err
	}
	owner, err := platform.NewUser(business.ID, input.OwnerName, input.OwnerEmail, input.OwnerPhone, input.OwnerPassword, platform.RoleOwner)
	if err != nil {
		return nil, err
	}
	exists, err := repos.Users.ExistsByEmail(ctx, owner.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("a user with email %s already exists", owner.Email)
	}

	if err := s.insertWithCode(ctx, repos.Businesses, business); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, business.TenantID(),
		telemetry.SpanAttrBusinessCode, business.Code,
	)

	if err := repos.Users.Create(ctx, owner); err != nil {
		s.removeBusiness(ctx, repos, business.ID)
		telemetry.RecordError(span, err)
		return nil, err
	}

	business.SetOwner(owner.ID)
	if err := repos.Businesses.Update(ctx, business); err != nil {
		s.removeOwner(ctx, repos, owner.ID)
		s.removeBusiness(ctx, repos, business.ID)
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.initStore(ctx, business); err != nil {
		s.removeOwner(ctx, repos, owner.ID)
		s.removeBusiness(ctx, repos, business.ID)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Business provisioned",
		zap.String("business_id", business.ID.String()),
		zap.String("code", business.Code),
		zap.String("owner_id", owner.ID.String()))
	return &CreateBusinessResult{Business: business, Owner: owner}, nil
}

// insertWithCode assigns the next BIZ#### code and inserts the business,
// retrying when a concurrent provisioning claimed the same code.
func (s *ProvisioningService) insertWithCode(ctx context.Context, repo platform.BusinessRepository, business *platform.Business) error {
	var err error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		var seq int
		seq, err = repo.MaxCodeSequence(ctx)
		if err != nil {
			return err
		}
		business.AssignCode(seq + 1)
		err = repo.Create(ctx, business)
		if err == nil {
			return nil
		}
		if !shared.IsConflict(err) {
			return err
		}
		s.logger.Warn("Business code taken, retrying",
			zap.String("code", business.Code), zap.Int("attempt", attempt+1))
	}
	return shared.NewConflictError("could not allocate a business code after %d attempts", maxCodeAttempts)
}

func (s *ProvisioningService) initStore(ctx context.Context, business *platform.Business) error {
	repos, err := s.resolver.BusinessRepositories(ctx, business.TenantID())
	if err != nil {
		return err
	}
	return repos.Settings.Save(ctx, salon.DefaultBusinessSettings(business.Name))
}

func (s *ProvisioningService) removeBusiness(ctx context.Context, repos *platform.Repositories, id uuid.UUID) {
	if err := repos.Businesses.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to roll back business", zap.String("business_id", id.String()), zap.Error(err))
	}
}

func (s *ProvisioningService) removeOwner(ctx context.Context, repos *platform.Repositories, id uuid.UUID) {
	if err := repos.Users.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to roll back owner", zap.String("user_id", id.String()), zap.Error(err))
	}
}

// ListBusinesses returns a page of businesses.
func (s *ProvisioningService) ListBusinesses(ctx context.Context, filter shared.Filter) (shared.Paginated[platform.Business], error) {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return shared.Paginated[platform.Business]{}, err
	}
	filter = filter.Normalize()
	items, total, err := repos.Businesses.List(ctx, filter)
	if err != nil {
		return shared.Paginated[platform.Business]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit), nil
}

// GetBusiness returns one business.
func (s *ProvisioningService) GetBusiness(ctx context.Context, id uuid.UUID) (*platform.Business, error) {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return nil, err
	}
	return repos.Businesses.FindByID(ctx, id)
}

// UpdateStatus moves a business to status. Cached statuses are dropped so
// tenant routes see the change on the next request.
func (s *ProvisioningService) UpdateStatus(ctx context.Context, id uuid.UUID, status platform.BusinessStatus) (*platform.Business, error) {
	business, err := s.updateBusiness(ctx, id, func(b *platform.Business) error {
		return b.SetStatus(status)
	})
	if err != nil {
		return nil, err
	}
	if s.statuses != nil {
		s.statuses.Invalidate(business.TenantID())
	}
	s.logger.Info("Business status changed",
		zap.String("business_id", business.ID.String()),
		zap.String("status", string(status)))
	return business, nil
}

// UpdatePlan changes the subscription plan of a business.
func (s *ProvisioningService) UpdatePlan(ctx context.Context, id uuid.UUID, plan platform.BusinessPlan) (*platform.Business, error) {
	return s.updateBusiness(ctx, id, func(b *platform.Business) error {
		return b.SetPlan(plan)
	})
}

func (s *ProvisioningService) updateBusiness(ctx context.Context, id uuid.UUID, apply func(*platform.Business) error) (*platform.Business, error) {
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return nil, err
	}
	business, err := repos.Businesses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(business); err != nil {
		return nil, err
	}
	if err := repos.Businesses.Update(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}

// EnsureAdmin seeds the first platform administrator. It does nothing when
// no bootstrap email is configured or the admin already exists, and
// reports whether an account was created.
func (s *ProvisioningService) EnsureAdmin(ctx context.Context, input AdminBootstrap) (bool, error) {
	email := platform.NormalizeEmail(input.Email)
	if email == "" {
		return false, nil
	}
	repos, err := s.resolver.MainRepositories(ctx)
	if err != nil {
		return false, err
	}
	_, err = repos.Admins.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !shared.IsNotFound(err) {
		return false, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Platform Admin"
	}
	admin, err := platform.NewAdmin(name, email, input.Password, platform.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	if err := repos.Admins.Create(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap admin created", zap.String("admin_id", admin.ID.String()))
	return true, nil
}
