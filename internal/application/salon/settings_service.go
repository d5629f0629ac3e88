package salon

import (
	"context"
	"time"

	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
)

// SettingsService reads and edits the settings document of a tenant.
type SettingsService struct {
	repo salon.SettingsRepository
}

// NewSettingsService binds the service to a tenant's repositories.
func NewSettingsService(repos *salon.Repositories) *SettingsService {
	return &SettingsService{repo: repos.Settings}
}

// Get returns the settings document.
func (s *SettingsService) Get(ctx context.Context) (*salon.BusinessSettings, error) {
	return s.repo.Get(ctx)
}

// Update lets apply edit the stored document, then validates and saves it.
func (s *SettingsService) Update(ctx context.Context, apply func(*salon.BusinessSettings) error) (*salon.BusinessSettings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	base := current.BaseEntity
	if err := apply(current); err != nil {
		return nil, err
	}
	current.BaseEntity = base
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// loadSettings returns the stored document, or the defaults for a store
// provisioned without one.
func loadSettings(ctx context.Context, repo salon.SettingsRepository) (*salon.BusinessSettings, error) {
	settings, err := repo.Get(ctx)
	if shared.IsNotFound(err) {
		return salon.DefaultBusinessSettings(""), nil
	}
	return settings, err
}

func settingsLocation(settings *salon.BusinessSettings) *time.Location {
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
