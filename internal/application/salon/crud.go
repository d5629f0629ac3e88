// Package salon holds the application services of a tenant store: the
// catalog CRUD surface, point of sale, stock and settings.
package salon

import (
	"context"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
)

// Entity is the pointer constraint of the records managed by CRUDService.
type Entity[T any] interface {
	*T
	shared.Record
	ApplyDefaults()
	Base() *shared.BaseEntity
}

// CRUDService is the create/read/update/delete flow shared by the catalog
// entities: defaults, validation, then the store.
type CRUDService[T any, P Entity[T]] struct {
	repo     shared.CRUDRepository[T]
	preserve func(dst, src *T)
	prepare  func(ctx context.Context, e *T) error
}

// NewCRUDService wraps repo.
func NewCRUDService[T any, P Entity[T]](repo shared.CRUDRepository[T]) *CRUDService[T, P] {
	return &CRUDService[T, P]{repo: repo}
}

// WithPreserved keeps fields that updates must not overwrite. fn copies
// them from src (the stored record) into dst (the edited one).
func (s *CRUDService[T, P]) WithPreserved(fn func(dst, src *T)) *CRUDService[T, P] {
	s.preserve = fn
	return s
}

// WithPrepare runs fn on every created or edited record before defaults
// and validation.
func (s *CRUDService[T, P]) WithPrepare(fn func(ctx context.Context, e *T) error) *CRUDService[T, P] {
	s.prepare = fn
	return s
}

// List returns one page.
func (s *CRUDService[T, P]) List(ctx context.Context, filter shared.Filter) (shared.Paginated[T], error) {
	filter = filter.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[T]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit), nil
}

// Get returns one record.
func (s *CRUDService[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

// Create assigns a fresh identity, applies defaults and stores e.
func (s *CRUDService[T, P]) Create(ctx context.Context, e *T) error {
	p := P(e)
	*p.Base() = shared.NewBaseEntity()
	if s.prepare != nil {
		if err := s.prepare(ctx, e); err != nil {
			return err
		}
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, e)
}

// Update loads id, lets apply edit it and writes it back. Identity and
// preserved fields survive whatever apply does.
func (s *CRUDService[T, P]) Update(ctx context.Context, id uuid.UUID, apply func(*T) error) (*T, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := *current
	if err := apply(current); err != nil {
		return nil, err
	}

	p := P(current)
	*p.Base() = *P(&stored).Base()
	if s.preserve != nil {
		s.preserve(current, &stored)
	}
	if s.prepare != nil {
		if err := s.prepare(ctx, current); err != nil {
			return nil, err
		}
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Delete removes one record.
func (s *CRUDService[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
