package cashregistry

import (
	"context"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
)

// ListFilter narrows a cash registry listing.
type ListFilter struct {
	shared.Filter
	From      string
	To        string
	ShiftType ShiftType
	Status    Status
}

// Repository persists entries of one tenant store.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	FindByDateAndShift(ctx context.Context, date string, shift ShiftType) (*Entry, error)
	FindByDate(ctx context.Context, date string) ([]Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, int64, error)
	Save(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
}
