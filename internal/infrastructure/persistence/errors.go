package persistence

import (
	"errors"
	"strings"

	"github.com/salon-crm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm and driver errors onto domain errors. entity
// names the record in not-found messages.
func translateError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return shared.NewConflictError("%s already exists: %s", entity, uniqueField(err))
	}
	return err
}

// isUniqueViolation catches unique violations a driver did not translate.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// uniqueField extracts the offending column from a driver message when it
// names one, e.g. "UNIQUE constraint failed: clients.phone".
func uniqueField(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		cols := msg[i+len("UNIQUE constraint failed: "):]
		if dot := strings.LastIndex(cols, "."); dot >= 0 {
			return cols[dot+1:]
		}
		return cols
	}
	return "duplicate value"
}
