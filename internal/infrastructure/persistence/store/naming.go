package store

import (
	"regexp"
	"strings"

	"github.com/salon-crm/backend/internal/domain/shared"
)

// MainStoreSuffix names the cross-tenant store: <prefix>_main.
const MainStoreSuffix = "main"

// maxStoreNameLength is the PostgreSQL identifier limit.
const maxStoreNameLength = 63

var storeNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// NormalizeTenantID lower-cases a tenant id and replaces '-' with '_', the
// form it takes inside a store name.
func NormalizeTenantID(tenantID string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tenantID)), "-", "_")
}

// StoreName returns <prefix>_<tenantID>. The tenant id must normalize to
// [a-z0-9_] and must not be the reserved main suffix.
func StoreName(prefix, tenantID string) (string, error) {
	id := NormalizeTenantID(tenantID)
	if id == "" {
		return "", shared.NewInvalidArgumentError("tenant id is required")
	}
	if id == MainStoreSuffix {
		return "", shared.NewInvalidArgumentError("tenant id %q is reserved", tenantID)
	}
	if !storeNamePattern.MatchString(id) {
		return "", shared.NewInvalidArgumentError("tenant id %q contains unsupported characters", tenantID)
	}
	name := prefix + "_" + id
	if len(name) > maxStoreNameLength {
		return "", shared.NewInvalidArgumentError("store name for tenant %q exceeds %d characters", tenantID, maxStoreNameLength)
	}
	return name, nil
}

// MainStoreName returns <prefix>_main.
func MainStoreName(prefix string) string {
	return prefix + "_" + MainStoreSuffix
}
