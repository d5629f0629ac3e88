package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// withCommon returns the common base columns plus fields.
func withCommon(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// CommonSortFields contains fields common to every table
var CommonSortFields = withCommon()

// Main store
var (
	BusinessSortFields = withCommon("code", "name", "status", "plan")
	UserSortFields     = withCommon("name", "email", "role", "status", "last_login_at")
)

// Tenant store
var (
	ClientSortFields               = withCommon("name", "phone", "visit_count", "total_spent", "last_visit_at", "status")
	AppointmentSortFields          = withCommon("start_time", "status", "duration")
	ServiceSortFields              = withCommon("name", "category", "price", "duration", "status")
	ProductSortFields              = withCommon("name", "sku", "category", "price", "cost", "stock", "min_stock", "status")
	StaffSortFields                = withCommon("name", "role", "commission_rate", "status")
	SaleSortFields                 = withCommon("bill_number", "sale_time", "business_date", "grand_total", "status")
	ReceiptSortFields              = withCommon("receipt_number", "issued_at", "total")
	ExpenseSortFields              = withCommon("category", "amount", "expense_time", "business_date", "payment_mode")
	InventoryTransactionSortFields = withCommon("type", "quantity", "stock_after")
	CashRegistrySortFields         = withCommon("business_date", "shift_type", "status", "closing_balance", "balance_difference")
)
