package salon

import (
	"regexp"
	"strings"
	"time"

	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// BusinessSettings is the single configuration document of a tenant store.
type BusinessSettings struct {
	shared.BaseEntity
	BusinessName  string          `gorm:"size:200;not null" json:"businessName"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Timezone      string          `gorm:"size:64;not null" json:"timezone"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"taxRate"`
	ReceiptPrefix string          `gorm:"size:10;not null" json:"receiptPrefix"`
	OpeningTime   string          `gorm:"size:5;not null" json:"openingTime"`
	ClosingTime   string          `gorm:"size:5;not null" json:"closingTime"`
}

// TableName returns the table name for GORM
func (BusinessSettings) TableName() string {
	return "business_settings"
}

// DefaultBusinessSettings returns the document created at provisioning.
func DefaultBusinessSettings(businessName string) *BusinessSettings {
	return &BusinessSettings{
		BaseEntity:    shared.NewBaseEntity(),
		BusinessName:  strings.TrimSpace(businessName),
		Currency:      "INR",
		Timezone:      "UTC",
		TaxRate:       decimal.Zero,
		ReceiptPrefix: "RCP",
		OpeningTime:   "09:00",
		ClosingTime:   "21:00",
	}
}

// Validate checks the settings document.
func (s *BusinessSettings) Validate() error {
	if strings.TrimSpace(s.BusinessName) == "" {
		return shared.NewValidationError("businessName is required")
	}
	if len(s.Currency) != 3 {
		return shared.NewValidationError("currency must be a 3-letter code")
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return shared.NewValidationError("unknown timezone %q", s.Timezone)
	}
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(hundred) {
		return shared.NewValidationError("taxRate must be between 0 and 100")
	}
	if s.ReceiptPrefix == "" {
		return shared.NewValidationError("receiptPrefix is required")
	}
	if !clockPattern.MatchString(s.OpeningTime) || !clockPattern.MatchString(s.ClosingTime) {
		return shared.NewValidationError("opening and closing times must be HH:MM")
	}
	if s.OpeningTime >= s.ClosingTime {
		return shared.NewValidationError("openingTime must be before closingTime")
	}
	return nil
}
