package platform

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/shared"
)

// DefaultResetTokenTTL bounds how long a reset token stays usable.
const DefaultResetTokenTTL = time.Hour

// PasswordResetToken stores only the SHA-256 of the token handed to the user.
type PasswordResetToken struct {
	shared.BaseEntity
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	TokenHash string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

// TableName returns the table name for GORM
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// NewPasswordResetToken generates a random token for userID. The plaintext
// is returned once and never persisted.
func NewPasswordResetToken(userID uuid.UUID, ttl time.Duration, now time.Time) (string, *PasswordResetToken, error) {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, shared.NewInternalError("failed to generate reset token")
	}
	plain := hex.EncodeToString(raw)
	token := &PasswordResetToken{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		TokenHash:  HashResetToken(plain),
		ExpiresAt:  now.Add(ttl).UTC(),
	}
	return plain, token, nil
}

// HashResetToken returns the lookup hash of a plaintext token.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// IsUsable reports whether the token is unused and unexpired at now.
func (t *PasswordResetToken) IsUsable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

// MarkUsed consumes the token.
func (t *PasswordResetToken) MarkUsed(now time.Time) error {
	if !t.IsUsable(now) {
		return shared.NewValidationError("reset token is invalid or expired")
	}
	t.UsedAt = &now
	t.Touch()
	return nil
}

// Validate checks required fields.
func (t *PasswordResetToken) Validate() error {
	if t.UserID == uuid.Nil {
		return shared.NewValidationError("reset token requires a user")
	}
	if len(t.TokenHash) != sha256.Size*2 {
		return shared.NewValidationError("reset token hash is malformed")
	}
	return nil
}
