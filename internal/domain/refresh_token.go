package domain

import "time"

// RefreshToken is one link in a token family's rotation chain.
//
// Security notes:
// - We never store the raw secret in DB, only its SHA-256 hash (TokenHash).
// - On refresh we rotate: the presented token is marked used and a new one
//   is issued into the same family.
// - Rows are never deleted; used and revoked rows are the forensic trail
//   that reuse detection acts on.
type RefreshToken struct {
	ID string `json:"id" gorm:"size:36;primaryKey"`

	UserID int64 `json:"user_id" gorm:"index;not null"`
	User   User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	TokenHash   string `json:"-" gorm:"size:64;uniqueIndex;not null"`
	TokenFamily string `json:"token_family" gorm:"size:36;index;not null"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	UsedAt    *time.Time `json:"used_at"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsUsed() bool {
	return t.UsedAt != nil
}

// IsActive reports whether the token can still be rotated.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsUsed() && !t.IsRevoked() && !t.IsExpired(now)
}
