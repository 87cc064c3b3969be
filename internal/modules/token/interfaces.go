package token

import (
	"context"
	"time"

	"authgate/internal/domain"
)

// Store is the persistence boundary for refresh tokens, the only shared
// mutable state in the rotation path. ClaimForRotation must be atomic:
// concurrent claims of one hash yield exactly one claimed=true.
type Store interface {
	Insert(ctx context.Context, t *domain.RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)

	// ClaimForRotation sets used_at = now iff the record is currently
	// unused and unrevoked. It returns the record as it existed before the
	// update and whether this call performed the claim.
	ClaimForRotation(ctx context.Context, hash string, now time.Time) (*domain.RefreshToken, bool, error)

	RevokeFamily(ctx context.Context, familyID string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error
}

// UserReader supplies current user state at rotation time, so new access
// tokens carry the roles the user has now, not the ones captured at login.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// AccessSigner mints the short-lived signed access token of a pair.
type AccessSigner interface {
	GenerateToken(u *domain.User) (string, error)
	AccessTTL() time.Duration
}
