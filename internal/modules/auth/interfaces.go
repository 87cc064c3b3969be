package auth

import (
	"context"
	"time"

	"authgate/internal/domain"
	"authgate/internal/modules/token"
)

// UserRepositoryInterface — only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetLoginAttempts(ctx context.Context, userID int64, attempts int, lockedUntil *time.Time) error
}

// TokenService — issuance, rotation and revocation of token pairs
type TokenService interface {
	Issue(ctx context.Context, user *domain.User) (*token.Pair, error)
	Rotate(ctx context.Context, rawSecret string) (*token.Pair, error)
	Logout(ctx context.Context, userID int64) error
	RevokeFamily(ctx context.Context, familyID string) error
}
