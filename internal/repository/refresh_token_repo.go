package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"authgate/internal/domain"
	"authgate/internal/modules/token"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// RefreshTokenRepository is the SQL token.Store. The database itself
// arbitrates concurrent rotation: the claim is a single conditional UPDATE
// and the affected-row count decides who won. No client-side locking.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Insert(ctx context.Context, t *domain.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return token.ErrDuplicateHash
		}
		return err
	}
	return nil
}

func (r *RefreshTokenRepository) FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, token.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ClaimForRotation marks the record used iff it is still unclaimed and
// unrevoked. The pre-image read is advisory; only the UPDATE's row count
// decides the claim.
func (r *RefreshTokenRepository) ClaimForRotation(ctx context.Context, hash string, now time.Time) (*domain.RefreshToken, bool, error) {
	prior, err := r.FindByHash(ctx, hash)
	if err != nil {
		return nil, false, err
	}

	res := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("token_hash = ? AND used_at IS NULL AND revoked_at IS NULL", hash).
		Update("used_at", now)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return prior, res.RowsAffected == 1, nil
}

func (r *RefreshTokenRepository) RevokeFamily(ctx context.Context, familyID string, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("token_family = ? AND revoked_at IS NULL", familyID).
		Update("revoked_at", now).Error
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// modernc sqlite reports unique violations as plain errors
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
