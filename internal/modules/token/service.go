package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"authgate/internal/domain"

	"github.com/google/uuid"
)

// Pair is what a successful issue or rotation hands back. The raw refresh
// secret is shown to the caller exactly once and is never retrievable again.
type Pair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // access-token lifetime in seconds
}

// Service issues access/refresh pairs, rotates refresh tokens and revokes
// them on logout or theft. All mutation of the store happens here.
type Service struct {
	store      Store
	users      UserReader
	signer     AccessSigner
	hasher     Hasher
	refreshTTL time.Duration

	now func() time.Time
}

func NewService(store Store, users UserReader, signer AccessSigner, hasher Hasher, refreshTTL time.Duration) *Service {
	return &Service{
		store:      store,
		users:      users,
		signer:     signer,
		hasher:     hasher,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue creates a pair rooted in a brand-new token family (fresh login or
// registration).
func (s *Service) Issue(ctx context.Context, user *domain.User) (*Pair, error) {
	return s.issue(ctx, user, uuid.NewString())
}

func (s *Service) issue(ctx context.Context, user *domain.User, family string) (*Pair, error) {
	raw, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate refresh secret: %w", err)
	}

	now := s.now()
	rec := &domain.RefreshToken{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		TokenHash:   s.hasher.Hash(raw),
		TokenFamily: family,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.refreshTTL),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert refresh token: %w", err)
	}

	access, err := s.signer.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: raw,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.signer.AccessTTL().Seconds()),
	}, nil
}

// Rotate exchanges a presented refresh secret for a new pair in the same
// family. Presenting an already-rotated secret is treated as theft: the
// whole family is revoked and ErrReuseDetected returned.
func (s *Service) Rotate(ctx context.Context, rawSecret string) (*Pair, error) {
	now := s.now()
	hash := s.hasher.Hash(rawSecret)

	current, err := s.store.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	// Fast-path rejections for already-known-bad tokens. Not atomic with
	// the claim below, so never trusted for the reuse decision.
	if current.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if current.IsExpired(now) {
		return nil, ErrTokenExpired
	}

	prior, claimed, err := s.store.ClaimForRotation(ctx, hash, now)
	if err != nil {
		return nil, fmt.Errorf("claim refresh token: %w", err)
	}
	if !claimed {
		// The token was already rotated once. Whichever side holds the
		// other copy, the lineage is burned.
		if err := s.store.RevokeFamily(ctx, current.TokenFamily, now); err != nil {
			return nil, fmt.Errorf("revoke token family: %w", err)
		}
		return nil, ErrReuseDetected
	}

	user, err := s.users.GetByID(ctx, prior.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", prior.UserID, err)
	}

	return s.issue(ctx, user, prior.TokenFamily)
}

// Logout revokes every unrevoked refresh token the user holds, across all
// families. Idempotent.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.store.RevokeAllForUser(ctx, userID, s.now())
}

// RevokeFamily kills a single token lineage. Exposed for administrative
// and security response use.
func (s *Service) RevokeFamily(ctx context.Context, familyID string) error {
	return s.store.RevokeFamily(ctx, familyID, s.now())
}

// generateSecret returns 32 bytes of crypto/rand entropy, hex-encoded.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
