package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"authgate/internal/domain"
	"authgate/internal/modules/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

// Service contains the account-facing business logic: registration, login
// with lockout, and the thin pass-throughs to the token service.
type Service struct {
	users  UserRepositoryInterface
	tokens TokenService
}

func NewService(users UserRepositoryInterface, tokens TokenService) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, *token.Pair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	user.PasswordHash = ""
	return user, pair, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, *token.Pair, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	now := time.Now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		failedAttempts := user.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if failedAttempts >= maxFailedLoginAttempts {
			until := now.Add(lockoutDuration)
			lockedUntil = &until
		}
		if updateErr := s.users.SetLoginAttempts(ctx, user.ID, failedAttempts, lockedUntil); updateErr != nil {
			return nil, nil, updateErr
		}
		if lockedUntil != nil {
			return nil, nil, ErrAccountLocked
		}
		return nil, nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.SetLoginAttempts(ctx, user.ID, 0, nil); err != nil {
			return nil, nil, err
		}
	}

	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	user.PasswordHash = ""
	return user, pair, nil
}

// Refresh rotates the presented refresh token. Rotation failures come back
// as token.Err* sentinels; the handler collapses them into one response.
func (s *Service) Refresh(ctx context.Context, rawSecret string) (*token.Pair, error) {
	return s.tokens.Rotate(ctx, rawSecret)
}

// Logout revokes every refresh token the user holds. Idempotent.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.tokens.Logout(ctx, userID)
}

// RevokeFamily is the administrative kill switch for one token lineage.
func (s *Service) RevokeFamily(ctx context.Context, familyID string) error {
	return s.tokens.RevokeFamily(ctx, familyID)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
